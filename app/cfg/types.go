package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SourcesDir        string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string
	WebhookURL        string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
