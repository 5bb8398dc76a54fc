package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type NotifyTask struct {
	Task
	Message  string
	notifier Notifier
}

func NewNotifyTask(sourceName string, message string, notifier Notifier) *NotifyTask {
	return &NotifyTask{
		Task:     NewTask(TaskTypeNotify, sourceName),
		Message:  message,
		notifier: notifier,
	}
}

func (t *NotifyTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.notifier.Send(ctx, t.Message); err != nil {
		slog.Error("Task failed", "type", "Notify", "source", t.SourceName, "error", err)
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	slog.Info("Task completed",
		"type", "Notify",
		"source", t.SourceName,
		"duration", t.GetDuration())

	return nil
}
