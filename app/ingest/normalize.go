package ingest

import (
	"regexp"
)

// Column limits matching the schema's CHECK constraints. Both sides count
// code points, so truncation here keeps every write within bounds.
const (
	MaxContentLength  = 280
	MaxLanguageLength = 5
	MaxTopicLength    = 100
)

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// TruncateRunes caps s at max code points. Longer input is cut, never
// rejected.
func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// ExtractHashtags returns the '#'-marked words in content without the marker,
// deduplicated in order of first appearance.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)

	var tags []string
	seen := make(map[string]bool)
	for _, match := range matches {
		tag := match[1]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	return tags
}
