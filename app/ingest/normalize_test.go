package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunesShortInput(t *testing.T) {
	input := "short tweet"
	if got := TruncateRunes(input, MaxContentLength); got != input {
		t.Errorf("Expected input unchanged, got '%s'", got)
	}
}

func TestTruncateRunesLongInput(t *testing.T) {
	input := strings.Repeat("a", 300)
	got := TruncateRunes(input, MaxContentLength)
	if utf8.RuneCountInString(got) != MaxContentLength {
		t.Errorf("Expected %d runes, got %d", MaxContentLength, utf8.RuneCountInString(got))
	}
	if got != input[:MaxContentLength] {
		t.Error("Expected the first 280 characters of the input")
	}
}

func TestTruncateRunesCountsCodePoints(t *testing.T) {
	// Multibyte characters count as one unit each
	input := strings.Repeat("ü", 281)
	got := TruncateRunes(input, MaxContentLength)
	if utf8.RuneCountInString(got) != MaxContentLength {
		t.Errorf("Expected %d runes, got %d", MaxContentLength, utf8.RuneCountInString(got))
	}
	if got != strings.Repeat("ü", 280) {
		t.Error("Expected the first 280 code points of the input")
	}
}

func TestTruncateRunesLanguage(t *testing.T) {
	if got := TruncateRunes("en-US-x", MaxLanguageLength); got != "en-US" {
		t.Errorf("Expected 'en-US', got '%s'", got)
	}
	if got := TruncateRunes("en", MaxLanguageLength); got != "en" {
		t.Errorf("Expected 'en', got '%s'", got)
	}
}

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags("Hello #btc #eth world")
	if len(tags) != 2 || tags[0] != "btc" || tags[1] != "eth" {
		t.Errorf("Expected [btc eth], got %v", tags)
	}
}

func TestExtractHashtagsDeduplicates(t *testing.T) {
	tags := ExtractHashtags("#btc news #eth then #btc again")
	if len(tags) != 2 || tags[0] != "btc" || tags[1] != "eth" {
		t.Errorf("Expected [btc eth] in first-seen order, got %v", tags)
	}
}

func TestExtractHashtagsUnicode(t *testing.T) {
	tags := ExtractHashtags("Guten Morgen #börse und #крипта_2024")
	if len(tags) != 2 || tags[0] != "börse" || tags[1] != "крипта_2024" {
		t.Errorf("Expected unicode tags, got %v", tags)
	}
}

func TestExtractHashtagsStopsAtPunctuation(t *testing.T) {
	tags := ExtractHashtags("see #btc, #eth.")
	if len(tags) != 2 || tags[0] != "btc" || tags[1] != "eth" {
		t.Errorf("Expected punctuation to end the tags, got %v", tags)
	}
}

func TestExtractHashtagsNoMatches(t *testing.T) {
	if tags := ExtractHashtags("no tags here, not even # alone"); len(tags) != 0 {
		t.Errorf("Expected no tags, got %v", tags)
	}
}
