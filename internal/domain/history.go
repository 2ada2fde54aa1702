package domain

import (
	"strings"
	"time"
)

// HistorySource names a shell history format.
type HistorySource string

const (
	HistorySourceAuto  HistorySource = "auto"
	HistorySourceZsh   HistorySource = "zsh"
	HistorySourceBash  HistorySource = "bash"
	HistorySourceFish  HistorySource = "fish"
	HistorySourceAtuin HistorySource = "atuin"
)

// ParseHistorySource normalises a configured source name. Empty means auto.
func ParseHistorySource(raw string) HistorySource {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return HistorySourceAuto
	}
	return HistorySource(raw)
}

// Valid reports whether the source is one of the supported formats.
func (s HistorySource) Valid() bool {
	switch s {
	case HistorySourceAuto, HistorySourceZsh, HistorySourceBash, HistorySourceFish, HistorySourceAtuin:
		return true
	default:
		return false
	}
}

// HistoryEntry is one shell command with the time it was recorded.
type HistoryEntry struct {
	Command   string
	Timestamp time.Time
	// Duration is the recorded run time, zero when the format does not carry it.
	Duration time.Duration
}
