package history

import (
	"time"

	"github.com/samber/lo"

	"github.com/doeshing/quickstart-go/internal/domain"
)

// Filter keeps entries recorded no earlier than now-window, in their original order.
func Filter(entries []domain.HistoryEntry, window time.Duration, now time.Time) []domain.HistoryEntry {
	cutoff := now.Add(-window)
	return lo.Filter(entries, func(entry domain.HistoryEntry, _ int) bool {
		return !entry.Timestamp.Before(cutoff)
	})
}

// Tail keeps the newest n entries. n <= 0 keeps everything.
func Tail(entries []domain.HistoryEntry, n int) []domain.HistoryEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
