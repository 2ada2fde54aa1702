package history

import (
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/doeshing/quickstart-go/internal/domain"
)

// parseBash reads a bash history file written with HISTTIMEFORMAT set, where a
// "#<epoch>" line precedes each command. Commands before the first timestamp
// are skipped; untimestamped lines after a command continue that command.
func parseBash(src io.Reader) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	var pending *time.Time
	attached := false

	err := eachLine(src, func(raw []byte) {
		if !utf8.Valid(raw) {
			return
		}
		line := string(raw)

		if ts, ok := parseBashTimestamp(line); ok {
			pending = &ts
			attached = false
			return
		}

		switch {
		case pending != nil:
			entries = append(entries, domain.HistoryEntry{
				Command:   strings.TrimSpace(line),
				Timestamp: *pending,
			})
			pending = nil
			attached = true
		case attached && len(entries) > 0:
			last := &entries[len(entries)-1]
			last.Command += "\n" + line
		}
	})
	return entries, err
}

func parseBashTimestamp(line string) (time.Time, bool) {
	digits, ok := strings.CutPrefix(line, "#")
	if !ok || digits == "" {
		return time.Time{}, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return time.Time{}, false
		}
	}
	epoch, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(epoch, 0), true
}
