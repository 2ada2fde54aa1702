package history

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/doeshing/quickstart-go/internal/domain"
)

// zshMeta escapes bytes that zsh treats specially; the following byte is XORed with 32.
const zshMeta = 0x83

// parseZsh reads EXTENDED_HISTORY lines of the form ": <epoch>:<elapsed>;<command>".
// Commands continued with a trailing backslash span several lines. Lines
// without a valid header are skipped.
func parseZsh(src io.Reader) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	continuing := false

	err := eachLine(src, func(raw []byte) {
		raw = unmetafy(raw)
		if !utf8.Valid(raw) {
			continuing = false
			return
		}
		line := string(raw)

		if continuing && len(entries) > 0 {
			last := &entries[len(entries)-1]
			text, more := cutContinuation(line)
			last.Command += "\n" + text
			continuing = more
			return
		}

		entry, ok := parseZshLine(line)
		if !ok {
			continuing = false
			return
		}
		entry.Command, continuing = cutContinuation(entry.Command)
		entries = append(entries, entry)
	})
	return entries, err
}

func parseZshLine(line string) (domain.HistoryEntry, bool) {
	rest, ok := strings.CutPrefix(line, ":")
	if !ok {
		return domain.HistoryEntry{}, false
	}
	stamp, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return domain.HistoryEntry{}, false
	}
	epoch, err := strconv.ParseInt(strings.TrimSpace(stamp), 10, 64)
	if err != nil {
		return domain.HistoryEntry{}, false
	}
	elapsed, command, ok := strings.Cut(rest, ";")
	if !ok {
		return domain.HistoryEntry{}, false
	}
	seconds, _ := strconv.ParseInt(strings.TrimSpace(elapsed), 10, 64)

	return domain.HistoryEntry{
		Command:   strings.TrimSpace(command),
		Timestamp: time.Unix(epoch, 0),
		Duration:  time.Duration(seconds) * time.Second,
	}, true
}

func cutContinuation(text string) (string, bool) {
	if strings.HasSuffix(text, `\`) {
		return strings.TrimSuffix(text, `\`), true
	}
	return text, false
}

func unmetafy(b []byte) []byte {
	if bytes.IndexByte(b, zshMeta) < 0 {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == zshMeta && i+1 < len(b) {
			i++
			out = append(out, b[i]^32)
			continue
		}
		out = append(out, b[i])
	}
	return out
}
