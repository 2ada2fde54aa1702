package history

import (
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/quickstart-go/internal/domain"
)

// fishRecord mirrors one entry of fish_history:
//
//	- cmd: git status
//	  when: 1700000000
//	  paths:
//	    - README.md
type fishRecord struct {
	Cmd   string   `yaml:"cmd"`
	When  int64    `yaml:"when"`
	Paths []string `yaml:"paths"`
}

// parseFish decodes fish_history one record at a time. fish does not always
// write valid YAML, so a record that fails to decode falls back to a
// line-based read, and a record without a timestamp is skipped.
func parseFish(src io.Reader) ([]domain.HistoryEntry, error) {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	err := eachLine(src, func(raw []byte) {
		if !utf8.Valid(raw) {
			return
		}
		line := string(raw)
		if strings.HasPrefix(line, "- cmd:") {
			flush()
		} else if current.Len() == 0 {
			return
		}
		current.WriteString(line)
		current.WriteByte('\n')
	})
	if err != nil {
		return nil, err
	}
	flush()

	entries := make([]domain.HistoryEntry, 0, len(chunks))
	for _, chunk := range chunks {
		record, ok := decodeFishRecord(chunk)
		if !ok {
			continue
		}
		entries = append(entries, domain.HistoryEntry{
			Command:   unescapeFish(strings.TrimSpace(record.Cmd)),
			Timestamp: time.Unix(record.When, 0),
		})
	}
	return entries, nil
}

func decodeFishRecord(chunk string) (fishRecord, bool) {
	var records []fishRecord
	if err := yaml.Unmarshal([]byte(chunk), &records); err == nil && len(records) == 1 && records[0].When > 0 {
		return records[0], true
	}

	var record fishRecord
	for i, line := range strings.Split(chunk, "\n") {
		if i == 0 {
			record.Cmd = strings.TrimPrefix(line, "- cmd:")
			continue
		}
		if value, ok := strings.CutPrefix(strings.TrimSpace(line), "when:"); ok {
			when, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return fishRecord{}, false
			}
			record.When = when
		}
	}
	if record.When <= 0 {
		return fishRecord{}, false
	}
	return record, true
}

// unescapeFish reverses fish's history escaping of newlines and backslashes.
func unescapeFish(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
