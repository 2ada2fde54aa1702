package domain

import "time"

// Section is an optional context block. A disabled section and an empty one
// are treated the same by consumers: neither is rendered.
type Section[T any] struct {
	Enabled bool
	Items   []T
}

// EnabledSection builds a section that participates in the prompt when non-empty.
func EnabledSection[T any](items []T) Section[T] {
	return Section[T]{Enabled: true, Items: items}
}

// DisabledSection builds a section whose toggle is off.
func DisabledSection[T any]() Section[T] {
	return Section[T]{}
}

// Present reports whether the section should appear in the prompt.
func (s Section[T]) Present() bool {
	return s.Enabled && len(s.Items) > 0
}

// FileContent is the leading slice of a listed project file.
type FileContent struct {
	Path      string
	Content   string
	Truncated bool
}

// ContextBundle holds every gathered context block for one run.
type ContextBundle struct {
	WorkingDir   string
	Now          time.Time
	HistoryHours int

	History      Section[HistoryEntry]
	Files        Section[string]
	FileContents Section[FileContent]
	EnvKeys      Section[string]
}
