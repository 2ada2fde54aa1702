// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The quickstart pipeline depends only on these contracts. Concrete adapters
// (the .env loader, shell history readers, the filesystem scanner, the OpenAI
// client) live in the infrastructure layer and are wired in internal/app.
package ports

import (
	"context"
	"time"

	"github.com/doeshing/quickstart-go/internal/domain"
)

// ConfigProvider resolves the run configuration for a working directory.
// Implementations read <dir>/.env and the process environment.
type ConfigProvider interface {
	Load(ctx context.Context, dir string) (domain.RunConfig, error)
}

// HistoryReader returns recent shell history entries.
// A missing history file is not an error; it yields no entries.
type HistoryReader interface {
	Read(ctx context.Context, cfg domain.RunConfig, now time.Time) ([]domain.HistoryEntry, error)
}

// FileScanner lists project files under the working directory.
type FileScanner interface {
	Scan(ctx context.Context, cfg domain.RunConfig) ([]string, error)
	ReadContents(ctx context.Context, cfg domain.RunConfig, files []string) []domain.FileContent
}

// EnvKeyCollector snapshots environment variable names, never values.
type EnvKeyCollector interface {
	Collect(cfg domain.RunConfig) []string
}

// PromptBuilder composes the prompt from configuration and gathered context.
type PromptBuilder interface {
	Build(cfg domain.RunConfig, bundle domain.ContextBundle) domain.Prompt
}

// CompletionClient performs a single chat-completion call.
type CompletionClient interface {
	Complete(ctx context.Context, cfg domain.RunConfig, prompt domain.Prompt) (domain.CompletionResult, error)
	// RequestBody renders the outgoing request without sending it.
	RequestBody(cfg domain.RunConfig, prompt domain.Prompt) ([]byte, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files, nop).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
