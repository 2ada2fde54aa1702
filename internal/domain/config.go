package domain

import "time"

// RunConfig is the resolved configuration for a single run, built once from the
// working directory's .env file and the process environment.
type RunConfig struct {
	WorkingDir string

	APIKey         string
	Model          string
	BaseURL        string
	EnableOpenAI   bool
	DebugRequest   bool
	RequestTimeout time.Duration

	IncludeShellHistory    bool
	IncludeRepositoryFiles bool
	IncludeEnvFileKeys     bool
	IncludeFileContents    bool

	HistoryHours        int
	HistorySource       HistorySource
	HistoryFile         string
	MaxHistoryEntries   int
	MaxFileCount        int
	MaxFileContentBytes int

	// EnvFileKeys lists the keys declared in .env, in file order. Values are not kept.
	EnvFileKeys []string
	// EnvFileFound reports whether a .env file was read.
	EnvFileFound bool
}

// HistoryWindow returns the recency window for shell history entries.
func (c RunConfig) HistoryWindow() time.Duration {
	return time.Duration(c.HistoryHours) * time.Hour
}

// Validate rejects option combinations the pipeline cannot run with.
func (c RunConfig) Validate() error {
	if c.EnableOpenAI && c.APIKey == "" {
		return NewError(KindConfiguration, ReasonMissingOption,
			EnvOpenAIAPIKey+" is required when "+EnvEnableOpenAI+"=true", nil)
	}
	if c.EnableOpenAI && c.Model == "" {
		return NewError(KindConfiguration, ReasonMissingOption, EnvOpenAIModel+" must not be empty", nil)
	}
	if c.HistoryHours < 0 {
		return NewError(KindConfiguration, ReasonInvalidOption, EnvHoursOfShellHistory+" must be >= 0", nil)
	}
	if c.MaxFileCount < 0 {
		return NewError(KindConfiguration, ReasonInvalidOption, EnvMaxFileCount+" must be >= 0", nil)
	}
	if c.MaxHistoryEntries < 0 {
		return NewError(KindConfiguration, ReasonInvalidOption, EnvMaxHistoryEntries+" must be >= 0", nil)
	}
	if c.MaxFileContentBytes < 0 {
		return NewError(KindConfiguration, ReasonInvalidOption, EnvMaxFileContentBytes+" must be >= 0", nil)
	}
	if c.RequestTimeout <= 0 {
		return NewError(KindConfiguration, ReasonInvalidOption, EnvRequestTimeout+" must be > 0", nil)
	}
	if !c.HistorySource.Valid() {
		return NewError(KindConfiguration, ReasonInvalidOption,
			EnvHistorySource+" must be auto|zsh|bash|fish|atuin, got "+string(c.HistorySource), nil)
	}
	return nil
}

// Option names recognised in .env and the process environment.
const (
	EnvOpenAIAPIKey         = "OPENAI_API_KEY"
	EnvOpenAIModel          = "OPENAI_MODEL"
	EnvOpenAIBaseURL        = "OPENAI_BASE_URL"
	EnvEnableOpenAI         = "ENABLE_OPENAI"
	EnvHoursOfShellHistory  = "HOURS_OF_SHELL_HISTORY"
	EnvMaxFileCount         = "MAX_FILE_COUNT_FOR_CONTEXT"
	EnvDebugRequest         = "DEBUG_REQUEST"
	EnvIncludeShellHistory  = "INCLUDE_SHELL_HISTORY"
	EnvIncludeRepoFiles     = "INCLUDE_REPOSITORY_FILES"
	EnvIncludeEnvFileKeys   = "INCLUDE_ENV_FILE_KEYS"
	EnvIncludeFileContents  = "INCLUDE_FILE_CONTENTS"
	EnvMaxFileContentBytes  = "MAX_FILE_CONTENT_BYTES"
	EnvMaxHistoryEntries    = "MAX_SHELL_HISTORY_ENTRIES"
	EnvHistorySource        = "SHELL_HISTORY_SOURCE"
	EnvHistoryFile          = "SHELL_HISTORY_FILE"
	EnvRequestTimeout       = "REQUEST_TIMEOUT_SECONDS"
	EnvLegacyTimeBackHours  = "TIME_BACK_HOURS"
	EnvLegacyMaxFileContext = "MAX_FILE_CONTEXT"
)

// Defaults applied when an option is unset.
const (
	DefaultModel               = "gpt-4o"
	DefaultBaseURL             = "https://api.openai.com/v1"
	DefaultHistoryHours        = 5
	DefaultMaxFileCount        = 5
	DefaultMaxHistoryEntries   = 200
	DefaultMaxFileContentBytes = 4096
	DefaultRequestTimeoutSecs  = 60
)

// DefaultRunConfig returns a config with every documented default applied.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Model:                  DefaultModel,
		BaseURL:                DefaultBaseURL,
		EnableOpenAI:           true,
		RequestTimeout:         DefaultRequestTimeoutSecs * time.Second,
		IncludeShellHistory:    true,
		IncludeRepositoryFiles: true,
		IncludeEnvFileKeys:     true,
		HistoryHours:           DefaultHistoryHours,
		HistorySource:          HistorySourceAuto,
		MaxHistoryEntries:      DefaultMaxHistoryEntries,
		MaxFileCount:           DefaultMaxFileCount,
		MaxFileContentBytes:    DefaultMaxFileContentBytes,
	}
}
