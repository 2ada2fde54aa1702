package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quickstart-go/internal/domain"
)

var optionKeys = []string{
	domain.EnvOpenAIAPIKey, domain.EnvOpenAIModel, domain.EnvOpenAIBaseURL, domain.EnvEnableOpenAI,
	domain.EnvHoursOfShellHistory, domain.EnvMaxFileCount, domain.EnvDebugRequest,
	domain.EnvIncludeShellHistory, domain.EnvIncludeRepoFiles, domain.EnvIncludeEnvFileKeys,
	domain.EnvIncludeFileContents, domain.EnvMaxFileContentBytes, domain.EnvMaxHistoryEntries,
	domain.EnvHistorySource, domain.EnvHistoryFile, domain.EnvRequestTimeout,
	domain.EnvLegacyTimeBackHours, domain.EnvLegacyMaxFileContext,
}

// clearOptionEnv blanks every recognised option; empty variables count as unset.
func clearOptionEnv(t *testing.T) {
	t.Helper()
	for _, key := range optionKeys {
		t.Setenv(key, "")
	}
}

func writeEnv(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
}

func TestLoadWithoutEnvFileUsesDefaults(t *testing.T) {
	clearOptionEnv(t)
	dir := t.TempDir()

	cfg, err := NewFileLoader("").Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.WorkingDir)
	assert.False(t, cfg.EnvFileFound)
	assert.Empty(t, cfg.EnvFileKeys)
	assert.Equal(t, "", cfg.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, domain.DefaultBaseURL, cfg.BaseURL)
	assert.True(t, cfg.EnableOpenAI)
	assert.False(t, cfg.DebugRequest)
	assert.True(t, cfg.IncludeShellHistory)
	assert.True(t, cfg.IncludeRepositoryFiles)
	assert.True(t, cfg.IncludeEnvFileKeys)
	assert.False(t, cfg.IncludeFileContents)
	assert.Equal(t, 5, cfg.HistoryHours)
	assert.Equal(t, 5, cfg.MaxFileCount)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, domain.HistorySourceAuto, cfg.HistorySource)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearOptionEnv(t)
	dir := t.TempDir()
	writeEnv(t, dir, `# quickstart settings
OPENAI_API_KEY=sk-from-file
OPENAI_MODEL=gpt-4o-mini

ENABLE_OPENAI=false
HOURS_OF_SHELL_HISTORY=12
MAX_FILE_COUNT_FOR_CONTEXT=9
DEBUG_REQUEST=true
INCLUDE_SHELL_HISTORY=false
INCLUDE_REPOSITORY_FILES=False
INCLUDE_ENV_FILE_KEYS=TRUE
SHELL_HISTORY_SOURCE=Bash
DATABASE_URL=postgres://secret
`)

	cfg, err := NewFileLoader("").Load(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, cfg.EnvFileFound)
	assert.Equal(t, "sk-from-file", cfg.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.False(t, cfg.EnableOpenAI)
	assert.Equal(t, 12, cfg.HistoryHours)
	assert.Equal(t, 9, cfg.MaxFileCount)
	assert.True(t, cfg.DebugRequest)
	assert.False(t, cfg.IncludeShellHistory)
	assert.False(t, cfg.IncludeRepositoryFiles)
	assert.True(t, cfg.IncludeEnvFileKeys)
	assert.Equal(t, domain.HistorySourceBash, cfg.HistorySource)
	assert.Contains(t, cfg.EnvFileKeys, "DATABASE_URL")
	assert.Contains(t, cfg.EnvFileKeys, "OPENAI_API_KEY")
	assert.IsIncreasing(t, cfg.EnvFileKeys)
	assert.NoError(t, cfg.Validate())
}

func TestLoadProcessEnvOverridesFile(t *testing.T) {
	clearOptionEnv(t)
	dir := t.TempDir()
	writeEnv(t, dir, "OPENAI_MODEL=gpt-4o-mini\nMAX_FILE_COUNT_FOR_CONTEXT=3\n")
	t.Setenv(domain.EnvOpenAIModel, "gpt-4.1")

	cfg, err := NewFileLoader("").Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", cfg.Model)
	assert.Equal(t, 3, cfg.MaxFileCount)
}

func TestLoadEmptyValueKeepsDefault(t *testing.T) {
	clearOptionEnv(t)
	dir := t.TempDir()
	writeEnv(t, dir, "DEBUG_REQUEST=\nHOURS_OF_SHELL_HISTORY=\n")

	cfg, err := NewFileLoader("").Load(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, cfg.DebugRequest)
	assert.Equal(t, 5, cfg.HistoryHours)
	assert.ElementsMatch(t, []string{"DEBUG_REQUEST", "HOURS_OF_SHELL_HISTORY"}, cfg.EnvFileKeys)
}

func TestLoadLegacyAliases(t *testing.T) {
	clearOptionEnv(t)
	dir := t.TempDir()
	writeEnv(t, dir, "TIME_BACK_HOURS=2\nMAX_FILE_CONTEXT=7\n")

	cfg, err := NewFileLoader("").Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.HistoryHours)
	assert.Equal(t, 7, cfg.MaxFileCount)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad boolean", content: "ENABLE_OPENAI=maybe\n"},
		{name: "bad integer", content: "HOURS_OF_SHELL_HISTORY=five\n"},
		{name: "bad timeout", content: "REQUEST_TIMEOUT_SECONDS=1m\n"},
		{name: "hex integer", content: "MAX_FILE_COUNT_FOR_CONTEXT=0x10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearOptionEnv(t)
			dir := t.TempDir()
			writeEnv(t, dir, tt.content)

			_, err := NewFileLoader("").Load(context.Background(), dir)
			require.Error(t, err)
			assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
			assert.Equal(t, domain.ReasonInvalidOption, domain.ReasonOf(err))
		})
	}
}

func TestLoadIntegersAreDecimal(t *testing.T) {
	clearOptionEnv(t)
	dir := t.TempDir()
	writeEnv(t, dir, "HOURS_OF_SHELL_HISTORY=010\nMAX_FILE_COUNT_FOR_CONTEXT=08\nMAX_SHELL_HISTORY_ENTRIES= 50 \n")

	cfg, err := NewFileLoader("").Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.HistoryHours)
	assert.Equal(t, 8, cfg.MaxFileCount)
	assert.Equal(t, 50, cfg.MaxHistoryEntries)
}

func TestLoadAPIKeyFromProcessEnv(t *testing.T) {
	clearOptionEnv(t)
	t.Setenv(domain.EnvOpenAIAPIKey, "sk-env")

	cfg, err := NewFileLoader("").Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.NoError(t, cfg.Validate())
}
