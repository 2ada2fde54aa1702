package guide

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/pkg/logger"
)

type stubConfig struct {
	cfg domain.RunConfig
	err error
}

func (s stubConfig) Load(_ context.Context, dir string) (domain.RunConfig, error) {
	cfg := s.cfg
	cfg.WorkingDir = dir
	return cfg, s.err
}

type stubHistory struct {
	entries []domain.HistoryEntry
	err     error
	calls   int
}

func (s *stubHistory) Read(context.Context, domain.RunConfig, time.Time) ([]domain.HistoryEntry, error) {
	s.calls++
	return s.entries, s.err
}

type stubFiles struct {
	files    []string
	contents []domain.FileContent
	err      error
}

func (s *stubFiles) Scan(context.Context, domain.RunConfig) ([]string, error) {
	return s.files, s.err
}

func (s *stubFiles) ReadContents(context.Context, domain.RunConfig, []string) []domain.FileContent {
	return s.contents
}

type stubEnv struct{ keys []string }

func (s stubEnv) Collect(domain.RunConfig) []string { return s.keys }

type recordingBuilder struct {
	bundle domain.ContextBundle
}

func (b *recordingBuilder) Build(_ domain.RunConfig, bundle domain.ContextBundle) domain.Prompt {
	b.bundle = bundle
	return domain.Prompt{Instruction: "instruction", Content: "content"}
}

type stubCompletion struct {
	result domain.CompletionResult
	err    error
	calls  int
}

func (s *stubCompletion) Complete(context.Context, domain.RunConfig, domain.Prompt) (domain.CompletionResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubCompletion) RequestBody(domain.RunConfig, domain.Prompt) ([]byte, error) {
	return []byte(`{"model":"gpt-4o"}`), nil
}

type fixture struct {
	cfg        domain.RunConfig
	history    *stubHistory
	files      *stubFiles
	builder    *recordingBuilder
	completion *stubCompletion
}

func newFixture() *fixture {
	cfg := domain.DefaultRunConfig()
	cfg.APIKey = "sk-test"
	return &fixture{
		cfg: cfg,
		history: &stubHistory{entries: []domain.HistoryEntry{
			{Command: "make build", Timestamp: time.Unix(1_700_000_000, 0)},
		}},
		files:      &stubFiles{files: []string{"Makefile", "main.go"}},
		builder:    &recordingBuilder{},
		completion: &stubCompletion{result: domain.CompletionResult{Text: "# Quickstart"}},
	}
}

func (f *fixture) service() *Service {
	return &Service{
		ConfigProvider: stubConfig{cfg: f.cfg},
		History:        f.history,
		Files:          f.files,
		EnvKeys:        stubEnv{keys: []string{"HOME", "PATH"}},
		Builder:        f.builder,
		Completion:     f.completion,
		Logger:         logger.NewNop(),
		Now:            func() time.Time { return time.Unix(1_700_003_600, 0) },
	}
}

func TestRunSuccess(t *testing.T) {
	f := newFixture()
	dir := t.TempDir()

	var before, after bool
	outcome, err := f.service().Run(context.Background(), Request{
		Dir:            dir,
		BeforeComplete: func() { before = true },
		AfterComplete:  func() { after = true },
	})
	require.NoError(t, err)

	require.NotNil(t, outcome.Result)
	assert.Equal(t, "# Quickstart", outcome.Result.Text)
	assert.False(t, outcome.Offline)
	assert.Nil(t, outcome.RequestBody)
	assert.True(t, before)
	assert.True(t, after)
	assert.Equal(t, 1, f.completion.calls)

	assert.Equal(t, dir, f.builder.bundle.WorkingDir)
	assert.Equal(t, 5, f.builder.bundle.HistoryHours)
	assert.True(t, f.builder.bundle.History.Present())
	assert.Equal(t, []string{"Makefile", "main.go"}, f.builder.bundle.Files.Items)
	assert.False(t, f.builder.bundle.FileContents.Enabled)
	assert.Equal(t, []string{"HOME", "PATH"}, f.builder.bundle.EnvKeys.Items)
}

func TestRunOfflineMakesNoCall(t *testing.T) {
	f := newFixture()
	f.cfg.EnableOpenAI = false
	f.cfg.APIKey = ""

	outcome, err := f.service().Run(context.Background(), Request{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.True(t, outcome.Offline)
	assert.Nil(t, outcome.Result)
	assert.Equal(t, "instruction", outcome.Prompt.Instruction)
	assert.Zero(t, f.completion.calls)
}

func TestRunMissingAPIKeyFailsBeforeWork(t *testing.T) {
	f := newFixture()
	f.cfg.APIKey = ""

	_, err := f.service().Run(context.Background(), Request{Dir: t.TempDir()})
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
	assert.Equal(t, domain.ReasonMissingOption, domain.ReasonOf(err))
	assert.Zero(t, f.history.calls)
	assert.Zero(t, f.completion.calls)
}

func TestRunConfigLoadError(t *testing.T) {
	f := newFixture()
	svc := f.service()
	svc.ConfigProvider = stubConfig{err: domain.NewError(domain.KindFileAccess, domain.ReasonUnreadable, "read .env", nil)}

	_, err := svc.Run(context.Background(), Request{Dir: t.TempDir()})
	assert.Equal(t, domain.KindFileAccess, domain.KindOf(err))
}

func TestRunUnreadableWorkingDir(t *testing.T) {
	f := newFixture()

	_, err := f.service().Run(context.Background(), Request{Dir: "/definitely/not/here"})
	require.Error(t, err)
	assert.Equal(t, domain.KindFileAccess, domain.KindOf(err))
	assert.Equal(t, domain.ReasonWorkingDir, domain.ReasonOf(err))
	assert.Equal(t, domain.ExitFileAccess, domain.ExitCode(err))
}

func TestRunScannerFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.files.err = domain.NewError(domain.KindFileAccess, domain.ReasonWorkingDir, "read working directory", nil)

	_, err := f.service().Run(context.Background(), Request{Dir: t.TempDir()})
	assert.Equal(t, domain.ReasonWorkingDir, domain.ReasonOf(err))
	assert.Zero(t, f.completion.calls)
}

func TestRunHistoryFailureDegrades(t *testing.T) {
	f := newFixture()
	f.history.err = errors.New("permission denied")

	outcome, err := f.service().Run(context.Background(), Request{Dir: t.TempDir()})
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)
	assert.True(t, f.builder.bundle.History.Enabled)
	assert.Empty(t, f.builder.bundle.History.Items)
}

func TestRunDisabledTogglesSkipCollectors(t *testing.T) {
	f := newFixture()
	f.cfg.IncludeShellHistory = false
	f.cfg.IncludeRepositoryFiles = false
	f.cfg.IncludeEnvFileKeys = false

	_, err := f.service().Run(context.Background(), Request{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Zero(t, f.history.calls)
	assert.False(t, f.builder.bundle.Files.Enabled)
	assert.False(t, f.builder.bundle.EnvKeys.Enabled)
}

func TestRunCompletionFailureKeepsRequestBody(t *testing.T) {
	f := newFixture()
	f.cfg.DebugRequest = true
	f.completion.err = domain.NewError(domain.KindAPI, domain.ReasonHTTPStatus, "completion endpoint returned 500", nil)

	outcome, err := f.service().Run(context.Background(), Request{Dir: t.TempDir()})
	require.Error(t, err)
	assert.Equal(t, domain.ExitAPI, domain.ExitCode(err))
	assert.Nil(t, outcome.Result)
	assert.JSONEq(t, `{"model":"gpt-4o"}`, string(outcome.RequestBody))
}

func TestRunRequiresDependencies(t *testing.T) {
	_, err := (&Service{}).Run(context.Background(), Request{})
	assert.Error(t, err)
}
