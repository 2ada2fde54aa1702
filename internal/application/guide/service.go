package guide

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/pkg/filesystem"
	"github.com/doeshing/quickstart-go/internal/ports"
)

// Service orchestrates one quickstart run end-to-end: load config, gather
// context, build the prompt and, when enabled, ask the completion endpoint.
type Service struct {
	ConfigProvider ports.ConfigProvider
	History        ports.HistoryReader
	Files          ports.FileScanner
	EnvKeys        ports.EnvKeyCollector
	Builder        ports.PromptBuilder
	Completion     ports.CompletionClient
	Logger         ports.Logger
	Now            func() time.Time
}

// Request describes a single invocation.
type Request struct {
	Dir string
	// BeforeComplete runs right before the network call, if one is made.
	BeforeComplete func()
	// AfterComplete runs right after the network call returns.
	AfterComplete func()
}

// Run processes a single invocation. On failure the returned Outcome still
// carries whatever was built so far, including the request body when
// DEBUG_REQUEST is on.
func (s *Service) Run(ctx context.Context, req Request) (domain.Outcome, error) {
	if s.ConfigProvider == nil || s.History == nil || s.Files == nil || s.EnvKeys == nil ||
		s.Builder == nil || s.Completion == nil || s.Logger == nil {
		return domain.Outcome{}, errors.New("guide.Service dependencies not satisfied")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx, req.Dir)
	if err != nil {
		return domain.Outcome{}, err
	}
	if err := cfg.Validate(); err != nil {
		return domain.Outcome{}, err
	}

	dir, err := resolveWorkingDir(req.Dir)
	if err != nil {
		return domain.Outcome{}, err
	}
	cfg.WorkingDir = dir

	s.Logger.Debug("config loaded", map[string]interface{}{
		"dir":           dir,
		"env_file":      cfg.EnvFileFound,
		"enable_openai": cfg.EnableOpenAI,
		"model":         cfg.Model,
	})

	bundle, err := s.gather(ctx, cfg)
	if err != nil {
		return domain.Outcome{}, err
	}

	outcome := domain.Outcome{
		Prompt: s.Builder.Build(cfg, bundle),
		Bundle: bundle,
	}

	if cfg.DebugRequest {
		body, err := s.Completion.RequestBody(cfg, outcome.Prompt)
		if err != nil {
			s.Logger.Warn("render request body", map[string]interface{}{"error": err.Error()})
		}
		outcome.RequestBody = body
	}

	if !cfg.EnableOpenAI {
		s.Logger.Info("completion disabled, returning prompt preview", nil)
		outcome.Offline = true
		return outcome, nil
	}

	s.Logger.Info("requesting quickstart guide", map[string]interface{}{
		"model":    cfg.Model,
		"history":  len(bundle.History.Items),
		"files":    len(bundle.Files.Items),
		"env_keys": len(bundle.EnvKeys.Items),
	})

	if req.BeforeComplete != nil {
		req.BeforeComplete()
	}
	result, err := s.Completion.Complete(ctx, cfg, outcome.Prompt)
	if req.AfterComplete != nil {
		req.AfterComplete()
	}
	if err != nil {
		return outcome, err
	}
	outcome.Result = &result
	return outcome, nil
}

// gather runs the three collectors concurrently. Only a working directory
// failure is fatal; history and file content problems degrade to empty sections.
func (s *Service) gather(ctx context.Context, cfg domain.RunConfig) (domain.ContextBundle, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	bundle := domain.ContextBundle{
		WorkingDir:   cfg.WorkingDir,
		Now:          now,
		HistoryHours: cfg.HistoryHours,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.IncludeShellHistory {
		g.Go(func() error {
			entries, err := s.History.Read(gctx, cfg, now)
			if err != nil {
				s.Logger.Warn("shell history unavailable", map[string]interface{}{"error": err.Error()})
				entries = nil
			}
			bundle.History = domain.EnabledSection(entries)
			return nil
		})
	}

	if cfg.IncludeRepositoryFiles {
		g.Go(func() error {
			files, err := s.Files.Scan(gctx, cfg)
			if err != nil {
				return err
			}
			bundle.Files = domain.EnabledSection(files)
			if cfg.IncludeFileContents {
				bundle.FileContents = domain.EnabledSection(s.Files.ReadContents(gctx, cfg, files))
			}
			return nil
		})
	}

	if cfg.IncludeEnvFileKeys {
		g.Go(func() error {
			bundle.EnvKeys = domain.EnabledSection(s.EnvKeys.Collect(cfg))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.ContextBundle{}, err
	}
	return bundle, nil
}

func resolveWorkingDir(dir string) (string, error) {
	abs, err := filesystem.ResolveDir(dir)
	if err != nil {
		return "", domain.NewError(domain.KindFileAccess, domain.ReasonWorkingDir, "resolve working directory "+dir, err)
	}
	return abs, nil
}
