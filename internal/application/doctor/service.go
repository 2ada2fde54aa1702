package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/pkg/filesystem"
	"github.com/doeshing/quickstart-go/internal/ports"
)

// HistoryLocator resolves which history source and file a run would read.
type HistoryLocator interface {
	Resolve(cfg domain.RunConfig) (domain.HistorySource, string)
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	History        HistoryLocator
	Files          ports.FileScanner
	EnvKeys        ports.EnvKeyCollector
}

// Run executes checks and returns a report. Only a config load failure is
// returned as an error; every other problem is reported as a check.
func (s *Service) Run(ctx context.Context, dir string) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	workingDir, dirErr := filesystem.ResolveDir(dir)
	if dirErr == nil {
		dir = workingDir
	}

	cfg, err := s.ConfigProvider.Load(ctx, dir)
	if err != nil {
		checks = append(checks, fail(".env file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if dirErr != nil {
		checks = append(checks, fail("Working directory", dirErr.Error()))
	} else {
		cfg.WorkingDir = workingDir
		checks = append(checks, ok("Working directory", workingDir))
	}
	if cfg.EnvFileFound {
		checks = append(checks, ok(".env file", fmt.Sprintf("loaded %d keys", len(cfg.EnvFileKeys))))
	} else {
		checks = append(checks, warn(".env file", "not found, using defaults and the process environment"))
	}

	if err := cfg.Validate(); err != nil {
		checks = append(checks, fail("Configuration", err.Error()))
	} else {
		checks = append(checks, ok("Configuration", "valid"))
	}

	checks = append(checks, apiCheck(cfg))

	if s.History != nil && cfg.IncludeShellHistory {
		checks = append(checks, historyCheck(s.History, cfg))
	}

	if s.Files != nil && cfg.IncludeRepositoryFiles && dirErr == nil {
		if files, err := s.Files.Scan(ctx, cfg); err == nil {
			checks = append(checks, ok("Project files", fmt.Sprintf("%d files listed (limit %d)", len(files), cfg.MaxFileCount)))
		} else {
			checks = append(checks, fail("Project files", err.Error()))
		}
	}

	if s.EnvKeys != nil && cfg.IncludeEnvFileKeys {
		checks = append(checks, ok("Environment keys", fmt.Sprintf("%d names", len(s.EnvKeys.Collect(cfg)))))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func apiCheck(cfg domain.RunConfig) domain.HealthCheck {
	if !cfg.EnableOpenAI {
		return warn("API key", domain.EnvEnableOpenAI+"=false, the prompt is previewed only")
	}
	if cfg.APIKey == "" {
		return fail("API key", domain.EnvOpenAIAPIKey+" missing")
	}
	return ok("API key", fmt.Sprintf("%s set, model %s at %s", domain.EnvOpenAIAPIKey, cfg.Model, cfg.BaseURL))
}

func historyCheck(locator HistoryLocator, cfg domain.RunConfig) domain.HealthCheck {
	source, path := locator.Resolve(cfg)
	info, err := os.Stat(path)
	if err != nil {
		return warn("Shell history", fmt.Sprintf("%s history not found at %s", source, path))
	}
	return ok("Shell history", fmt.Sprintf("%s at %s (%s, last %d hours)",
		source, path, humanize.Bytes(uint64(info.Size())), cfg.HistoryHours))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
