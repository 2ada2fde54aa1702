package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/pkg/filesystem"
	"github.com/doeshing/quickstart-go/internal/ports"
)

// EnvFileName is the configuration file looked up in the working directory.
const EnvFileName = ".env"

// FileLoader resolves RunConfig from <dir>/.env layered under the process environment.
type FileLoader struct {
	fileName string
}

// NewFileLoader builds a new loader. An empty name means ".env".
func NewFileLoader(name string) *FileLoader {
	if name == "" {
		name = EnvFileName
	}
	return &FileLoader{fileName: name}
}

// Path returns the .env path for a working directory.
func (l *FileLoader) Path(dir string) string {
	return filepath.Join(dir, l.fileName)
}

// Load implements ports.ConfigProvider. It does not validate cross-option
// requirements; callers run RunConfig.Validate before doing any work.
func (l *FileLoader) Load(_ context.Context, dir string) (domain.RunConfig, error) {
	v := newViper()

	cfg := domain.DefaultRunConfig()
	cfg.WorkingDir = dir

	fileValues, found, err := readEnvFile(l.Path(dir))
	if err != nil {
		return domain.RunConfig{}, err
	}
	if found {
		cfg.EnvFileFound = true
		cfg.EnvFileKeys = sortedKeys(fileValues)
		// KEY= with no value leaves the option at its default.
		set := lo.PickBy(fileValues, func(_ string, value string) bool {
			return strings.TrimSpace(value) != ""
		})
		if err := v.MergeConfigMap(lo.MapValues(set, func(value string, _ string) interface{} {
			return value
		})); err != nil {
			return domain.RunConfig{}, domain.NewError(domain.KindConfiguration, domain.ReasonInvalidOption,
				"merge "+l.fileName, err)
		}
	}

	r := resolver{v: v}
	cfg.APIKey = strings.TrimSpace(r.str(domain.EnvOpenAIAPIKey))
	cfg.Model = strings.TrimSpace(r.str(domain.EnvOpenAIModel))
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(r.str(domain.EnvOpenAIBaseURL)), "/")
	cfg.HistoryFile = filesystem.ExpandHome(strings.TrimSpace(r.str(domain.EnvHistoryFile)))
	cfg.HistorySource = domain.ParseHistorySource(r.str(domain.EnvHistorySource))

	cfg.EnableOpenAI = r.boolean(domain.EnvEnableOpenAI)
	cfg.DebugRequest = r.boolean(domain.EnvDebugRequest)
	cfg.IncludeShellHistory = r.boolean(domain.EnvIncludeShellHistory)
	cfg.IncludeRepositoryFiles = r.boolean(domain.EnvIncludeRepoFiles)
	cfg.IncludeEnvFileKeys = r.boolean(domain.EnvIncludeEnvFileKeys)
	cfg.IncludeFileContents = r.boolean(domain.EnvIncludeFileContents)

	cfg.HistoryHours = r.integer(domain.EnvHoursOfShellHistory, domain.EnvLegacyTimeBackHours)
	cfg.MaxFileCount = r.integer(domain.EnvMaxFileCount, domain.EnvLegacyMaxFileContext)
	cfg.MaxHistoryEntries = r.integer(domain.EnvMaxHistoryEntries)
	cfg.MaxFileContentBytes = r.integer(domain.EnvMaxFileContentBytes)
	cfg.RequestTimeout = time.Duration(r.integer(domain.EnvRequestTimeout)) * time.Second

	if r.err != nil {
		return domain.RunConfig{}, r.err
	}
	return hydrateDefaults(cfg), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	defaults := domain.DefaultRunConfig()
	v.SetDefault(domain.EnvOpenAIModel, defaults.Model)
	v.SetDefault(domain.EnvOpenAIBaseURL, defaults.BaseURL)
	v.SetDefault(domain.EnvHistorySource, string(defaults.HistorySource))
	v.SetDefault(domain.EnvEnableOpenAI, defaults.EnableOpenAI)
	v.SetDefault(domain.EnvDebugRequest, defaults.DebugRequest)
	v.SetDefault(domain.EnvIncludeShellHistory, defaults.IncludeShellHistory)
	v.SetDefault(domain.EnvIncludeRepoFiles, defaults.IncludeRepositoryFiles)
	v.SetDefault(domain.EnvIncludeEnvFileKeys, defaults.IncludeEnvFileKeys)
	v.SetDefault(domain.EnvIncludeFileContents, defaults.IncludeFileContents)
	v.SetDefault(domain.EnvHoursOfShellHistory, defaults.HistoryHours)
	v.SetDefault(domain.EnvMaxFileCount, defaults.MaxFileCount)
	v.SetDefault(domain.EnvMaxHistoryEntries, defaults.MaxHistoryEntries)
	v.SetDefault(domain.EnvMaxFileContentBytes, defaults.MaxFileContentBytes)
	v.SetDefault(domain.EnvRequestTimeout, domain.DefaultRequestTimeoutSecs)
	return v
}

// readEnvFile parses KEY=VALUE lines. A missing file is not an error.
func readEnvFile(path string) (map[string]string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, domain.NewError(domain.KindFileAccess, domain.ReasonUnreadable, "read "+path, err)
	}
	env, err := gotenv.StrictParse(bytes.NewReader(data))
	if err != nil {
		return nil, false, domain.NewError(domain.KindConfiguration, domain.ReasonInvalidOption, "parse "+path, err)
	}
	return env, true, nil
}

// resolver reads typed options, remembering the first conversion failure.
type resolver struct {
	v   *viper.Viper
	err error
}

// pick returns the first key that is set, preferring the primary name over legacy aliases.
func (r *resolver) pick(keys ...string) string {
	for _, key := range keys {
		if os.Getenv(key) != "" || r.v.InConfig(key) {
			return key
		}
	}
	return keys[0]
}

func (r *resolver) str(key string) string {
	return r.v.GetString(key)
}

func (r *resolver) boolean(key string) bool {
	value, err := cast.ToBoolE(r.v.Get(key))
	if err != nil {
		r.fail(key, r.v.Get(key))
		return false
	}
	return value
}

func (r *resolver) integer(keys ...string) int {
	key := r.pick(keys...)
	raw := r.v.Get(key)
	var (
		value int
		err   error
	)
	// cast reads a leading zero as octal; option values are always decimal.
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		raw = s
		value, err = strconv.Atoi(s)
	} else {
		value, err = cast.ToIntE(raw)
	}
	if err != nil {
		r.fail(key, raw)
		return 0
	}
	return value
}

func (r *resolver) fail(key string, raw interface{}) {
	if r.err != nil {
		return
	}
	r.err = domain.NewError(domain.KindConfiguration, domain.ReasonInvalidOption,
		fmt.Sprintf("%s has invalid value %q", key, fmt.Sprint(raw)), nil)
}

func hydrateDefaults(cfg domain.RunConfig) domain.RunConfig {
	if cfg.Model == "" {
		cfg.Model = domain.DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultBaseURL
	}
	return cfg
}

func sortedKeys(values map[string]string) []string {
	keys := lo.Keys(values)
	sort.Strings(keys)
	return keys
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
