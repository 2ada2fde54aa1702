// Package history reads recent commands from the user's shell history.
//
// Supported sources are zsh extended history, bash history with HISTTIMEFORMAT
// timestamps, fish history, and the atuin SQLite database. Every source is
// opened read-only and closed before Read returns.
package history

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/pkg/filesystem"
	"github.com/doeshing/quickstart-go/internal/ports"
)

// Reader implements ports.HistoryReader.
type Reader struct {
	home   string
	getenv func(string) string
	logger ports.Logger
}

// NewReader builds a reader rooted at the current user's home directory.
func NewReader(log ports.Logger) *Reader {
	return &Reader{
		home:   filesystem.UserHomeDir(),
		getenv: os.Getenv,
		logger: log,
	}
}

// Read returns entries inside the configured window, oldest first, capped to
// the newest MaxHistoryEntries. A missing history source yields no entries.
func (r *Reader) Read(ctx context.Context, cfg domain.RunConfig, now time.Time) ([]domain.HistoryEntry, error) {
	source, path := r.Resolve(cfg)
	r.debug("reading shell history", map[string]interface{}{"source": string(source), "path": path})

	entries, err := r.readSource(ctx, source, path, now.Add(-cfg.HistoryWindow()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.NewError(domain.KindFileAccess, domain.ReasonUnreadable, "read history "+path, err)
	}

	entries = Filter(entries, cfg.HistoryWindow(), now)
	return Tail(entries, cfg.MaxHistoryEntries), nil
}

// Resolve picks the history source and file for a config. An explicit
// SHELL_HISTORY_FILE wins, then HISTFILE, then the shell's default location.
func (r *Reader) Resolve(cfg domain.RunConfig) (domain.HistorySource, string) {
	source := cfg.HistorySource
	if source == "" || source == domain.HistorySourceAuto {
		source = r.detectSource()
	}

	if cfg.HistoryFile != "" {
		return source, cfg.HistoryFile
	}
	if source != domain.HistorySourceAtuin && source != domain.HistorySourceFish {
		if histfile := r.getenv("HISTFILE"); histfile != "" {
			return source, histfile
		}
	}
	return source, r.defaultPath(source)
}

func (r *Reader) detectSource() domain.HistorySource {
	switch filepath.Base(r.getenv("SHELL")) {
	case "bash":
		return domain.HistorySourceBash
	case "fish":
		return domain.HistorySourceFish
	default:
		return domain.HistorySourceZsh
	}
}

func (r *Reader) defaultPath(source domain.HistorySource) string {
	switch source {
	case domain.HistorySourceBash:
		return filepath.Join(r.home, ".bash_history")
	case domain.HistorySourceFish:
		return filepath.Join(r.dataHome(), "fish", "fish_history")
	case domain.HistorySourceAtuin:
		if custom := r.getenv("ATUIN_DB_PATH"); custom != "" {
			return custom
		}
		return filepath.Join(r.dataHome(), "atuin", "history.db")
	default:
		return filepath.Join(r.home, ".zsh_history")
	}
}

func (r *Reader) dataHome() string {
	if xdg := r.getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(r.home, ".local", "share")
}

func (r *Reader) readSource(ctx context.Context, source domain.HistorySource, path string, cutoff time.Time) ([]domain.HistoryEntry, error) {
	if source == domain.HistorySourceAtuin {
		return readAtuin(ctx, path, cutoff)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch source {
	case domain.HistorySourceBash:
		return parseBash(file)
	case domain.HistorySourceFish:
		return parseFish(file)
	default:
		return parseZsh(file)
	}
}

func (r *Reader) debug(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, fields)
	}
}

// eachLine calls fn with every line, without the trailing newline, however long it is.
func eachLine(src io.Reader, fn func(line []byte)) error {
	br := bufio.NewReader(src)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			line = trimEOL(line)
			fn(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func trimEOL(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
	}
	if n > 0 && line[n-1] == '\r' {
		n--
	}
	return line[:n]
}

var _ ports.HistoryReader = (*Reader)(nil)
