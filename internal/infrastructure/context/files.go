package contextcollector

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/pkg/filesystem"
	"github.com/doeshing/quickstart-go/internal/ports"
)

// FileScanner implements ports.FileScanner with a breadth-first directory walk.
type FileScanner struct {
	manifests []string
	pruneDirs map[string]bool
	maxDepth  int
	logger    ports.Logger
}

// NewFileScanner returns a scanner that lists project manifests first and
// then regular files level by level, skipping hidden and vendored directories.
func NewFileScanner(log ports.Logger) *FileScanner {
	return &FileScanner{
		manifests: []string{
			"go.mod", "Cargo.toml", "pyproject.toml", "package.json", "Makefile",
			"README.md", "requirements.txt", "Dockerfile", "docker-compose.yml",
		},
		pruneDirs: map[string]bool{
			"node_modules": true, "vendor": true, "target": true, "dist": true,
			"build": true, "__pycache__": true, "venv": true,
		},
		maxDepth: domain.MaxScanDepth,
		logger:   log,
	}
}

// Scan returns at most cfg.MaxFileCount slash-separated paths relative to the
// working directory. Only an unreadable working directory is an error.
func (s *FileScanner) Scan(ctx context.Context, cfg domain.RunConfig) ([]string, error) {
	root := cfg.WorkingDir
	top, err := os.ReadDir(root)
	if err != nil {
		return nil, domain.NewError(domain.KindFileAccess, domain.ReasonWorkingDir, "read working directory "+root, err)
	}

	limit := cfg.MaxFileCount
	if limit <= 0 {
		return nil, nil
	}

	files := make([]string, 0, limit)
	seen := map[string]bool{}
	add := func(rel string) bool {
		if !seen[rel] {
			seen[rel] = true
			files = append(files, rel)
		}
		return len(files) >= limit
	}

	for _, name := range s.manifests {
		info, err := os.Stat(filepath.Join(root, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if add(name) {
			return files, nil
		}
	}

	type level struct {
		rel     string
		entries []os.DirEntry
	}
	queue := []level{{rel: "", entries: top}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		current := queue[0]
		queue = queue[1:]

		var dirs []string
		for _, entry := range current.entries {
			name := entry.Name()
			if filesystem.IsHidden(name) {
				continue
			}
			rel := path.Join(current.rel, name)
			if entry.IsDir() {
				if !s.pruneDirs[name] && depth(rel) < s.maxDepth {
					dirs = append(dirs, rel)
				}
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}
			if add(rel) {
				return files, nil
			}
		}

		for _, rel := range dirs {
			entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				s.warn("skipping unreadable directory", rel, err)
				continue
			}
			queue = append(queue, level{rel: rel, entries: entries})
		}
	}
	return files, nil
}

// ReadContents returns the leading MaxFileContentBytes of each text file.
// Unreadable and binary files are skipped.
func (s *FileScanner) ReadContents(ctx context.Context, cfg domain.RunConfig, files []string) []domain.FileContent {
	limit := cfg.MaxFileContentBytes
	if limit <= 0 {
		return nil
	}

	var contents []domain.FileContent
	for _, rel := range files {
		if ctx.Err() != nil {
			break
		}
		data, err := readHead(filepath.Join(cfg.WorkingDir, filepath.FromSlash(rel)), limit+1)
		if err != nil {
			s.warn("skipping unreadable file", rel, err)
			continue
		}
		if bytes.IndexByte(data, 0) >= 0 {
			continue
		}
		truncated := len(data) > limit
		if truncated {
			data = data[:limit]
		}
		contents = append(contents, domain.FileContent{
			Path:      rel,
			Content:   strings.ToValidUTF8(string(data), ""),
			Truncated: truncated,
		})
	}
	return contents
}

func readHead(name string, n int) ([]byte, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, int64(n)))
}

func depth(rel string) int {
	return strings.Count(rel, "/") + 1
}

func (s *FileScanner) warn(msg, rel string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, map[string]interface{}{"path": rel, "error": err.Error()})
	}
}

var _ ports.FileScanner = (*FileScanner)(nil)
