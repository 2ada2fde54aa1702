package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/quickstart-go/assets"
	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/ports"
)

// Template is the fixed text the builder wraps around the context blocks.
type Template struct {
	Instruction string `yaml:"instruction"`
	Request     string `yaml:"request"`
	Labels      Labels `yaml:"labels"`
}

// Labels are text/template strings rendered with labelData.
type Labels struct {
	History      string `yaml:"history"`
	Files        string `yaml:"files"`
	FileContents string `yaml:"file_contents"`
	EnvKeys      string `yaml:"env_keys"`
}

type labelData struct {
	Hours      int
	WorkingDir string
}

// Builder implements ports.PromptBuilder. It performs no I/O once constructed.
type Builder struct {
	instruction string
	request     string
	history     *template.Template
	files       *template.Template
	contents    *template.Template
	envKeys     *template.Template
}

// NewBuilder decodes the embedded prompt template.
func NewBuilder() (*Builder, error) {
	return NewBuilderFromYAML(assets.PromptYAML)
}

// NewBuilderFromYAML decodes a prompt template document.
func NewBuilderFromYAML(data []byte) (*Builder, error) {
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("decode prompt template: %w", err)
	}
	if strings.TrimSpace(tpl.Instruction) == "" {
		return nil, fmt.Errorf("prompt template has no instruction")
	}

	b := &Builder{
		instruction: strings.TrimSpace(tpl.Instruction),
		request:     strings.TrimSpace(tpl.Request),
	}
	labels := []struct {
		name string
		text string
		dst  **template.Template
	}{
		{"history", tpl.Labels.History, &b.history},
		{"files", tpl.Labels.Files, &b.files},
		{"file_contents", tpl.Labels.FileContents, &b.contents},
		{"env_keys", tpl.Labels.EnvKeys, &b.envKeys},
	}
	for _, label := range labels {
		parsed, err := template.New(label.name).Option("missingkey=error").Parse(label.text)
		if err != nil {
			return nil, fmt.Errorf("parse %s label: %w", label.name, err)
		}
		*label.dst = parsed
	}
	return b, nil
}

// Build composes the prompt. A block appears only when its toggle is on and it
// has items; otherwise it leaves nothing behind in the text.
func (b *Builder) Build(cfg domain.RunConfig, bundle domain.ContextBundle) domain.Prompt {
	data := labelData{Hours: bundle.HistoryHours, WorkingDir: bundle.WorkingDir}

	var blocks []string
	if b.request != "" {
		blocks = append(blocks, b.request)
	}
	if cfg.IncludeShellHistory && bundle.History.Present() {
		lines := lo.Map(bundle.History.Items, func(entry domain.HistoryEntry, _ int) string {
			return historyLine(entry, bundle)
		})
		blocks = append(blocks, section(b.history, data, lines))
	}
	if cfg.IncludeRepositoryFiles && bundle.Files.Present() {
		lines := lo.Map(bundle.Files.Items, func(file string, _ int) string {
			return "- " + file
		})
		blocks = append(blocks, section(b.files, data, lines))
	}
	if cfg.IncludeRepositoryFiles && cfg.IncludeFileContents && bundle.FileContents.Present() {
		lines := lo.Map(bundle.FileContents.Items, func(file domain.FileContent, _ int) string {
			return fileBlock(file)
		})
		blocks = append(blocks, section(b.contents, data, lines))
	}
	if cfg.IncludeEnvFileKeys && bundle.EnvKeys.Present() {
		lines := lo.Map(bundle.EnvKeys.Items, func(key string, _ int) string {
			return "- " + key
		})
		blocks = append(blocks, section(b.envKeys, data, lines))
	}

	return domain.Prompt{
		Instruction: b.instruction,
		Content:     strings.Join(blocks, "\n\n"),
	}
}

func section(label *template.Template, data labelData, lines []string) string {
	var buf bytes.Buffer
	if err := label.Execute(&buf, data); err != nil {
		buf.Reset()
		buf.WriteString(label.Name())
		buf.WriteByte(':')
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Join(lines, "\n"))
	return buf.String()
}

func historyLine(entry domain.HistoryEntry, bundle domain.ContextBundle) string {
	stamp := entry.Timestamp
	if loc := bundle.Now.Location(); loc != nil {
		stamp = stamp.In(loc)
	}
	command := strings.ReplaceAll(entry.Command, "\n", "\n  ")
	return fmt.Sprintf("- %s (%s) %s",
		stamp.Format(domain.HistoryTimestampFormat),
		humanize.RelTime(entry.Timestamp, bundle.Now, "ago", "from now"),
		command)
}

func fileBlock(file domain.FileContent) string {
	var b strings.Builder
	b.WriteString("--- " + file.Path + " ---\n")
	b.WriteString(strings.TrimRight(file.Content, "\n"))
	if file.Truncated {
		b.WriteString("\n[truncated]")
	}
	return b.String()
}

var _ ports.PromptBuilder = (*Builder)(nil)
