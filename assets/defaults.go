package assets

import (
	_ "embed"
)

// PromptYAML contains the embedded prompt template.
//
//go:embed defaults/prompt.yaml
var PromptYAML []byte
