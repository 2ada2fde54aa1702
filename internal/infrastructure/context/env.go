package contextcollector

import (
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/ports"
)

// EnvCollector implements ports.EnvKeyCollector.
type EnvCollector struct {
	environ func() []string
}

func NewEnvCollector() *EnvCollector {
	return &EnvCollector{environ: os.Environ}
}

// Collect returns the sorted, de-duplicated names of the process environment
// plus the keys declared in .env. Values are dropped as soon as they are split off.
func (c *EnvCollector) Collect(cfg domain.RunConfig) []string {
	names := lo.FilterMap(c.environ(), func(pair string, _ int) (string, bool) {
		name, _, _ := strings.Cut(pair, "=")
		return name, name != ""
	})
	names = lo.Uniq(append(names, cfg.EnvFileKeys...))
	sort.Strings(names)
	return names
}

var _ ports.EnvKeyCollector = (*EnvCollector)(nil)
