package app

import (
	"github.com/doeshing/quickstart-go/internal/application/doctor"
	"github.com/doeshing/quickstart-go/internal/application/guide"
	"github.com/doeshing/quickstart-go/internal/application/prompt"
	"github.com/doeshing/quickstart-go/internal/infrastructure/ai"
	"github.com/doeshing/quickstart-go/internal/infrastructure/config"
	contextcollector "github.com/doeshing/quickstart-go/internal/infrastructure/context"
	"github.com/doeshing/quickstart-go/internal/infrastructure/history"
	"github.com/doeshing/quickstart-go/internal/pkg/logger"
	"github.com/doeshing/quickstart-go/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	GuideService   *guide.Service
	DoctorService  *doctor.Service
	ConfigProvider ports.ConfigProvider
	Logger         *logger.ZapLogger
}

// BuildContainer constructs the dependency graph. Configuration is loaded per
// run by the services, not here.
func BuildContainer(verbose bool) (*Container, error) {
	log := logger.New(verbose)

	builder, err := prompt.NewBuilder()
	if err != nil {
		return nil, err
	}

	cfgLoader := config.NewFileLoader("")
	historyReader := history.NewReader(log)
	scanner := contextcollector.NewFileScanner(log)
	envKeys := contextcollector.NewEnvCollector()

	guideService := &guide.Service{
		ConfigProvider: cfgLoader,
		History:        historyReader,
		Files:          scanner,
		EnvKeys:        envKeys,
		Builder:        builder,
		Completion:     ai.NewClient(nil, log),
		Logger:         log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		History:        historyReader,
		Files:          scanner,
		EnvKeys:        envKeys,
	}

	return &Container{
		GuideService:   guideService,
		DoctorService:  doctorService,
		ConfigProvider: cfgLoader,
		Logger:         log,
	}, nil
}
