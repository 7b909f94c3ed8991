package container

import (
	"fmt"

	"phaseshift/adapters/chart"
	"phaseshift/adapters/polyfile"
	"phaseshift/adapters/report"
	"phaseshift/adapters/rng"
	"phaseshift/app"
	"phaseshift/internal"
	"phaseshift/internal/api"
	"phaseshift/internal/config"
	"phaseshift/internal/errors"
	"phaseshift/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Adapters
	Polynomials *polyfile.Source
	States      *rng.StateSource
	Renderers   []ports.RendererPort

	// Services
	Experiments *app.ExperimentService
}

// New wires adapters and services from cfg
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	renderers, err := NewRenderers(cfg.Output.Renderers)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		Polynomials: polyfile.NewSource(cfg.Paths.PolynomialsDir),
		States:      rng.NewStateSource(),
		Renderers:   renderers,
	}
	c.Experiments = app.NewExperimentService(c.Polynomials, c.States, cfg.Server.Workers, logger, c.Renderers...)
	return c, nil
}

// NewRenderers builds renderers by name, in order
func NewRenderers(names []string) ([]ports.RendererPort, error) {
	renderers := make([]ports.RendererPort, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "png":
			renderers = append(renderers, chart.NewPNGRenderer())
		case "html":
			renderers = append(renderers, chart.NewHTMLRenderer())
		case "xlsx":
			renderers = append(renderers, report.NewWorkbookRenderer())
		case "md":
			renderers = append(renderers, report.NewMarkdownRenderer())
		default:
			return nil, errors.ConfigInvalid(fmt.Sprintf("unknown renderer %q", name))
		}
	}
	return renderers, nil
}

// APIServer returns an HTTP handler backed by the container's experiment service
func (c *Container) APIServer() *api.Server {
	return api.NewServer(c.Experiments, c.Config.Run, c.Logger)
}
