package ports

import (
	"context"

	"phaseshift/domain/core"
	"phaseshift/domain/experiment"
)

// RendererPort turns a finished run into one or more files under dir
type RendererPort interface {
	// Name identifies the renderer in configuration, e.g. "png"
	Name() string
	// Render writes its output and returns what it wrote
	Render(ctx context.Context, result *experiment.Result, dir string) ([]core.Artifact, error)
}
