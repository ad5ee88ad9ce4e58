package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"volunteer-match/internal/app"
	"volunteer-match/internal/config"
)

// AppContext holds the dependencies shared across all commands. The
// container is opened on first use so token generation needs no database.
type AppContext struct {
	Cfg    config.Config
	Logger *zap.Logger
	Ctx    context.Context

	container *app.Container
}

func (a *AppContext) Container() (*app.Container, error) {
	if a.container != nil {
		return a.container, nil
	}
	c, err := app.NewContainer(a.Ctx, a.Cfg, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open container: %w", err)
	}
	a.container = c
	return c, nil
}

func (a *AppContext) Close() {
	if a.container != nil {
		if err := a.container.Close(); err != nil {
			a.Logger.Warn("close container", zap.Error(err))
		}
		a.container = nil
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// render writes v as yaml, or as json when asJSON is set.
func render(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
