package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/objwiz/convert"
	"github.com/vk/objwiz/internal/ctxlog"
	"github.com/vk/objwiz/objinfo"
	"github.com/vk/objwiz/registry"
	"github.com/vk/objwiz/stdtypes"
	"github.com/vk/objwiz/template"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	TemplatePath string // template file or directory
	OutputPath   string // re-encode destination, empty disables

	LogFormat string
	LogLevel  string
	Construct bool // materialize each record into a live object
}

// NewConfig validates a Config and returns it, or an error describing the
// first invalid field.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TemplatePath == "" {
		return nil, errors.New("TemplatePath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	converter *convert.Converter
}

// New is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func New(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	reg.Use(stdtypes.Module{})
	for _, mod := range modules {
		reg.Use(mod)
	}
	logger.Debug("All modules registered.", "count", len(modules)+1)

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		converter: convert.New(reg),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run loads the templates named by the configuration, reports each record,
// and optionally re-encodes the records or materializes them into objects.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	records, err := template.LoadPath(ctx, a.converter, cfg.TemplatePath)
	if err != nil && len(records) == 0 {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	if err != nil {
		a.logger.Warn("Some template entries could not be decoded.", "error", err)
	}
	a.logger.Info("Templates loaded.", "records", len(records))

	for _, rec := range records {
		fmt.Fprintln(a.outW, a.converter.Repr(rec))
		if cfg.Construct {
			if cerr := a.construct(ctx, rec); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}
	}

	if cfg.OutputPath != "" {
		if werr := template.SavePath(a.converter, cfg.OutputPath, records...); werr != nil {
			return fmt.Errorf("failed to write templates: %w", werr)
		}
		a.logger.Info("Templates re-encoded.", "path", cfg.OutputPath)
	}

	a.logger.Debug("App.Run method finished.")
	return err
}

func (a *App) construct(ctx context.Context, rec *objinfo.ObjectInfo) error {
	obj, err := a.converter.ToObject(ctx, rec)
	if err != nil {
		a.logger.Error("Record failed to materialize.", "class", rec.Class().String(), "error", err)
		return err
	}
	a.logger.Info("Record materialized.", "class", rec.Class().String(), "type", fmt.Sprintf("%T", obj))
	return nil
}
