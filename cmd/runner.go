package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/shared"
	"github.com/desertthunder/exportify/internal/tasks"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Connector opens an authenticated Spotify session for the resolved configuration.
type Connector func(ctx context.Context, config *shared.Config, logger *log.Logger) (services.Session, error)

func connectSpotify(ctx context.Context, config *shared.Config, logger *log.Logger) (services.Session, error) {
	srv, err := services.Connect(ctx, config, logger)
	if err != nil {
		return nil, err
	}
	return srv, nil
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	logger      *log.Logger
	output      io.Writer
	engine      tasks.ExportEngine
	connect     Connector
	interactive bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config // Base configuration; a config file named by --config takes precedence
	Logger  *log.Logger
	Output  io.Writer
	Engine  tasks.ExportEngine // Defaults to a [tasks.PlaylistEngine] logging to the command's logger
	Connect Connector

	// Interactive enables prompts and spinners. It is detected from stdout when Output is nil.
	Interactive bool
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
		opts.Interactive = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
	if opts.Connect == nil {
		opts.Connect = connectSpotify
	}

	return &Runner{
		config:      opts.Config,
		logger:      opts.Logger,
		output:      opts.Output,
		engine:      opts.Engine,
		connect:     opts.Connect,
		interactive: opts.Interactive,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		exportCommand, serveCommand, tuiCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// engineFor returns the configured engine, or a new one that logs to logger.
func (r *Runner) engineFor(logger *log.Logger) tasks.ExportEngine {
	if r.engine != nil {
		return r.engine
	}
	return tasks.NewPlaylistEngine(logger)
}

// loadConfig resolves configuration for a command.
//
// The file named by --config is loaded when it exists; a missing file is only an error when the
// flag was set explicitly. Environment overrides and --output-dir are applied on top, then the
// result is validated.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	var config *shared.Config
	if r.config != nil {
		c := *r.config
		config = &c
	}

	path := cmd.String("config")
	if path == "" {
		path = defaultConfigPath
	}

	loaded, err := shared.LoadConfig(path)
	switch {
	case err == nil:
		r.logger.Debug("loaded config", "path", path)
		config = loaded
	case errors.Is(err, shared.ErrMissingConfig) && !cmd.IsSet("config"):
		r.logger.Debug("config file not found, using defaults", "path", path)
	default:
		return nil, err
	}

	if config == nil {
		config = shared.DefaultConfig()
	}
	if err := shared.ApplyEnv(config); err != nil {
		return nil, err
	}
	if dir := cmd.String("output-dir"); dir != "" {
		config.Output.Dir = shared.ExpandPath(dir)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Log.Level))
	return config, nil
}

// resolveFormat picks the --format flag, falling back to the configured default.
func resolveFormat(cmd *cli.Command, config *shared.Config) (models.ExportFormat, error) {
	name := cmd.String("format")
	if name == "" {
		name = config.Output.DefaultFormat
	}
	return models.ParseFormat(name)
}

func fetchOpts(config *shared.Config) tasks.FetchOpts {
	return tasks.FetchOpts{PageSize: config.API.PageSize, MaxPages: config.API.MaxPages}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
