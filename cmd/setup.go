package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/exportify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the bundled example config and creates the output directory.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	_, statErr := os.Stat(configPath)
	switch {
	case statErr == nil && !cmd.Bool("force"):
		r.logger.Info("config file already exists", "path", configPath)
	default:
		if statErr == nil {
			if err := os.Remove(configPath); err != nil {
				return fmt.Errorf("failed to replace config file: %w", err)
			}
		}
		r.logger.Info("creating config file from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Config file written to %s\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if dir := cmd.String("output-dir"); dir != "" {
		config.Output.Dir = shared.ExpandPath(dir)
	}

	if err := os.MkdirAll(config.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	r.logger.Info("output directory ready", "path", config.Output.Dir)
	r.writePlain("✓ Exports will be saved to %s\n", config.Output.Dir)

	if !config.HasCredentials() {
		r.writePlainln("Next steps:")
		r.writePlain("1. Create an app at https://developer.spotify.com/dashboard\n")
		r.writePlain("2. Set credentials.spotify.client_id and client_secret in %s, or export %s and %s\n",
			configPath, shared.EnvClientID, shared.EnvClientSecret)
		r.writePlain("3. Run 'exportify export <playlist URL>'\n")
	}
	return nil
}
