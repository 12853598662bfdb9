// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/exportify/internal/models"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file (.toml, .yaml or .yml)",
		Value:   defaultConfigPath,
	}
}

func outputDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output-dir",
		Aliases: []string{"o"},
		Usage:   "Directory exports are written to (overrides output.dir)",
	}
}

func formatFlag() cli.Flag {
	names := make([]string, 0, len(models.Formats()))
	for _, f := range models.Formats() {
		names = append(names, f.String())
	}
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Export format: " + strings.Join(names, ", ") + " (default from output.default_format)",
	}
}

func manifestFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "manifest",
		Usage: "Write export_manifest.json into the output directory",
	}
}

// exportCommand exports one playlist or a batch file of playlists
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a playlist, or every playlist listed in a batch file",
		ArgsUsage: "[playlist URL or ID]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist"},
		},
		Flags: []cli.Flag{
			configFlag(),
			outputDirFlag(),
			formatFlag(),
			&cli.StringFlag{
				Name:    "batch",
				Aliases: []string{"b"},
				Usage:   "File with one playlist URL or ID per line",
			},
			manifestFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the export report as JSON",
			},
		},
		Action: r.Export,
	}
}

// serveCommand starts the local web page
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the export page on a local address",
		Flags: []cli.Flag{
			configFlag(),
			outputDirFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Address to bind (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to bind, 0 picks a free port (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Do not open the page in a browser",
			},
			manifestFlag(),
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive exports.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist export",
		Flags: []cli.Flag{
			configFlag(),
			outputDirFlag(),
			formatFlag(),
			manifestFlag(),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where logs go while the TUI owns the terminal",
				Value: "./tmp/exportify-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// setupCommand scaffolds the configuration file and output directory.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file from the bundled example and the output directory",
		Flags: []cli.Flag{
			configFlag(),
			outputDirFlag(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: r.Setup,
	}
}
