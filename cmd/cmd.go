// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func mappingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "map",
			Aliases: []string{"m"},
			Usage:   "Column override as field=column (repeatable, empty column unmaps)",
		},
		&cli.StringFlag{
			Name:  "mapping",
			Usage: "YAML file of field: column overrides (default: import.mapping_file)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Resolve the import and print the plan without writing",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	}
}

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "platform", Usage: "PC, PS5, Switch, ..."},
		&cli.StringFlag{Name: "status", Usage: "Backlog, Playing, Beaten, Abandoned, Wishlist, Owned"},
		&cli.StringFlag{Name: "member", Usage: "Member id or name"},
		&cli.StringFlag{Name: "account", Usage: "Account id or label"},
		&cli.StringFlag{Name: "service", Usage: "Subscription service, e.g. Game Pass"},
		&cli.StringFlag{Name: "score", Usage: "Minimum OpenCritic band: 80+ or 70+"},
		&cli.StringFlag{Name: "duration", Usage: "Time to beat band: short, medium or long"},
		&cli.StringFlag{Name: "value", Usage: "Price per hour band: good, ok or poor"},
	}
}

func enrichFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent lookups (default: enrich.workers)",
		},
		&cli.FloatFlag{
			Name:  "rate",
			Usage: "Requests per second (default: enrich.rate_limit)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml template to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "seed",
				Usage:  "Load the demo library",
				Action: r.SetupSeed,
			},
		},
	}
}

// importCommand handles file and Steam imports.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import games into the library",
		Commands: []*cli.Command{
			{
				Name:      "csv",
				Usage:     "Import rows from a CSV file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags:     mappingFlags(),
				Action:    r.ImportCSV,
			},
			{
				Name:      "xlsx",
				Usage:     "Import rows from the first sheet of an XLSX workbook",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags:     mappingFlags(),
				Action:    r.ImportXLSX,
			},
			{
				Name:      "json",
				Usage:     "Import a whole-library JSON export, ids included",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.ImportJSON,
			},
			{
				Name:  "steam",
				Usage: "Import every game owned on the configured Steam account",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.ImportSteam,
			},
		},
	}
}

// exportCommand writes the library to disk.
func exportCommand(r *Runner) *cli.Command {
	flags := func(ext string) []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
				Value:   "library." + ext,
			},
		}
	}

	return &cli.Command{
		Name:  "export",
		Usage: "Export the library",
		Commands: []*cli.Command{
			{
				Name:   "csv",
				Usage:  "Export flattened library rows as CSV",
				Flags:  flags("csv"),
				Action: r.Export,
			},
			{
				Name:   "xlsx",
				Usage:  "Export flattened library rows as an XLSX workbook",
				Flags:  flags("xlsx"),
				Action: r.Export,
			},
			{
				Name:   "json",
				Usage:  "Export every collection as one JSON document",
				Flags:  flags("json"),
				Action: r.Export,
			},
		},
	}
}

// libraryCommand browses the library.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Browse the library",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List library items, optionally filtered and grouped",
				Flags: append(filterFlags(),
					&cli.BoolFlag{Name: "group", Usage: "Group rows by member"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				),
				Action: r.LibraryList,
			},
		},
	}
}

// suggestCommand ranks what to play next or buy.
func suggestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Suggest what to play next or claim",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Usage: "play or buy (default: both)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum suggestions per kind",
				Value: 5,
			},
			&cli.FloatFlag{Name: "backlog-boost", Usage: "Override suggest.backlog_boost"},
			&cli.FloatFlag{Name: "value-weight", Usage: "Override suggest.value_weight"},
			&cli.FloatFlag{Name: "score-weight", Usage: "Override suggest.score_weight"},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Suggest,
	}
}

// enrichCommand fills prices and time to beat from external services.
func enrichCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "enrich",
		Usage: "Fill missing metadata from Steam and IGDB",
		Commands: []*cli.Command{
			{
				Name:   "prices",
				Usage:  "Fill missing prices from the Steam store",
				Flags:  enrichFlags(),
				Action: r.EnrichPrices,
			},
			{
				Name:   "ttb",
				Usage:  "Fill missing time to beat from IGDB",
				Flags:  enrichFlags(),
				Action: r.EnrichTTB,
			},
		},
	}
}

// serveCommand runs the local HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (default: server.host)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default: server.port)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for browsing and importing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Launch the interactive library browser, optionally importing a CSV/XLSX file",
		Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "map",
				Aliases: []string{"m"},
				Usage:   "Column override as field=column (repeatable)",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file while the TUI owns the terminal",
				Value: "./tmp/gametracker-tui.log",
			},
		},
		Action: r.TUI,
	}
}
