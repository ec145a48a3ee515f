// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/graphload"
	"github.com/poiesic/graphload/config"
	"github.com/poiesic/graphload/core"
	"github.com/poiesic/graphload/errlog"
	"github.com/poiesic/graphload/errlog/badger"
	"github.com/poiesic/graphload/graphstore/dryrun"
	"github.com/poiesic/graphload/loader"
	"github.com/urfave/cli/v2"
)

// exitErrorsRecorded is the exit status of a strict run that recorded failed records.
const exitErrorsRecorded = 2

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Path to the graph config (JSON or YAML)",
		EnvVars:  []string{"GRAPHLOAD_CONFIG"},
		Required: true,
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "graphload",
		Usage: "Bulk load tab-separated data files into a property graph",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "upload",
				Usage:  "Upload every node type, then every edge type",
				Action: uploadCommand,
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "uri",
						Usage:   "Graph store URI",
						Value:   "neo4j://localhost:7687",
						EnvVars: []string{"GRAPHLOAD_URI"},
					},
					&cli.StringFlag{
						Name:    "user",
						Usage:   "Graph store user",
						Value:   "neo4j",
						EnvVars: []string{"GRAPHLOAD_USER"},
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Graph store password",
						EnvVars: []string{"GRAPHLOAD_PASSWORD"},
					},
					&cli.StringFlag{
						Name:    "database",
						Usage:   "Graph store database (empty for the server default)",
						EnvVars: []string{"GRAPHLOAD_DATABASE"},
					},
					&cli.StringFlag{
						Name:    "error-log",
						Aliases: []string{"e"},
						Usage:   "File receiving one line per failed record",
						Value:   "errors.log",
						EnvVars: []string{"GRAPHLOAD_ERROR_LOG"},
					},
					&cli.StringFlag{
						Name:    "max-concurrency",
						Usage:   "Maximum entity types uploaded at once (invalid values mean 1)",
						EnvVars: []string{"GRAPHLOAD_MAX_CONCURRENCY"},
					},
					&cli.StringFlag{
						Name:    "admission",
						Usage:   "Task admission (batch, stream)",
						Value:   string(config.AdmissionBatch),
						EnvVars: []string{"GRAPHLOAD_ADMISSION"},
					},
					&cli.StringFlag{
						Name:    "journal",
						Usage:   "BadgerDB directory where failed records are journaled",
						EnvVars: []string{"GRAPHLOAD_JOURNAL"},
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Exit with status 2 when any record failed",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records (0 disables progress)",
						Value: 1000,
					},
				},
			},
			{
				Name:   "validate",
				Usage:  "Check the graph config and data directories without uploading",
				Action: validateCommand,
				Flags: []cli.Flag{
					configFlag(),
				},
			},
			{
				Name:   "render",
				Usage:  "Print the mutation for every record instead of uploading it",
				Action: renderCommand,
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "syntax",
						Usage: "Query language to print (gremlin, cypher)",
						Value: string(dryrun.SyntaxGremlin),
					},
				},
			},
			{
				Name:   "errors",
				Usage:  "List journaled runs, or print the failed records of one run",
				Action: errorsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "journal",
						Usage:    "BadgerDB journal directory",
						EnvVars:  []string{"GRAPHLOAD_JOURNAL"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Run ID to print",
					},
				},
			},
		},
	}
}

func settingsFromContext(c *cli.Context) (config.Settings, error) {
	admission, err := config.ParseAdmission(c.String("admission"))
	if err != nil {
		return config.Settings{}, err
	}
	return config.Settings{
		URI:             c.String("uri"),
		User:            c.String("user"),
		Password:        c.String("password"),
		Database:        c.String("database"),
		GraphConfigPath: c.String("config"),
		ErrorLogPath:    c.String("error-log"),
		MaxConcurrency:  c.String("max-concurrency"),
		Admission:       admission,
		JournalPath:     c.String("journal"),
	}, nil
}

func uploadCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings, err := settingsFromContext(c)
	if err != nil {
		return err
	}

	opts := []graphload.JobOption{}
	if interval := c.Int("report-interval"); interval > 0 {
		opts = append(opts, graphload.WithProgress(os.Stderr, interval))
	}

	job, err := graphload.NewJob(settings, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Config: %s\n", settings.GraphConfigPath)
	fmt.Fprintf(os.Stderr, "Store: %s\n", settings.URI)
	fmt.Fprintf(os.Stderr, "Concurrency: %d (%s)\n", settings.Concurrency(), settings.Admission)
	fmt.Fprintln(os.Stderr)

	report, err := job.Run(ctx)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Fprintln(c.App.Writer, report.Summary())
	return exitStatus(report, c.Bool("strict"))
}

// exitStatus turns recorded failures into a non-zero exit when strict.
func exitStatus(report *graphload.Report, strict bool) error {
	if strict && report.Errors > 0 {
		return cli.Exit("", exitErrorsRecorded)
	}
	return nil
}

func validateCommand(c *cli.Context) error {
	path := c.String("config")
	reg, err := graphload.Prepare(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: %d node types, %d edge types\n", path, len(reg.Nodes()), len(reg.Edges()))
	return nil
}

func renderCommand(c *cli.Context) error {
	syntax, err := dryrun.ParseSyntax(c.String("syntax"))
	if err != nil {
		return err
	}

	reg, err := graphload.Prepare(c.String("config"))
	if err != nil {
		return err
	}

	client := dryrun.NewClient(c.App.Writer, syntax)
	collector := errlog.NewCollector()
	l, err := loader.NewLoader(reg, client, collector)
	if err != nil {
		return err
	}
	defer l.Release()

	if _, err := l.Run(c.Context); err != nil {
		return err
	}
	if collector.Len() > 0 {
		slog.Warn("records could not be rendered", "count", collector.Len())
		if _, err := collector.WriteTo(c.App.ErrWriter); err != nil {
			return err
		}
	}
	return nil
}

func errorsCommand(c *cli.Context) error {
	journal, err := badger.OpenJournal(c.String("journal"), false)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	if raw := c.String("run"); raw != "" {
		id, err := core.ParseID(raw)
		if err != nil {
			return err
		}
		records, err := journal.Records(id)
		if err != nil {
			return err
		}
		_, err = errlog.WriteLines(c.App.Writer, records)
		return err
	}

	runs, err := journal.Runs()
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%d\t%s\n",
			run.ID, run.StartedAt.Format(time.RFC3339), run.Records, run.Label)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
