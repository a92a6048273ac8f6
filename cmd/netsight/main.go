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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/netsight"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI. Output is written to out; logs and progress go to stderr.
// Analyzer options are passed to every command that opens the database.
func newApp(out io.Writer, opts ...netsight.AnalyzerOption) *cli.App {
	r := &runner{out: out, options: opts}
	return &cli.App{
		Name:  "netsight",
		Usage: "Query your professional network by company, name, date and meaning",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"NETSIGHT_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file with secrets",
				Value: ".env",
			},
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
				Name:      "ingest",
				Usage:     "Rebuild the graph and embeddings from a LinkedIn Connections.csv export",
				ArgsUsage: "<csv>",
				Action:    r.ingestCommand,
			},
			{
				Name:      "query",
				Usage:     "Search contacts by structured filters and free text",
				ArgsUsage: "[text...]",
				Action:    r.queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "company",
						Usage: "Only contacts currently at this company",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Only contacts whose name contains this text",
					},
					&cli.StringFlag{
						Name:  "after",
						Usage: "Only contacts connected on or after this date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "before",
						Usage: "Only contacts connected on or before this date (YYYY-MM-DD)",
					},
					&cli.BoolFlag{
						Name:  "summary",
						Usage: "Ask the language model to summarize the top results",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results to show (0 for all)",
						Value: 20,
					},
				},
			},
			{
				Name:      "details",
				Usage:     "Show a contact and the most similar profiles",
				ArgsUsage: "<name>",
				Action:    r.detailsCommand,
			},
			{
				Name:   "status",
				Usage:  "Show what is stored and the last ingestion",
				Action: r.statusCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Rebuild every embedding with the configured model",
				Action: r.reembedCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
