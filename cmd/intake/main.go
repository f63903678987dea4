// Copyright 2026 Poiesic Systems
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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/intake"
	"github.com/poiesic/intake/ai"
	"github.com/poiesic/intake/core"
	"github.com/poiesic/intake/store"
	"github.com/poiesic/intake/store/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "intake",
		Usage: "Document classification and extraction pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Process a single document (file argument or stdin)",
				Action:    processCommand,
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "AI service host URL",
					},
					&cli.StringFlag{
						Name:  "ai-model",
						Usage: "AI model name",
					},
				},
			},
			{
				Name:      "batch",
				Usage:     "Process files or directories of documents concurrently",
				Action:    batchCommand,
				ArgsUsage: "path [path ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "AI service host URL",
					},
					&cli.StringFlag{
						Name:  "ai-model",
						Usage: "AI model name",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for concurrent processing",
					},
				},
			},
			{
				Name:  "memory",
				Usage: "Inspect and manage the shared processing memory",
				Subcommands: []*cli.Command{
					{
						Name:   "get",
						Usage:  "Show the memory entry for a processing ID",
						Action: memoryGetCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.StringFlag{
								Name:     "id",
								Usage:    "Processing ID",
								Required: true,
							},
						},
					},
					{
						Name:   "history",
						Usage:  "Show all entries in a conversation thread",
						Action: memoryHistoryCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.StringFlag{
								Name:     "conversation",
								Usage:    "Conversation ID",
								Required: true,
							},
						},
					},
					{
						Name:   "search",
						Usage:  "Find entries matching every query word",
						Action: memorySearchCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.StringFlag{
								Name:     "query",
								Aliases:  []string{"q"},
								Usage:    "Words to match against stored entries",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Maximum entries to return (0 for all)",
								Value: 20,
							},
						},
					},
					{
						Name:   "list",
						Usage:  "List memory entries, most recent first",
						Action: memoryListCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Maximum entries to list (0 for all)",
								Value: 20,
							},
						},
					},
					{
						Name:   "cleanup",
						Usage:  "Remove entries older than the given age",
						Action: memoryCleanupCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.DurationFlag{
								Name:  "max-age",
								Usage: "Age beyond which entries are removed",
								Value: 720 * time.Hour,
							},
						},
					},
					{
						Name:   "clear",
						Usage:  "Remove all memory entries",
						Action: memoryClearCommand,
						Flags:  []cli.Flag{dbFlag()},
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show memory store statistics",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory",
	}
}

func processCommand(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	doc, err := readDocument(c)
	if err != nil {
		return err
	}

	system, err := newSystem(cfg)
	if err != nil {
		return err
	}
	defer system.Close()

	result, err := system.Process(context.Background(), doc)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	return printJSON(result)
}

func batchCommand(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file or directory argument is required")
	}

	docs, err := collectDocuments(c.Args().Slice())
	if err != nil {
		return err
	}

	system, err := newSystem(cfg)
	if err != nil {
		return err
	}
	defer system.Close()

	results, err := system.ProcessBatch(context.Background(), docs)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	if err := printJSON(results); err != nil {
		return err
	}
	return printJSON(system.Stats())
}

func memoryGetCommand(c *cli.Context) error {
	return withRepository(c, func(ctx context.Context, repo *repository) error {
		entry, err := repo.memory.Get(ctx, core.ProcessingID(c.String("id")))
		if err != nil {
			return err
		}
		return printJSON(entry)
	})
}

func memoryHistoryCommand(c *cli.Context) error {
	return withRepository(c, func(ctx context.Context, repo *repository) error {
		history, err := repo.memory.ConversationHistory(ctx, core.ConversationID(c.String("conversation")))
		if err != nil {
			return err
		}
		return printJSON(history)
	})
}

func memorySearchCommand(c *cli.Context) error {
	return withRepository(c, func(ctx context.Context, repo *repository) error {
		entries, err := repo.memory.Search(ctx, c.String("query"), c.Int("limit"))
		if err != nil {
			return err
		}
		return printJSON(entries)
	})
}

func memoryListCommand(c *cli.Context) error {
	return withRepository(c, func(ctx context.Context, repo *repository) error {
		entries, err := repo.memory.List(ctx, c.Int("limit"))
		if err != nil {
			return err
		}
		return printJSON(entries)
	})
}

func memoryCleanupCommand(c *cli.Context) error {
	return withRepository(c, func(ctx context.Context, repo *repository) error {
		removed, err := repo.memory.Cleanup(ctx, c.Duration("max-age"))
		if err != nil {
			return err
		}
		fmt.Printf("removed %d entries\n", removed)
		return nil
	})
}

func memoryClearCommand(c *cli.Context) error {
	return withRepository(c, func(ctx context.Context, repo *repository) error {
		if err := repo.memory.DeleteAll(ctx); err != nil {
			return err
		}
		fmt.Println("memory cleared")
		return nil
	})
}

func statsCommand(c *cli.Context) error {
	return withRepository(c, func(ctx context.Context, repo *repository) error {
		stats, err := repo.memory.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(stats)
	})
}

// Helpers

// newSystem builds a full processing system from resolved configuration.
func newSystem(cfg *Config) (*intake.System, error) {
	var aiOpts []ai.ConfigOption
	if cfg.AI.Host != "" {
		aiOpts = append(aiOpts, ai.WithHost(cfg.AI.Host))
	}
	if cfg.AI.Model != "" {
		aiOpts = append(aiOpts, ai.WithModel(cfg.AI.Model))
	}

	opts := []intake.SystemOption{
		intake.WithAIConfig(ai.NewConfig(aiOpts...)),
	}
	if cfg.Memory.MaxEntries > 0 {
		opts = append(opts, intake.WithMaxEntries(cfg.Memory.MaxEntries))
	}
	if cfg.PoolSize > 0 {
		opts = append(opts, intake.WithPoolSize(cfg.PoolSize))
	}
	return intake.NewSystem(cfg.DBPath, opts...)
}

// repository bundles the storage handles opened for memory commands, which
// do not need an AI provider.
type repository struct {
	backend *badger.Backend
	memory  store.MemoryRepository
}

func withRepository(c *cli.Context, fn func(ctx context.Context, repo *repository) error) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("database path is required (--db or config file)")
	}

	backend, err := badger.OpenBackend(cfg.DBPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	memory, err := badger.NewMemoryRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer memory.Close()

	return fn(context.Background(), &repository{backend: backend, memory: memory})
}

// collectDocuments reads documents from the given paths. A directory
// argument contributes its regular files (non-recursive); hidden files and
// subdirectories are skipped.
func collectDocuments(paths []string) ([]*core.Document, error) {
	var docs []*core.Document
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if !info.IsDir() {
			doc, err := readFileDocument(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			doc, err := readFileDocument(filepath.Join(path, entry.Name()))
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func readFileDocument(path string) (*core.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &core.Document{
		Content:  content,
		Filename: filepath.Base(path),
		Source:   "file",
	}, nil
}

// readDocument reads the document from the file argument, or stdin when no
// argument is given.
func readDocument(c *cli.Context) (*core.Document, error) {
	if c.NArg() > 0 {
		return readFileDocument(c.Args().First())
	}

	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return &core.Document{Content: content, Source: "stdin"}, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
