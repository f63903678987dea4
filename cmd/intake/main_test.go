package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	run := func(level string) error {
		app := &cli.App{
			Name: "intake",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
		return app.Run([]string{"intake", "--log-level", level})
	}

	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG"} {
			assert.NoError(t, run(level), "level %s", level)
		}
		assert.True(t, slog.Default().Enabled(nil, slog.LevelDebug))
	})

	t.Run("rejects unknown levels", func(t *testing.T) {
		err := run("verbose")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestMemoryGetRequiresID(t *testing.T) {
	app := &cli.App{
		Name: "intake",
		Commands: []*cli.Command{
			{
				Name:   "get",
				Action: memoryGetCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{Name: "id", Required: true},
				},
			},
		},
	}

	err := app.Run([]string{"intake", "get", "--db", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id")
}

func TestBatchRequiresFiles(t *testing.T) {
	app := &cli.App{
		Name: "intake",
		Commands: []*cli.Command{
			{
				Name:   "batch",
				Action: batchCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}

	err := app.Run([]string{"intake", "batch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one file")
}

func TestCollectDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"id": 1}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("plain notes"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("skip me"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	t.Run("directory argument expands to its files", func(t *testing.T) {
		docs, err := collectDocuments([]string{dir})
		require.NoError(t, err)
		require.Len(t, docs, 2, "hidden files and subdirectories are skipped")
		assert.Equal(t, "a.json", docs[0].Filename)
		assert.Equal(t, "b.txt", docs[1].Filename)
		assert.Equal(t, "file", docs[0].Source)
	})

	t.Run("mixed file and directory arguments", func(t *testing.T) {
		docs, err := collectDocuments([]string{filepath.Join(dir, "b.txt"), dir})
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("missing path fails", func(t *testing.T) {
		_, err := collectDocuments([]string{filepath.Join(dir, "missing.txt")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.txt")
	})
}
