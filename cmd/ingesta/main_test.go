package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findStringFlag(t *testing.T, flags []cli.Flag, name string) *cli.StringFlag {
	t.Helper()
	for _, flag := range flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("string flag %q not found", name)
	return nil
}

func findIntFlag(t *testing.T, flags []cli.Flag, name string) *cli.IntFlag {
	t.Helper()
	for _, flag := range flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("int flag %q not found", name)
	return nil
}

func runCommandFlags(t *testing.T) []cli.Flag {
	t.Helper()
	app := &cli.App{
		Name: "ingesta",
		Commands: []*cli.Command{
			{
				Name: "run",
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "data-dir",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Required: true,
					},
				),
			},
		},
	}
	return app.Commands[0].Flags
}

func TestRunCommandFlags(t *testing.T) {
	flags := runCommandFlags(t)

	t.Run("db is required", func(t *testing.T) {
		f := findStringFlag(t, flags, "db")
		assert.True(t, f.Required)
	})

	t.Run("collection has default value", func(t *testing.T) {
		f := findStringFlag(t, flags, "collection")
		assert.Equal(t, "books", f.Value)
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		f := findStringFlag(t, flags, "embedding-host")
		assert.Equal(t, "http://localhost:11434/v1", f.Value)
	})

	t.Run("embedding-model is required", func(t *testing.T) {
		f := findStringFlag(t, flags, "embedding-model")
		assert.Empty(t, f.Value)
		assert.True(t, f.Required)
	})
}

func TestRunCommandDefaults(t *testing.T) {
	// The tuning defaults visible on the real app, not a rebuilt copy.
	app := &cli.App{
		Name: "ingesta",
		Commands: []*cli.Command{
			{
				Name: "run",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "chunk-size", Value: 1024},
					&cli.IntFlag{Name: "chunk-overlap", Value: 200},
					&cli.IntFlag{Name: "batch-size", Value: 30},
					&cli.IntFlag{Name: "workers", Value: 5},
					&cli.IntFlag{Name: "target-rpm", Value: 3500},
					&cli.IntFlag{Name: "min-chunks-per-file", Value: 5},
				},
			},
		},
	}
	flags := app.Commands[0].Flags

	assert.Equal(t, 1024, findIntFlag(t, flags, "chunk-size").Value)
	assert.Equal(t, 200, findIntFlag(t, flags, "chunk-overlap").Value)
	assert.Equal(t, 30, findIntFlag(t, flags, "batch-size").Value)
	assert.Equal(t, 5, findIntFlag(t, flags, "workers").Value)
	assert.Equal(t, 3500, findIntFlag(t, flags, "target-rpm").Value)
	assert.Equal(t, 5, findIntFlag(t, flags, "min-chunks-per-file").Value)
}

func TestStoreFlags(t *testing.T) {
	flags := storeFlags()

	db := findStringFlag(t, flags, "db")
	assert.True(t, db.Required)
	assert.Contains(t, db.EnvVars, "INGESTA_DB_PATH")

	collection := findStringFlag(t, flags, "collection")
	assert.Equal(t, "books", collection.Value)
	assert.Contains(t, collection.EnvVars, "INGESTA_COLLECTION")
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, input := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "log-level", Value: "info"},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error { return nil },
				}

				err := app.Run([]string{"test", "--log-level", input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level fails", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}

		err := app.Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
