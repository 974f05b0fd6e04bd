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
	"bufio"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/quickplay"
	"github.com/poiesic/quickplay/core"
	"github.com/poiesic/quickplay/search"
	"github.com/poiesic/quickplay/settings"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "quickplay",
		Usage: "Search the music player and queue tracks from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding history and settings (default: user config dir)",
				EnvVars: []string{"QUICKPLAY_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Settings file (default: settings.toml in the data directory)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Read query text line by line from stdin and print results as they change",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a query runs (default: from settings)",
					},
					&cli.BoolFlag{
						Name:  "live-only",
						Usage: "Show the live result while history is disabled",
					},
				},
			},
			{
				Name:   "insert",
				Usage:  "Add a track to the player queue",
				Action: insertCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "video-id",
						Usage:    "Video ID of the track",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Track title recorded in the history",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "thumbnail",
						Usage: "Thumbnail URL recorded in the history",
					},
					&cli.StringFlag{
						Name:  "label",
						Usage: "Accessibility label, e.g. \"Song • Artist • 3:41\"",
					},
					&cli.StringFlag{
						Name:    "position",
						Aliases: []string{"p"},
						Usage:   "Where to insert: end or next",
						Value:   "end",
					},
				},
			},
			{
				Name:  "history",
				Usage: "Inspect or clear the play history",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List history entries, newest first",
						Action: historyListCommand,
					},
					{
						Name:   "clear",
						Usage:  "Remove every history entry",
						Action: historyClearCommand,
					},
				},
			},
			{
				Name:  "settings",
				Usage: "Show or change settings",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the current settings",
						Action: settingsShowCommand,
					},
					{
						Name:   "set",
						Usage:  "Change and save settings",
						Action: settingsSetCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "history-limit",
								Usage: "History size: none, 1, 5, 10 or 20",
							},
							&cli.StringFlag{
								Name:  "server",
								Usage: "Player API server address",
							},
							&cli.DurationFlag{
								Name:  "debounce",
								Usage: "Quiet period before a query runs",
							},
						},
					},
				},
			},
		},
	}
}

func dataDir(c *cli.Context) (string, error) {
	if dir := c.String("data-dir"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, "quickplay"), nil
}

func openApp(c *cli.Context, opts ...quickplay.AppOption) (*quickplay.App, error) {
	dir, err := dataDir(c)
	if err != nil {
		return nil, err
	}
	if path := c.String("config"); path != "" {
		opts = append(opts, quickplay.WithSettingsPath(path))
	}
	app, err := quickplay.Open(dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dir, err)
	}
	return app, nil
}

func searchCommand(c *cli.Context) error {
	out := &resultPrinter{w: c.App.Writer}

	var app *quickplay.App
	opts := []quickplay.AppOption{
		quickplay.WithDebounce(c.Duration("debounce")),
		quickplay.WithOnResultsChanged(func(int) { out.print(app.Results()) }),
	}
	if c.Bool("live-only") {
		opts = append(opts, quickplay.WithSearchOptions(search.WithHistoryDisabledMode(search.HistoryDisabledLiveOnly)))
	}

	app, err := openApp(c, opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	scanner := bufio.NewScanner(c.App.Reader)
	for scanner.Scan() {
		app.Type(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}

	// Run whatever is still pending and let it land before exiting
	app.Settle()
	app.Coordinator().Wait()
	return nil
}

// resultPrinter writes result lists from the worker goroutines that apply them.
type resultPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *resultPrinter) print(items []search.Item) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "-- %d result(s)\n", len(items))
	for i, item := range items {
		fmt.Fprintf(p.w, "%2d. [%s] %s (%s)", i+1, item.Source, item.Result.Title, item.Result.VideoID)
		if tags := item.Result.Tags(); len(tags) > 0 {
			fmt.Fprintf(p.w, " %s", strings.Join(tags, " | "))
		}
		fmt.Fprintln(p.w)
	}
}

func insertCommand(c *cli.Context) error {
	position, err := core.ParseInsertPosition(c.String("position"))
	if err != nil {
		return err
	}
	result := core.SearchResult{
		Title:              c.String("title"),
		VideoID:            c.String("video-id"),
		ThumbnailURL:       c.String("thumbnail"),
		AccessibilityLabel: c.String("label"),
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Insert(c.Context, result, position); err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "queued %s (%s) at %s\n", result.Title, result.VideoID, strings.ToLower(position.String()))
	return nil
}

func historyListCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.History().Load(c.Context)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.App.Writer, "history is empty")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(c.App.Writer, "%s  %s (%s)\n", e.Timestamp.Local().Format(time.DateTime), e.Title, e.VideoID)
	}
	return nil
}

func historyClearCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.History().Clear(c.Context); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	fmt.Fprintln(c.App.Writer, "history cleared")
	return nil
}

func settingsShowCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Fprintf(c.App.Writer, "# %s\n", app.Settings().Path())
	return toml.NewEncoder(c.App.Writer).Encode(app.Settings().Settings())
}

func settingsSetCommand(c *cli.Context) error {
	if !c.IsSet("history-limit") && !c.IsSet("server") && !c.IsSet("debounce") {
		return fmt.Errorf("nothing to set: use --history-limit, --server or --debounce")
	}

	var limit core.HistoryLimit
	if c.IsSet("history-limit") {
		var err error
		if limit, err = core.ParseHistoryLimit(c.String("history-limit")); err != nil {
			return err
		}
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	err = app.UpdateSettings(c.Context, func(s *settings.Settings) error {
		if c.IsSet("history-limit") {
			s.HistoryLimit = limit
		}
		if c.IsSet("server") {
			s.ServerAddress = c.String("server")
		}
		if c.IsSet("debounce") {
			s.Debounce = settings.Duration{Duration: c.Duration("debounce")}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	fmt.Fprintln(c.App.Writer, "settings saved")
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

	errWriter := c.App.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(errWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
