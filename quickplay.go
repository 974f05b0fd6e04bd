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

// Package quickplay wires the search pipeline, play history, settings and
// player backend into a single App.
package quickplay

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/poiesic/quickplay/backend"
	"github.com/poiesic/quickplay/backend/ytmusic"
	"github.com/poiesic/quickplay/core"
	"github.com/poiesic/quickplay/queue"
	"github.com/poiesic/quickplay/search"
	"github.com/poiesic/quickplay/settings"
	"github.com/poiesic/quickplay/storage"
	"github.com/poiesic/quickplay/storage/badger"
)

const (
	historyDirName   = "history"
	settingsFileName = "settings.toml"
)

type App struct {
	backend     *badger.Backend
	history     *badger.HistoryRepository
	settings    *settings.Manager
	handle      *backend.Handle
	coordinator *search.Coordinator
	gate        *search.Gate
	inserter    *queue.Inserter
	logger      *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	settingsPath     string
	factory          backend.Factory
	configOpts       []backend.ConfigOption
	searchOpts       []search.Option
	debounce         time.Duration
	queueOpts        []queue.Option
	onResultsChanged func(count int)
	logger           *slog.Logger
}

// WithSettingsPath overrides the settings file location.
// Default is settings.toml inside the data directory.
func WithSettingsPath(path string) AppOption {
	return func(o *appOptions) {
		o.settingsPath = path
	}
}

// WithBackendFactory overrides how player clients are built.
// Default is the ytmusic HTTP client.
func WithBackendFactory(factory backend.Factory) AppOption {
	return func(o *appOptions) {
		o.factory = factory
	}
}

// WithBackendConfig sets options applied to every backend Config.
func WithBackendConfig(opts ...backend.ConfigOption) AppOption {
	return func(o *appOptions) {
		o.configOpts = append(o.configOpts, opts...)
	}
}

// WithSearchOptions passes options to the search coordinator.
func WithSearchOptions(opts ...search.Option) AppOption {
	return func(o *appOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithDebounce overrides the debounce delay from the settings.
func WithDebounce(d time.Duration) AppOption {
	return func(o *appOptions) {
		o.debounce = d
	}
}

// WithQueueOptions passes options to the queue inserter.
func WithQueueOptions(opts ...queue.Option) AppOption {
	return func(o *appOptions) {
		o.queueOpts = append(o.queueOpts, opts...)
	}
}

// WithOnResultsChanged sets the callback fired once per applied search with
// the new result count.
func WithOnResultsChanged(fn func(count int)) AppOption {
	return func(o *appOptions) {
		o.onResultsChanged = fn
	}
}

// WithLogger sets the logger every component derives its logger from.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) AppOption {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// Open opens the history and settings kept under dataDir and builds the
// search pipeline on top of them. An empty dataDir keeps everything in
// memory.
func Open(dataDir string, opts ...AppOption) (*App, error) {
	options := &appOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.factory == nil {
		options.factory = ytmusic.NewFactory(ytmusic.WithLogger(options.logger.With("component", "ytmusic")))
	}
	if options.settingsPath == "" && dataDir != "" {
		options.settingsPath = filepath.Join(dataDir, settingsFileName)
	}
	logger := options.logger

	historyPath := ""
	if dataDir != "" {
		historyPath = filepath.Join(dataDir, historyDirName)
	}
	store, err := badger.OpenBackend(historyPath, dataDir == "")
	if err != nil {
		return nil, err
	}

	app := &App{backend: store, logger: logger}

	// The history trims to whatever limit is current when it saves
	app.history = badger.NewHistoryRepository(store,
		badger.WithMaxEntries(func() int { return app.settings.HistoryLimit().Max() }),
		badger.WithHistoryLogger(logger.With("component", "history")))

	app.settings, err = settings.NewManager(options.settingsPath,
		settings.WithHistory(app.history),
		settings.WithLogger(logger.With("component", "settings")))
	if err != nil {
		app.Close()
		return nil, err
	}

	app.handle, err = backend.NewHandle(app.settings, options.factory,
		backend.WithConfigOptions(options.configOpts...),
		backend.WithHandleLogger(logger.With("component", "backend")))
	if err != nil {
		app.Close()
		return nil, err
	}

	searchOpts := append([]search.Option{
		search.WithLogger(logger.With("component", "search")),
		search.WithOnResultsChanged(options.onResultsChanged),
	}, options.searchOpts...)
	app.coordinator, err = search.NewCoordinator(app.history, app.handle, app.settings, searchOpts...)
	if err != nil {
		app.Close()
		return nil, err
	}

	delay := options.debounce
	if delay <= 0 {
		delay = app.settings.Debounce()
	}
	app.gate, err = search.NewGate(app.coordinator.OnSettled,
		search.WithDelay(delay),
		search.WithGateLogger(logger.With("component", "debounce")))
	if err != nil {
		app.Close()
		return nil, err
	}

	queueOpts := append([]queue.Option{
		queue.WithLogger(logger.With("component", "queue")),
		queue.WithOnInserted(func(core.SearchResult) { app.coordinator.Refresh() }),
	}, options.queueOpts...)
	app.inserter, err = queue.NewInserter(app.handle, app.history, app.settings, queueOpts...)
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Close stops the pipeline and closes the history store.
func (a *App) Close() error {
	if a.gate != nil {
		a.gate.Stop()
	}
	if a.inserter != nil {
		a.inserter.Release()
	}
	if a.coordinator != nil {
		if err := a.coordinator.Close(); err != nil {
			a.logger.Error("error closing search coordinator", "err", err)
		}
	}
	if a.handle != nil {
		if err := a.handle.Close(); err != nil {
			a.logger.Error("error closing backend", "err", err)
		}
	}

	var errs []error
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Error("error closing history repository", "err", err)
			errs = append(errs, err)
		}
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Type feeds the current query text into the debounce gate.
func (a *App) Type(text string) {
	a.gate.Update(text)
}

// Settle runs the pending query text now instead of waiting out the debounce.
// It reports whether anything was pending.
func (a *App) Settle() bool {
	return a.gate.Flush()
}

// Results returns the current result list.
func (a *App) Results() []search.Item {
	return a.coordinator.Store().Snapshot()
}

// Insert adds result to the player queue and refreshes the results.
func (a *App) Insert(ctx context.Context, result core.SearchResult, position core.InsertPosition) error {
	return a.inserter.Insert(ctx, result, position)
}

// UpdateSettings changes and persists the settings.
func (a *App) UpdateSettings(ctx context.Context, fn func(*settings.Settings) error) error {
	return a.settings.Update(ctx, fn)
}

func (a *App) History() storage.HistoryRepository {
	return a.history
}

func (a *App) Settings() *settings.Manager {
	return a.settings
}

func (a *App) Backends() backend.Provider {
	return a.handle
}

func (a *App) Coordinator() *search.Coordinator {
	return a.coordinator
}

func (a *App) Gate() *search.Gate {
	return a.gate
}

func (a *App) Inserter() *queue.Inserter {
	return a.inserter
}
