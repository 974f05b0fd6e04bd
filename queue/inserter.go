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

package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/quickplay/backend"
	"github.com/poiesic/quickplay/core"
	"github.com/poiesic/quickplay/settings"
	"github.com/poiesic/quickplay/storage"
)

// DefaultAdvanceDelay is how long the player is given to register an
// inserted track before skipping to it.
const DefaultAdvanceDelay = 1500 * time.Millisecond

// Inserter adds search results to the player queue and records them in the
// play history.
type Inserter struct {
	backends     backend.Provider
	history      storage.HistoryRepository
	settings     settings.View
	pool         *ants.Pool
	advanceDelay time.Duration
	onInserted   func(core.SearchResult)
	now          func() time.Time
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an Inserter.
type Option func(*Inserter) error

// WithPoolSize sets the number of async inserts that may run at once.
// Default is 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(i *Inserter) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if i.pool != nil {
			i.pool.Release()
		}
		i.pool = pool
		return nil
	}
}

// WithAdvanceDelay sets the pause between enqueueing a track after the
// current one and skipping to it. Default is DefaultAdvanceDelay.
func WithAdvanceDelay(d time.Duration) Option {
	return func(i *Inserter) error {
		if d < 0 {
			return ErrInvalidAdvanceDelay
		}
		i.advanceDelay = d
		return nil
	}
}

// WithOnInserted sets a hook called after each successful insert.
func WithOnInserted(fn func(core.SearchResult)) Option {
	return func(i *Inserter) error {
		i.onInserted = fn
		return nil
	}
}

// WithClock sets the time source used to stamp history entries.
// Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(i *Inserter) error {
		if now != nil {
			i.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inserter) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewInserter creates an inserter.
func NewInserter(
	backends backend.Provider,
	history storage.HistoryRepository,
	view settings.View,
	opts ...Option,
) (*Inserter, error) {
	if backends == nil {
		return nil, ErrBackendRequired
	}
	if history == nil {
		return nil, ErrHistoryStoreRequired
	}
	if view == nil {
		return nil, ErrSettingsRequired
	}

	ctx, cancel := context.WithCancel(context.Background())
	i := &Inserter{
		backends:     backends,
		history:      history,
		settings:     view,
		advanceDelay: DefaultAdvanceDelay,
		onInserted:   func(core.SearchResult) {},
		now:          time.Now,
		logger:       slog.Default().With("component", "queue"),
		ctx:          ctx,
		cancel:       cancel,
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			i.Release()
			return nil, err
		}
	}
	if i.onInserted == nil {
		i.onInserted = func(core.SearchResult) {}
	}

	if i.pool == nil {
		pool, err := ants.NewPool(2)
		if err != nil {
			i.Release()
			return nil, err
		}
		i.pool = pool
	}

	return i, nil
}

// Insert enqueues result at position. For InsertAfterCurrent the player is
// then advanced to the new track. When history is enabled the track is saved
// to the history before the on-inserted hook runs.
func (i *Inserter) Insert(ctx context.Context, result core.SearchResult, position core.InsertPosition) error {
	if err := core.ValidateSearchResult(&result); err != nil {
		return err
	}

	b, err := i.backends.Backend()
	if err != nil {
		return err
	}

	if err := b.Enqueue(ctx, result.VideoID, position); err != nil {
		return fmt.Errorf("enqueue %s: %w", result.VideoID, err)
	}
	i.logger.Debug("enqueued track", "videoID", result.VideoID, "position", position)

	if position == core.InsertAfterCurrent {
		if err := i.wait(ctx); err != nil {
			return err
		}
		if err := b.Advance(ctx); err != nil {
			return fmt.Errorf("advance to %s: %w", result.VideoID, err)
		}
	}

	if i.settings.HistoryLimit().Enabled() {
		entry := core.NewHistoryEntry(result, i.now())
		if err := i.history.Save(ctx, entry); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
	}

	i.onInserted(result)
	return nil
}

// InsertAsync runs Insert on the worker pool. Errors are logged.
func (i *Inserter) InsertAsync(result core.SearchResult, position core.InsertPosition) {
	i.wg.Add(1)
	err := i.pool.Submit(func() {
		defer i.wg.Done()
		if err := i.Insert(i.ctx, result, position); err != nil {
			i.logger.Error("error inserting track", "videoID", result.VideoID, "err", err)
		}
	})
	if err != nil {
		i.wg.Done()
		i.logger.Error("error submitting insert", "videoID", result.VideoID, "err", err)
	}
}

func (i *Inserter) wait(ctx context.Context) error {
	if i.advanceDelay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(i.advanceDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait blocks until every async insert has finished.
func (i *Inserter) Wait() {
	i.wg.Wait()
}

// Release cancels pending async inserts, waits for them and releases the pool.
// The inserter should not be used after calling Release.
func (i *Inserter) Release() {
	i.cancel()
	i.wg.Wait()
	if i.pool != nil {
		i.pool.Release()
	}
}
