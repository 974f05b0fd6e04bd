package badger

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quickplay/core"
	"github.com/poiesic/quickplay/storage"
)

// HistoryRepository implements storage.HistoryRepository for BadgerDB.
//
// Each entry is stored under its VideoID with a secondary recency index
// keyed by timestamp, so Load can walk the index backwards and Trim can walk
// it forwards.
type HistoryRepository struct {
	backend    *Backend
	maxEntries func() int
	logger     *slog.Logger

	writeMu sync.Mutex
}

// maxConflictRetries bounds how often a conflicted write transaction is rerun.
const maxConflictRetries = 5

var _ storage.HistoryRepository = (*HistoryRepository)(nil)

// HistoryOption configures a HistoryRepository.
type HistoryOption func(*HistoryRepository)

// WithMaxEntries sets the function polled on every Save for the maximum
// number of entries to keep. A nil function or a result <= 0 disables trimming.
func WithMaxEntries(fn func() int) HistoryOption {
	return func(r *HistoryRepository) {
		r.maxEntries = fn
	}
}

// WithHistoryLogger sets a custom logger.
// Default is slog.Default().
func WithHistoryLogger(logger *slog.Logger) HistoryOption {
	return func(r *HistoryRepository) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(backend *Backend, opts ...HistoryOption) *HistoryRepository {
	r := &HistoryRepository{
		backend: backend,
		logger:  slog.Default().With("component", "history"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close is a no-op; the backend is owned by the caller.
func (r *HistoryRepository) Close() error {
	return nil
}

// Load returns all history entries, newest first.
// Entries that cannot be decoded are skipped with a warning.
func (r *HistoryRepository) Load(ctx context.Context) ([]core.HistoryEntry, error) {
	results := []core.HistoryEntry{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(historyTimePrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeHistoryTimeSeekEnd()); iter.ValidForPrefix(prefix); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			videoID, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			entry, err := r.readEntry(tx, string(videoID))
			if err != nil {
				r.logger.Warn("skipping unreadable history entry", "videoID", string(videoID), "err", err)
				continue
			}
			if entry == nil {
				r.logger.Debug("recency index points at missing entry", "videoID", string(videoID))
				continue
			}
			results = append(results, *entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Save upserts an entry by VideoID and trims the history to the configured maximum.
// An existing entry with a more recent timestamp is kept. The upsert and the
// trim commit in one transaction.
func (r *HistoryRepository) Save(ctx context.Context, entry core.HistoryEntry) error {
	if err := core.ValidateHistoryEntry(&entry); err != nil {
		return err
	}
	entry.Timestamp = entry.Timestamp.UTC()

	max := 0
	if r.maxEntries != nil {
		max = r.maxEntries()
	}

	return r.update(ctx, func(tx *badger.Txn) error {
		existing, err := r.readEntry(tx, entry.VideoID)
		if err != nil {
			// Overwrite corrupt entries rather than fail the save
			r.logger.Warn("replacing unreadable history entry", "videoID", entry.VideoID, "err", err)
			existing = nil
		}

		switch {
		case existing != nil && existing.Timestamp.After(entry.Timestamp):
			r.logger.Debug("keeping newer history entry", "videoID", entry.VideoID)
		default:
			if existing != nil {
				if err := tx.Delete(makeHistoryTimeKey(existing.Timestamp, existing.VideoID)); err != nil {
					return err
				}
			}
			if err := tx.Set(makeHistoryKey(entry.VideoID), storage.MarshalHistoryEntry(&entry)); err != nil {
				return err
			}
			if err := tx.Set(makeHistoryTimeKey(entry.Timestamp, entry.VideoID), []byte(entry.VideoID)); err != nil {
				return err
			}
		}

		if err := r.trimTx(tx, max); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Trim evicts the oldest entries until at most max remain.
func (r *HistoryRepository) Trim(ctx context.Context, max int) error {
	if max <= 0 {
		return nil
	}

	return r.update(ctx, func(tx *badger.Txn) error {
		if err := r.trimTx(tx, max); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// update runs fn in a write transaction. Writers in this process take turns,
// and a transaction that loses a conflict with another writer is rerun.
func (r *HistoryRepository) update(ctx context.Context, fn func(tx *badger.Txn) error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = r.backend.WithTx(fn, true)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		r.logger.Debug("retrying conflicted history write", "attempt", attempt+1)
	}
	return err
}

// trimTx deletes the oldest entries visible in tx, including its own
// pending writes, until at most max remain. A max <= 0 removes nothing.
func (r *HistoryRepository) trimTx(tx *badger.Txn, max int) error {
	if max <= 0 {
		return nil
	}

	prefix := []byte(historyTimePrefix + ":")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	// Oldest first
	var indexKeys, videoIDs [][]byte
	iter := tx.NewIterator(opts)
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		videoID, err := item.ValueCopy(nil)
		if err != nil {
			iter.Close()
			return err
		}
		indexKeys = append(indexKeys, item.KeyCopy(nil))
		videoIDs = append(videoIDs, videoID)
	}
	iter.Close()

	excess := len(indexKeys) - max
	if excess <= 0 {
		return nil
	}

	for i := 0; i < excess; i++ {
		if err := tx.Delete(indexKeys[i]); err != nil {
			return err
		}
		if err := tx.Delete(makeHistoryKey(string(videoIDs[i]))); err != nil {
			return err
		}
	}
	r.logger.Debug("trimmed history", "evicted", excess, "max", max)
	return nil
}

// Clear removes every history entry.
func (r *HistoryRepository) Clear(ctx context.Context) error {
	return r.update(ctx, func(tx *badger.Txn) error {
		var keys [][]byte
		for _, p := range []string{historyPrefix + ":", historyTimePrefix + ":"} {
			prefix := []byte(p)
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = prefix

			iter := tx.NewIterator(opts)
			for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			iter.Close()
		}

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		r.logger.Debug("cleared history", "keys", len(keys))
		return tx.Commit()
	})
}

// Count returns the number of stored entries.
func (r *HistoryRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(historyPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readEntry reads a history entry by video ID.
// Returns nil, nil if the entry doesn't exist.
func (r *HistoryRepository) readEntry(tx *badger.Txn, videoID string) (*core.HistoryEntry, error) {
	item, err := tx.Get(makeHistoryKey(videoID))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.HistoryEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalHistoryEntry(val)
		return unmarshalErr
	})
	return entry, err
}
