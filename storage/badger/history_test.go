package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quickplay/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestHistory(t *testing.T, opts ...HistoryOption) *HistoryRepository {
	t.Helper()
	repo, backend, err := NewMemoryHistory(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func entryAt(videoID string, ts time.Time) core.HistoryEntry {
	return core.HistoryEntry{
		VideoID:            videoID,
		Title:              "Title " + videoID,
		ThumbnailURL:       "https://example.com/" + videoID + ".jpg",
		AccessibilityLabel: "Song • Artist " + videoID,
		Timestamp:          ts,
	}
}

func videoIDs(entries []core.HistoryEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.VideoID
	}
	return ids
}

func TestHistory_LoadEmpty(t *testing.T) {
	repo := newTestHistory(t)

	entries, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestHistory_LoadNewestFirst(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	require.NoError(t, repo.Save(ctx, entryAt("a", base)))
	require.NoError(t, repo.Save(ctx, entryAt("c", base.Add(2*time.Minute))))
	require.NoError(t, repo.Save(ctx, entryAt("b", base.Add(time.Minute))))

	entries, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, videoIDs(entries))
	assert.Equal(t, "Title c", entries[0].Title)
	assert.Equal(t, "Song • Artist c", entries[0].AccessibilityLabel)
}

func TestHistory_DedupByVideoID(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	t.Run("newer save replaces older", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, entryAt("dup", base)))
		require.NoError(t, repo.Save(ctx, entryAt("other", base.Add(time.Minute))))

		newer := entryAt("dup", base.Add(2*time.Minute))
		newer.Title = "Renamed"
		require.NoError(t, repo.Save(ctx, newer))

		entries, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"dup", "other"}, videoIDs(entries))
		assert.Equal(t, "Renamed", entries[0].Title)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("older save is ignored", func(t *testing.T) {
		stale := entryAt("dup", base.Add(-time.Minute))
		stale.Title = "Stale"
		require.NoError(t, repo.Save(ctx, stale))

		entries, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"dup", "other"}, videoIDs(entries))
		assert.Equal(t, "Renamed", entries[0].Title)
	})
}

func TestHistory_SaveTrimsToLimit(t *testing.T) {
	repo := newTestHistory(t, WithMaxEntries(func() int { return 5 }))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 1; i <= 7; i++ {
		require.NoError(t, repo.Save(ctx, entryAt(fmt.Sprintf("v%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	entries, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v7", "v6", "v5", "v4", "v3"}, videoIDs(entries))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

// saveConcurrently saves every entry from its own goroutine and returns the
// errors reported by Save.
func saveConcurrently(repo *HistoryRepository, entries []core.HistoryEntry) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := make(chan struct{})
	for _, e := range entries {
		wg.Add(1)
		go func(e core.HistoryEntry) {
			defer wg.Done()
			<-start
			if err := repo.Save(context.Background(), e); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(e)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestHistory_ConcurrentSavesStayBounded(t *testing.T) {
	t.Run("pairs at limit five", func(t *testing.T) {
		repo := newTestHistory(t, WithMaxEntries(func() int { return 5 }))
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)

		for round := 0; round < 200; round++ {
			pair := []core.HistoryEntry{
				entryAt(fmt.Sprintf("a%d", round), base.Add(time.Duration(2*round)*time.Millisecond)),
				entryAt(fmt.Sprintf("b%d", round), base.Add(time.Duration(2*round+1)*time.Millisecond)),
			}
			require.Empty(t, saveConcurrently(repo, pair), "round %d", round)

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			require.LessOrEqual(t, count, 5, "round %d", round)
		}

		entries, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b199", "a199", "b198", "a198", "b197"}, videoIDs(entries))
	})

	t.Run("many at limit one", func(t *testing.T) {
		repo := newTestHistory(t, WithMaxEntries(func() int { return 1 }))
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)

		batch := make([]core.HistoryEntry, 40)
		for i := range batch {
			batch[i] = entryAt(fmt.Sprintf("v%d", i), base.Add(time.Duration(i)*time.Second))
		}
		assert.Empty(t, saveConcurrently(repo, batch))

		entries, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"v39"}, videoIDs(entries))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("same video", func(t *testing.T) {
		repo := newTestHistory(t, WithMaxEntries(func() int { return 5 }))
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)

		batch := make([]core.HistoryEntry, 20)
		for i := range batch {
			batch[i] = entryAt("dup", base.Add(time.Duration(i)*time.Second))
			batch[i].Title = fmt.Sprintf("take %d", i)
		}
		assert.Empty(t, saveConcurrently(repo, batch))

		entries, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "take 19", entries[0].Title)
	})
}

func TestHistory_Validation(t *testing.T) {
	repo := newTestHistory(t)

	err := repo.Save(context.Background(), core.HistoryEntry{Title: "no id", Timestamp: time.Now()})
	assert.ErrorIs(t, err, core.ErrEmptyVideoID)
}

func TestHistory_TrimAndClear(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 1; i <= 4; i++ {
		require.NoError(t, repo.Save(ctx, entryAt(fmt.Sprintf("v%d", i), base.Add(time.Duration(i)*time.Second))))
	}

	require.NoError(t, repo.Trim(ctx, 0))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count, "zero max trims nothing")

	require.NoError(t, repo.Trim(ctx, 2))
	entries, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v4", "v3"}, videoIDs(entries))

	require.NoError(t, repo.Clear(ctx))
	entries, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_SkipsUnreadableEntries(t *testing.T) {
	repo, backend, err := NewMemoryHistory()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	require.NoError(t, repo.Save(ctx, entryAt("good", base)))
	require.NoError(t, repo.Save(ctx, entryAt("bad", base.Add(time.Second))))

	// Corrupt the primary record for "bad"
	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeHistoryKey("bad"), []byte{0x7f}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	entries, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, videoIDs(entries))
}

func TestHistory_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	ts := time.Now().Add(-time.Minute)

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NoError(t, NewHistoryRepository(backend).Save(ctx, entryAt("keep", ts)))
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	entries, err := NewHistoryRepository(backend).Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep", entries[0].VideoID)
	assert.True(t, ts.Truncate(time.Microsecond).Equal(entries[0].Timestamp))
}

func TestHistory_PropertyUniqueBoundedNewestFirst(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 6).Draw(rt, "limit")
		saves := rapid.SliceOfN(rapid.IntRange(0, 9), 1, 25).Draw(rt, "saves")

		repo, backend, err := NewMemoryHistory(WithMaxEntries(func() int { return limit }))
		if err != nil {
			rt.Fatalf("open: %v", err)
		}
		defer backend.Close()

		ctx := context.Background()
		base := time.Now().Add(-time.Hour)
		for i, v := range saves {
			if err := repo.Save(ctx, entryAt(fmt.Sprintf("v%d", v), base.Add(time.Duration(i)*time.Second))); err != nil {
				rt.Fatalf("save: %v", err)
			}
		}

		entries, err := repo.Load(ctx)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}

		// Expected: distinct ids by last save position, newest first, capped at limit
		lastSeen := map[int]int{}
		for i, v := range saves {
			lastSeen[v] = i
		}
		var want []string
		for i := len(saves) - 1; i >= 0 && len(want) < limit; i-- {
			if lastSeen[saves[i]] == i {
				want = append(want, fmt.Sprintf("v%d", saves[i]))
			}
		}

		got := videoIDs(entries)
		if len(got) != len(want) {
			rt.Fatalf("got %v, want %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				rt.Fatalf("got %v, want %v", got, want)
			}
		}
	})
}
