package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/quickplay/core"
)

// Key prefixes for different data types
const (
	historyPrefix     = "hist"
	historyTimePrefix = "histt"
)

// makeHistoryKey generates the primary key for a history entry.
// Format: prefix:videoID
func makeHistoryKey(videoID string) []byte {
	prefix := historyPrefix + ":"
	buf := make([]byte, len(prefix)+len(videoID))
	offset := copy(buf, prefix)
	copy(buf[offset:], videoID)
	return buf
}

// makeHistoryTimeKey generates a composite key for the recency index.
// Format: prefix:timestamp:id, where id is derived from the video ID.
func makeHistoryTimeKey(timestamp time.Time, videoID string) []byte {
	prefix := historyTimePrefix + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(videoID)))
	return buf
}

// makeHistoryTimeSeekEnd returns a key that sorts after every recency index key.
// Used as the starting point for reverse iteration.
func makeHistoryTimeSeekEnd() []byte {
	prefix := historyTimePrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	for i := offset; i < len(buf); i++ {
		buf[i] = 0xff
	}
	return buf
}
