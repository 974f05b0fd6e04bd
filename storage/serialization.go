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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/quickplay/core"
)

// historyEntryVersion is written first so the layout can evolve.
const historyEntryVersion int64 = 1

// MarshalHistoryEntry serializes a HistoryEntry to bytes.
// Layout: version, VideoID, Title, ThumbnailURL, AccessibilityLabel, Timestamp (unix micro).
func MarshalHistoryEntry(entry *core.HistoryEntry) []byte {
	ts := entry.Timestamp.UnixMicro()
	size := varint.Int64.Size(historyEntryVersion) +
		ord.String.Size(entry.VideoID) +
		ord.String.Size(entry.Title) +
		ord.String.Size(entry.ThumbnailURL) +
		ord.String.Size(entry.AccessibilityLabel) +
		varint.Int64.Size(ts)

	buf := make([]byte, size)
	n := varint.Int64.Marshal(historyEntryVersion, buf)
	n += ord.String.Marshal(entry.VideoID, buf[n:])
	n += ord.String.Marshal(entry.Title, buf[n:])
	n += ord.String.Marshal(entry.ThumbnailURL, buf[n:])
	n += ord.String.Marshal(entry.AccessibilityLabel, buf[n:])
	varint.Int64.Marshal(ts, buf[n:])
	return buf
}

// UnmarshalHistoryEntry deserializes a HistoryEntry from bytes.
func UnmarshalHistoryEntry(data []byte) (*core.HistoryEntry, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}

	version, n, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: version: %w", ErrSerializationFailed, err)
	}
	if version != historyEntryVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSerializationFailed, version)
	}
	off := n

	var entry core.HistoryEntry
	fields := []*string{&entry.VideoID, &entry.Title, &entry.ThumbnailURL, &entry.AccessibilityLabel}
	for _, field := range fields {
		if off >= len(data) {
			return nil, ErrTruncatedData
		}
		*field, n, err = ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		off += n
	}

	if off >= len(data) {
		return nil, ErrTruncatedData
	}
	ts, _, err := varint.Int64.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %w", ErrSerializationFailed, err)
	}
	entry.Timestamp = time.UnixMicro(ts).UTC()

	return &entry, nil
}
