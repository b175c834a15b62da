package accesslog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	servedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.Record(ctx, Entry{
		RequestID:  "req-1",
		RemoteAddr: "127.0.0.1:5000",
		Method:     "GET",
		Path:       "/index.html",
		Status:     200,
		Bytes:      1234,
		Duration:   1500 * time.Microsecond,
		ServedAt:   servedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = s.Record(ctx, Entry{
		RequestID:  "req-2",
		RemoteAddr: "127.0.0.1:5001",
		Method:     "GET",
		Path:       "/index.html",
		Range:      "bytes=100-200",
		Status:     206,
		Bytes:      101,
		ServedAt:   servedAt.Add(time.Second),
	})
	require.NoError(t, err)

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, "req-2", entries[0].RequestID)
	assert.Equal(t, "bytes=100-200", entries[0].Range)
	assert.Equal(t, 206, entries[0].Status)

	assert.Equal(t, "req-1", entries[1].RequestID)
	assert.Equal(t, int64(1234), entries[1].Bytes)
	assert.Equal(t, 1500*time.Microsecond, entries[1].Duration)
	assert.True(t, servedAt.Equal(entries[1].ServedAt))
}

func TestRecentLimit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, Entry{RequestID: "r", Method: "GET", Path: "/", Status: 404})
		require.NoError(t, err)
	}

	entries, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, int64(5), entries[0].ID)
}

func TestCountByStatus(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, status := range []int{200, 200, 206, 404, 200} {
		_, err := s.Record(ctx, Entry{RequestID: "r", Method: "GET", Path: "/", Status: status})
		require.NoError(t, err)
	}

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{200: 3, 206: 1, 404: 1}, counts)
}

func TestOpenFileDatabaseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Entry{RequestID: "r", Method: "GET", Path: "/", Status: 200})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Schema is idempotent and rows survive reopening.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
