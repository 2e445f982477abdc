package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"compliancehub/internal/compliance"
)

type stubDirectory struct {
	records map[string]StatusRecord
	calls   int
}

func (d *stubDirectory) FindByTrackingID(_ context.Context, trackingID string) (*StatusRecord, error) {
	d.calls++
	record, ok := d.records[trackingID]
	if !ok {
		return nil, &compliance.NotFoundError{Resource: "report", Key: trackingID}
	}
	return &record, nil
}

func newStubDirectory() *stubDirectory {
	submitted := time.Date(2023, 10, 2, 9, 30, 0, 0, time.UTC)
	return &stubDirectory{records: map[string]StatusRecord{
		"WB-2023-001": {
			TrackingID:    "WB-2023-001",
			Title:         "Potential Policy Violation",
			Status:        "pending",
			DateSubmitted: submitted,
			LastUpdated:   submitted,
		},
		"WB-2023-002": {
			TrackingID:    "WB-2023-002",
			Title:         "Workplace Safety Concern",
			Status:        "investigating",
			DateSubmitted: submitted.AddDate(0, 0, 3),
			LastUpdated:   submitted.AddDate(0, 0, 10),
		},
		"WB-2023-003": {
			TrackingID:    "WB-2023-003",
			Title:         "Ethical Misconduct Report",
			Status:        "resolved",
			DateSubmitted: submitted.AddDate(0, 0, 5),
			LastUpdated:   submitted.AddDate(0, 1, 0),
		},
	}}
}

type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

func (c *memoryCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Del(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func newTestService(dir Directory) *Service {
	return NewService(dir, nil, time.Minute, zap.NewNop())
}

func TestLookup(t *testing.T) {
	t.Run("known id resolves to its record", func(t *testing.T) {
		svc := newTestService(newStubDirectory())
		record, err := svc.Lookup(context.Background(), "WB-2023-002")
		require.NoError(t, err)
		assert.Equal(t, "Workplace Safety Concern", record.Title)
		assert.Equal(t, "investigating", record.Status)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		svc := newTestService(newStubDirectory())
		record, err := svc.Lookup(context.Background(), "  WB-2023-001  ")
		require.NoError(t, err)
		assert.Equal(t, "WB-2023-001", record.TrackingID)
	})

	t.Run("empty and whitespace-only ids are rejected before any lookup", func(t *testing.T) {
		dir := newStubDirectory()
		svc := newTestService(dir)
		for _, input := range []string{"", "   ", "\t\n"} {
			_, err := svc.Lookup(context.Background(), input)
			var validationErr *compliance.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "tracking_id", validationErr.Field)
		}
		assert.Zero(t, dir.calls)
	})

	t.Run("unknown id is a not found error", func(t *testing.T) {
		svc := newTestService(newStubDirectory())
		_, err := svc.Lookup(context.Background(), "WB-9999-ZZZZ")
		var notFoundErr *compliance.NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "WB-9999-ZZZZ", notFoundErr.Key)
	})

	t.Run("matching is case sensitive", func(t *testing.T) {
		svc := newTestService(newStubDirectory())
		_, err := svc.Lookup(context.Background(), "wb-2023-001")
		var notFoundErr *compliance.NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("repeated lookups re-query without a cache", func(t *testing.T) {
		dir := newStubDirectory()
		svc := newTestService(dir)
		for i := 0; i < 3; i++ {
			_, err := svc.Lookup(context.Background(), "WB-2023-003")
			require.NoError(t, err)
		}
		assert.Equal(t, 3, dir.calls)
	})
}

func TestLookupCache(t *testing.T) {
	t.Run("repeated lookups are served from the cache", func(t *testing.T) {
		dir := newStubDirectory()
		svc := NewService(dir, newMemoryCache(), time.Minute, zap.NewNop())

		for i := 0; i < 3; i++ {
			record, err := svc.Lookup(context.Background(), "WB-2023-001")
			require.NoError(t, err)
			assert.Equal(t, "WB-2023-001", record.TrackingID)
		}
		assert.Equal(t, 1, dir.calls)
	})

	t.Run("invalidation makes the next lookup see the updated record", func(t *testing.T) {
		dir := newStubDirectory()
		svc := NewService(dir, newMemoryCache(), time.Minute, zap.NewNop())

		record, err := svc.Lookup(context.Background(), "WB-2023-001")
		require.NoError(t, err)
		require.Equal(t, "pending", record.Status)

		// the report moves on while a cached copy is still live
		updated := dir.records["WB-2023-001"]
		updated.Status = "investigating"
		updated.Message = "An investigator has been assigned to your report."
		dir.records["WB-2023-001"] = updated

		svc.Invalidate(context.Background(), "WB-2023-001")

		record, err = svc.Lookup(context.Background(), "WB-2023-001")
		require.NoError(t, err)
		assert.Equal(t, "investigating", record.Status)
		assert.Equal(t, "An investigator has been assigned to your report.", record.Message)
		assert.Equal(t, 2, dir.calls)
	})

	t.Run("without invalidation the cached copy is returned until it expires", func(t *testing.T) {
		dir := newStubDirectory()
		svc := NewService(dir, newMemoryCache(), time.Minute, zap.NewNop())

		_, err := svc.Lookup(context.Background(), "WB-2023-002")
		require.NoError(t, err)

		updated := dir.records["WB-2023-002"]
		updated.Status = "resolved"
		dir.records["WB-2023-002"] = updated

		record, err := svc.Lookup(context.Background(), "WB-2023-002")
		require.NoError(t, err)
		assert.Equal(t, "investigating", record.Status)
		assert.Equal(t, 1, dir.calls)
	})

	t.Run("corrupt cache entries fall through to the directory", func(t *testing.T) {
		dir := newStubDirectory()
		cache := newMemoryCache()
		svc := NewService(dir, cache, time.Minute, zap.NewNop())

		cache.entries["tracking:WB-2023-003"] = []byte("{not json")
		record, err := svc.Lookup(context.Background(), "WB-2023-003")
		require.NoError(t, err)
		assert.Equal(t, "WB-2023-003", record.TrackingID)
		assert.Equal(t, 1, dir.calls)
	})

	t.Run("invalidating an uncached id is harmless", func(t *testing.T) {
		svc := NewService(newStubDirectory(), newMemoryCache(), time.Minute, zap.NewNop())
		svc.Invalidate(context.Background(), "WB-9999-ZZZZ")
		svc.Invalidate(context.Background(), "  ")
	})
}
