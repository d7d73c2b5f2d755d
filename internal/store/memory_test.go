package store

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/danish-weather/internal/weather"
)

var copenhagen = weather.Coordinate{Latitude: 55.6761, Longitude: 12.5683}

func snapshotAt(coord weather.Coordinate, at time.Time) Snapshot {
	msg := "HTTP 500: Internal Server Error"
	return Snapshot{
		ID:         uuid.New(),
		Coordinate: coord,
		FetchedAt:  at,
		Result: weather.AggregatedResult{
			YR:     &weather.Observation{Timestamp: at.Format(time.RFC3339)},
			Errors: weather.ProviderErrors{DMI: &msg},
		},
	}
}

func TestMemoryStore_GetLatestEmpty(t *testing.T) {
	s := NewMemoryStore(time.Hour)

	_, err := s.GetLatest(copenhagen)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	now := time.Now()

	first := snapshotAt(copenhagen, now.Add(-time.Minute))
	second := snapshotAt(copenhagen, now)
	s.SaveSnapshot(first)
	s.SaveSnapshot(second)

	got, err := s.GetLatest(copenhagen)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = s.GetLatest(weather.Coordinate{Latitude: 59.9139, Longitude: 10.7522})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(30 * time.Minute)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.SaveSnapshot(snapshotAt(copenhagen, base.Add(-10*time.Minute)))
	_, err := s.GetLatest(copenhagen)
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(time.Hour) }
	_, err = s.GetLatest(copenhagen)
	assert.ErrorIs(t, err, ErrNotFound)

	s.mu.RLock()
	assert.Empty(t, s.data)
	s.mu.RUnlock()
}

func TestMemoryStore_NoExpiry(t *testing.T) {
	s := NewMemoryStore(0)
	s.SaveSnapshot(snapshotAt(copenhagen, time.Now().Add(-365*24*time.Hour)))

	_, err := s.GetLatest(copenhagen)
	assert.NoError(t, err)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SaveSnapshot(snapshotAt(copenhagen, time.Now()))
		}()
		go func() {
			defer wg.Done()
			_, _ = s.GetLatest(copenhagen)
		}()
	}
	wg.Wait()

	_, err := s.GetLatest(copenhagen)
	assert.NoError(t, err)
}
