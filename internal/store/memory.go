package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/danish-weather/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// Snapshot is the outcome of one refresh cycle.
type Snapshot struct {
	ID         uuid.UUID                `json:"id"`
	Coordinate weather.Coordinate       `json:"coordinate"`
	FetchedAt  time.Time                `json:"fetchedAt"`
	Result     weather.AggregatedResult `json:"result"`
}

// MemoryStore keeps the latest snapshot per coordinate. It is display state,
// not history: every save replaces the previous snapshot.
type MemoryStore struct {
	mu sync.RWMutex

	// key: coordinate key
	data map[string]Snapshot

	// maxAge hides snapshots older than this; 0 keeps them forever.
	maxAge time.Duration
	now    func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]Snapshot),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// SaveSnapshot stores snap as the latest one for its coordinate. The last
// write wins.
func (s *MemoryStore) SaveSnapshot(snap Snapshot) {
	key := snap.Coordinate.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = snap
}

// GetLatest returns the most recent snapshot for a coordinate, or ErrNotFound
// if there is none or it has expired.
func (s *MemoryStore) GetLatest(coord weather.Coordinate) (Snapshot, error) {
	key := coord.Key()

	s.mu.RLock()
	snap, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if s.maxAge > 0 && s.now().Sub(snap.FetchedAt) > s.maxAge {
		s.evict(key, snap.ID)
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// evict drops an expired snapshot unless a newer one replaced it meanwhile.
func (s *MemoryStore) evict(key string, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.data[key]; ok && cur.ID == id {
		delete(s.data, key)
	}
}
