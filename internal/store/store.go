package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kjstillabower/weather-ingest-service/internal/models"
)

// Store persists weather records as documents partitioned by city.
// CreateItem is create-only: ids are freshly generated per write, so no
// uniqueness conflicts are expected and documents are never updated or deleted.
type Store interface {
	CreateItem(ctx context.Context, record models.WeatherRecord) error
}

// MemoryStore implements Store with an in-process map of city to records.
// Thread-safe; the default backend for local runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]models.WeatherRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]models.WeatherRecord),
	}
}

// CreateItem appends the record under its city partition.
func (s *MemoryStore) CreateItem(ctx context.Context, record models.WeatherRecord) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if record.ID == "" {
		return fmt.Errorf("store: record id is required")
	}
	if record.City == "" {
		return fmt.Errorf("store: record city is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[record.City] = append(s.data[record.City], record)
	return nil
}

// Records returns a copy of the records stored under city.
func (s *MemoryStore) Records(city string) []models.WeatherRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WeatherRecord, len(s.data[city]))
	copy(out, s.data[city])
	return out
}

// Count returns the total number of stored records across all cities.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, records := range s.data {
		n += len(records)
	}
	return n
}
