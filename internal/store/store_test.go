package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/kjstillabower/weather-ingest-service/internal/models"
)

func TestMemoryStore_CreateItem(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	record := models.WeatherRecord{ID: "id-1", City: "London"}
	record.Current.TempC = 12.5
	if err := s.CreateItem(ctx, record); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}

	got := s.Records("London")
	if len(got) != 1 {
		t.Fatalf("Records(London) len = %d, want 1", len(got))
	}
	if got[0].ID != "id-1" {
		t.Errorf("ID = %q, want %q", got[0].ID, "id-1")
	}
	if got[0].Current.TempC != 12.5 {
		t.Errorf("TempC = %v, want 12.5", got[0].Current.TempC)
	}
}

func TestMemoryStore_CreateItem_RequiresIDAndCity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.CreateItem(ctx, models.WeatherRecord{City: "London"}); err == nil {
		t.Error("CreateItem() without id: expected error, got nil")
	}
	if err := s.CreateItem(ctx, models.WeatherRecord{ID: "id-1"}); err == nil {
		t.Error("CreateItem() without city: expected error, got nil")
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestMemoryStore_PartitionsByCity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := models.WeatherRecord{ID: fmt.Sprintf("l-%d", i), City: "London"}
		if err := s.CreateItem(ctx, rec); err != nil {
			t.Fatalf("CreateItem() error = %v", err)
		}
	}
	if err := s.CreateItem(ctx, models.WeatherRecord{ID: "p-0", City: "Paris"}); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}

	if got := len(s.Records("London")); got != 3 {
		t.Errorf("Records(London) len = %d, want 3", got)
	}
	if got := len(s.Records("Paris")); got != 1 {
		t.Errorf("Records(Paris) len = %d, want 1", got)
	}
	if got := s.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
}

func TestMemoryStore_ConcurrentWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := models.WeatherRecord{ID: fmt.Sprintf("id-%d", i), City: "Tokyo"}
			if err := s.CreateItem(ctx, rec); err != nil {
				t.Errorf("CreateItem() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(s.Records("Tokyo")); got != writers {
		t.Errorf("Records(Tokyo) len = %d, want %d", got, writers)
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.CreateItem(ctx, models.WeatherRecord{ID: "id-1", City: "London"})
	if err == nil {
		t.Error("CreateItem() with canceled context: expected error, got nil")
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}
