package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-ingest-service/internal/client"
	"github.com/kjstillabower/weather-ingest-service/internal/models"
	"github.com/kjstillabower/weather-ingest-service/internal/observability"
	"github.com/kjstillabower/weather-ingest-service/internal/store"
)

// RecordPublisher is implemented by the events package to emit written records.
// Declared here to avoid a dependency on the publisher's transport.
type RecordPublisher interface {
	PublishRecord(ctx context.Context, record models.WeatherRecord)
}

// Result is the per-city outcome of one unit of work. Collected purely for
// observability; callers of RunBatch only ever act on aggregate completion.
type Result struct {
	City     string
	RecordID string
	Rainy    bool
	Err      error
}

// Ingestor runs the per-city fetch/transform/store pipeline over a fixed
// roster. The client, store and publisher are shared, thread-safe
// collaborators constructed once per process.
type Ingestor struct {
	client    client.WeatherClient
	store     store.Store
	publisher RecordPublisher // nil when event publishing is disabled
	roster    []string
	logger    *zap.Logger
}

// NewIngestor returns an Ingestor over the given roster. publisher may be nil.
func NewIngestor(weatherClient client.WeatherClient, st store.Store, publisher RecordPublisher, roster []string, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		client:    weatherClient,
		store:     st,
		publisher: publisher,
		roster:    roster,
		logger:    logger,
	}
}

// Roster returns the configured city list.
func (i *Ingestor) Roster() []string {
	return i.roster
}

// RunBatch launches one unit of work per roster city and blocks until every
// unit has terminated. It never fails: per-city errors are absorbed inside
// ProcessCity and surface only in the returned Results, whose order is
// unspecified.
func (i *Ingestor) RunBatch(ctx context.Context) []Result {
	start := time.Now()
	observability.BatchRunsTotal.Inc()
	i.logger.Info("batch starting", zap.Int("cities", len(i.roster)))

	var wg sync.WaitGroup
	resultCh := make(chan Result, len(i.roster))
	for _, city := range i.roster {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()
			resultCh <- i.ProcessCity(ctx, city)
		}(city)
	}
	wg.Wait()
	close(resultCh)

	results := make([]Result, 0, len(i.roster))
	failures := 0
	for res := range resultCh {
		if res.Err != nil {
			failures++
		}
		results = append(results, res)
	}

	duration := time.Since(start).Seconds()
	observability.BatchDurationSeconds.Observe(duration)
	i.logger.Info("batch complete",
		zap.Int("cities", len(i.roster)),
		zap.Int("failures", failures),
		zap.Float64("duration_seconds", duration))
	return results
}

// ProcessCity runs one city's unit of work: fetch current conditions, assign a
// fresh id and the city name, write the document, classify for rain, publish.
// Every failure path is caught here, logged with the city, and recorded in the
// Result; nothing propagates and sibling cities are unaffected.
func (i *Ingestor) ProcessCity(ctx context.Context, city string) Result {
	record, err := i.client.GetCurrentWeather(ctx, city)
	if err != nil {
		observability.CityIngestTotal.WithLabelValues("failure", string(client.CategorizeError(err))).Inc()
		i.logger.Error("fetch failed", zap.String("city", city), zap.Error(err))
		return Result{City: city, Err: err}
	}

	record.ID = uuid.New().String()
	record.City = city

	writeStart := time.Now()
	err = i.store.CreateItem(ctx, record)
	writeDuration := time.Since(writeStart).Seconds()
	if err != nil {
		observability.StoreWritesTotal.WithLabelValues("error").Inc()
		observability.StoreWriteDurationSeconds.WithLabelValues("error").Observe(writeDuration)
		observability.CityIngestTotal.WithLabelValues("failure", string(client.ErrorCategoryStore)).Inc()
		i.logger.Error("store write failed", zap.String("city", city), zap.Error(err))
		return Result{City: city, Err: err}
	}
	observability.StoreWritesTotal.WithLabelValues("success").Inc()
	observability.StoreWriteDurationSeconds.WithLabelValues("success").Observe(writeDuration)

	rainy := models.IsRainy(record.Current.Condition.Code)
	if rainy {
		observability.RainyRecordsTotal.Inc()
		i.logger.Info("rain detected",
			zap.String("city", city),
			zap.Int("condition_code", record.Current.Condition.Code),
			zap.String("condition", record.Current.Condition.Text))
	}

	observability.CityIngestTotal.WithLabelValues("success", "").Inc()
	i.logger.Info("record written",
		zap.String("city", city),
		zap.String("record_id", record.ID),
		zap.Bool("rainy", rainy),
		zap.Float64("temp_c", record.Current.TempC))

	if i.publisher != nil {
		i.publisher.PublishRecord(ctx, record)
	}

	return Result{City: city, RecordID: record.ID, Rainy: rainy}
}
