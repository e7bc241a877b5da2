package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-ingest-service/internal/models"
	"github.com/kjstillabower/weather-ingest-service/internal/observability"
)

// Publisher emits written weather records to a Kafka topic, keyed by city.
// Publishing is fire-and-forget: a failed publish is logged and counted but
// never affects the ingestion outcome.
type Publisher struct {
	topic  string
	client *kgo.Client
	logger *zap.Logger
}

// NewPublisher connects to the comma-separated broker list. The caller owns
// Close.
func NewPublisher(brokers, topic string, logger *zap.Logger) (*Publisher, error) {
	var seeds []string
	for _, b := range strings.Split(brokers, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			seeds = append(seeds, b)
		}
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("events: at least one broker is required")
	}

	client, err := kgo.NewClient(kgo.SeedBrokers(seeds...))
	if err != nil {
		return nil, fmt.Errorf("events: create kafka client: %w", err)
	}

	return &Publisher{topic: topic, client: client, logger: logger}, nil
}

// PublishRecord produces the record asynchronously, keyed by city so each
// city's events land on one partition.
func (p *Publisher) PublishRecord(ctx context.Context, record models.WeatherRecord) {
	value, err := json.Marshal(record)
	if err != nil {
		observability.EventPublishTotal.WithLabelValues("error").Inc()
		p.logger.Error("marshal record for publish", zap.String("city", record.City), zap.Error(err))
		return
	}

	msg := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(record.City),
		Value: value,
	}
	p.client.Produce(ctx, msg, func(_ *kgo.Record, err error) {
		if err != nil {
			observability.EventPublishTotal.WithLabelValues("error").Inc()
			p.logger.Error("publish record", zap.String("city", record.City), zap.Error(err))
			return
		}
		observability.EventPublishTotal.WithLabelValues("success").Inc()
	})
}

// Close flushes outstanding produces and closes the client. Call during
// shutdown.
func (p *Publisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka flush", zap.Error(err))
	}
	p.client.Close()
}
