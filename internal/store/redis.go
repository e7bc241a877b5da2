package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kjstillabower/weather-ingest-service/internal/models"
)

// RedisStore implements Store on Redis. Each record is a JSON document at
// {container}:{city}:{id}; record ids are also added to the per-city index set
// at {container}:{city}, so a city's documents can be enumerated without SCAN.
// City is the partition component of every key.
type RedisStore struct {
	client    *redis.Client
	container string
}

// NewRedisStore connects to redisURL (redis:// form) and verifies the
// connection with a ping. container namespaces all keys, typically
// "{database}:{container}" from config.
func NewRedisStore(ctx context.Context, redisURL, container string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("store: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}

	return &RedisStore{client: client, container: container}, nil
}

func (s *RedisStore) docKey(city, id string) string {
	return s.container + ":" + city + ":" + id
}

func (s *RedisStore) indexKey(city string) string {
	return s.container + ":" + city
}

// CreateItem writes the record document and updates the city index atomically.
func (s *RedisStore) CreateItem(ctx context.Context, record models.WeatherRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("store: marshal record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(record.City, record.ID), raw, 0)
		pipe.SAdd(ctx, s.indexKey(record.City), record.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: write %s: %w", record.City, err)
	}
	return nil
}

// Ping checks if Redis is reachable. Used for health checks.
func (s *RedisStore) Ping() error {
	return s.client.Ping(context.Background()).Err()
}

// Close closes the Redis client connections. Call during shutdown.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
