package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
	"github.com/redis/go-redis/v9"
)

// RedisSink mirrors events onto per-service Redis streams named
// {environment}_{service}, the operational counterpart of the analytic
// table. Stream entries carry the canonical event JSON plus the fields
// operators filter on.
type RedisSink struct {
	client      *redis.Client
	environment string
	maxLen      int64
}

func NewRedisSink(addr, password string, db int, environment string, maxLen int64) (*RedisSink, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSink{client: rdb, environment: environment, maxLen: maxLen}, nil
}

// NewRedisSinkWithClient wires an existing client, used by tests.
func NewRedisSinkWithClient(client *redis.Client, environment string, maxLen int64) *RedisSink {
	return &RedisSink{client: client, environment: environment, maxLen: maxLen}
}

func (s *RedisSink) Write(ctx context.Context, evt *v1.LogEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal mirrored event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.StreamKey(evt.Service),
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"severity":   evt.LogSeverity,
			"app":        evt.Service + "_logs",
			"event_name": evt.EventName,
			"log_id":     evt.LogID,
			"payload":    string(payload),
		},
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to mirror event to stream %s: %w", args.Stream, err)
	}
	return nil
}

func (s *RedisSink) StreamKey(service string) string {
	return s.environment + "_" + service
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
