// Package events publishes activity log entries to a Redis stream so that
// other systems can follow the audit trail without polling MongoDB.
package events

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/harentsoaR/hospital-api/internal/models"
)

// Publisher receives every activity entry after it has been stored.
type Publisher interface {
	Publish(ctx context.Context, subject models.ActivitySubject, entry *models.ActivityLog) error
}

type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) Publish(ctx context.Context, subject models.ActivitySubject, entry *models.ActivityLog) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: StreamValues(subject, entry),
	}).Err()
}

func (p *StreamPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *StreamPublisher) Close() error {
	return p.client.Close()
}

// StreamValues flattens an entry into the string fields of a stream message.
func StreamValues(subject models.ActivitySubject, entry *models.ActivityLog) map[string]interface{} {
	return map[string]interface{}{
		"event_id":   uuid.NewString(),
		"subject":    string(subject),
		"subject_id": entry.SubjectID.Hex(),
		"entry_id":   entry.ID.Hex(),
		"activity":   entry.Activity,
		"date":       entry.Date.UTC().Format(time.RFC3339Nano),
	}
}
