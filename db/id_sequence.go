package db

import (
	"context"
	"fmt"

	"gopkg.in/redis.v5"

	"bookshelf/models"
)

const DefaultIdSequenceKey = "books:id"

// IdSequence hands out book ids for stores that do not generate them.
type IdSequence interface {
	Next(ctx context.Context) (models.Id, error)
}

// RedisIdSequence is an IdSequence backed by a redis counter. INCR never hands out a value twice,
// so ids are not reused after deletion.
type RedisIdSequence struct {
	client *redis.Client
	key    string
}

func NewRedisIdSequence(client *redis.Client, key string) (*RedisIdSequence, error) {
	if client == nil {
		return nil, ErrNilDatabaseConnection
	}

	if key == "" {
		key = DefaultIdSequenceKey
	}

	return &RedisIdSequence{client: client, key: key}, nil
}

func (sequence *RedisIdSequence) Next(_ context.Context) (models.Id, error) {
	next, err := sequence.client.Incr(sequence.key).Result()
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}

	return models.Id(next), nil
}
