package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"screening-datagen/pkg"
)

const redisIndex = "sessions"

// RedisSink stores each record as JSON under session:<agent>:<run> and
// indexes it by creation time in a sorted set.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSink connects to addr and verifies the connection. A zero ttl
// keeps records forever.
func NewRedisSink(ctx context.Context, addr, password string, dbIndex int, ttl time.Duration) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, wrapError("redis", "ping", err)
	}
	return &RedisSink{client: client, ttl: ttl}, nil
}

func redisKey(rec *pkg.SessionRecord) string {
	return fmt.Sprintf("session:%s:%s", rec.AgentID, rec.RunID)
}

func (s *RedisSink) Save(ctx context.Context, rec *pkg.SessionRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", wrapError("redis", "encode", err)
	}
	key := redisKey(rec)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, s.ttl)
		pipe.ZAdd(ctx, redisIndex, redis.Z{Score: float64(rec.CreatedAt.Unix()), Member: key})
		return nil
	})
	if err != nil {
		return "", wrapError("redis", "save", err)
	}
	return "redis://" + key, nil
}

// Recent returns the keys of the n newest records.
func (s *RedisSink) Recent(ctx context.Context, n int64) ([]string, error) {
	keys, err := s.client.ZRevRange(ctx, redisIndex, 0, n-1).Result()
	return keys, wrapError("redis", "recent", err)
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
