package ledger

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisCountPrefix  = "violations/"
	redisWarnedPrefix = "warned/"
)

type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisStore{Client: rdb}, nil
}

func (s *RedisStore) Read(ctx context.Context, userID, groupID int64) (Record, error) {
	var rec Record

	c, err := s.Client.Get(ctx, redisCountPrefix+recordKey(userID, groupID)).Int()
	if err != nil && err != redis.Nil {
		return rec, err
	}
	rec.Count = c

	millis, err := s.Client.Get(ctx, redisWarnedPrefix+recordKey(userID, groupID)).Int64()
	if err != nil && err != redis.Nil {
		return rec, err
	}
	if millis > 0 {
		rec.LastWarnedAt = time.UnixMilli(millis)
	}
	return rec, nil
}

func (s *RedisStore) Increment(ctx context.Context, userID, groupID int64) (int, error) {
	n, err := s.Client.Incr(ctx, redisCountPrefix+recordKey(userID, groupID)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *RedisStore) Reset(ctx context.Context, userID, groupID int64) error {
	return s.Client.Set(ctx, redisCountPrefix+recordKey(userID, groupID), 0, 0).Err()
}

func (s *RedisStore) MarkWarned(ctx context.Context, userID, groupID int64, at time.Time) error {
	return s.Client.Set(ctx, redisWarnedPrefix+recordKey(userID, groupID), at.UnixMilli(), 0).Err()
}
