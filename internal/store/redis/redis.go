package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"retaildesk/backend/internal/store"
)

type Store struct {
	client *goredis.Client
	prefix string
}

func New(addr string, password string, db int, prefix string) *Store {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if prefix == "" {
		prefix = "retaildesk"
	}

	return &Store{client: client, prefix: prefix}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return store.ErrInvalidInput
	}
	return s.client.Set(ctx, s.redisKey(key), value, 0).Err()
}

func (s *Store) redisKey(key string) string {
	return s.prefix + ":" + key
}
