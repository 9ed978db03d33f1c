package storage

import (
	"context"
	"errors"
	"net"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
)

// RedisStore keeps the snapshot as a string value under one key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to the Redis server at url and verifies the
// connection with PING.
func NewRedisStore(ctx context.Context, url, key string) (*RedisStore, error) {
	if url == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "redis backend needs a URL")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "parse redis URL")
	}
	client := redis.NewClient(opts)

	err = RetryWithBackoff(ctx, func() error {
		return retryableNet(client.Ping(ctx).Err())
	})
	if err != nil {
		_ = client.Close()
		return nil, storageError(err, "connect to redis")
	}
	return newRedisStore(client, key), nil
}

func newRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Load reads the snapshot key. A missing key is reported as absent.
func (s *RedisStore) Load(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, s.key).Bytes()
		return retryableNet(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageError(err, "redis GET %s", s.key)
	}
	return data, true, nil
}

// Save writes the snapshot key without expiration.
func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	err := RetryWithBackoff(ctx, func() error {
		return retryableNet(s.client.Set(ctx, s.key, data, 0).Err())
	})
	if err != nil {
		return storageError(err, "redis SET %s", s.key)
	}
	return nil
}

// Close closes the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// retryableNet marks network failures as retryable; redis.Nil and protocol
// errors pass through unchanged.
func retryableNet(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(err)
	}
	return err
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
