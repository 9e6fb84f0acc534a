package repositories

import (
	"context"
	"crypto/tls"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/checkmarble/form-designer/infra"
	"github.com/checkmarble/form-designer/models"
)

// RedisKeyValueStore shares drafts and the offline queue between several instances of the service.
type RedisKeyValueStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisKeyValueStore(ctx context.Context, cfg infra.RedisConfig) (*RedisKeyValueStore, error) {
	var tlsConfig *tls.Config
	if cfg.Tls {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.TlsSkipVerify,
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Address,
		Password:  cfg.Password,
		DB:        cfg.Database,
		TLSConfig: tlsConfig,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "could not check redis connectivity")
	}

	return &RedisKeyValueStore{client: client, namespace: cfg.Namespace}, nil
}

func (s *RedisKeyValueStore) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return Key(s.namespace, key)
}

func (s *RedisKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(models.NotFoundError, "key %s", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read key %s from redis", key)
	}
	return out, nil
}

func (s *RedisKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return errors.Wrapf(err, "could not write key %s to redis", key)
	}
	return nil
}

func (s *RedisKeyValueStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Wrapf(err, "could not delete key %s from redis", key)
	}
	return nil
}

func (s *RedisKeyValueStore) Close() error {
	return s.client.Close()
}
