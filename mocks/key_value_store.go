package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type KeyValueStore struct {
	mock.Mock
}

func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := s.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	args := s.Called(ctx, key, value)
	return args.Error(0)
}

func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	args := s.Called(ctx, key)
	return args.Error(0)
}
