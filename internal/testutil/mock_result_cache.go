package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockResultCache is a testify mock of the redis result cache.
type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, notation string, dest interface{}) error {
	return m.Called(ctx, notation, dest).Error(0)
}

func (m *MockResultCache) Set(ctx context.Context, notation string, value interface{}) error {
	return m.Called(ctx, notation, value).Error(0)
}

// CacheFill scripts a GetOrLoad call: it may write dest directly (a hit) or
// call loader (a miss).
type CacheFill func(dest interface{}, loader func(ctx context.Context) (interface{}, error)) error

// GetOrLoad runs the expectation's first return value when it is a CacheFill.
func (m *MockResultCache) GetOrLoad(ctx context.Context, notation string, dest interface{}, loader func(ctx context.Context) (interface{}, error)) error {
	args := m.Called(ctx, notation, dest, loader)
	if fill, ok := args.Get(0).(CacheFill); ok {
		return fill(dest, loader)
	}
	return args.Error(0)
}

func (m *MockResultCache) Purge(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResultCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
