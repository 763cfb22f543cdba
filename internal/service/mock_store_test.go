package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/voyagen/xtreamvault/internal/models"
)

// MockStore is a mock implementation of store.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Open(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStore) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockStore) InsertCategory(ctx context.Context, name string, parentID int64) (int64, error) {
	args := m.Called(name, parentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockStore) ChannelByName(ctx context.Context, name string) (*models.Channel, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockStore) InsertChannel(ctx context.Context, ch *models.Channel) (int64, error) {
	args := m.Called(ch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListChannels(ctx context.Context) ([]models.Channel, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Channel), args.Error(1)
}

func (m *MockStore) GetSetting(ctx context.Context, key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockStore) SetSetting(ctx context.Context, key, value string) error {
	args := m.Called(key, value)
	return args.Error(0)
}
