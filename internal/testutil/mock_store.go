// Package testutil provides shared test doubles for the configuration store.
package testutil

import (
	"context"

	"github.com/poyrazK/cfddns/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of ports.ConfigRepository.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called()
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockStore) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockStore) CreateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockStore) UpdateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockStore) DeleteAccount(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) GetZone(ctx context.Context, accountID, zoneRef string) (*domain.Zone, error) {
	args := m.Called(accountID, zoneRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Zone), args.Error(1)
}

func (m *MockStore) AddZone(ctx context.Context, accountID string, zone *domain.Zone) error {
	args := m.Called(accountID, zone)
	return args.Error(0)
}

func (m *MockStore) UpdateZone(ctx context.Context, accountID string, zone *domain.Zone) error {
	args := m.Called(accountID, zone)
	return args.Error(0)
}

func (m *MockStore) DeleteZone(ctx context.Context, accountID, zoneID string) error {
	args := m.Called(accountID, zoneID)
	return args.Error(0)
}

func (m *MockStore) GetSettings(ctx context.Context) (domain.Settings, error) {
	args := m.Called()
	return args.Get(0).(domain.Settings), args.Error(1)
}

func (m *MockStore) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockStore) Snapshot(ctx context.Context) (*domain.Config, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Config), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

// MockPublisher is a testify mock of ports.SnapshotPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, cfg *domain.Config) error {
	args := m.Called(cfg)
	return args.Error(0)
}
