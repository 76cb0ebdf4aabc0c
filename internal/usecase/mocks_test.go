package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/geo-gateway/internal/domain"
)

// MockPOIProvider is a mock of POIProvider
type MockPOIProvider struct {
	mock.Mock
}

func (m *MockPOIProvider) FetchNearby(ctx context.Context, q domain.SpatialQuery) ([]domain.RawElement, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawElement), args.Error(1)
}

// MockGeocoder is a mock of Geocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Search(ctx context.Context, q domain.GeocodeQuery) ([]domain.RawElement, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawElement), args.Error(1)
}

func (m *MockGeocoder) Reverse(ctx context.Context, q domain.ReverseQuery) (*domain.RawElement, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RawElement), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockHistoryRepository is a mock of HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Record(ctx context.Context, rec domain.HistoryRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockHistoryRepository) Upsert(ctx context.Context, records []domain.HistoryRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByClient(ctx context.Context, clientID string, kinds []domain.HistoryKind, limit int) ([]domain.HistoryRecord, error) {
	args := m.Called(ctx, clientID, kinds, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryRecord), args.Error(1)
}

// recordingSink collects history records in memory
type recordingSink struct {
	mu      sync.Mutex
	records []domain.HistoryRecord
	err     error
}

func (s *recordingSink) Record(_ context.Context, rec domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *recordingSink) Records() []domain.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.HistoryRecord, len(s.records))
	copy(out, s.records)
	return out
}

func ptrFloat64(v float64) *float64 {
	return &v
}
