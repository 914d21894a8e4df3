package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/cache"
	"github.com/SAP-F-2025/yds-assistant-service/internal/challenge"
	"github.com/SAP-F-2025/yds-assistant-service/internal/llm"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ===== REPOSITORY MOCKS =====

// MockRepository is a mock implementation of repositories.Repository
type MockRepository struct {
	transactions int

	users      *MockUserRepository
	challenges *FakeChallengeRepository
	history    *MockHistoryRepository
	vocabulary *MockVocabularyRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:      &MockUserRepository{},
		challenges: NewFakeChallengeRepository(),
		history:    &MockHistoryRepository{},
		vocabulary: &MockVocabularyRepository{},
	}
}

func (m *MockRepository) User() repositories.UserRepository             { return m.users }
func (m *MockRepository) Challenge() repositories.ChallengeRepository   { return m.challenges }
func (m *MockRepository) History() repositories.HistoryRepository       { return m.history }
func (m *MockRepository) Vocabulary() repositories.VocabularyRepository { return m.vocabulary }

// testTx stands in for the handle Transaction passes to fn, so tests can
// check that store calls joined the transaction.
var testTx = &gorm.DB{}

func (m *MockRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	m.transactions++
	return fn(testTx)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	args := m.Called(ctx, tx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tx, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Touch(ctx context.Context, tx *gorm.DB, user *models.User, loginTime time.Time) error {
	args := m.Called(ctx, tx, user, loginTime)
	return args.Error(0)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Add(ctx context.Context, tx *gorm.DB, item *models.HistoryItem, keep int) error {
	args := m.Called(ctx, tx, item, keep)
	return args.Error(0)
}

func (m *MockHistoryRepository) List(ctx context.Context, tx *gorm.DB, username string, filters repositories.HistoryFilters) ([]*models.HistoryItem, int64, error) {
	args := m.Called(ctx, tx, username, filters)
	return args.Get(0).([]*models.HistoryItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockHistoryRepository) Clear(ctx context.Context, tx *gorm.DB, username string) (int64, error) {
	args := m.Called(ctx, tx, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryRepository) Stats(ctx context.Context, tx *gorm.DB, username string) (*models.HistoryStats, error) {
	args := m.Called(ctx, tx, username)
	return args.Get(0).(*models.HistoryStats), args.Error(1)
}

type MockVocabularyRepository struct {
	mock.Mock
}

func (m *MockVocabularyRepository) Add(ctx context.Context, tx *gorm.DB, item *models.VocabularyItem) (bool, error) {
	args := m.Called(ctx, tx, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockVocabularyRepository) Remove(ctx context.Context, tx *gorm.DB, username, word string) (bool, error) {
	args := m.Called(ctx, tx, username, word)
	return args.Bool(0), args.Error(1)
}

func (m *MockVocabularyRepository) List(ctx context.Context, tx *gorm.DB, username string) ([]*models.VocabularyItem, error) {
	args := m.Called(ctx, tx, username)
	return args.Get(0).([]*models.VocabularyItem), args.Error(1)
}

func (m *MockVocabularyRepository) Exists(ctx context.Context, tx *gorm.DB, username, word string) (bool, error) {
	args := m.Called(ctx, tx, username, word)
	return args.Bool(0), args.Error(1)
}

// FakeChallengeRepository keeps challenge state in memory and serializes
// Mutate like the database store does.
type FakeChallengeRepository struct {
	mu     sync.Mutex
	states map[string]models.ChallengeState
	writes int
}

func NewFakeChallengeRepository() *FakeChallengeRepository {
	return &FakeChallengeRepository{states: make(map[string]models.ChallengeState)}
}

func (f *FakeChallengeRepository) Mutate(ctx context.Context, username string, reducer repositories.ChallengeReducer) (models.ChallengeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, changed := reducer(f.states[username])
	if changed {
		f.states[username] = next
		f.writes++
	}
	return f.states[username], nil
}

func (f *FakeChallengeRepository) Set(username string, state models.ChallengeState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[username] = state
}

// ===== GENERATOR MOCK =====

// MockGenerator is a mock implementation of llm.Generator keyed by operation
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req.Operation)
	return args.String(0), args.Error(1)
}

// ===== CACHE FAKE =====

type memoryCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]interface{})}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	lookup, ok := value.(*models.DictionaryLookup)
	target, okDest := dest.(*models.DictionaryLookup)
	if !ok || !okDest {
		return cache.ErrUndecodable
	}
	*target = *lookup
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// ===== HELPERS =====

type fixedIndex int

func (f fixedIndex) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

// newSingleTemplateEngine builds an engine whose only challenge is tpl.
func newSingleTemplateEngine(t *testing.T, tpl challenge.Template) *challenge.Engine {
	t.Helper()
	engine, err := challenge.NewEngine(challenge.Catalog{Version: "test", Templates: []challenge.Template{tpl}}, fixedIndex(0), time.UTC)
	require.NoError(t, err)
	return engine
}
