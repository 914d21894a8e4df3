package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	dbOnce sync.Once
	testDB *gorm.DB
	dbErr  error
)

func openTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			dbErr = errMissingDSN
			return
		}
		testDB, dbErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if dbErr != nil {
			return
		}
		dbErr = Migrate(testDB)
	})

	if errors.Is(dbErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repository integration tests")
	}
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return testDB
}

func testUsername(t *testing.T) string {
	return "test-" + uuid.NewString()[:8]
}

func TestChallengePostgreSQL_MutateSerializesWriters(t *testing.T) {
	db := openTestDB(t)
	repo := NewChallengePostgreSQL(db)
	ctx := context.Background()
	username := testUsername(t)

	increment := func(state models.ChallengeState) (models.ChallengeState, bool) {
		if state.CurrentChallenge == nil {
			state.CurrentChallenge = &models.DailyChallenge{ID: "2025-03-10T09:00:00Z", Type: models.ChallengeTutor, Target: 100}
		}
		next := *state.CurrentChallenge
		next.Progress++
		state.CurrentChallenge = &next
		return state, true
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(ctx, username, increment)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := repo.Mutate(ctx, username, func(s models.ChallengeState) (models.ChallengeState, bool) {
		return s, false
	})
	require.NoError(t, err)
	require.NotNil(t, state.CurrentChallenge)
	assert.Equal(t, 20, state.CurrentChallenge.Progress)
}

func TestChallengePostgreSQL_UnchangedReducerDoesNotWrite(t *testing.T) {
	db := openTestDB(t)
	repo := NewChallengePostgreSQL(db)
	ctx := context.Background()
	username := testUsername(t)

	state, err := repo.Mutate(ctx, username, func(s models.ChallengeState) (models.ChallengeState, bool) {
		return s, false
	})
	require.NoError(t, err)
	assert.Nil(t, state.CurrentChallenge)

	var count int64
	require.NoError(t, db.Model(&models.ChallengeStateRecord{}).Where("username = ?", username).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHistoryPostgreSQL_TrimsToNewest(t *testing.T) {
	db := openTestDB(t)
	repo := NewHistoryPostgreSQL(db)
	ctx := context.Background()
	username := testUsername(t)

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		result := &models.GeneratedResult{Kind: models.ResultQuestion, Question: &models.QuestionAnalysis{SoruTipi: "Kelime Sorusu", ZorlukSeviyesi: "Orta"}}
		item, err := models.NewHistoryItem(uuid.NewString(), username, "q", result, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, nil, item, 3))
	}

	items, total, err := repo.List(ctx, nil, username, repositories.HistoryFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))

	stats, err := repo.Stats(ctx, nil, username)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, []models.CountEntry{{Label: "Kelime Sorusu", Count: 3}}, stats.ByQuestionType)

	removed, err := repo.Clear(ctx, nil, username)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}

func TestRepository_TransactionRollsBackStoreCalls(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	username := testUsername(t)

	result := &models.GeneratedResult{Kind: models.ResultQuestion, Question: &models.QuestionAnalysis{SoruTipi: "Kelime Sorusu", ZorlukSeviyesi: "Orta"}}
	item, err := models.NewHistoryItem(uuid.NewString(), username, "q", result, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.History().Add(ctx, nil, item, 10))

	errAbort := errors.New("abort")
	err = repo.Transaction(ctx, func(tx *gorm.DB) error {
		removed, err := repo.History().Clear(ctx, tx, username)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	_, total, err := repo.History().List(ctx, nil, username, repositories.HistoryFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, err = repo.History().Clear(ctx, nil, username)
	require.NoError(t, err)
}

func TestVocabularyPostgreSQL_AddIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewVocabularyPostgreSQL(db)
	ctx := context.Background()
	username := testUsername(t)

	created, err := repo.Add(ctx, nil, &models.VocabularyItem{ID: uuid.NewString(), Username: username, Word: "resilient"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Add(ctx, nil, &models.VocabularyItem{ID: uuid.NewString(), Username: username, Word: "resilient"})
	require.NoError(t, err)
	assert.False(t, created)

	exists, err := repo.Exists(ctx, nil, username, "resilient")
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.Remove(ctx, nil, username, "resilient")
	require.NoError(t, err)
	assert.True(t, removed)
}
