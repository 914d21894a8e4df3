package repositories

import (
	"context"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type HistoryFilters struct {
	QuestionType string `json:"question_type" form:"question_type"`
	Limit        int    `json:"limit" form:"limit"`
	Offset       int    `json:"offset" form:"offset"`
}

// ===== AGGREGATE =====

// Repository groups the per-user stores. Every store is keyed by username.
type Repository interface {
	User() UserRepository
	Challenge() ChallengeRepository
	History() HistoryRepository
	Vocabulary() VocabularyRepository

	// Transaction runs fn in a database transaction; stores accept the tx
	// argument to join it.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ===== CHALLENGE STATE =====

// ChallengeReducer computes the next challenge state. Returning false leaves
// the stored state untouched.
type ChallengeReducer func(state models.ChallengeState) (models.ChallengeState, bool)

type ChallengeRepository interface {
	// Mutate applies reducer as a single read-modify-write per user.
	// Concurrent calls for the same user are serialized.
	Mutate(ctx context.Context, username string, reducer ChallengeReducer) (models.ChallengeState, error)
}

// ===== HISTORY =====

type HistoryRepository interface {
	// Add stores item and trims the user's history to the newest keep items.
	Add(ctx context.Context, tx *gorm.DB, item *models.HistoryItem, keep int) error
	List(ctx context.Context, tx *gorm.DB, username string, filters HistoryFilters) ([]*models.HistoryItem, int64, error)
	Clear(ctx context.Context, tx *gorm.DB, username string) (int64, error)
	Stats(ctx context.Context, tx *gorm.DB, username string) (*models.HistoryStats, error)
}

// ===== VOCABULARY =====

type VocabularyRepository interface {
	// Add inserts item unless the user already saved the word.
	Add(ctx context.Context, tx *gorm.DB, item *models.VocabularyItem) (bool, error)
	Remove(ctx context.Context, tx *gorm.DB, username, word string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, username string) ([]*models.VocabularyItem, error)
	Exists(ctx context.Context, tx *gorm.DB, username, word string) (bool, error)
}
