package postgres

import (
	"context"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db         *gorm.DB
	user       repositories.UserRepository
	challenge  repositories.ChallengeRepository
	history    repositories.HistoryRepository
	vocabulary repositories.VocabularyRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:         db,
		user:       NewUserPostgreSQL(db),
		challenge:  NewChallengePostgreSQL(db),
		history:    NewHistoryPostgreSQL(db),
		vocabulary: NewVocabularyPostgreSQL(db),
	}
}

func (r *Repository) User() repositories.UserRepository             { return r.user }
func (r *Repository) Challenge() repositories.ChallengeRepository   { return r.challenge }
func (r *Repository) History() repositories.HistoryRepository       { return r.history }
func (r *Repository) Vocabulary() repositories.VocabularyRepository { return r.vocabulary }

func (r *Repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ChallengeStateRecord{},
		&models.HistoryItem{},
		&models.VocabularyItem{},
	)
}

func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
