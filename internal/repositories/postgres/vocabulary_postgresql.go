package postgres

import (
	"context"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VocabularyPostgreSQL struct {
	db *gorm.DB
}

func NewVocabularyPostgreSQL(db *gorm.DB) repositories.VocabularyRepository {
	return &VocabularyPostgreSQL{db: db}
}

func (v VocabularyPostgreSQL) Add(ctx context.Context, tx *gorm.DB, item *models.VocabularyItem) (bool, error) {
	db := getDB(v.db, tx)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(item)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (v VocabularyPostgreSQL) Remove(ctx context.Context, tx *gorm.DB, username, word string) (bool, error) {
	db := getDB(v.db, tx)
	result := db.WithContext(ctx).
		Where("username = ? AND word = ?", username, word).
		Delete(&models.VocabularyItem{})
	return result.RowsAffected > 0, result.Error
}

func (v VocabularyPostgreSQL) List(ctx context.Context, tx *gorm.DB, username string) ([]*models.VocabularyItem, error) {
	db := getDB(v.db, tx)
	var items []*models.VocabularyItem
	if err := db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (v VocabularyPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, username, word string) (bool, error) {
	db := getDB(v.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.VocabularyItem{}).
		Where("username = ? AND word = ?", username, word).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
