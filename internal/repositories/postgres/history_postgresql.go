package postgres

import (
	"context"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"gorm.io/gorm"
)

type HistoryPostgreSQL struct {
	db *gorm.DB
}

func NewHistoryPostgreSQL(db *gorm.DB) repositories.HistoryRepository {
	return &HistoryPostgreSQL{db: db}
}

func (h HistoryPostgreSQL) Add(ctx context.Context, tx *gorm.DB, item *models.HistoryItem, keep int) error {
	add := func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if keep <= 0 {
			return nil
		}

		newest := tx.Model(&models.HistoryItem{}).
			Select("id").
			Where("username = ?", item.Username).
			Order("created_at DESC").
			Limit(keep)
		return tx.Where("username = ? AND id NOT IN (?)", item.Username, newest).
			Delete(&models.HistoryItem{}).Error
	}

	if tx != nil {
		return add(tx.WithContext(ctx))
	}
	return h.db.WithContext(ctx).Transaction(add)
}

func (h HistoryPostgreSQL) List(ctx context.Context, tx *gorm.DB, username string, filters repositories.HistoryFilters) ([]*models.HistoryItem, int64, error) {
	db := getDB(h.db, tx)
	var items []*models.HistoryItem
	var total int64

	query := db.WithContext(ctx).Model(&models.HistoryItem{}).Where("username = ?", username)
	if filters.QuestionType != "" {
		query = query.Where("question_type = ?", filters.QuestionType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (h HistoryPostgreSQL) Clear(ctx context.Context, tx *gorm.DB, username string) (int64, error) {
	db := getDB(h.db, tx)
	result := db.WithContext(ctx).Where("username = ?", username).Delete(&models.HistoryItem{})
	return result.RowsAffected, result.Error
}

func (h HistoryPostgreSQL) Stats(ctx context.Context, tx *gorm.DB, username string) (*models.HistoryStats, error) {
	db := getDB(h.db, tx)
	stats := &models.HistoryStats{}

	var total int64
	if err := db.WithContext(ctx).Model(&models.HistoryItem{}).Where("username = ?", username).Count(&total).Error; err != nil {
		return nil, err
	}
	stats.Total = int(total)

	var err error
	if stats.ByQuestionType, err = h.countBy(ctx, db, username, "question_type"); err != nil {
		return nil, err
	}
	if stats.ByDifficulty, err = h.countBy(ctx, db, username, "difficulty"); err != nil {
		return nil, err
	}
	return stats, nil
}

// countBy groups a user's history by column; column is never user input.
func (h HistoryPostgreSQL) countBy(ctx context.Context, db *gorm.DB, username, column string) ([]models.CountEntry, error) {
	var rows []models.CountEntry
	err := db.WithContext(ctx).Model(&models.HistoryItem{}).
		Select(column+" AS label, COUNT(*) AS count").
		Where("username = ?", username).
		Group(column).
		Order("count DESC").
		Order("label ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
