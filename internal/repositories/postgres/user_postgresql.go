package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u UserPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	db := getDB(u.db, tx)
	var user models.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.User, error) {
	db := getDB(u.db, tx)
	var users []*models.User

	query := db.WithContext(ctx).Order("last_login_at DESC NULLS LAST").Order("username ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (u UserPostgreSQL) Touch(ctx context.Context, tx *gorm.DB, user *models.User, loginTime time.Time) error {
	db := getDB(u.db, tx)
	user.LastLoginAt = &loginTime
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_login_at", "updated_at"}),
	}).Create(user).Error
}
