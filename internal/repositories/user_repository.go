package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository stores the known login names.
type UserRepository interface {
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.User, error)

	// Touch creates the user on first login and records the login time.
	Touch(ctx context.Context, tx *gorm.DB, user *models.User, loginTime time.Time) error
}
