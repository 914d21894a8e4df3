package postgres

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const challengeLockStripes = 64

type ChallengePostgreSQL struct {
	db    *gorm.DB
	locks [challengeLockStripes]sync.Mutex
}

func NewChallengePostgreSQL(db *gorm.DB) repositories.ChallengeRepository {
	return &ChallengePostgreSQL{db: db}
}

// Mutate holds an in-process lock for the user and a row lock in the
// database for the whole read-modify-write.
func (c *ChallengePostgreSQL) Mutate(ctx context.Context, username string, reducer repositories.ChallengeReducer) (models.ChallengeState, error) {
	lock := c.lockFor(username)
	lock.Lock()
	defer lock.Unlock()

	var result models.ChallengeState
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.ChallengeStateRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("username = ?", username).
			First(&record).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		state, err := record.ToState()
		if err != nil {
			return err
		}

		next, changed := reducer(state)
		result = next
		if !changed {
			return nil
		}

		updated, err := models.NewChallengeStateRecord(username, next)
		if err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_challenge", "last_completed_date", "streak", "updated_at"}),
		}).Create(updated).Error
	})
	if err != nil {
		return models.ChallengeState{}, fmt.Errorf("failed to update challenge state for %s: %w", username, err)
	}
	return result, nil
}

func (c *ChallengePostgreSQL) lockFor(username string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return &c.locks[h.Sum32()%challengeLockStripes]
}
