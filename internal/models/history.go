package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// MaxHistoryItems is how many analyses are kept per user, newest first.
const MaxHistoryItems = 50

type HistoryItem struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	Username     string         `json:"-" gorm:"index:idx_history_user_created,priority:1;not null;size:100"`
	Question     string         `json:"question" gorm:"type:text;not null"`
	Analysis     datatypes.JSON `json:"analysis" gorm:"type:jsonb;not null"`
	QuestionType string         `json:"question_type" gorm:"size:100;index"`
	Difficulty   string         `json:"difficulty" gorm:"size:50"`
	CreatedAt    time.Time      `json:"timestamp" gorm:"index:idx_history_user_created,priority:2"`
}

func (HistoryItem) TableName() string {
	return "history_items"
}

// Result decodes the stored analysis.
func (h *HistoryItem) Result() (*GeneratedResult, error) {
	var result GeneratedResult
	if err := json.Unmarshal(h.Analysis, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
	}
	return &result, nil
}

func NewHistoryItem(id, username, question string, result *GeneratedResult, at time.Time) (*HistoryItem, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	return &HistoryItem{
		ID:           id,
		Username:     username,
		Question:     question,
		Analysis:     datatypes.JSON(data),
		QuestionType: result.QuestionType(),
		Difficulty:   result.Difficulty(),
		CreatedAt:    at,
	}, nil
}

type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// HistoryStats feeds the dashboard charts.
type HistoryStats struct {
	Total          int          `json:"total"`
	ByQuestionType []CountEntry `json:"by_question_type"`
	ByDifficulty   []CountEntry `json:"by_difficulty"`
}
