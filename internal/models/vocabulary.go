package models

import "time"

type VocabularyItem struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Username  string    `json:"-" gorm:"uniqueIndex:idx_vocabulary_user_word,priority:1;not null;size:100"`
	Word      string    `json:"word" gorm:"uniqueIndex:idx_vocabulary_user_word,priority:2;not null;size:200"`
	Meaning   string    `json:"meaning" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

func (VocabularyItem) TableName() string {
	return "vocabulary_items"
}
