package models

import (
	"time"
)

// User is a known login name. There are no passwords; the username is the
// identity that owns challenge state, history and vocabulary.
type User struct {
	Username    string     `json:"username" gorm:"primaryKey;size:100"`
	DisplayName string     `json:"display_name" gorm:"not null;size:100"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
