package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ChallengeType is the category of a trackable user action.
type ChallengeType string

const (
	ChallengeAnalyze    ChallengeType = "analyze"
	ChallengeDictionary ChallengeType = "dictionary"
	ChallengeTutor      ChallengeType = "tutor"
	ChallengeReading    ChallengeType = "reading"
	ChallengeWriting    ChallengeType = "writing"
)

var ChallengeTypes = []ChallengeType{
	ChallengeAnalyze,
	ChallengeDictionary,
	ChallengeTutor,
	ChallengeReading,
	ChallengeWriting,
}

func (t ChallengeType) IsValid() bool {
	for _, ct := range ChallengeTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// ParseChallengeType converts boundary input into a ChallengeType.
func ParseChallengeType(s string) (ChallengeType, error) {
	t := ChallengeType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown challenge type %q", s)
	}
	return t, nil
}

// ChallengeMeta narrows which actions count toward a challenge.
type ChallengeMeta struct {
	QuestionType string `json:"questionType,omitempty" yaml:"questionType,omitempty"`
}

// ActionDetails accompany a tracked action.
type ActionDetails struct {
	QuestionType string `json:"questionType,omitempty"`
}

type DailyChallenge struct {
	// ID is the creation timestamp; its date prefix is the challenge day.
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Type        ChallengeType  `json:"type"`
	Target      int            `json:"target"`
	Progress    int            `json:"progress"`
	Completed   bool           `json:"completed"`
	Meta        *ChallengeMeta `json:"meta,omitempty"`
}

// Day returns the YYYY-MM-DD calendar date the challenge was minted on.
func (c *DailyChallenge) Day() string {
	if len(c.ID) < len(DateLayout) {
		return c.ID
	}
	return c.ID[:len(DateLayout)]
}

type ChallengeState struct {
	CurrentChallenge  *DailyChallenge `json:"currentChallenge"`
	LastCompletedDate *string         `json:"lastCompletedDate"`
	Streak            int             `json:"streak"`
}

// DateLayout is the calendar-date key format shared by challenges and streaks.
const DateLayout = "2006-01-02"

// ChallengeStateRecord persists one user's ChallengeState.
type ChallengeStateRecord struct {
	Username          string         `gorm:"primaryKey;size:100"`
	CurrentChallenge  datatypes.JSON `gorm:"type:jsonb"`
	LastCompletedDate *string        `gorm:"size:10"`
	Streak            int            `gorm:"not null;default:0"`
	UpdatedAt         time.Time
}

func (ChallengeStateRecord) TableName() string {
	return "challenge_states"
}

func (r *ChallengeStateRecord) ToState() (ChallengeState, error) {
	state := ChallengeState{
		LastCompletedDate: r.LastCompletedDate,
		Streak:            r.Streak,
	}
	if len(r.CurrentChallenge) > 0 && string(r.CurrentChallenge) != "null" {
		var c DailyChallenge
		if err := json.Unmarshal(r.CurrentChallenge, &c); err != nil {
			return ChallengeState{}, fmt.Errorf("failed to decode current challenge: %w", err)
		}
		state.CurrentChallenge = &c
	}
	return state, nil
}

func NewChallengeStateRecord(username string, state ChallengeState) (*ChallengeStateRecord, error) {
	record := &ChallengeStateRecord{
		Username:          username,
		LastCompletedDate: state.LastCompletedDate,
		Streak:            state.Streak,
	}
	if state.CurrentChallenge != nil {
		data, err := json.Marshal(state.CurrentChallenge)
		if err != nil {
			return nil, fmt.Errorf("failed to encode current challenge: %w", err)
		}
		record.CurrentChallenge = datatypes.JSON(data)
	}
	return record, nil
}
