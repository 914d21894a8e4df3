package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events the assistant emits
type EventType string

const (
	// Challenge events
	EventChallengeCompleted EventType = "challenge.completed"
	EventStreakReset        EventType = "challenge.streak_reset"

	// Study events
	EventAnalysisRecorded EventType = "analysis.recorded"
	EventWordSaved        EventType = "vocabulary.word_saved"
	EventHistoryCleared   EventType = "history.cleared"
)

const (
	eventSource  = "yds-assistant-service"
	eventVersion = "1.0"
)

// AssistantEvent is the envelope published for every event
type AssistantEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Username  string                 `json:"username"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Challenge event payloads

type ChallengeCompletedEvent struct {
	ChallengeID   string `json:"challenge_id"`
	ChallengeType string `json:"challenge_type"`
	Description   string `json:"description"`
	Target        int    `json:"target"`
	Streak        int    `json:"streak"`
	CompletedDate string `json:"completed_date"`
}

type StreakResetEvent struct {
	PreviousStreak    int     `json:"previous_streak"`
	LastCompletedDate *string `json:"last_completed_date,omitempty"`
	Day               string  `json:"day"`
}

// Study event payloads

type AnalysisRecordedEvent struct {
	HistoryID    string `json:"history_id"`
	Kind         string `json:"kind"`
	QuestionType string `json:"question_type"`
	Difficulty   string `json:"difficulty"`
}

type WordSavedEvent struct {
	Word string `json:"word"`
}

// HistoryClearedEvent keeps the per-type counts of what was erased.
type HistoryClearedEvent struct {
	Removed        int64          `json:"removed"`
	ByQuestionType map[string]int `json:"by_question_type,omitempty"`
}

func newEvent(eventType EventType, username string, at time.Time, data interface{}) *AssistantEvent {
	return &AssistantEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: at,
		Source:    eventSource,
		Version:   eventVersion,
		Username:  username,
		Data:      data,
	}
}

func NewChallengeCompletedEvent(username string, at time.Time, data ChallengeCompletedEvent) *AssistantEvent {
	return newEvent(EventChallengeCompleted, username, at, data)
}

func NewStreakResetEvent(username string, at time.Time, data StreakResetEvent) *AssistantEvent {
	return newEvent(EventStreakReset, username, at, data)
}

func NewAnalysisRecordedEvent(username string, at time.Time, data AnalysisRecordedEvent) *AssistantEvent {
	return newEvent(EventAnalysisRecorded, username, at, data)
}

func NewWordSavedEvent(username, word string, at time.Time) *AssistantEvent {
	return newEvent(EventWordSaved, username, at, WordSavedEvent{Word: word})
}

func NewHistoryClearedEvent(username string, at time.Time, data HistoryClearedEvent) *AssistantEvent {
	return newEvent(EventHistoryCleared, username, at, data)
}

func GenerateEventID() string {
	return uuid.NewString()
}
