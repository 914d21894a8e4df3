package challenge

import (
	"math/rand/v2"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
)

// RandomSource picks a template index in [0, n).
type RandomSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Engine is the daily challenge state machine. Its methods are pure: they
// return a new state and never mutate their input.
type Engine struct {
	catalog Catalog
	rand    RandomSource
	loc     *time.Location
}

// NewEngine validates catalog and builds an engine. A nil rnd uses the
// process-wide generator; a nil loc uses time.Local.
func NewEngine(catalog Catalog, rnd RandomSource, loc *time.Location) (*Engine, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{catalog: catalog, rand: rnd, loc: loc}, nil
}

func (e *Engine) Catalog() Catalog {
	return e.catalog
}

// Today returns the calendar date key for now in the engine's time zone.
func (e *Engine) Today(now time.Time) string {
	return now.In(e.loc).Format(models.DateLayout)
}

func (e *Engine) yesterday(now time.Time) string {
	return now.In(e.loc).AddDate(0, 0, -1).Format(models.DateLayout)
}

// EnsureToday mints a new challenge when there is none or the current one
// belongs to another day. The streak survives only if the last completion was
// yesterday. It reports whether the state changed.
func (e *Engine) EnsureToday(state models.ChallengeState, now time.Time) (models.ChallengeState, bool) {
	today := e.Today(now)
	if state.CurrentChallenge != nil && state.CurrentChallenge.Day() == today {
		return state, false
	}

	streak := state.Streak
	if state.LastCompletedDate == nil || *state.LastCompletedDate != e.yesterday(now) {
		streak = 0
	}

	return models.ChallengeState{
		CurrentChallenge:  e.mint(now),
		LastCompletedDate: state.LastCompletedDate,
		Streak:            streak,
	}, true
}

func (e *Engine) mint(now time.Time) *models.DailyChallenge {
	tpl := e.catalog.Templates[e.rand.IntN(len(e.catalog.Templates))]

	c := &models.DailyChallenge{
		ID:          now.In(e.loc).Format(time.RFC3339Nano),
		Description: tpl.Description,
		Type:        tpl.Type,
		Target:      tpl.Target,
	}
	if tpl.Meta != nil {
		meta := *tpl.Meta
		c.Meta = &meta
	}
	return c
}

// TrackAction records one action against the current challenge. A match
// needs the same type and, when the challenge names a question sub-type, an
// identical sub-type in details. Completing the challenge sets the completed
// flag, the completion date and the streak in the same returned state. When
// nothing matches, the input state is returned unchanged with false.
func (e *Engine) TrackAction(state models.ChallengeState, action models.ChallengeType, details *models.ActionDetails, now time.Time) (models.ChallengeState, bool) {
	current := state.CurrentChallenge
	if current == nil || current.Completed {
		return state, false
	}
	if !Matches(current, action, details) {
		return state, false
	}

	next := *current
	next.Progress++
	if next.Progress < next.Target {
		return models.ChallengeState{
			CurrentChallenge:  &next,
			LastCompletedDate: state.LastCompletedDate,
			Streak:            state.Streak,
		}, true
	}

	next.Completed = true
	today := e.Today(now)
	return models.ChallengeState{
		CurrentChallenge:  &next,
		LastCompletedDate: &today,
		Streak:            state.Streak + 1,
	}, true
}

// Matches reports whether an action counts toward c.
func Matches(c *models.DailyChallenge, action models.ChallengeType, details *models.ActionDetails) bool {
	if c.Type != action {
		return false
	}
	if c.Meta == nil || c.Meta.QuestionType == "" {
		return true
	}
	return details != nil && details.QuestionType == c.Meta.QuestionType
}
