package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/challenge"
	"github.com/SAP-F-2025/yds-assistant-service/internal/events"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/SAP-F-2025/yds-assistant-service/internal/validator"
)

type TrackActionRequest struct {
	Action       string `json:"action" validate:"required,challenge_type"`
	QuestionType string `json:"questionType,omitempty" validate:"omitempty,question_type"`
}

// ChallengeStatus is the persisted state plus what the last call changed.
type ChallengeStatus struct {
	models.ChallengeState
	Today         string `json:"today"`
	JustCompleted bool   `json:"justCompleted"`
}

type ChallengeService interface {
	// GetToday returns today's challenge, minting it on the first call of the day.
	GetToday(ctx context.Context, username string) (*ChallengeStatus, error)

	// TrackAction records a completed user action against today's challenge.
	TrackAction(ctx context.Context, username string, action models.ChallengeType, details *models.ActionDetails) (*ChallengeStatus, error)

	// Track validates a client-submitted action before tracking it.
	Track(ctx context.Context, username string, req *TrackActionRequest) (*ChallengeStatus, error)

	Catalog() challenge.Catalog
}

type challengeService struct {
	repo      repositories.Repository
	engine    *challenge.Engine
	publisher events.EventPublisher
	logger    *ServiceLogger
	slog      *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewChallengeService(repo repositories.Repository, engine *challenge.Engine, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ChallengeService {
	return &challengeService{
		repo:      repo,
		engine:    engine,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "challenge"}),
		slog:      logger,
		validator: validator,
		now:       time.Now,
	}
}

func (s *challengeService) Catalog() challenge.Catalog {
	return s.engine.Catalog()
}

func (s *challengeService) GetToday(ctx context.Context, username string) (status *ChallengeStatus, err error) {
	op := s.logger.WithOperation(ctx, "ensure_today_challenge", username)
	defer func() { op.LogResult("", "challenge", err) }()

	now := s.now()
	var before models.ChallengeState
	state, err := s.repo.Challenge().Mutate(ctx, username, func(current models.ChallengeState) (models.ChallengeState, bool) {
		before = current
		return s.engine.EnsureToday(current, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure today's challenge: %w", err)
	}

	s.publishStreakReset(ctx, username, before, state, now)
	return &ChallengeStatus{ChallengeState: state, Today: s.engine.Today(now)}, nil
}

func (s *challengeService) Track(ctx context.Context, username string, req *TrackActionRequest) (*ChallengeStatus, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	action := models.ChallengeType(req.Action)
	var details *models.ActionDetails
	if label := strings.TrimSpace(req.QuestionType); label != "" {
		details = &models.ActionDetails{QuestionType: label}
	}
	return s.TrackAction(ctx, username, action, details)
}

// TrackAction brings the challenge up to today before matching, so an action
// never counts toward a previous day's challenge.
func (s *challengeService) TrackAction(ctx context.Context, username string, action models.ChallengeType, details *models.ActionDetails) (status *ChallengeStatus, err error) {
	op := s.logger.WithOperation(ctx, "track_action", username)
	defer func() { op.LogResult(string(action), "challenge", err) }()

	now := s.now()
	var before models.ChallengeState
	var completed bool
	state, err := s.repo.Challenge().Mutate(ctx, username, func(current models.ChallengeState) (models.ChallengeState, bool) {
		before = current
		ensured, minted := s.engine.EnsureToday(current, now)
		tracked, matched := s.engine.TrackAction(ensured, action, details, now)
		completed = matched && tracked.CurrentChallenge.Completed
		return tracked, minted || matched
	})
	if err != nil {
		return nil, fmt.Errorf("failed to track action: %w", err)
	}

	s.publishStreakReset(ctx, username, before, state, now)
	if completed {
		s.publish(ctx, events.NewChallengeCompletedEvent(username, now, events.ChallengeCompletedEvent{
			ChallengeID:   state.CurrentChallenge.ID,
			ChallengeType: string(state.CurrentChallenge.Type),
			Description:   state.CurrentChallenge.Description,
			Target:        state.CurrentChallenge.Target,
			Streak:        state.Streak,
			CompletedDate: s.engine.Today(now),
		}))
	}

	return &ChallengeStatus{ChallengeState: state, Today: s.engine.Today(now), JustCompleted: completed}, nil
}

func (s *challengeService) publishStreakReset(ctx context.Context, username string, before, after models.ChallengeState, now time.Time) {
	if before.Streak == 0 || after.Streak != 0 {
		return
	}
	s.publish(ctx, events.NewStreakResetEvent(username, now, events.StreakResetEvent{
		PreviousStreak:    before.Streak,
		LastCompletedDate: before.LastCompletedDate,
		Day:               s.engine.Today(now),
	}))
}

// publish is best effort; a broker outage never fails the user's action.
func (s *challengeService) publish(ctx context.Context, event *events.AssistantEvent) {
	publishEvent(ctx, s.publisher, s.slog, event)
}
