package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/events"
	"github.com/SAP-F-2025/yds-assistant-service/internal/llm"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/normalizer"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/SAP-F-2025/yds-assistant-service/internal/sequence"
	"gorm.io/gorm"
)

type HistoryPage struct {
	Items []*models.HistoryItem `json:"items"`
	Total int64                 `json:"total"`
}

type HistoryService interface {
	List(ctx context.Context, username string, filters repositories.HistoryFilters) (*HistoryPage, error)
	Clear(ctx context.Context, username string) (int64, error)
	Stats(ctx context.Context, username string) (*models.HistoryStats, error)

	// Feedback asks the coach model for weak topics based on the user's
	// analyzed questions.
	Feedback(ctx context.Context, username string) (*models.PersonalizedFeedback, error)
}

type historyService struct {
	repo      repositories.Repository
	generator llm.Generator
	tracker   *sequence.Tracker
	publisher events.EventPublisher
	logger    *ServiceLogger
	slog      *slog.Logger
	now       func() time.Time
}

func NewHistoryService(repo repositories.Repository, generator llm.Generator, tracker *sequence.Tracker, publisher events.EventPublisher, logger *slog.Logger) HistoryService {
	return &historyService{
		repo:      repo,
		generator: generator,
		tracker:   tracker,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "history"}),
		slog:      logger,
		now:       time.Now,
	}
}

func (s *historyService) List(ctx context.Context, username string, filters repositories.HistoryFilters) (*HistoryPage, error) {
	if filters.Limit <= 0 || filters.Limit > models.MaxHistoryItems {
		filters.Limit = models.MaxHistoryItems
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	items, total, err := s.repo.History().List(ctx, nil, username, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return &HistoryPage{Items: items, Total: total}, nil
}

func (s *historyService) Clear(ctx context.Context, username string) (removed int64, err error) {
	op := s.logger.WithOperation(ctx, "clear_history", username)
	defer func() { op.LogResult("", "history", err) }()

	// Counts are taken in the same transaction so they describe exactly the
	// rows that were deleted.
	var stats *models.HistoryStats
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if stats, err = s.repo.History().Stats(ctx, tx, username); err != nil {
			return err
		}
		removed, err = s.repo.History().Clear(ctx, tx, username)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	if removed > 0 {
		byType := make(map[string]int, len(stats.ByQuestionType))
		for _, entry := range stats.ByQuestionType {
			byType[entry.Label] = entry.Count
		}
		publishEvent(ctx, s.publisher, s.slog, events.NewHistoryClearedEvent(username, s.now(), events.HistoryClearedEvent{
			Removed:        removed,
			ByQuestionType: byType,
		}))
	}
	return removed, nil
}

func (s *historyService) Stats(ctx context.Context, username string) (*models.HistoryStats, error) {
	stats, err := s.repo.History().Stats(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("failed to compute history stats: %w", err)
	}
	return stats, nil
}

func (s *historyService) Feedback(ctx context.Context, username string) (feedback *models.PersonalizedFeedback, err error) {
	op := s.logger.WithOperation(ctx, "personalized_feedback", username)
	defer func() { op.LogResult("", "feedback", err) }()

	items, _, err := s.repo.History().List(ctx, nil, username, repositories.HistoryFilters{Limit: models.MaxHistoryItems})
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	samples := make([]llm.FeedbackSample, 0, len(items))
	for _, item := range items {
		if item.QuestionType == "" {
			continue
		}
		samples = append(samples, llm.FeedbackSample{SoruTipi: item.QuestionType, ZorlukSeviyesi: item.Difficulty})
	}
	if len(samples) == 0 {
		return nil, ErrHistoryEmpty
	}

	return runSequenced(ctx, s.tracker, username, sequence.WidgetFeedback, func(ctx context.Context) (*models.PersonalizedFeedback, error) {
		raw, err := s.generator.Generate(ctx, llm.FeedbackRequest(samples))
		if err != nil {
			return nil, err
		}
		return normalizer.NormalizePersonalizedFeedback(raw)
	})
}
