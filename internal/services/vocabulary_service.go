package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/events"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/SAP-F-2025/yds-assistant-service/internal/validator"
	"github.com/google/uuid"
)

type SaveWordRequest struct {
	Word    string `json:"word" validate:"required,not_blank,max=200"`
	Meaning string `json:"meaning,omitempty" validate:"omitempty,max=2000"`
}

type SaveWordResponse struct {
	Item    *models.VocabularyItem `json:"item"`
	Created bool                   `json:"created"`
}

type VocabularyService interface {
	// Save adds a word to the user's list. Words are stored lower-cased and
	// saving an existing word is a no-op.
	Save(ctx context.Context, username string, req *SaveWordRequest) (*SaveWordResponse, error)
	Remove(ctx context.Context, username, word string) error
	List(ctx context.Context, username string) ([]*models.VocabularyItem, error)
	IsSaved(ctx context.Context, username, word string) (bool, error)
}

type vocabularyService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *ServiceLogger
	slog      *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewVocabularyService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) VocabularyService {
	return &vocabularyService{
		repo:      repo,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "vocabulary"}),
		slog:      logger,
		validator: validator,
		now:       time.Now,
	}
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

func (s *vocabularyService) Save(ctx context.Context, username string, req *SaveWordRequest) (resp *SaveWordResponse, err error) {
	op := s.logger.WithOperation(ctx, "save_word", username)
	defer func() { op.LogResult(normalizeWord(req.Word), "vocabulary_item", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	item := &models.VocabularyItem{
		ID:        uuid.NewString(),
		Username:  username,
		Word:      normalizeWord(req.Word),
		Meaning:   strings.TrimSpace(req.Meaning),
		CreatedAt: now,
	}
	created, err := s.repo.Vocabulary().Add(ctx, nil, item)
	if err != nil {
		return nil, fmt.Errorf("failed to save word: %w", err)
	}

	if created {
		publishEvent(ctx, s.publisher, s.slog, events.NewWordSavedEvent(username, item.Word, now))
	}
	return &SaveWordResponse{Item: item, Created: created}, nil
}

func (s *vocabularyService) Remove(ctx context.Context, username, word string) (err error) {
	op := s.logger.WithOperation(ctx, "remove_word", username)
	defer func() { op.LogResult(normalizeWord(word), "vocabulary_item", err) }()

	word = normalizeWord(word)
	if word == "" {
		return singleValidationError("word", "word is required", word)
	}

	removed, err := s.repo.Vocabulary().Remove(ctx, nil, username, word)
	if err != nil {
		return fmt.Errorf("failed to remove word: %w", err)
	}
	if !removed {
		return ErrWordNotSaved
	}
	return nil
}

func (s *vocabularyService) List(ctx context.Context, username string) ([]*models.VocabularyItem, error) {
	items, err := s.repo.Vocabulary().List(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list vocabulary: %w", err)
	}
	return items, nil
}

func (s *vocabularyService) IsSaved(ctx context.Context, username, word string) (bool, error) {
	word = normalizeWord(word)
	if word == "" {
		return false, nil
	}
	saved, err := s.repo.Vocabulary().Exists(ctx, nil, username, word)
	if err != nil {
		return false, fmt.Errorf("failed to check vocabulary: %w", err)
	}
	return saved, nil
}
