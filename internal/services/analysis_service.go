package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/events"
	"github.com/SAP-F-2025/yds-assistant-service/internal/llm"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/normalizer"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/SAP-F-2025/yds-assistant-service/internal/sequence"
	"github.com/SAP-F-2025/yds-assistant-service/internal/validator"
	"github.com/google/uuid"
)

type AnalyzeQuestionRequest struct {
	Question string `json:"question" validate:"required,not_blank,max=20000"`
}

type AnalyzeQuestionResponse struct {
	HistoryID string                  `json:"historyId"`
	Result    *models.GeneratedResult `json:"result"`
	Challenge *ChallengeStatus        `json:"challenge,omitempty"`
}

type SimilarQuizRequest struct {
	Question string                  `json:"question" validate:"required,not_blank"`
	Result   *models.GeneratedResult `json:"result" validate:"required"`
}

type AnalysisService interface {
	// AnalyzeQuestion analyzes a pasted question, records it in the user's
	// history and credits the analyze challenge.
	AnalyzeQuestion(ctx context.Context, username string, req *AnalyzeQuestionRequest) (*AnalyzeQuestionResponse, error)

	// SimilarQuiz generates new questions on the topic of a single-question
	// analysis.
	SimilarQuiz(ctx context.Context, username string, req *SimilarQuizRequest) (*models.QuizBundle, error)
}

type analysisService struct {
	repo      repositories.Repository
	generator llm.Generator
	tracker   *sequence.Tracker
	publisher events.EventPublisher
	study     studyTracker
	logger    *ServiceLogger
	slog      *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAnalysisService(repo repositories.Repository, generator llm.Generator, tracker *sequence.Tracker, challenges ChallengeService, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AnalysisService {
	return &analysisService{
		repo:      repo,
		generator: generator,
		tracker:   tracker,
		publisher: publisher,
		study:     studyTracker{challenges: challenges, logger: logger},
		logger:    NewServiceLogger(logger, LogConfig{Service: "analysis"}),
		slog:      logger,
		validator: validator,
		now:       time.Now,
	}
}

func (s *analysisService) AnalyzeQuestion(ctx context.Context, username string, req *AnalyzeQuestionRequest) (resp *AnalyzeQuestionResponse, err error) {
	op := s.logger.WithOperation(ctx, "analyze_question", username)
	defer func() {
		id := ""
		if resp != nil {
			id = resp.HistoryID
		}
		op.LogResult(id, "history_item", err)
	}()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	question := strings.TrimSpace(req.Question)

	result, err := runSequenced(ctx, s.tracker, username, sequence.WidgetAnalyzer, func(ctx context.Context) (*models.GeneratedResult, error) {
		raw, err := s.generator.Generate(ctx, llm.AnalysisRequest(question))
		if err != nil {
			return nil, err
		}
		return normalizer.NormalizeAnalysis(raw)
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	item, err := models.NewHistoryItem(uuid.NewString(), username, question, result, now)
	if err != nil {
		return nil, err
	}
	if err = s.repo.History().Add(ctx, nil, item, models.MaxHistoryItems); err != nil {
		return nil, fmt.Errorf("failed to record analysis: %w", err)
	}

	publishEvent(ctx, s.publisher, s.slog, events.NewAnalysisRecordedEvent(username, now, events.AnalysisRecordedEvent{
		HistoryID:    item.ID,
		Kind:         string(result.Kind),
		QuestionType: item.QuestionType,
		Difficulty:   item.Difficulty,
	}))

	// The label is matched verbatim, so "Dil Bilgisi Sorusu - Tense" does not
	// satisfy a "Dil Bilgisi Sorusu" challenge.
	var details *models.ActionDetails
	if label := strings.TrimSpace(result.QuestionType()); label != "" {
		details = &models.ActionDetails{QuestionType: label}
	}
	status := s.study.track(ctx, username, models.ChallengeAnalyze, details)

	return &AnalyzeQuestionResponse{HistoryID: item.ID, Result: result, Challenge: status}, nil
}

func (s *analysisService) SimilarQuiz(ctx context.Context, username string, req *SimilarQuizRequest) (quiz *models.QuizBundle, err error) {
	op := s.logger.WithOperation(ctx, "similar_quiz", username)
	defer func() { op.LogResult("", "quiz", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Result.Kind != models.ResultQuestion || req.Result.Question == nil {
		return nil, ErrNotQuestionResult
	}

	return runSequenced(ctx, s.tracker, username, sequence.WidgetSimilar, func(ctx context.Context) (*models.QuizBundle, error) {
		raw, err := s.generator.Generate(ctx, llm.SimilarQuizRequest(strings.TrimSpace(req.Question), req.Result.Question))
		if err != nil {
			return nil, err
		}
		return normalizer.NormalizeGeneratedQuiz(raw)
	})
}
