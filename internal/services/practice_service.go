package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/yds-assistant-service/internal/llm"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/normalizer"
	"github.com/SAP-F-2025/yds-assistant-service/internal/sequence"
	"github.com/SAP-F-2025/yds-assistant-service/internal/validator"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/sync/errgroup"
)

// ===== REQUESTS / RESPONSES =====

type TutorRequest struct {
	History []models.ChatMessage `json:"history" validate:"omitempty,max=100,dive"`
	Message string               `json:"message" validate:"required,not_blank,max=4000"`
}

type TutorReply struct {
	Text      string           `json:"text"`
	HTML      string           `json:"html"`
	Challenge *ChallengeStatus `json:"challenge,omitempty"`
}

type ReadingRequest struct {
	Passage string `json:"passage" validate:"required,not_blank,max=20000"`
}

type ReadingResult struct {
	models.ReadingAnalysis
	Challenge *ChallengeStatus `json:"challenge,omitempty"`
}

type WritingRequest struct {
	Topic string `json:"topic" validate:"required,not_blank,max=500"`
	Text  string `json:"text" validate:"required,not_blank,max=20000"`
}

type WritingResult struct {
	Analysis  *models.WritingAnalysis `json:"analysis"`
	Challenge *ChallengeStatus        `json:"challenge,omitempty"`
}

type GenerateQuestionsRequest struct {
	QuestionType string `json:"questionType" validate:"required,question_type"`
	ExamType     string `json:"examType,omitempty" validate:"omitempty,exam_type"`
	Difficulty   string `json:"difficulty,omitempty" validate:"omitempty,difficulty_level"`
	Count        int    `json:"count,omitempty" validate:"omitempty,gte=1,lte=10"`
	Direction    string `json:"direction,omitempty" validate:"omitempty,oneof=en_to_tr tr_to_en"`
}

type PracticeService interface {
	Tutor(ctx context.Context, username string, req *TutorRequest) (*TutorReply, error)
	AnalyzeReading(ctx context.Context, username string, req *ReadingRequest) (*ReadingResult, error)
	WritingTopic(ctx context.Context, username string) (string, error)
	AnalyzeWriting(ctx context.Context, username string, req *WritingRequest) (*WritingResult, error)
	GenerateQuestions(ctx context.Context, username string, req *GenerateQuestionsRequest) (*models.QuizBundle, error)
}

type practiceService struct {
	generator llm.Generator
	tracker   *sequence.Tracker
	study     studyTracker
	markdown  goldmark.Markdown
	logger    *ServiceLogger
	validator *validator.Validator
}

func NewPracticeService(generator llm.Generator, tracker *sequence.Tracker, challenges ChallengeService, logger *slog.Logger, validator *validator.Validator) PracticeService {
	return &practiceService{
		generator: generator,
		tracker:   tracker,
		study:     studyTracker{challenges: challenges, logger: logger},
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:    NewServiceLogger(logger, LogConfig{Service: "practice"}),
		validator: validator,
	}
}

// ===== TUTOR =====

func (s *practiceService) Tutor(ctx context.Context, username string, req *TutorRequest) (reply *TutorReply, err error) {
	op := s.logger.WithOperation(ctx, "tutor_message", username)
	defer func() { op.LogResult("", "tutor", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	text, err := runSequenced(ctx, s.tracker, username, sequence.WidgetTutor, func(ctx context.Context) (string, error) {
		return generateText(ctx, s.generator, llm.TutorRequest(req.History, strings.TrimSpace(req.Message)))
	})
	if err != nil {
		return nil, err
	}

	var html bytes.Buffer
	if err = s.markdown.Convert([]byte(text), &html); err != nil {
		return nil, err
	}

	return &TutorReply{
		Text:      text,
		HTML:      html.String(),
		Challenge: s.study.track(ctx, username, models.ChallengeTutor, nil),
	}, nil
}

// ===== READING =====

// AnalyzeReading asks for the summary and the comprehension questions in
// parallel. A passage that yields no usable questions still returns its
// summary.
func (s *practiceService) AnalyzeReading(ctx context.Context, username string, req *ReadingRequest) (result *ReadingResult, err error) {
	op := s.logger.WithOperation(ctx, "analyze_reading", username)
	defer func() { op.LogResult("", "reading", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	passage := strings.TrimSpace(req.Passage)

	analysis, err := runSequenced(ctx, s.tracker, username, sequence.WidgetReading, func(ctx context.Context) (*models.ReadingAnalysis, error) {
		analysis := &models.ReadingAnalysis{}
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			raw, err := s.generator.Generate(gctx, llm.ReadingSummaryRequest(passage))
			if err != nil {
				return err
			}
			analysis.Summary, analysis.Vocabulary, err = normalizer.NormalizeReadingSummary(raw)
			return err
		})

		g.Go(func() error {
			raw, err := s.generator.Generate(gctx, llm.ReadingQuestionsRequest(passage))
			if err != nil {
				return err
			}
			questions, err := normalizer.NormalizeGeneratedQuiz(raw)
			if errors.Is(err, normalizer.ErrEmptyResult) {
				err = nil
			}
			analysis.Questions = questions
			return err
		})

		if err := g.Wait(); err != nil {
			return nil, err
		}
		return analysis, nil
	})
	if err != nil {
		return nil, err
	}

	return &ReadingResult{
		ReadingAnalysis: *analysis,
		Challenge:       s.study.track(ctx, username, models.ChallengeReading, nil),
	}, nil
}

// ===== WRITING =====

func (s *practiceService) WritingTopic(ctx context.Context, username string) (topic string, err error) {
	op := s.logger.WithOperation(ctx, "writing_topic", username)
	defer func() { op.LogResult("", "writing", err) }()

	text, err := generateText(ctx, s.generator, llm.WritingTopicRequest())
	if err != nil {
		return "", err
	}
	return strings.Trim(text, "\"'* \n"), nil
}

func (s *practiceService) AnalyzeWriting(ctx context.Context, username string, req *WritingRequest) (result *WritingResult, err error) {
	op := s.logger.WithOperation(ctx, "analyze_writing", username)
	defer func() { op.LogResult("", "writing", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	analysis, err := runSequenced(ctx, s.tracker, username, sequence.WidgetWriting, func(ctx context.Context) (*models.WritingAnalysis, error) {
		raw, err := s.generator.Generate(ctx, llm.WritingAnalysisRequest(strings.TrimSpace(req.Topic), strings.TrimSpace(req.Text)))
		if err != nil {
			return nil, err
		}
		return normalizer.NormalizeWritingAnalysis(raw)
	})
	if err != nil {
		return nil, err
	}

	return &WritingResult{
		Analysis:  analysis,
		Challenge: s.study.track(ctx, username, models.ChallengeWriting, nil),
	}, nil
}

// ===== QUESTION GENERATOR =====

func (s *practiceService) GenerateQuestions(ctx context.Context, username string, req *GenerateQuestionsRequest) (quiz *models.QuizBundle, err error) {
	op := s.logger.WithOperation(ctx, "generate_questions", username)
	defer func() { op.LogResult(req.QuestionType, "quiz", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	opts := generatorOptions(req)

	return runSequenced(ctx, s.tracker, username, sequence.WidgetGenerator, func(ctx context.Context) (*models.QuizBundle, error) {
		raw, err := s.generator.Generate(ctx, llm.GeneratorRequest(opts))
		if err != nil {
			return nil, err
		}
		if opts.QuestionType == models.QuestionCloze {
			payload, err := normalizer.DecodeClozePayload(raw)
			if err != nil {
				return nil, err
			}
			return normalizer.NormalizeQuizBundle(payload)
		}
		return normalizer.NormalizeGeneratedQuiz(raw)
	})
}

func generatorOptions(req *GenerateQuestionsRequest) llm.GeneratorOptions {
	qt, _ := models.CanonicalQuestionType(req.QuestionType)
	opts := llm.GeneratorOptions{
		QuestionType: qt,
		ExamType:     models.ExamType(req.ExamType),
		Difficulty:   models.DifficultyLevel(req.Difficulty),
		Count:        req.Count,
		Direction:    llm.TranslationDirection(req.Direction),
	}
	if opts.ExamType == "" {
		opts.ExamType = models.ExamYDS
	}
	if opts.Difficulty == "" {
		opts.Difficulty = models.DifficultyIntermediate
	}
	if opts.Count == 0 {
		opts.Count = 5
		if qt == models.QuestionCloze || qt == models.QuestionParagraph {
			opts.Count = 1
		}
	}
	if opts.Direction == "" {
		opts.Direction = llm.EnglishToTurkish
	}
	return opts
}
