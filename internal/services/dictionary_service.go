package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/cache"
	"github.com/SAP-F-2025/yds-assistant-service/internal/imagesearch"
	"github.com/SAP-F-2025/yds-assistant-service/internal/llm"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/normalizer"
	"github.com/SAP-F-2025/yds-assistant-service/internal/sequence"
	"github.com/SAP-F-2025/yds-assistant-service/internal/validator"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultDictionaryLanguage = "Turkish"

type DictionaryRequest struct {
	Word     string `json:"word" validate:"required,not_blank,max=100"`
	Language string `json:"language,omitempty" form:"language" validate:"omitempty,max=40"`
}

type DictionaryResult struct {
	models.DictionaryLookup
	Cached    bool             `json:"cached"`
	Challenge *ChallengeStatus `json:"challenge,omitempty"`
}

type DictionaryService interface {
	// Lookup returns the parsed entry and an illustrative image for a word.
	// Entries are cached per word and language.
	Lookup(ctx context.Context, username string, req *DictionaryRequest) (*DictionaryResult, error)
}

type dictionaryService struct {
	generator llm.Generator
	images    imagesearch.Searcher
	cache     cache.CacheService
	cacheTTL  time.Duration
	tracker   *sequence.Tracker
	study     studyTracker
	group     singleflight.Group
	logger    *ServiceLogger
	slog      *slog.Logger
	validator *validator.Validator
}

func NewDictionaryService(generator llm.Generator, images imagesearch.Searcher, store cache.CacheService, cacheTTL time.Duration, tracker *sequence.Tracker, challenges ChallengeService, logger *slog.Logger, validator *validator.Validator) DictionaryService {
	if store == nil {
		store = cache.NoopCache{}
	}
	return &dictionaryService{
		generator: generator,
		images:    images,
		cache:     store,
		cacheTTL:  cacheTTL,
		tracker:   tracker,
		study:     studyTracker{challenges: challenges, logger: logger},
		logger:    NewServiceLogger(logger, LogConfig{Service: "dictionary"}),
		slog:      logger,
		validator: validator,
	}
}

func dictionaryCacheKey(word, language string) string {
	return fmt.Sprintf("dictionary:%s:%s", strings.ToLower(language), word)
}

func (s *dictionaryService) Lookup(ctx context.Context, username string, req *DictionaryRequest) (result *DictionaryResult, err error) {
	op := s.logger.WithOperation(ctx, "dictionary_lookup", username)
	defer func() { op.LogResult(req.Word, "dictionary_entry", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	word := strings.ToLower(strings.TrimSpace(req.Word))
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultDictionaryLanguage
	}

	result, err = runSequenced(ctx, s.tracker, username, sequence.WidgetDictionary, func(ctx context.Context) (*DictionaryResult, error) {
		return s.fetch(ctx, word, language)
	})
	if err != nil {
		return nil, err
	}

	result.Challenge = s.study.track(ctx, username, models.ChallengeDictionary, nil)
	return result, nil
}

func (s *dictionaryService) fetch(ctx context.Context, word, language string) (*DictionaryResult, error) {
	key := dictionaryCacheKey(word, language)

	var cached models.DictionaryLookup
	err := s.cache.Get(ctx, key, &cached)
	if err == nil && cached.Entry != nil {
		return &DictionaryResult{DictionaryLookup: cached, Cached: true}, nil
	}
	switch {
	case err == nil, errors.Is(err, cache.ErrUndecodable):
		// stale or entry-less value: drop it so it is not served again
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			s.slog.WarnContext(ctx, "Dictionary cache purge failed", "key", key, "error", delErr)
		}
	case !errors.Is(err, cache.ErrCacheMiss):
		s.slog.WarnContext(ctx, "Dictionary cache read failed", "key", key, "error", err)
	}

	// Concurrent lookups of the same word share one upstream call. The shared
	// call outlives any single caller's cancellation.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		lookup, err := s.lookupUpstream(context.WithoutCancel(ctx), word, language)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(context.WithoutCancel(ctx), key, lookup, s.cacheTTL); err != nil {
			s.slog.WarnContext(ctx, "Dictionary cache write failed", "key", key, "error", err)
		}
		return lookup, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		lookup := *res.Val.(*models.DictionaryLookup)
		return &DictionaryResult{DictionaryLookup: lookup}, nil
	}
}

// lookupUpstream runs the entry prompt and the image search concurrently. An
// image failure degrades to no image.
func (s *dictionaryService) lookupUpstream(ctx context.Context, word, language string) (*models.DictionaryLookup, error) {
	lookup := &models.DictionaryLookup{Word: word, Language: language}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.generator.Generate(gctx, llm.DictionaryRequest(word, language))
		if err != nil {
			return err
		}
		entry := normalizer.NormalizeDictionaryEntry(raw)
		if entry.IsEmpty() {
			return normalizer.ErrEmptyResult
		}
		lookup.Entry = entry
		return nil
	})
	g.Go(func() error {
		if s.images == nil {
			return nil
		}
		url, err := s.images.FindImage(gctx, word)
		switch {
		case errors.Is(err, imagesearch.ErrNotConfigured):
		case err != nil:
			s.slog.WarnContext(ctx, "Image search failed", "word", word, "error", err)
		default:
			lookup.ImageURL = url
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lookup, nil
}
