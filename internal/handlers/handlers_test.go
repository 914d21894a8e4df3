package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/normalizer"
	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ===== MOCK SERVICES =====

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*services.LoginResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*services.Claims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*services.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if users, ok := args.Get(0).([]*models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) AnalyzeQuestion(ctx context.Context, username string, req *services.AnalyzeQuestionRequest) (*services.AnalyzeQuestionResponse, error) {
	args := m.Called(ctx, username, req)
	if resp, ok := args.Get(0).(*services.AnalyzeQuestionResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalysisService) SimilarQuiz(ctx context.Context, username string, req *services.SimilarQuizRequest) (*models.QuizBundle, error) {
	args := m.Called(ctx, username, req)
	if quiz, ok := args.Get(0).(*models.QuizBundle); ok {
		return quiz, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockVocabularyService struct {
	mock.Mock
}

func (m *MockVocabularyService) Save(ctx context.Context, username string, req *services.SaveWordRequest) (*services.SaveWordResponse, error) {
	args := m.Called(ctx, username, req)
	if resp, ok := args.Get(0).(*services.SaveWordResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVocabularyService) Remove(ctx context.Context, username, word string) error {
	return m.Called(ctx, username, word).Error(0)
}

func (m *MockVocabularyService) List(ctx context.Context, username string) ([]*models.VocabularyItem, error) {
	args := m.Called(ctx, username)
	if items, ok := args.Get(0).([]*models.VocabularyItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVocabularyService) IsSaved(ctx context.Context, username, word string) (bool, error) {
	args := m.Called(ctx, username, word)
	return args.Bool(0), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportVocabulary(ctx context.Context, username, format string) (*models.ExportFile, error) {
	args := m.Called(ctx, username, format)
	if file, ok := args.Get(0).(*models.ExportFile); ok {
		return file, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockExportService) ExportHistory(ctx context.Context, username, format string) (*models.ExportFile, error) {
	args := m.Called(ctx, username, format)
	if file, ok := args.Get(0).(*models.ExportFile); ok {
		return file, args.Error(1)
	}
	return nil, args.Error(1)
}

// withUser stands in for AuthMiddleware.
func withUser(username string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextUsernameKey, username)
		c.Next()
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ===== MIDDLEWARE =====

func TestAuthMiddleware(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("ValidateToken", "good").Return(&services.Claims{Username: "ayse"}, nil)
	auth.On("ValidateToken", "bad").Return(nil, services.ErrInvalidToken)

	router := gin.New()
	router.GET("/me", AuthMiddleware(auth), func(c *gin.Context) {
		c.String(http.StatusOK, currentUsername(c))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "ayse"},
		{name: "invalid token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Equal(t, CodeUnauthorized, decodeError(t, rec).Code)
			}
		})
	}
}

func TestRateLimiter_PerKeyBuckets(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("ayse"))
	assert.True(t, limiter.Allow("ayse"))
	assert.False(t, limiter.Allow("ayse"))
	assert.True(t, limiter.Allow("mehmet"), "buckets are per key")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("ayse"), "bucket refills over time")
}

func TestRateLimiter_Middleware(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)

	router := gin.New()
	router.POST("/generate", withUser("ayse"), limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, CodeRateLimited, decodeError(t, second).Code)
}

// ===== ERROR MAPPING =====

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed model output",
			err:        &normalizer.MalformedResponseError{Raw: "{oops", Reason: "invalid json"},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeMalformedResponse,
		},
		{
			name:       "empty result",
			err:        fmt.Errorf("analysis: %w", services.ErrEmptyResult),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeEmptyResult,
		},
		{
			name:       "network failure",
			err:        fmt.Errorf("generate: %w", services.ErrNetworkFailure),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   CodeNetworkFailure,
		},
		{
			name:       "stale response",
			err:        services.ErrStaleResponse,
			wantStatus: http.StatusConflict,
			wantCode:   CodeStaleResponse,
		},
		{
			name:       "validation",
			err:        services.ValidationErrors{{Field: "question", Message: "is required"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "not found",
			err:        services.ErrWordNotSaved,
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
		},
		{
			name:       "unexpected",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBaseHandler(testLogger())
			router := gin.New()
			router.GET("/fail", func(c *gin.Context) {
				h.handleServiceError(c, tt.err, "the question")
			})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestHandleServiceError_ContextErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "client canceled", err: fmt.Errorf("analysis: %w", context.Canceled), wantStatus: 499},
		{name: "deadline", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBaseHandler(testLogger())
			router := gin.New()
			router.GET("/fail", func(c *gin.Context) {
				h.handleServiceError(c, tt.err, "the question")
			})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleServiceError_MalformedEchoesInput(t *testing.T) {
	h := NewBaseHandler(testLogger())
	router := gin.New()
	router.GET("/fail", func(c *gin.Context) {
		h.handleServiceError(c, &normalizer.MalformedResponseError{Reason: "no json object found"}, "What is the answer?")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	var body struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no json object found", body.Details["reason"])
	assert.Equal(t, "What is the answer?", body.Details["input"])
}

// ===== HANDLERS =====

func TestAnalysisHandler_AnalyzeQuestion(t *testing.T) {
	analysis := new(MockAnalysisService)
	handler := NewAnalysisHandler(analysis, testLogger())

	router := gin.New()
	router.POST("/analysis/question", withUser("ayse"), handler.AnalyzeQuestion)

	t.Run("success", func(t *testing.T) {
		resp := &services.AnalyzeQuestionResponse{HistoryID: "h-1", Result: &models.GeneratedResult{}}
		analysis.On("AnalyzeQuestion", mock.Anything, "ayse", &services.AnalyzeQuestionRequest{Question: "Q1"}).
			Return(resp, nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analysis/question", strings.NewReader(`{"question":"Q1"}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"h-1"`)
	})

	t.Run("bad payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analysis/question", strings.NewReader(`{"question":`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeValidation, decodeError(t, rec).Code)
	})

	t.Run("network failure", func(t *testing.T) {
		analysis.On("AnalyzeQuestion", mock.Anything, "ayse", &services.AnalyzeQuestionRequest{Question: "Q2"}).
			Return(nil, services.ErrNetworkFailure).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analysis/question", strings.NewReader(`{"question":"Q2"}`)))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	analysis.AssertExpectations(t)
}

func TestStudyHandler_SaveWord(t *testing.T) {
	vocabulary := new(MockVocabularyService)
	handler := NewStudyHandler(nil, vocabulary, nil, nil, testLogger())

	router := gin.New()
	router.POST("/vocabulary", withUser("ayse"), handler.SaveWord)

	req := &services.SaveWordRequest{Word: "abundant", Meaning: "bol"}
	vocabulary.On("Save", mock.Anything, "ayse", req).
		Return(&services.SaveWordResponse{Item: &models.VocabularyItem{Word: "abundant"}, Created: true}, nil).Once()
	vocabulary.On("Save", mock.Anything, "ayse", req).
		Return(&services.SaveWordResponse{Item: &models.VocabularyItem{Word: "abundant"}, Created: false}, nil).Once()

	body := `{"word":"abundant","meaning":"bol"}`

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/vocabulary", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/vocabulary", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, second.Code)

	vocabulary.AssertExpectations(t)
}

func TestStudyHandler_RemoveWordNotSaved(t *testing.T) {
	vocabulary := new(MockVocabularyService)
	handler := NewStudyHandler(nil, vocabulary, nil, nil, testLogger())

	router := gin.New()
	router.DELETE("/vocabulary/:word", withUser("ayse"), handler.RemoveWord)

	vocabulary.On("Remove", mock.Anything, "ayse", "ghost").Return(services.ErrWordNotSaved)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/vocabulary/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudyHandler_ExportVocabulary(t *testing.T) {
	export := new(MockExportService)
	handler := NewStudyHandler(nil, nil, export, nil, testLogger())

	router := gin.New()
	router.GET("/vocabulary/export", withUser("ayse"), handler.ExportVocabulary)

	export.On("ExportVocabulary", mock.Anything, "ayse", services.FormatJSON).Return(&models.ExportFile{
		FileName:    "vocabulary-20250310.json",
		ContentType: "application/json",
		Data:        []byte(`[]`),
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vocabulary/export?format=json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "vocabulary-20250310.json")
	assert.Equal(t, "[]", rec.Body.String())
}
