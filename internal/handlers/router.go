package handlers

import (
	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// RouterConfig tunes the shared middleware.
type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

type HandlerManager struct {
	authService       services.AuthService
	authHandler       *AuthHandler
	challengeHandler  *ChallengeHandler
	analysisHandler   *AnalysisHandler
	practiceHandler   *PracticeHandler
	dictionaryHandler *DictionaryHandler
	studyHandler      *StudyHandler
	limiter           *RateLimiter
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	cfg RouterConfig,
) *HandlerManager {
	return &HandlerManager{
		authService:       serviceManager.Auth(),
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		challengeHandler:  NewChallengeHandler(serviceManager.Challenge(), logger),
		analysisHandler:   NewAnalysisHandler(serviceManager.Analysis(), logger),
		practiceHandler:   NewPracticeHandler(serviceManager.Practice(), logger),
		dictionaryHandler: NewDictionaryHandler(serviceManager.Dictionary(), logger),
		studyHandler: NewStudyHandler(
			serviceManager.History(),
			serviceManager.Vocabulary(),
			serviceManager.Export(),
			serviceManager.Exam(),
			logger,
		),
		limiter: NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", hm.limiter.Middleware(), hm.authHandler.Login)
			auth.GET("/users", hm.authHandler.ListUsers)
			auth.GET("/me", AuthMiddleware(hm.authService), hm.authHandler.Me)
		}

		// Exam dates are public
		exams := v1.Group("/exams")
		{
			exams.GET("/upcoming", hm.studyHandler.UpcomingExams)
			exams.GET("/next", hm.studyHandler.NextExam)
		}

		protected := v1.Group("")
		protected.Use(AuthMiddleware(hm.authService))

		challenge := protected.Group("/challenge")
		{
			challenge.GET("", hm.challengeHandler.GetToday)
			challenge.GET("/catalog", hm.challengeHandler.Catalog)
			challenge.POST("/actions", hm.challengeHandler.TrackAction)
		}

		// Everything below calls the generative model
		generative := protected.Group("")
		generative.Use(hm.limiter.Middleware())
		{
			generative.POST("/analysis/question", hm.analysisHandler.AnalyzeQuestion)
			generative.POST("/analysis/similar-quiz", hm.analysisHandler.SimilarQuiz)

			generative.POST("/tutor/messages", hm.practiceHandler.Tutor)
			generative.POST("/reading/analyze", hm.practiceHandler.AnalyzeReading)
			generative.GET("/writing/topic", hm.practiceHandler.WritingTopic)
			generative.POST("/writing/analyze", hm.practiceHandler.AnalyzeWriting)
			generative.POST("/generator/questions", hm.practiceHandler.GenerateQuestions)

			generative.GET("/dictionary/:word", hm.dictionaryHandler.Lookup)
			generative.POST("/history/feedback", hm.studyHandler.Feedback)
		}

		history := protected.Group("/history")
		{
			history.GET("", hm.studyHandler.ListHistory)
			history.DELETE("", hm.studyHandler.ClearHistory)
			history.GET("/stats", hm.studyHandler.HistoryStats)
			history.GET("/export", hm.studyHandler.ExportHistory)
		}

		vocabulary := protected.Group("/vocabulary")
		{
			vocabulary.GET("", hm.studyHandler.ListVocabulary)
			vocabulary.POST("", hm.studyHandler.SaveWord)
			vocabulary.GET("/export", hm.studyHandler.ExportVocabulary)
			vocabulary.GET("/:word", hm.studyHandler.IsSaved)
			vocabulary.DELETE("/:word", hm.studyHandler.RemoveWord)
		}
	}
}
