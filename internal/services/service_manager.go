package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/cache"
	"github.com/SAP-F-2025/yds-assistant-service/internal/challenge"
	"github.com/SAP-F-2025/yds-assistant-service/internal/events"
	"github.com/SAP-F-2025/yds-assistant-service/internal/imagesearch"
	"github.com/SAP-F-2025/yds-assistant-service/internal/llm"
	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/SAP-F-2025/yds-assistant-service/internal/sequence"
	"github.com/SAP-F-2025/yds-assistant-service/internal/validator"
)

// ServiceManager hands out the services the HTTP layer depends on.
type ServiceManager interface {
	Auth() AuthService
	Challenge() ChallengeService
	Analysis() AnalysisService
	Practice() PracticeService
	Dictionary() DictionaryService
	History() HistoryService
	Vocabulary() VocabularyService
	Export() ExportService
	Exam() ExamService
}

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	Repository   repositories.Repository
	Generator    llm.Generator
	Images       imagesearch.Searcher
	Cache        cache.CacheService
	Publisher    events.EventPublisher
	Engine       *challenge.Engine
	Validator    *validator.Validator
	Logger       *slog.Logger
	ExamSessions []models.ExamSession
	Location     *time.Location

	JWTSecret          string
	JWTTTL             time.Duration
	DictionaryCacheTTL time.Duration
}

type serviceManager struct {
	auth       AuthService
	challenge  ChallengeService
	analysis   AnalysisService
	practice   PracticeService
	dictionary DictionaryService
	history    HistoryService
	vocabulary VocabularyService
	export     ExportService
	exam       ExamService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	tracker := sequence.NewTracker()
	challenges := NewChallengeService(deps.Repository, deps.Engine, deps.Publisher, deps.Logger, deps.Validator)

	return &serviceManager{
		auth:       NewAuthService(deps.Repository, deps.Logger, deps.Validator, deps.JWTSecret, deps.JWTTTL),
		challenge:  challenges,
		analysis:   NewAnalysisService(deps.Repository, deps.Generator, tracker, challenges, deps.Publisher, deps.Logger, deps.Validator),
		practice:   NewPracticeService(deps.Generator, tracker, challenges, deps.Logger, deps.Validator),
		dictionary: NewDictionaryService(deps.Generator, deps.Images, deps.Cache, deps.DictionaryCacheTTL, tracker, challenges, deps.Logger, deps.Validator),
		history:    NewHistoryService(deps.Repository, deps.Generator, tracker, deps.Publisher, deps.Logger),
		vocabulary: NewVocabularyService(deps.Repository, deps.Publisher, deps.Logger, deps.Validator),
		export:     NewExportService(deps.Repository, deps.Logger),
		exam:       NewExamService(deps.ExamSessions, deps.Location),
	}
}

func (m *serviceManager) Auth() AuthService             { return m.auth }
func (m *serviceManager) Challenge() ChallengeService   { return m.challenge }
func (m *serviceManager) Analysis() AnalysisService     { return m.analysis }
func (m *serviceManager) Practice() PracticeService     { return m.practice }
func (m *serviceManager) Dictionary() DictionaryService { return m.dictionary }
func (m *serviceManager) History() HistoryService       { return m.history }
func (m *serviceManager) Vocabulary() VocabularyService { return m.vocabulary }
func (m *serviceManager) Export() ExportService         { return m.export }
func (m *serviceManager) Exam() ExamService             { return m.exam }
