package services

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultExamSessions are the published YDS sessions. Deployments extend the
// list with EXAM_CALENDAR_FILE.
var DefaultExamSessions = []models.ExamSession{
	{Name: "YDS/2 2024", ExamDate: "2024-10-27", ApplicationStartDate: "2024-08-20", ApplicationEndDate: "2024-08-28"},
	{Name: "YDS/1 2025", ExamDate: "2025-04-06", ApplicationStartDate: "2025-02-12", ApplicationEndDate: "2025-02-19"},
	{Name: "YDS/2 2025", ExamDate: "2025-10-26", ApplicationStartDate: "2025-08-19", ApplicationEndDate: "2025-08-27"},
	{Name: "YDS/1 2026", ExamDate: "2026-04-05", ApplicationStartDate: "2026-02-11", ApplicationEndDate: "2026-02-18"},
}

const upcomingExamLimit = 3

type examCalendarFile struct {
	Sessions []models.ExamSession `yaml:"sessions"`
}

// LoadExamSessions reads sessions from a YAML file and merges them with the
// defaults. A session in the file replaces a default with the same name.
func LoadExamSessions(path string) ([]models.ExamSession, error) {
	if path == "" {
		return DefaultExamSessions, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exam calendar: %w", err)
	}
	var file examCalendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse exam calendar: %w", err)
	}

	byName := make(map[string]int)
	sessions := append([]models.ExamSession(nil), DefaultExamSessions...)
	for i, s := range sessions {
		byName[s.Name] = i
	}
	for _, s := range file.Sessions {
		if _, err := time.Parse(models.DateLayout, s.ExamDate); err != nil {
			return nil, fmt.Errorf("exam session %q: invalid exam_date %q", s.Name, s.ExamDate)
		}
		if i, ok := byName[s.Name]; ok {
			sessions[i] = s
			continue
		}
		byName[s.Name] = len(sessions)
		sessions = append(sessions, s)
	}
	return sessions, nil
}

type ExamService interface {
	// Upcoming lists the next sessions on or after today, soonest first.
	Upcoming() []models.UpcomingExam
	Next() (*models.UpcomingExam, error)
}

type examService struct {
	sessions []models.ExamSession
	loc      *time.Location
	now      func() time.Time
}

func NewExamService(sessions []models.ExamSession, loc *time.Location) ExamService {
	if loc == nil {
		loc = time.UTC
	}
	return &examService{sessions: sessions, loc: loc, now: time.Now}
}

func (s *examService) Upcoming() []models.UpcomingExam {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	upcoming := make([]models.UpcomingExam, 0, len(s.sessions))
	for _, session := range s.sessions {
		examDate, err := time.ParseInLocation(models.DateLayout, session.ExamDate, s.loc)
		if err != nil || examDate.Before(today) {
			continue
		}
		days := int(math.Ceil(examDate.Sub(now).Hours() / 24))
		if days < 0 {
			days = 0
		}
		upcoming = append(upcoming, models.UpcomingExam{ExamSession: session, DaysLeft: days})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ExamDate < upcoming[j].ExamDate
	})
	if len(upcoming) > upcomingExamLimit {
		upcoming = upcoming[:upcomingExamLimit]
	}
	return upcoming
}

func (s *examService) Next() (*models.UpcomingExam, error) {
	upcoming := s.Upcoming()
	if len(upcoming) == 0 {
		return nil, ErrExamCalendarEmpty
	}
	return &upcoming[0], nil
}
