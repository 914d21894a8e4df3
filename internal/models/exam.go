package models

type ExamSession struct {
	Name                 string `json:"name" yaml:"name"`
	ExamDate             string `json:"exam_date" yaml:"exam_date"`
	ApplicationStartDate string `json:"application_start_date" yaml:"application_start_date"`
	ApplicationEndDate   string `json:"application_end_date" yaml:"application_end_date"`
}

type UpcomingExam struct {
	ExamSession
	DaysLeft int `json:"days_left"`
}
