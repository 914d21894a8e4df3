package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatJSON = "json"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeJSON = "application/json"
)

type ExportService interface {
	ExportVocabulary(ctx context.Context, username, format string) (*models.ExportFile, error)
	ExportHistory(ctx context.Context, username, format string) (*models.ExportFile, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *ServiceLogger
	now    func() time.Time
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: NewServiceLogger(logger, LogConfig{Service: "export"}),
		now:    time.Now,
	}
}

func (s *exportService) ExportVocabulary(ctx context.Context, username, format string) (file *models.ExportFile, err error) {
	op := s.logger.WithOperation(ctx, "export_vocabulary", username)
	defer func() { op.LogResult(format, "export", err) }()

	items, err := s.repo.Vocabulary().List(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	headers := []string{"Word", "Meaning", "Saved At"}
	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		rows = append(rows, []interface{}{item.Word, item.Meaning, item.CreatedAt.Format(time.DateTime)})
	}

	return s.render("vocabulary", "Vocabulary", format, items, headers, rows)
}

func (s *exportService) ExportHistory(ctx context.Context, username, format string) (file *models.ExportFile, err error) {
	op := s.logger.WithOperation(ctx, "export_history", username)
	defer func() { op.LogResult(format, "export", err) }()

	items, _, err := s.repo.History().List(ctx, nil, username, repositories.HistoryFilters{Limit: models.MaxHistoryItems})
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	headers := []string{"Date", "Question Type", "Difficulty", "Question", "Answer"}
	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		answer := ""
		if result, err := item.Result(); err == nil && result.Kind == models.ResultQuestion && result.Question != nil {
			answer = result.Question.DogruCevap
		}
		rows = append(rows, []interface{}{
			item.CreatedAt.Format(time.DateTime), item.QuestionType, item.Difficulty, item.Question, answer,
		})
	}

	return s.render("history", "History", format, items, headers, rows)
}

func (s *exportService) render(name, sheet, format string, payload interface{}, headers []string, rows [][]interface{}) (*models.ExportFile, error) {
	start := s.now()
	if format == "" {
		format = FormatXLSX
	}

	file := &models.ExportFile{
		FileName: fmt.Sprintf("%s-%s.%s", name, start.Format("20060102"), format),
		Summary:  models.ExportSummary{TotalRows: len(rows), Sheet: sheet},
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode export: %w", err)
		}
		file.ContentType = contentTypeJSON
		file.Data = data
	case FormatXLSX:
		data, err := writeWorkbook(sheet, headers, rows)
		if err != nil {
			return nil, err
		}
		file.ContentType = contentTypeXLSX
		file.Data = data
	default:
		return nil, singleValidationError("format", "format must be one of: xlsx json", format)
	}

	file.Summary.ProcessingTime = time.Since(start)
	return file, nil
}

func writeWorkbook(sheet string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	// Write headers
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, header)
	}

	// Write data
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
