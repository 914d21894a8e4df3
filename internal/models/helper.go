package models

import "time"

type ExportSummary struct {
	TotalRows      int           `json:"total_rows"`
	Sheet          string        `json:"sheet"`
	ProcessingTime time.Duration `json:"processing_time"`
}

type ExportRequest struct {
	Format string `form:"format" json:"format" validate:"omitempty,oneof=xlsx json"`
}

// ExportFile is a rendered export ready to be streamed to the client.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	Summary     ExportSummary
}
