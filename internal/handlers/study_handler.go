package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// StudyHandler serves the history, vocabulary and exam calendar routes.
type StudyHandler struct {
	BaseHandler
	historyService    services.HistoryService
	vocabularyService services.VocabularyService
	exportService     services.ExportService
	examService       services.ExamService
}

func NewStudyHandler(
	historyService services.HistoryService,
	vocabularyService services.VocabularyService,
	exportService services.ExportService,
	examService services.ExamService,
	logger utils.Logger,
) *StudyHandler {
	return &StudyHandler{
		BaseHandler:       NewBaseHandler(logger),
		historyService:    historyService,
		vocabularyService: vocabularyService,
		exportService:     exportService,
		examService:       examService,
	}
}

// ===== HISTORY =====

// ListHistory lists analyzed questions, newest first
// @Summary List history
// @Tags history
// @Produce json
// @Param question_type query string false "Filter by question type"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.HistoryPage
// @Router /history [get]
func (h *StudyHandler) ListHistory(c *gin.Context) {
	var filters repositories.HistoryFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
			Code:    CodeValidation,
		})
		return
	}

	page, err := h.historyService.List(c.Request.Context(), currentUsername(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Router /history [delete]
func (h *StudyHandler) ClearHistory(c *gin.Context) {
	removed, err := h.historyService.Clear(c.Request.Context(), currentUsername(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "History cleared", gin.H{"removed": removed})
}

// @Router /history/stats [get]
func (h *StudyHandler) HistoryStats(c *gin.Context) {
	stats, err := h.historyService.Stats(c.Request.Context(), currentUsername(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Feedback asks the coach for weak topics across the user's history
// @Router /history/feedback [post]
func (h *StudyHandler) Feedback(c *gin.Context) {
	feedback, err := h.historyService.Feedback(c.Request.Context(), currentUsername(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

// @Router /history/export [get]
func (h *StudyHandler) ExportHistory(c *gin.Context) {
	file, err := h.exportService.ExportHistory(c.Request.Context(), currentUsername(c), exportFormat(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.sendFile(c, file)
}

// ===== VOCABULARY =====

// @Router /vocabulary [get]
func (h *StudyHandler) ListVocabulary(c *gin.Context) {
	items, err := h.vocabularyService.List(c.Request.Context(), currentUsername(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// SaveWord adds a word to the user's vocabulary list
// @Summary Save word
// @Tags vocabulary
// @Accept json
// @Produce json
// @Param word body services.SaveWordRequest true "Word"
// @Success 201 {object} services.SaveWordResponse
// @Success 200 {object} services.SaveWordResponse
// @Failure 400 {object} ErrorResponse
// @Router /vocabulary [post]
func (h *StudyHandler) SaveWord(c *gin.Context) {
	var req services.SaveWordRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.vocabularyService.Save(c.Request.Context(), currentUsername(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// @Router /vocabulary/{word} [delete]
func (h *StudyHandler) RemoveWord(c *gin.Context) {
	word := ParseStringParam(c, "word")
	if word == "" {
		return
	}

	if err := h.vocabularyService.Remove(c.Request.Context(), currentUsername(c), word); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Router /vocabulary/{word} [get]
func (h *StudyHandler) IsSaved(c *gin.Context) {
	word := ParseStringParam(c, "word")
	if word == "" {
		return
	}

	saved, err := h.vocabularyService.IsSaved(c.Request.Context(), currentUsername(c), word)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"word": word, "saved": saved})
}

// @Router /vocabulary/export [get]
func (h *StudyHandler) ExportVocabulary(c *gin.Context) {
	file, err := h.exportService.ExportVocabulary(c.Request.Context(), currentUsername(c), exportFormat(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.sendFile(c, file)
}

// ===== EXAMS =====

// @Router /exams/upcoming [get]
func (h *StudyHandler) UpcomingExams(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"exams": h.examService.Upcoming()})
}

// @Router /exams/next [get]
func (h *StudyHandler) NextExam(c *gin.Context) {
	exam, err := h.examService.Next()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

func (h *StudyHandler) sendFile(c *gin.Context, file *models.ExportFile) {
	h.LogInfo(c, "Export generated", "file", file.FileName, "bytes", len(file.Data))
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// exportFormat reads ?format=, defaulting to a workbook. Unknown formats are
// rejected by the export service.
func exportFormat(c *gin.Context) string {
	var req models.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.Format == "" {
		return services.FormatXLSX
	}
	return req.Format
}
