package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// PracticeHandler serves the tutor, reading, writing and question generator tools.
type PracticeHandler struct {
	BaseHandler
	practiceService services.PracticeService
}

func NewPracticeHandler(practiceService services.PracticeService, logger utils.Logger) *PracticeHandler {
	return &PracticeHandler{
		BaseHandler:     NewBaseHandler(logger),
		practiceService: practiceService,
	}
}

// @Router /tutor/messages [post]
func (h *PracticeHandler) Tutor(c *gin.Context) {
	var req services.TutorRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.practiceService.Tutor(c.Request.Context(), currentUsername(c), &req)
	if err != nil {
		h.handleServiceError(c, err, req.Message)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// @Router /reading/analyze [post]
func (h *PracticeHandler) AnalyzeReading(c *gin.Context) {
	var req services.ReadingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.practiceService.AnalyzeReading(c.Request.Context(), currentUsername(c), &req)
	if err != nil {
		h.handleServiceError(c, err, req.Passage)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Router /writing/topic [get]
func (h *PracticeHandler) WritingTopic(c *gin.Context) {
	topic, err := h.practiceService.WritingTopic(c.Request.Context(), currentUsername(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": topic})
}

// @Router /writing/analyze [post]
func (h *PracticeHandler) AnalyzeWriting(c *gin.Context) {
	var req services.WritingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.practiceService.AnalyzeWriting(c.Request.Context(), currentUsername(c), &req)
	if err != nil {
		h.handleServiceError(c, err, req.Text)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GenerateQuestions builds a quiz for one question type
// @Summary Generate questions
// @Tags generator
// @Accept json
// @Produce json
// @Param options body services.GenerateQuestionsRequest true "Generator options"
// @Success 200 {object} models.QuizBundle
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /generator/questions [post]
func (h *PracticeHandler) GenerateQuestions(c *gin.Context) {
	var req services.GenerateQuestionsRequest
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := h.practiceService.GenerateQuestions(c.Request.Context(), currentUsername(c), &req)
	if err != nil {
		h.handleServiceError(c, err, req.QuestionType)
		return
	}

	if quiz.Dropped > 0 {
		h.LogWarn(c, "Dropped unresolvable questions", "dropped", quiz.Dropped)
	}
	c.JSON(http.StatusOK, quiz)
}
