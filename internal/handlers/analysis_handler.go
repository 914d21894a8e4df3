package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	BaseHandler
	analysisService services.AnalysisService
}

func NewAnalysisHandler(analysisService services.AnalysisService, logger utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		BaseHandler:     NewBaseHandler(logger),
		analysisService: analysisService,
	}
}

// AnalyzeQuestion analyzes a pasted exam question
// @Summary Analyze question
// @Description Sends the question to the model and returns the normalized analysis
// @Tags analysis
// @Accept json
// @Produce json
// @Param question body services.AnalyzeQuestionRequest true "Question text"
// @Success 200 {object} services.AnalyzeQuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /analysis/question [post]
func (h *AnalysisHandler) AnalyzeQuestion(c *gin.Context) {
	var req services.AnalyzeQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.analysisService.AnalyzeQuestion(c.Request.Context(), currentUsername(c), &req)
	if err != nil {
		h.handleServiceError(c, err, req.Question)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SimilarQuiz generates practice questions like an analyzed one
// @Router /analysis/similar-quiz [post]
func (h *AnalysisHandler) SimilarQuiz(c *gin.Context) {
	var req services.SimilarQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := h.analysisService.SimilarQuiz(c.Request.Context(), currentUsername(c), &req)
	if err != nil {
		h.handleServiceError(c, err, req.Question)
		return
	}

	c.JSON(http.StatusOK, quiz)
}
