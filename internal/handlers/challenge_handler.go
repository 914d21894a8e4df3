package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ChallengeHandler struct {
	BaseHandler
	challengeService services.ChallengeService
}

func NewChallengeHandler(challengeService services.ChallengeService, logger utils.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		BaseHandler:      NewBaseHandler(logger),
		challengeService: challengeService,
	}
}

// GetToday returns today's challenge and the current streak
// @Summary Get today's challenge
// @Tags challenge
// @Produce json
// @Success 200 {object} services.ChallengeStatus
// @Failure 401 {object} ErrorResponse
// @Router /challenge [get]
func (h *ChallengeHandler) GetToday(c *gin.Context) {
	status, err := h.challengeService.GetToday(c.Request.Context(), currentUsername(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// TrackAction credits a client-side action, such as finishing a quiz
// @Summary Track challenge action
// @Tags challenge
// @Accept json
// @Produce json
// @Param action body services.TrackActionRequest true "Action"
// @Success 200 {object} services.ChallengeStatus
// @Failure 400 {object} ErrorResponse
// @Router /challenge/actions [post]
func (h *ChallengeHandler) TrackAction(c *gin.Context) {
	var req services.TrackActionRequest
	if !bindJSON(c, &req) {
		return
	}

	status, err := h.challengeService.Track(c.Request.Context(), currentUsername(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if status.JustCompleted {
		h.LogInfo(c, "Daily challenge completed", "streak", status.Streak)
	}
	c.JSON(http.StatusOK, status)
}

func (h *ChallengeHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.challengeService.Catalog())
}
