package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type DictionaryHandler struct {
	BaseHandler
	dictionaryService services.DictionaryService
}

func NewDictionaryHandler(dictionaryService services.DictionaryService, logger utils.Logger) *DictionaryHandler {
	return &DictionaryHandler{
		BaseHandler:       NewBaseHandler(logger),
		dictionaryService: dictionaryService,
	}
}

// Lookup returns the dictionary entry for a word
// @Summary Dictionary lookup
// @Tags dictionary
// @Produce json
// @Param word path string true "Word"
// @Param language query string false "Definition language"
// @Success 200 {object} services.DictionaryResult
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /dictionary/{word} [get]
func (h *DictionaryHandler) Lookup(c *gin.Context) {
	word := ParseStringParam(c, "word")
	if word == "" {
		return
	}

	req := services.DictionaryRequest{Word: word, Language: c.Query("language")}
	result, err := h.dictionaryService.Lookup(c.Request.Context(), currentUsername(c), &req)
	if err != nil {
		h.handleServiceError(c, err, word)
		return
	}
	c.JSON(http.StatusOK, result)
}
