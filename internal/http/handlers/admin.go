package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MAximeXX/AIEval/internal/http/response"
	"github.com/MAximeXX/AIEval/internal/services"
)

type AdminHandler struct {
	analytics services.AnalyticsService
}

func NewAdminHandler(analytics services.AnalyticsService) *AdminHandler {
	return &AdminHandler{analytics: analytics}
}

func (h *AdminHandler) Progress(c *gin.Context) {
	rows, err := h.analytics.Progress(dbc(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"classes": rows})
}

func (h *AdminHandler) Charts(c *gin.Context) {
	charts, err := h.analytics.Charts(dbc(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, charts)
}
