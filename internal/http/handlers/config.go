package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/http/response"
	"github.com/MAximeXX/AIEval/internal/services"
)

type ConfigHandler struct {
	configService services.ConfigService
}

func NewConfigHandler(configService services.ConfigService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

func (h *ConfigHandler) SurveyConfig(c *gin.Context) {
	band := types.GradeBand(strings.ToLower(strings.TrimSpace(c.Query("grade_band"))))
	cfg, err := h.configService.SurveyConfig(dbc(c), band)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, cfg)
}
