package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MAximeXX/AIEval/internal/http/response"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Identity string `json:"identity"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Identity, req.Username, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	u := actor(c)
	if u == nil {
		response.RespondServiceError(c, domainerrs.ErrUnauthorized)
		return
	}
	response.RespondOK(c, gin.H{"user": services.NewUserSummary(u)})
}
