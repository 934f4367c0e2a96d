package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/http/response"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/services"
)

var (
	errInvalidBody = errors.New("请求格式错误")
	errInvalidID   = errors.New("无效的学生编号")
	errNotLoggedIn = errors.New("未登录或登录已过期")

	errMissingLockFlag = domainerrs.Invalid("is_locked", "缺少锁定状态")
)

func actor(c *gin.Context) *types.User {
	return services.ActorFromContext(c.Request.Context())
}

func dbc(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidBody)
		return false
	}
	return true
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func requireActor(c *gin.Context) (*types.User, bool) {
	u := actor(c)
	if u == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errNotLoggedIn)
		return nil, false
	}
	return u, true
}
