package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/http/response"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/realtime"
	"github.com/MAximeXX/AIEval/internal/services"
)

type RealtimeHandler struct {
	Log    *logger.Logger
	Hub    *realtime.Hub
	WS     *realtime.WSServer
	Access services.RealtimeAccess
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub, ws *realtime.WSServer, access services.RealtimeAccess) *RealtimeHandler {
	return &RealtimeHandler{
		Log:    log.With("handler", "RealtimeHandler"),
		Hub:    hub,
		WS:     ws,
		Access: access,
	}
}

// Stream serves SSE for every requested scope. Without a scope parameter a
// student gets their own scope and a teacher their class scope.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	scopes, err := h.requestedScopes(u, c.QueryArray("scope"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	client, ok := h.open(c, u, scopes)
	if !ok {
		return
	}
	defer h.Hub.Close(client)
	h.Log.Info("SSE stream open", "user_id", u.ID, "client_id", client.ID, "scopes", len(scopes))
	h.Hub.ServeSSE(c.Writer, c.Request, client)
}

func (h *RealtimeHandler) StudentWS(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	h.serveWS(c, u, realtime.StudentScope(id))
}

func (h *RealtimeHandler) ClassWS(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	h.serveWS(c, u, realtime.ClassScope(c.Param("key")))
}

func (h *RealtimeHandler) serveWS(c *gin.Context, u *types.User, scope realtime.Scope) {
	client, ok := h.open(c, u, []realtime.Scope{scope})
	if !ok {
		return
	}
	h.Log.Info("Websocket open", "user_id", u.ID, "client_id", client.ID, "scope", scope)
	h.WS.Serve(c.Writer, c.Request, client)
}

// open authorizes every scope before registering the client, then queues one
// snapshot per scope so the subscriber can reconcile.
func (h *RealtimeHandler) open(c *gin.Context, u *types.User, scopes []realtime.Scope) (*realtime.Client, bool) {
	for _, s := range scopes {
		if err := h.Access.Authorize(dbc(c), u, s); err != nil {
			response.RespondServiceError(c, err)
			return nil, false
		}
	}
	client, err := h.Hub.NewClient(u.ID)
	if err != nil {
		response.RespondError(c, http.StatusServiceUnavailable, "channel_unavailable", err)
		return nil, false
	}
	for _, s := range scopes {
		if err := h.Hub.Subscribe(client, s); err != nil {
			h.Hub.Close(client)
			response.RespondError(c, http.StatusServiceUnavailable, "channel_unavailable", err)
			return nil, false
		}
		ev, err := h.Access.Snapshot(dbc(c), s)
		if err != nil {
			h.Log.Warn("Realtime snapshot failed", "scope", s, "error", err)
			ev = realtime.Resync()
		}
		h.Hub.Send(client, ev)
	}
	return client, true
}

func (h *RealtimeHandler) requestedScopes(u *types.User, raw []string) ([]realtime.Scope, error) {
	if len(raw) == 0 {
		switch u.Role {
		case types.RoleStudent:
			return []realtime.Scope{realtime.StudentScope(u.ID)}, nil
		case types.RoleTeacher:
			return []realtime.Scope{realtime.ClassScope(u.ClassKey())}, nil
		default:
			return nil, domainerrs.Invalid("scope", "请指定订阅范围")
		}
	}
	out := make([]realtime.Scope, 0, len(raw))
	seen := make(map[realtime.Scope]bool, len(raw))
	for _, r := range raw {
		s, err := realtime.ParseScope(r)
		if err != nil {
			return nil, domainerrs.Invalid("scope", "无效的订阅范围")
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}
