package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/MAximeXX/AIEval/internal/domain"
	httpH "github.com/MAximeXX/AIEval/internal/http/handlers"
	httpMW "github.com/MAximeXX/AIEval/internal/http/middleware"
	"github.com/MAximeXX/AIEval/internal/observability"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	ConfigHandler   *httpH.ConfigHandler
	StudentHandler  *httpH.StudentHandler
	TeacherHandler  *httpH.TeacherHandler
	AdminHandler    *httpH.AdminHandler
	RealtimeHandler *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Public
		if cfg.AuthHandler != nil {
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
		if cfg.ConfigHandler != nil {
			api.GET("/config/survey", cfg.ConfigHandler.SurveyConfig)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}
	am := cfg.AuthMiddleware

	protected := api.Group("/")
	protected.Use(am.RequireAuth())
	{
		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/realtime/stream", cfg.RealtimeHandler.Stream)
		}
	}

	if h := cfg.StudentHandler; h != nil {
		me := protected.Group("/students/me", am.RequireRole(types.RoleStudent))
		me.GET("/submission", h.Submission)
		me.GET("/survey", h.GetSurvey)
		me.PUT("/survey", h.PutSurvey)
		me.POST("/survey/async", h.EnqueueSurvey)
		me.GET("/composite", h.GetComposite)
		me.PUT("/composite", h.PutComposite)
		me.GET("/parent-note", h.GetParentNote)
		me.PUT("/parent-note", h.PutParentNote)
		me.GET("/teacher-review", h.TeacherReview)
		me.POST("/llm-eval", h.LLMEval)
		me.GET("/tasks/:id", h.TaskStatus)
	}

	if h := cfg.TeacherHandler; h != nil {
		staff := protected.Group("/teacher", am.RequireRole(types.RoleTeacher, types.RoleAdmin))
		staff.GET("/class/students", h.Roster)
		staff.GET("/students/:id", h.StudentDetail)
		staff.PUT("/students/:id/survey", h.OverrideSurvey)
		staff.PUT("/students/:id/composite", h.OverrideComposite)
		staff.PUT("/students/:id/lock", h.SetLock)
		staff.POST("/students/:id/review", h.SubmitReview)
	}

	if h := cfg.AdminHandler; h != nil {
		admin := protected.Group("/admin", am.RequireRole(types.RoleAdmin))
		admin.GET("/progress", h.Progress)
		admin.GET("/charts", h.Charts)
	}

	// Websockets authenticate through the token query parameter.
	if h := cfg.RealtimeHandler; h != nil {
		ws := r.Group("/ws", am.RequireAuth())
		ws.GET("/student/:id", h.StudentWS)
		ws.GET("/class/:key", h.ClassWS)
	}

	return r
}
