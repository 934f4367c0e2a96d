package app

import (
	"net/http"
	"net/url"

	"gorm.io/gorm"

	apphttp "github.com/MAximeXX/AIEval/internal/http"
	httpH "github.com/MAximeXX/AIEval/internal/http/handlers"
	httpMW "github.com/MAximeXX/AIEval/internal/http/middleware"
	"github.com/MAximeXX/AIEval/internal/observability"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Config   *httpH.ConfigHandler
	Student  *httpH.StudentHandler
	Teacher  *httpH.TeacherHandler
	Admin    *httpH.AdminHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, services Services, clients Clients, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	ws := realtime.NewWSServer(hub, realtime.WSOptions{CheckOrigin: originChecker(cfg.CORSOrigins)})
	return Handlers{
		Health:   httpH.NewHealthHandler(db, hub),
		Auth:     httpH.NewAuthHandler(services.Auth),
		Config:   httpH.NewConfigHandler(services.Config),
		Student:  httpH.NewStudentHandler(log, services.Student, services.Gate, services.Evaluation, clients.Queue),
		Teacher:  httpH.NewTeacherHandler(services.Teacher, services.Locks),
		Admin:    httpH.NewAdminHandler(services.Analytics),
		Realtime: httpH.NewRealtimeHandler(log, hub, ws, services.RealtimeAccess),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:             log,
		ServiceName:     observability.ServiceName(""),
		CORSOrigins:     cfg.CORSOrigins,
		Metrics:         observability.Current(),
		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		AuthMiddleware:  middleware.Auth,
		ConfigHandler:   handlers.Config,
		StudentHandler:  handlers.Student,
		TeacherHandler:  handlers.Teacher,
		AdminHandler:    handlers.Admin,
		RealtimeHandler: handlers.Realtime,
	})
}

// originChecker accepts same-host upgrades, requests without an Origin
// header and the configured CORS origins.
func originChecker(extra []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(extra))
	for _, o := range extra {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
