package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/MAximeXX/AIEval/internal/data/db"
	apphttp "github.com/MAximeXX/AIEval/internal/http"
	"github.com/MAximeXX/AIEval/internal/jobs/worker"
	"github.com/MAximeXX/AIEval/internal/observability"
	"github.com/MAximeXX/AIEval/internal/platform/envutil"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/realtime"
	"github.com/MAximeXX/AIEval/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Hub      *realtime.Hub
	Worker   *worker.Worker

	server    *apphttp.Server
	dbService *dbpkg.Service
	cancel    context.CancelFunc
}

func New() (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	observability.Init(log)

	dbs, err := openDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	a, err := Assemble(log, cfg, dbs.DB(), clients)
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}
	a.dbService = dbs
	return a, nil
}

// Assemble wires an app around an already migrated database.
func Assemble(log *logger.Logger, cfg Config, db *gorm.DB, clients Clients) (*App, error) {
	hub := realtime.NewHub(log, realtime.HubOptions{
		Buffer:    cfg.RealtimeBuffer,
		Heartbeat: cfg.RealtimeHeartbeat,
	})

	reposet := wireRepos(db, log)
	serviceset, err := wireServices(db, log, cfg, reposet, clients, hub)
	if err != nil {
		return nil, err
	}
	handlerset := wireHandlers(db, log, cfg, serviceset, clients, hub)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, handlerset, middleware)
	server.OnShutdown(hub.Drain)

	return &App{
		Log:      log,
		DB:       db,
		Router:   server.Engine,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Clients:  clients,
		Hub:      hub,
		server:   server,
	}, nil
}

func openDB(log *logger.Logger, cfg Config) (*dbpkg.Service, error) {
	var (
		dbs *dbpkg.Service
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		dbs, err = dbpkg.NewSQLiteService(log, cfg.SQLitePath)
	case "postgres", "":
		dbs, err = dbpkg.NewPostgresService(log, dbpkg.PostgresDSN())
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", cfg.DBDriver, err)
	}
	if err := dbpkg.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := dbpkg.EnsureIndexes(dbs.DB()); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return dbs, nil
}

// Start launches the bus forwarder and the survey worker, when configured.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, bus.Forward(a.Hub)); err != nil {
			return fmt.Errorf("start realtime forwarder: %w", err)
		}
	}
	if a.Clients.Queue != nil {
		a.Worker = worker.New(a.Log, a.Clients.Queue, a.Repos.User, a.Services.Gate, a.Cfg.WorkerConcurrency)
		a.Worker.Start(ctx)
	}
	return nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.server == nil {
		return errors.New("app not initialized")
	}
	return a.server.Run(addr)
}

func (a *App) Serve(ln net.Listener) error {
	if a == nil || a.server == nil {
		return errors.New("app not initialized")
	}
	return a.server.Serve(ln)
}

// Shutdown drains the hub so open SSE streams return, stops accepting
// requests and waits for in-flight survey tasks before releasing the clients.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	a.Hub.Drain()
	var err error
	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}
	a.Close()
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Worker != nil {
		a.Worker.Wait()
		a.Worker = nil
	}
	a.Clients.Close()
	a.Clients = Clients{}
	if a.dbService != nil {
		_ = a.dbService.Close()
		a.dbService = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
