package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/questionnaire"
	"github.com/MAximeXX/AIEval/internal/realtime"
	"github.com/MAximeXX/AIEval/internal/services"
)

type Services struct {
	Auth           services.AuthService
	Store          services.SubmissionStore
	Completion     services.CompletionService
	Gate           services.WriteGate
	Locks          services.LockCoordinator
	Teacher        services.TeacherService
	Student        services.StudentService
	Config         services.ConfigService
	Analytics      services.AnalyticsService
	Evaluation     services.EvaluationService
	RealtimeAccess services.RealtimeAccess
	Notifier       services.Notifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, hub *realtime.Hub) (Services, error) {
	log.Info("Wiring services...")
	bank, err := questionnaire.Load()
	if err != nil {
		return Services{}, fmt.Errorf("load questionnaire: %w", err)
	}

	var emit services.Emitter = &services.HubEmitter{Hub: hub}
	if clients.Bus != nil {
		emit = &services.BusEmitter{Bus: clients.Bus, Hub: hub, Log: log}
	}
	notify := services.NewNotifier(emit, log)

	store := services.NewSubmissionStore(db, log, repos.User, repos.SurveyResponse, repos.Composite, repos.ParentNote, repos.TeacherReview, repos.StudentLock)
	completion := services.NewCompletionService(db, log, bank, repos.User, repos.SurveyItem, store, repos.CompletionStatus, repos.LLMEval)
	locks := services.NewLockCoordinator(db, log, repos.User, store, repos.StudentLock, notify)

	return Services{
		Auth:       services.NewAuthService(db, log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Store:      store,
		Completion: completion,
		Gate:       services.NewWriteGate(db, log, store, repos.SurveyItem, completion, notify),
		Locks:      locks,
		Teacher: services.NewTeacherService(
			db, log, repos.User, repos.SurveyItem, repos.SurveyResponse, repos.TeacherReview,
			repos.StudentLock, repos.CompletionStatus, store, completion, notify,
		),
		Student:        services.NewStudentService(store),
		Config:         services.NewConfigService(log, bank, repos.SurveyItem),
		Analytics:      services.NewAnalyticsService(log, repos.User, repos.Composite, repos.CompletionStatus),
		Evaluation:     services.NewEvaluationService(db, log, clients.LLM, repos.SurveyItem, repos.LLMEval, store, completion),
		RealtimeAccess: services.NewRealtimeAccess(log, repos.User, locks),
		Notifier:       notify,
	}, nil
}
