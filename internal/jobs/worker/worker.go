package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/jobs"
	"github.com/MAximeXX/AIEval/internal/observability"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/services"
)

const (
	msgUserNotFound = "用户不存在"
	msgUnknownType  = "未知的任务类型"
	msgSaveFailed   = "保存失败，请稍后重试"

	popTimeout   = 5 * time.Second
	errorBackoff = time.Second
	statusWait   = 3 * time.Second
)

var errUnknownType = errors.New(msgUnknownType)

// Worker drains the survey task queue. Writes go through the WriteGate, so a
// locked student gets a failed task carrying the locked message.
type Worker struct {
	log         *logger.Logger
	queue       jobs.Queue
	users       repos.UserRepo
	gate        services.WriteGate
	concurrency int
	wg          sync.WaitGroup
}

func New(baseLog *logger.Logger, queue jobs.Queue, users repos.UserRepo, gate services.WriteGate, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		log:         baseLog.With("component", "SurveyTaskWorker"),
		queue:       queue,
		users:       users,
		gate:        gate,
		concurrency: concurrency,
	}
}

// Start launches the loops; they exit when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting survey task worker", "concurrency", w.concurrency)
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func(n int) {
			defer w.wg.Done()
			w.loop(ctx, n)
		}(i)
	}
}

// Wait blocks until every loop has returned.
func (w *Worker) Wait() { w.wg.Wait() }

func (w *Worker) loop(ctx context.Context, n int) {
	for {
		if ctx.Err() != nil {
			w.log.Info("Survey task loop stopped", "loop", n)
			return
		}
		task, err := w.queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Warn("Task pop failed", "loop", n, "error", err)
			sleep(ctx, errorBackoff)
			continue
		}
		if task == nil {
			continue
		}
		w.runTask(ctx, task)
	}
}

func (w *Worker) runTask(ctx context.Context, task *jobs.Task) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Task handler panic", "task_id", task.ID, "type", task.Type, "panic", r)
			w.finish(ctx, task.ID, errors.New(msgSaveFailed))
		}
	}()
	switch task.Type {
	case jobs.TaskStudentSurveySave:
		w.finish(ctx, task.ID, w.handleStudentSurvey(ctx, task))
	default:
		w.log.Warn("Unknown task type", "task_id", task.ID, "type", task.Type)
		w.finish(ctx, task.ID, errUnknownType)
	}
}

// Process runs one task synchronously.
func (w *Worker) Process(ctx context.Context, task *jobs.Task) { w.runTask(ctx, task) }

func (w *Worker) handleStudentSurvey(ctx context.Context, task *jobs.Task) error {
	dbc := dbctx.Context{Ctx: ctx}
	id, err := uuid.Parse(task.StudentID)
	if err != nil {
		return domainerrs.NotFound("user", msgUserNotFound)
	}
	student, err := w.users.GetByID(dbc, id)
	if err != nil {
		return fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return domainerrs.NotFound("user", msgUserNotFound)
	}

	var payload jobs.SurveySavePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return domainerrs.Invalid("payload", "任务数据无效")
	}
	composite := types.Composite{}
	if payload.Composite != nil {
		composite = *payload.Composite
	}
	if payload.Items == nil {
		payload.Items = []types.SurveyAnswer{}
	}
	writes := []types.SectionWrite{
		types.SurveyWrite{Items: payload.Items},
		types.CompositeWrite{Composite: composite.Normalized()},
	}
	for _, write := range writes {
		if _, err := w.gate.AttemptStudentWrite(dbc, student, student.ID, write); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) finish(ctx context.Context, taskID string, err error) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWait)
	defer cancel()
	if err == nil {
		observability.Current().ObserveSurveyTask(string(jobs.StatusCompleted))
		if serr := w.queue.Complete(sctx, taskID); serr != nil {
			w.log.Warn("Mark task completed failed", "task_id", taskID, "error", serr)
		}
		return
	}
	observability.Current().ObserveSurveyTask(string(jobs.StatusFailed))
	msg := publicMessage(err)
	if msg == msgSaveFailed {
		w.log.Error("Survey task failed", "task_id", taskID, "error", err)
	} else {
		w.log.Info("Survey task rejected", "task_id", taskID, "reason", msg)
	}
	if serr := w.queue.Fail(sctx, taskID, msg); serr != nil {
		w.log.Warn("Mark task failed failed", "task_id", taskID, "error", serr)
	}
}

// publicMessage keeps domain messages and hides everything else.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, domainerrs.ErrLocked),
		errors.Is(err, domainerrs.ErrInvalidArgument),
		errors.Is(err, domainerrs.ErrForbidden),
		errors.Is(err, domainerrs.ErrNotFound),
		errors.Is(err, domainerrs.ErrUnauthorized):
		return err.Error()
	case errors.Is(err, errUnknownType):
		return msgUnknownType
	default:
		return msgSaveFailed
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
