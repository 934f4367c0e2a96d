package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/platform/envutil"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

const (
	DefaultQueueKey  = "butterfly:queue:student-survey"
	StatusKeyPrefix  = "butterfly:task-status:"
	DefaultStatusTTL = time.Hour

	TaskStudentSurveySave = "student_survey_save"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

// Task is the JSON document pushed onto the queue list.
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	StudentID string          `json:"student_id"`
	Payload   json.RawMessage `json:"payload"`
}

// SurveySavePayload is the body of a student_survey_save task. A nil
// composite is saved as the empty default.
type SurveySavePayload struct {
	Items     []types.SurveyAnswer `json:"items"`
	Composite *types.Composite     `json:"composite,omitempty"`
}

type StatusRecord struct {
	TaskID    string     `json:"task_id"`
	Status    TaskStatus `json:"status"`
	StudentID string     `json:"student_id"`
	Message   string     `json:"message,omitempty"`
}

type Queue interface {
	EnqueueStudentSurvey(ctx context.Context, studentID uuid.UUID, payload SurveySavePayload) (string, error)
	// Status returns nil when the task is unknown or its status expired.
	Status(ctx context.Context, taskID string) (*StatusRecord, error)
	// Pop blocks up to timeout and returns nil when nothing arrived.
	Pop(ctx context.Context, timeout time.Duration) (*Task, error)
	Complete(ctx context.Context, taskID string) error
	Fail(ctx context.Context, taskID, message string) error
	Close() error
}

type QueueConfig struct {
	Key       string
	StatusTTL time.Duration
}

func QueueConfigFromEnv() QueueConfig {
	return QueueConfig{
		Key:       envutil.String("TASK_QUEUE_KEY", DefaultQueueKey),
		StatusTTL: envutil.Duration("TASK_STATUS_TTL", DefaultStatusTTL),
	}
}

type redisQueue struct {
	log *logger.Logger
	rdb *goredis.Client
	cfg QueueConfig
}

func NewRedisQueue(log *logger.Logger, rdb *goredis.Client, cfg QueueConfig) Queue {
	if cfg.Key == "" {
		cfg.Key = DefaultQueueKey
	}
	if cfg.StatusTTL <= 0 {
		cfg.StatusTTL = DefaultStatusTTL
	}
	return &redisQueue{log: log.With("component", "TaskQueue"), rdb: rdb, cfg: cfg}
}

func statusKey(taskID string) string { return StatusKeyPrefix + taskID }

func (q *redisQueue) EnqueueStudentSurvey(ctx context.Context, studentID uuid.UUID, payload SurveySavePayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	task := Task{
		ID:        uuid.NewString(),
		Type:      TaskStudentSurveySave,
		StudentID: studentID.String(),
		Payload:   body,
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("encode task: %w", err)
	}
	key := statusKey(task.ID)
	_, err = q.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, "status", string(StatusPending), "student_id", task.StudentID)
		pipe.Expire(ctx, key, q.cfg.StatusTTL)
		pipe.LPush(ctx, q.cfg.Key, raw)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("enqueue task: %w", err)
	}
	q.log.Debug("Task enqueued", "task_id", task.ID, "student_id", studentID)
	return task.ID, nil
}

func (q *redisQueue) Status(ctx context.Context, taskID string) (*StatusRecord, error) {
	data, err := q.rdb.HGetAll(ctx, statusKey(taskID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read task status: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &StatusRecord{
		TaskID:    taskID,
		Status:    TaskStatus(data["status"]),
		StudentID: data["student_id"],
		Message:   data["message"],
	}, nil
}

func (q *redisQueue) Pop(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.cfg.Key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(res))
	}
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

func (q *redisQueue) Complete(ctx context.Context, taskID string) error {
	return q.setStatus(ctx, taskID, StatusCompleted, "")
}

func (q *redisQueue) Fail(ctx context.Context, taskID, message string) error {
	return q.setStatus(ctx, taskID, StatusFailed, message)
}

func (q *redisQueue) setStatus(ctx context.Context, taskID string, status TaskStatus, message string) error {
	key := statusKey(taskID)
	fields := []interface{}{"status", string(status)}
	if message != "" {
		fields = append(fields, "message", message)
	}
	_, err := q.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, fields...)
		pipe.Expire(ctx, key, q.cfg.StatusTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	return nil
}

func (q *redisQueue) Close() error {
	if q == nil || q.rdb == nil {
		return nil
	}
	return q.rdb.Close()
}
