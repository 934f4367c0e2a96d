package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	"github.com/MAximeXX/AIEval/internal/http/response"
	"github.com/MAximeXX/AIEval/internal/jobs"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/services"
)

var (
	errQueueDisabled = errors.New("异步保存未启用")
	errTaskNotFound  = errors.New("任务不存在")
)

type surveyView struct {
	survey.SurveySection
	IsLocked bool `json:"is_locked"`
}

type compositeView struct {
	survey.CompositeSection
	IsLocked bool `json:"is_locked"`
}

type parentNoteView struct {
	survey.ParentNoteSection
	IsLocked bool `json:"is_locked"`
}

type StudentHandler struct {
	log      *logger.Logger
	students services.StudentService
	gate     services.WriteGate
	evals    services.EvaluationService
	queue    jobs.Queue
}

// NewStudentHandler accepts a nil queue; the async endpoints then answer 503.
func NewStudentHandler(
	log *logger.Logger,
	students services.StudentService,
	gate services.WriteGate,
	evals services.EvaluationService,
	queue jobs.Queue,
) *StudentHandler {
	return &StudentHandler{
		log:      log.With("handler", "StudentHandler"),
		students: students,
		gate:     gate,
		evals:    evals,
		queue:    queue,
	}
}

func (h *StudentHandler) Submission(c *gin.Context) {
	sub, ok := h.submission(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"submission": sub, "is_locked": sub.IsLocked()})
}

func (h *StudentHandler) GetSurvey(c *gin.Context) {
	if sub, ok := h.submission(c); ok {
		response.RespondOK(c, surveyView{sub.Survey, sub.IsLocked()})
	}
}

func (h *StudentHandler) GetComposite(c *gin.Context) {
	if sub, ok := h.submission(c); ok {
		response.RespondOK(c, compositeView{sub.Composite, sub.IsLocked()})
	}
}

func (h *StudentHandler) GetParentNote(c *gin.Context) {
	if sub, ok := h.submission(c); ok {
		response.RespondOK(c, parentNoteView{sub.ParentNote, sub.IsLocked()})
	}
}

func (h *StudentHandler) PutSurvey(c *gin.Context) {
	var req types.SurveyWrite
	if !bindJSON(c, &req) {
		return
	}
	if sub, ok := h.write(c, req); ok {
		response.RespondOK(c, surveyView{sub.Survey, sub.IsLocked()})
	}
}

func (h *StudentHandler) PutComposite(c *gin.Context) {
	var req types.Composite
	if !bindJSON(c, &req) {
		return
	}
	if sub, ok := h.write(c, types.CompositeWrite{Composite: req.Normalized()}); ok {
		response.RespondOK(c, compositeView{sub.Composite, sub.IsLocked()})
	}
}

func (h *StudentHandler) PutParentNote(c *gin.Context) {
	var req types.ParentNoteWrite
	if !bindJSON(c, &req) {
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if sub, ok := h.write(c, req); ok {
		response.RespondOK(c, parentNoteView{sub.ParentNote, sub.IsLocked()})
	}
}

func (h *StudentHandler) TeacherReview(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	review, err := h.students.TeacherReview(dbc(c), u)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, review)
}

func (h *StudentHandler) LLMEval(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	eval, err := h.evals.Generate(dbc(c), u)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, eval)
}

// EnqueueSurvey validates the payload shape up front; the lock is checked
// when the worker applies it.
func (h *StudentHandler) EnqueueSurvey(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	if h.queue == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "queue_unavailable", errQueueDisabled)
		return
	}
	if u.Role != types.RoleStudent {
		response.RespondError(c, http.StatusForbidden, "forbidden", errors.New("无权限访问"))
		return
	}
	var req jobs.SurveySavePayload
	if !bindJSON(c, &req) {
		return
	}
	if err := (types.SurveyWrite{Items: req.Items}).Validate(); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if req.Composite != nil {
		if err := req.Composite.Validate(); err != nil {
			response.RespondServiceError(c, err)
			return
		}
	}
	taskID, err := h.queue.EnqueueStudentSurvey(c.Request.Context(), u.ID, req)
	if err != nil {
		h.log.Error("Enqueue survey task failed", "student_id", u.ID, "error", err)
		response.RespondError(c, http.StatusServiceUnavailable, "queue_unavailable", errQueueDisabled)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID, "status": jobs.StatusPending})
}

func (h *StudentHandler) TaskStatus(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	if h.queue == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "queue_unavailable", errQueueDisabled)
		return
	}
	rec, err := h.queue.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("Load task status failed", "task_id", c.Param("id"), "error", err)
		response.RespondError(c, http.StatusServiceUnavailable, "queue_unavailable", errQueueDisabled)
		return
	}
	if rec == nil || rec.StudentID != u.ID.String() {
		response.RespondError(c, http.StatusNotFound, "not_found", errTaskNotFound)
		return
	}
	response.RespondOK(c, rec)
}

func (h *StudentHandler) submission(c *gin.Context) (*types.StudentSubmission, bool) {
	u, ok := requireActor(c)
	if !ok {
		return nil, false
	}
	sub, err := h.students.Submission(dbc(c), u)
	if err != nil {
		response.RespondServiceError(c, err)
		return nil, false
	}
	return sub, true
}

func (h *StudentHandler) write(c *gin.Context, w types.SectionWrite) (*types.StudentSubmission, bool) {
	u, ok := requireActor(c)
	if !ok {
		return nil, false
	}
	sub, err := h.gate.AttemptStudentWrite(dbc(c), u, u.ID, w)
	if err != nil {
		response.RespondServiceError(c, err)
		return nil, false
	}
	return sub, true
}
