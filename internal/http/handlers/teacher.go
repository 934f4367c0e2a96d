package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/http/response"
	"github.com/MAximeXX/AIEval/internal/services"
)

type TeacherHandler struct {
	teachers services.TeacherService
	locks    services.LockCoordinator
}

func NewTeacherHandler(teachers services.TeacherService, locks services.LockCoordinator) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, locks: locks}
}

func (h *TeacherHandler) Roster(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	rows, err := h.teachers.Roster(dbc(c), u)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"students": rows})
}

func (h *TeacherHandler) StudentDetail(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	detail, err := h.teachers.StudentDetail(dbc(c), u, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

func (h *TeacherHandler) OverrideSurvey(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req types.SurveyWrite
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.teachers.OverrideSurvey(dbc(c), u, id, req.Items)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, surveyView{sub.Survey, sub.IsLocked()})
}

func (h *TeacherHandler) OverrideComposite(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req types.Composite
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.teachers.OverrideComposite(dbc(c), u, id, req.Normalized())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, compositeView{sub.Composite, sub.IsLocked()})
}

func (h *TeacherHandler) SetLock(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsLocked *bool `json:"is_locked"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.IsLocked == nil {
		response.RespondServiceError(c, errMissingLockFlag)
		return
	}
	state, err := h.locks.SetLocked(dbc(c), u, id, *req.IsLocked)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, state)
}

func (h *TeacherHandler) SubmitReview(c *gin.Context) {
	u, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		SelectedTraits []string `json:"selected_traits"`
	}
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.teachers.SubmitReview(dbc(c), u, id, req.SelectedTraits)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, review)
}
