package survey

import (
	"strings"
	"time"

	"github.com/google/uuid"

	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/validate"
)

// Section is one independently writable part of a student's submission.
type Section string

const (
	SectionSurvey        Section = "survey"
	SectionComposite     Section = "composite"
	SectionParentNote    Section = "parent_note"
	SectionTeacherReview Section = "teacher_review"
)

// StudentWritable reports whether students may write the section themselves.
func (s Section) StudentWritable() bool {
	switch s {
	case SectionSurvey, SectionComposite, SectionParentNote:
		return true
	}
	return false
}

// SectionWrite is a full replacement of one section. The set of
// implementations is closed to this package.
type SectionWrite interface {
	Section() Section
	Validate() error
	sectionWrite()
}

type SurveyWrite struct {
	Items []SurveyAnswer `json:"items"`
}

func (SurveyWrite) Section() Section  { return SectionSurvey }
func (SurveyWrite) sectionWrite()     {}
func (w SurveyWrite) Validate() error { return validateAnswers(w.Items) }

type CompositeWrite struct {
	Composite Composite
}

func (CompositeWrite) Section() Section  { return SectionComposite }
func (CompositeWrite) sectionWrite()     {}
func (w CompositeWrite) Validate() error { return w.Composite.Validate() }

type ParentNoteWrite struct {
	Content string `json:"content" validate:"required,max=300"`
}

func (ParentNoteWrite) Section() Section { return SectionParentNote }
func (ParentNoteWrite) sectionWrite()    {}

func (w ParentNoteWrite) Validate() error {
	if strings.TrimSpace(w.Content) == "" {
		return &domainerrs.ValidationError{Field: "content", Rule: "required", Message: "请填写家长寄语"}
	}
	return validate.Struct(w, validate.Messages{
		"content.required": "请填写家长寄语",
		"content.max":      "家长寄语需在300字以内",
	})
}

type TeacherReviewWrite struct {
	TeacherID      uuid.UUID `json:"-"`
	SelectedTraits []string  `json:"selected_traits" validate:"min=1,max=6,unique,dive,required"`
	RenderedText   string    `json:"-"`
}

func (TeacherReviewWrite) Section() Section { return SectionTeacherReview }
func (TeacherReviewWrite) sectionWrite()    {}

func (w TeacherReviewWrite) Validate() error {
	return validate.Struct(w, validate.Messages{
		"selected_traits.min":    "请至少选择1个关键词",
		"selected_traits.max":    "最多选择6个关键词",
		"selected_traits.unique": "关键词不能重复",
		"selected_traits":        "请选择与学段匹配的关键词",
	})
}

type SurveySection struct {
	Items       []SurveyAnswer `json:"items"`
	WrittenBy   Writer         `json:"written_by,omitempty"`
	SubmittedAt *time.Time     `json:"submitted_at"`
	UpdatedAt   *time.Time     `json:"updated_at"`
}

type CompositeSection struct {
	Composite
	WrittenBy   Writer     `json:"written_by,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ParentNoteSection struct {
	Content     string     `json:"content"`
	SubmittedAt *time.Time `json:"submitted_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ReviewSection struct {
	TeacherID      uuid.UUID `json:"teacher_id"`
	SelectedTraits []string  `json:"selected_traits"`
	RenderedText   string    `json:"rendered_text"`
	SubmittedAt    time.Time `json:"submitted_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type LockState struct {
	StudentID uuid.UUID  `json:"student_id"`
	IsLocked  bool       `json:"is_locked"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// StudentSubmission is the aggregate view of every section for one student.
// Missing sections come back as their empty defaults.
type StudentSubmission struct {
	StudentID     uuid.UUID         `json:"student_id"`
	Survey        SurveySection     `json:"survey"`
	Composite     CompositeSection  `json:"composite"`
	ParentNote    ParentNoteSection `json:"parent_note"`
	TeacherReview *ReviewSection    `json:"teacher_review"`
	Lock          LockState         `json:"lock"`
}

func (s *StudentSubmission) IsLocked() bool { return s != nil && s.Lock.IsLocked }

func EmptySubmission(studentID uuid.UUID) *StudentSubmission {
	return &StudentSubmission{
		StudentID: studentID,
		Survey:    SurveySection{Items: []SurveyAnswer{}},
		Composite: CompositeSection{Composite: DefaultComposite()},
		Lock:      LockState{StudentID: studentID},
	}
}
