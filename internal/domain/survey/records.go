package survey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/MAximeXX/AIEval/internal/domain/user"
)

// Writer records who last replaced a section.
type Writer string

const (
	WriterStudent         Writer = "student"
	WriterTeacherOverride Writer = "teacher_override"
)

type SurveyItem struct {
	ID            int            `gorm:"primaryKey;autoIncrement" json:"id"`
	GradeBand     user.GradeBand `gorm:"not null;column:grade_band;uniqueIndex:uq_survey_item_prompt" json:"grade_band"`
	MajorCategory string         `gorm:"not null;column:major_category;uniqueIndex:uq_survey_item_prompt" json:"major_category"`
	MinorCategory string         `gorm:"not null;column:minor_category;uniqueIndex:uq_survey_item_prompt" json:"minor_category"`
	Prompt        string         `gorm:"not null;column:prompt;uniqueIndex:uq_survey_item_prompt" json:"prompt"`
	SortKey       int            `gorm:"not null;column:sort_key;index" json:"sort_key"`
}

func (SurveyItem) TableName() string { return "survey_items" }

// Section rows share student_id as their primary key: one row per student
// per section, replaced wholesale on every write.

type SurveyResponse struct {
	StudentID   uuid.UUID      `gorm:"type:uuid;primaryKey;column:student_id" json:"student_id"`
	GradeBand   user.GradeBand `gorm:"column:grade_band" json:"grade_band"`
	Items       datatypes.JSON `gorm:"column:items" json:"items"`
	WrittenBy   Writer         `gorm:"column:written_by" json:"written_by"`
	SubmittedAt time.Time      `gorm:"not null;column:submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time      `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (SurveyResponse) TableName() string { return "survey_responses" }

type CompositeResponse struct {
	StudentID   uuid.UUID      `gorm:"type:uuid;primaryKey;column:student_id" json:"student_id"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"payload"`
	WrittenBy   Writer         `gorm:"column:written_by" json:"written_by"`
	SubmittedAt time.Time      `gorm:"not null;column:submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time      `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (CompositeResponse) TableName() string { return "composite_responses" }

type ParentNote struct {
	StudentID   uuid.UUID `gorm:"type:uuid;primaryKey;column:student_id" json:"student_id"`
	Content     string    `gorm:"not null;column:content" json:"content"`
	SubmittedAt time.Time `gorm:"not null;column:submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (ParentNote) TableName() string { return "parent_notes" }

type TeacherReview struct {
	StudentID      uuid.UUID      `gorm:"type:uuid;primaryKey;column:student_id" json:"student_id"`
	TeacherID      uuid.UUID      `gorm:"type:uuid;column:teacher_id" json:"teacher_id"`
	SelectedTraits datatypes.JSON `gorm:"column:selected_traits" json:"selected_traits"`
	RenderedText   string         `gorm:"not null;column:rendered_text" json:"rendered_text"`
	SubmittedAt    time.Time      `gorm:"not null;column:submitted_at" json:"submitted_at"`
	UpdatedAt      time.Time      `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (TeacherReview) TableName() string { return "teacher_reviews" }

type StudentLock struct {
	StudentID uuid.UUID  `gorm:"type:uuid;primaryKey;column:student_id" json:"student_id"`
	IsLocked  bool       `gorm:"not null;column:is_locked" json:"is_locked"`
	LockedBy  *uuid.UUID `gorm:"type:uuid;column:locked_by" json:"locked_by,omitempty"`
	UpdatedAt time.Time  `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (StudentLock) TableName() string { return "student_locks" }

type CompletionStatus struct {
	StudentID        uuid.UUID `gorm:"type:uuid;primaryKey;column:student_id" json:"student_id"`
	StudentSubmitted bool      `gorm:"not null;column:student_submitted" json:"student_submitted"`
	ParentSubmitted  bool      `gorm:"not null;column:parent_submitted" json:"parent_submitted"`
	TeacherSubmitted bool      `gorm:"not null;column:teacher_submitted" json:"teacher_submitted"`
	LLMGenerated     bool      `gorm:"not null;column:llm_generated" json:"llm_generated"`
	UpdatedAt        time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (CompletionStatus) TableName() string { return "completion_status" }

// AllSubmitted is the admin dashboard's definition of a finished student.
func (c *CompletionStatus) AllSubmitted() bool {
	return c != nil && c.StudentSubmitted && c.ParentSubmitted && c.TeacherSubmitted
}

type LLMEval struct {
	StudentID   uuid.UUID      `gorm:"type:uuid;primaryKey;column:student_id" json:"student_id"`
	Content     string         `gorm:"not null;column:content" json:"content"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"-"`
	Source      string         `gorm:"column:source" json:"source"`
	GeneratedAt time.Time      `gorm:"not null;column:generated_at" json:"generated_at"`
}

func (LLMEval) TableName() string { return "llm_evals" }

// CompletionPatch sets only the flags that are non-nil.
type CompletionPatch struct {
	Student *bool
	Parent  *bool
	Teacher *bool
	LLM     *bool
}

func (p CompletionPatch) Empty() bool {
	return p.Student == nil && p.Parent == nil && p.Teacher == nil && p.LLM == nil
}
