package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MAximeXX/AIEval/internal/domain/survey"
)

type EventKind string

const (
	EventLockChanged        EventKind = "lock_changed"
	EventSurveyOverridden   EventKind = "survey_overridden"
	EventSectionUpdated     EventKind = "section_updated"
	EventTeacherReviewReady EventKind = "teacher_review_ready"
	// EventResync tells a freshly connected client to re-read through the API.
	EventResync EventKind = "resync"
)

// Event is a change hint pushed to live subscribers. It never carries
// section content; clients re-read the submission to reconcile.
type Event struct {
	Kind      EventKind
	StudentID uuid.UUID
	IsLocked  *bool
	Section   survey.Section
	Message   string
	At        time.Time
}

type wireEvent struct {
	Event     EventKind  `json:"event"`
	StudentID *uuid.UUID `json:"student_id,omitempty"`
	IsLocked  *bool      `json:"is_locked,omitempty"`
	Section   string     `json:"section,omitempty"`
	Message   string     `json:"message,omitempty"`
	At        time.Time  `json:"at"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{Event: e.Kind, IsLocked: e.IsLocked, Section: string(e.Section), Message: e.Message, At: e.At}
	if e.StudentID != uuid.Nil {
		id := e.StudentID
		w.StudentID = &id
	}
	return json.Marshal(w)
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Event{Kind: w.Event, IsLocked: w.IsLocked, Section: survey.Section(w.Section), Message: w.Message, At: w.At}
	if w.StudentID != nil {
		e.StudentID = *w.StudentID
	}
	return nil
}

// Validate rejects events whose required fields for their kind are missing.
func (e Event) Validate() error {
	switch e.Kind {
	case EventLockChanged:
		if e.StudentID == uuid.Nil {
			return fmt.Errorf("%s: missing student_id", e.Kind)
		}
		if e.IsLocked == nil {
			return fmt.Errorf("%s: missing is_locked", e.Kind)
		}
	case EventSurveyOverridden, EventTeacherReviewReady:
		if e.StudentID == uuid.Nil {
			return fmt.Errorf("%s: missing student_id", e.Kind)
		}
	case EventSectionUpdated:
		if e.StudentID == uuid.Nil {
			return fmt.Errorf("%s: missing student_id", e.Kind)
		}
		if e.Section == "" {
			return fmt.Errorf("%s: missing section", e.Kind)
		}
	case EventResync:
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

// ParseEvent decodes and validates a wire event.
func ParseEvent(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

func LockChanged(studentID uuid.UUID, locked bool, message string) Event {
	return Event{Kind: EventLockChanged, StudentID: studentID, IsLocked: &locked, Message: message, At: time.Now().UTC()}
}

func SurveyOverridden(studentID uuid.UUID, section survey.Section) Event {
	return Event{Kind: EventSurveyOverridden, StudentID: studentID, Section: section, At: time.Now().UTC()}
}

func SectionUpdated(studentID uuid.UUID, section survey.Section) Event {
	return Event{Kind: EventSectionUpdated, StudentID: studentID, Section: section, At: time.Now().UTC()}
}

func TeacherReviewReady(studentID uuid.UUID) Event {
	return Event{Kind: EventTeacherReviewReady, StudentID: studentID, Section: survey.SectionTeacherReview, At: time.Now().UTC()}
}

func Resync() Event {
	return Event{Kind: EventResync, At: time.Now().UTC()}
}
