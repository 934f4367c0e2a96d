package realtime

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Scope names a subscription target: one student, or one class.
type Scope string

const (
	studentPrefix = "student:"
	classPrefix   = "class:"
)

func StudentScope(id uuid.UUID) Scope { return Scope(studentPrefix + id.String()) }

// ClassScope takes a class key of the form {school}-{grade}-{class_no}.
func ClassScope(classKey string) Scope { return Scope(classPrefix + classKey) }

func ParseScope(raw string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, studentPrefix):
		id, err := uuid.Parse(strings.TrimPrefix(raw, studentPrefix))
		if err != nil || id == uuid.Nil {
			return "", fmt.Errorf("invalid student scope %q", raw)
		}
		return StudentScope(id), nil
	case strings.HasPrefix(raw, classPrefix):
		if strings.TrimPrefix(raw, classPrefix) == "" {
			return "", fmt.Errorf("invalid class scope %q", raw)
		}
		return Scope(raw), nil
	default:
		return "", fmt.Errorf("unknown scope %q", raw)
	}
}

func (s Scope) StudentID() (uuid.UUID, bool) {
	if !strings.HasPrefix(string(s), studentPrefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(string(s), studentPrefix))
	return id, err == nil
}

func (s Scope) ClassKey() (string, bool) {
	if !strings.HasPrefix(string(s), classPrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(s), classPrefix), true
}

func (s Scope) String() string { return string(s) }
