package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return instance
}

// Messages maps "field.rule" or "field" (json names, indexes stripped) to a
// user-facing message.
type Messages map[string]string

// Struct validates s against its `validate` tags and returns the first
// violation as a *errors.ValidationError.
func Struct(s any, msgs Messages) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return &domainerrs.ValidationError{Message: err.Error()}
	}
	fe := ves[0]
	field := fieldPath(fe.Namespace())
	return &domainerrs.ValidationError{
		Field:   field,
		Rule:    fe.Tag(),
		Message: lookup(msgs, field, fe),
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func lookup(msgs Messages, field string, fe validator.FieldError) string {
	bare := stripIndexes(field)
	if m, ok := msgs[bare+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[bare]; ok {
		return m
	}
	if fe.Param() != "" {
		return fmt.Sprintf("字段 %s 校验失败(%s=%s)", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("字段 %s 校验失败(%s)", field, fe.Tag())
}

func stripIndexes(path string) string {
	var b strings.Builder
	depth := 0
	for _, r := range path {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
