package questionnaire

import (
	_ "embed"
	"fmt"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MAximeXX/AIEval/internal/domain/user"
)

//go:embed questionnaire.yaml
var raw []byte

type Bank struct {
	Description        string              `yaml:"description" json:"description"`
	GradeBands         map[string]Band     `yaml:"grade_bands" json:"grade_bands"`
	CompositeQuestions []CompositeQuestion `yaml:"composite_questions" json:"composite_questions"`
}

type Band struct {
	Sections []Section `yaml:"sections" json:"sections"`
}

type Section struct {
	MajorCategory string   `yaml:"major_category" json:"major_category"`
	MinorCategory string   `yaml:"minor_category" json:"minor_category"`
	Items         []string `yaml:"items" json:"items"`
}

type CompositeQuestion struct {
	Key         string              `yaml:"key" json:"key"`
	Question    string              `yaml:"question" json:"question"`
	Phases      []string            `yaml:"phases,omitempty" json:"phases,omitempty"`
	Options     []string            `yaml:"options,omitempty" json:"options,omitempty"`
	Columns     []string            `yaml:"columns,omitempty" json:"columns,omitempty"`
	Scale       []int               `yaml:"scale,omitempty" json:"scale,omitempty"`
	RowsByGrade map[string][]string `yaml:"rows_by_grade,omitempty" json:"rows_by_grade,omitempty"`
}

var (
	loadOnce sync.Once
	bank     *Bank
	loadErr  error
)

// Load parses the embedded bank once.
func Load() (*Bank, error) {
	loadOnce.Do(func() {
		bank, loadErr = Parse(raw)
	})
	return bank, loadErr
}

func Parse(data []byte) (*Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse questionnaire: %w", err)
	}
	for _, gb := range user.GradeBands {
		if _, ok := b.GradeBands[string(gb)]; !ok {
			return nil, fmt.Errorf("questionnaire missing grade band %q", gb)
		}
	}
	return &b, nil
}

func (b *Bank) Band(band user.GradeBand) (Band, bool) {
	gb, ok := b.GradeBands[string(band)]
	return gb, ok
}

func (b *Bank) Question(key string) (CompositeQuestion, bool) {
	for _, q := range b.CompositeQuestions {
		if q.Key == key {
			return q, true
		}
	}
	return CompositeQuestion{}, false
}

// ItemCount is the number of prompts a band's survey contains.
func (gb Band) ItemCount() int {
	n := 0
	for _, s := range gb.Sections {
		n += len(s.Items)
	}
	return n
}

// RequiredStages lists the q3 rows a student must score. Grades without their
// own rows fall back to grade 3 (mid) or grade 5 (high); low has none.
func (b *Bank) RequiredStages(grade int, band user.GradeBand) []string {
	q3, ok := b.Question("q3")
	if !ok {
		return nil
	}
	if rows := q3.RowsByGrade[strconv.Itoa(grade)]; len(rows) > 0 {
		return rows
	}
	switch band {
	case user.GradeBandMid:
		return q3.RowsByGrade["3"]
	case user.GradeBandHigh:
		return q3.RowsByGrade["5"]
	default:
		return nil
	}
}

// Q3Columns returns the metric columns of q3.
func (b *Bank) Q3Columns() []string {
	q3, _ := b.Question("q3")
	return q3.Columns
}
