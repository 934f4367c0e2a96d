package survey

import (
	"fmt"
	"strings"

	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/validate"
)

type SurveyAnswer struct {
	SurveyItemID int      `json:"survey_item_id" validate:"gt=0"`
	Frequency    string   `json:"frequency" validate:"required,oneof=每天 经常 偶尔 从不"`
	Skill        string   `json:"skill" validate:"required,oneof=熟练 一般 不会"`
	Traits       []string `json:"traits" validate:"max=3,unique,dive,required,max=32"`
}

// Composite holds q1 (before/after frequency), q2 (before/after habit
// agreement) and q3 (stage -> metric -> score, nil meaning unanswered).
type Composite struct {
	Q1 map[string]string          `json:"q1" validate:"dive,keys,oneof=原来 现在,endkeys,omitempty,oneof=每天 经常 偶尔 从不"`
	Q2 map[string]string          `json:"q2" validate:"dive,keys,oneof=原来 现在,endkeys,omitempty,oneof=完全同意 比较同意 部分同意 不同意"`
	Q3 map[string]map[string]*int `json:"q3"`
}

func DefaultComposite() Composite {
	return Composite{
		Q1: map[string]string{PhaseBefore: "", PhaseNow: ""},
		Q2: map[string]string{PhaseBefore: "", PhaseNow: ""},
		Q3: map[string]map[string]*int{},
	}
}

// Normalized fills missing maps and phase keys so readers never see nil.
func (c Composite) Normalized() Composite {
	out := DefaultComposite()
	for k, v := range c.Q1 {
		out.Q1[k] = v
	}
	for k, v := range c.Q2 {
		out.Q2[k] = v
	}
	for stage, metrics := range c.Q3 {
		row := make(map[string]*int, len(metrics))
		for m, v := range metrics {
			row[m] = v
		}
		out.Q3[stage] = row
	}
	return out
}

var answerMessages = validate.Messages{
	"items.survey_item_id":  "题目编号无效",
	"items.frequency":       "请选择有效的劳动频率",
	"items.skill":           "请选择有效的技能掌握程度",
	"items.traits.max":      "每道题最多选择3个品质",
	"items.traits.unique":   "品质选项不能重复",
	"items.traits.required": "品质选项不能为空",
	"q1":                    "综合问题1的选项无效",
	"q2":                    "综合问题2的选项无效",
}

func validateAnswers(items []SurveyAnswer) error {
	w := struct {
		Items []SurveyAnswer `json:"items" validate:"dive"`
	}{Items: items}
	if err := validate.Struct(w, answerMessages); err != nil {
		return err
	}
	seen := make(map[int]struct{}, len(items))
	for i, it := range items {
		if _, dup := seen[it.SurveyItemID]; dup {
			return &domainerrs.ValidationError{
				Field:   fmt.Sprintf("items[%d].survey_item_id", i),
				Rule:    "unique",
				Message: fmt.Sprintf("题目 %d 重复提交", it.SurveyItemID),
			}
		}
		seen[it.SurveyItemID] = struct{}{}
	}
	return nil
}

func (c Composite) Validate() error {
	if err := validate.Struct(c, answerMessages); err != nil {
		return err
	}
	for stage, metrics := range c.Q3 {
		if strings.TrimSpace(stage) == "" {
			return &domainerrs.ValidationError{Field: "q3", Rule: "required", Message: "阶段名称不能为空"}
		}
		for metric, score := range metrics {
			field := fmt.Sprintf("q3[%s][%s]", stage, metric)
			if !IsQ3Metric(metric) {
				return &domainerrs.ValidationError{Field: field, Rule: "oneof", Message: fmt.Sprintf("未知的评价维度: %s", metric)}
			}
			if score != nil && (*score < 0 || *score > MaxQ3Score) {
				return &domainerrs.ValidationError{Field: field, Rule: "range", Message: "评分需在0到100之间"}
			}
		}
	}
	return nil
}
