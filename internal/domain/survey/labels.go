package survey

import "github.com/MAximeXX/AIEval/internal/domain/user"

var (
	FrequencyLabels = []string{"每天", "经常", "偶尔", "从不"}
	SkillLabels     = []string{"熟练", "一般", "不会"}
	HabitLabels     = []string{"完全同意", "比较同意", "部分同意", "不同意"}

	// Q3Metrics are the columns of the composite stage table.
	Q3Metrics = []string{"坚毅担责", "勤劳诚实", "合作智慧"}

	// Phases are the before/after keys of composite q1 and q2.
	Phases = []string{PhaseBefore, PhaseNow}
)

const (
	PhaseBefore = "原来"
	PhaseNow    = "现在"

	MaxItemTraits      = 3
	MinReviewTraits    = 1
	MaxReviewTraits    = 6
	MaxParentNoteRunes = 300
	MaxQ3Score         = 100
)

var reviewTraits = map[user.GradeBand][]string{
	user.GradeBandLow:  {"坚持", "主动", "勤快", "真诚", "互助", "乐学"},
	user.GradeBandMid:  {"坚强", "负责", "勤俭", "诚恳", "协作", "探究"},
	user.GradeBandHigh: {"坚韧", "担当", "勤奋", "诚信", "团结", "创新"},
}

// ReviewTraitsFor returns the teacher review keywords offered to a grade band.
func ReviewTraitsFor(band user.GradeBand) []string {
	out := make([]string, len(reviewTraits[band]))
	copy(out, reviewTraits[band])
	return out
}

func IsReviewTrait(band user.GradeBand, trait string) bool {
	return contains(reviewTraits[band], trait)
}

func IsQ3Metric(metric string) bool { return contains(Q3Metrics, metric) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
