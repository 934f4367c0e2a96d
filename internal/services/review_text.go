package services

import (
	"fmt"
	"strings"
)

const reviewTemplate = "☺️亲爱的蝶宝：\n    在劳动中，老师看到了你的%s👍，希望你再接再厉✊，成长为坚毅担责、勤劳诚实、合作智慧的“小彩蝶”🤗！"

// RenderReviewText fills the fixed teacher review template with the chosen
// keywords in the order they were selected.
func RenderReviewText(traits []string) string {
	return fmt.Sprintf(reviewTemplate, strings.Join(traits, "、"))
}
