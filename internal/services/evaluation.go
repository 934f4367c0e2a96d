package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/observability"
	"github.com/MAximeXX/AIEval/internal/pkg/ctxutil"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/platform/openai"
)

const (
	EvalSourceLLM       = "llm"
	EvalSourceHeuristic = "heuristic"

	evalSystemPrompt = "你是彩小蝶，用中文回答。"
	evalGenerateWait = 90 * time.Second

	msgSurveyMissing    = "请先完成问卷提交"
	msgSurveyIncomplete = "请完整填写全部问卷题目后再生成评价"
	msgNoteMissing      = "请先提交家长寄语"
	msgReviewMissing    = "老师还未对你做出评价哦，请耐心等待~"
	msgCompositeMissing = "请先完善综合问题信息"
)

const evalPromptHeader = "【角色】你是“彩小蝶”，请根据学生经过彩蝶劳动计划获得的成长和擅长的劳动项目做职业推荐。\n" +
	"【任务】只补全{}中的内容：{1} 概括学生擅长的劳动“类别”（≤3）；{2} 推荐未来职业（≤3）。\n" +
	"【输出模板】\n" +
	"亲爱的小彩蝶：\n" +
	"             在家里你能主动分担家务劳动，在学校认真完成班级劳动、校园劳动，还积极参加社会实践，培养了坚毅担责、勤劳诚实、合作智慧的美好品格。你特别擅长{1}，希望你能继续发挥这一优势，未来朝着成为一名优秀的{2}而努力。\n" +
	"【参考信息】"

const evalFallbackTemplate = "亲爱的小彩蝶：\n" +
	"             在家里你能主动分担家务劳动，在学校认真完成班级劳动、校园劳动，还积极参加社会实践，" +
	"培养了坚毅担责、勤劳诚实、合作智慧的美好品格。" +
	"你特别擅长%s，希望你能保持这份热爱劳动的精神，继续探索自己真正向往的未来方向。"

var highlightWeights = map[string]int{"每天": 3, "经常": 2, "偶尔": 1}

type EvalSurveyItem struct {
	ItemID      int      `json:"item_id"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Prompt      string   `json:"prompt"`
	Frequency   string   `json:"frequency"`
	Skill       string   `json:"skill"`
	Traits      []string `json:"traits"`
}

type EvalPayload struct {
	Survey        []EvalSurveyItem `json:"survey"`
	ParentNote    string           `json:"parent_note"`
	TeacherReview string           `json:"teacher_review"`
	Composite     types.Composite  `json:"composite"`
	Highlights    []string         `json:"highlights"`
}

// EvaluationService produces the one-time AI summary for a student. Once a
// summary is stored it is returned as is.
type EvaluationService interface {
	Generate(dbc dbctx.Context, student *types.User) (*types.LLMEval, error)
}

type evaluationService struct {
	db         *gorm.DB
	log        *logger.Logger
	llm        openai.Client
	items      repos.SurveyItemRepo
	evals      repos.LLMEvalRepo
	store      SubmissionStore
	completion CompletionService
	group      singleflight.Group
}

// NewEvaluationService accepts a nil llm; summaries are then produced from
// the built-in template.
func NewEvaluationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	llm openai.Client,
	items repos.SurveyItemRepo,
	evals repos.LLMEvalRepo,
	store SubmissionStore,
	completion CompletionService,
) EvaluationService {
	return &evaluationService{
		db:         db,
		log:        baseLog.With("service", "EvaluationService"),
		llm:        llm,
		items:      items,
		evals:      evals,
		store:      store,
		completion: completion,
	}
}

func (s *evaluationService) Generate(dbc dbctx.Context, student *types.User) (*types.LLMEval, error) {
	if student == nil {
		return nil, domainerrs.ErrUnauthorized
	}
	if student.Role != types.RoleStudent {
		return nil, domainerrs.Forbidden(msgNoPermission)
	}
	existing, err := s.evals.GetByStudentID(dbc, student.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	v, err, _ := s.group.Do(student.ID.String(), func() (interface{}, error) {
		// The winner may outlive a caller that gives up; detach it.
		ctx, cancel := ctxutil.Detached(dbc.Ctx, evalGenerateWait)
		defer cancel()
		return s.generate(dbc.WithCtx(ctx), student)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.LLMEval), nil
}

func (s *evaluationService) generate(dbc dbctx.Context, student *types.User) (*types.LLMEval, error) {
	if existing, err := s.evals.GetByStudentID(dbc, student.ID); err != nil || existing != nil {
		return existing, err
	}
	payload, err := s.buildPayload(dbc, student)
	if err != nil {
		return nil, err
	}

	content, source := s.invoke(dbc.Ctx, payload)
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var out *types.LLMEval
	err = inTx(s.db, dbc, func(dbc dbctx.Context) error {
		var err error
		out, err = s.evals.Upsert(dbc, &types.LLMEval{
			StudentID: student.ID,
			Content:   content,
			Payload:   datatypes.JSON(raw),
			Source:    source,
		})
		if err != nil {
			return err
		}
		done := true
		_, err = s.completion.Touch(dbc, student.ID, types.CompletionPatch{LLM: &done})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store evaluation: %w", err)
	}
	observability.Current().ObserveEvaluation(source)
	s.log.Info("Evaluation generated", "student_id", student.ID, "source", source)
	return out, nil
}

func (s *evaluationService) buildPayload(dbc dbctx.Context, student *types.User) (*EvalPayload, error) {
	sub, err := s.store.Get(dbc, student.ID)
	if err != nil {
		return nil, err
	}
	if len(sub.Survey.Items) == 0 {
		return nil, domainerrs.Invalid("survey", msgSurveyMissing)
	}
	bandItems, err := s.items.ListByBand(dbc, student.Band())
	if err != nil {
		return nil, err
	}
	if len(sub.Survey.Items) != len(bandItems) {
		return nil, domainerrs.Invalid("survey", msgSurveyIncomplete)
	}
	for _, a := range sub.Survey.Items {
		if a.Frequency == "" || a.Skill == "" {
			return nil, domainerrs.Invalid("survey", msgSurveyIncomplete)
		}
	}
	if strings.TrimSpace(sub.ParentNote.Content) == "" {
		return nil, domainerrs.Invalid("parent_note", msgNoteMissing)
	}
	if sub.TeacherReview == nil {
		return nil, domainerrs.Invalid("teacher_review", msgReviewMissing)
	}
	if sub.Composite.SubmittedAt == nil {
		return nil, domainerrs.Invalid("composite", msgCompositeMissing)
	}

	byID := make(map[int]*types.SurveyItem, len(bandItems))
	for _, it := range bandItems {
		byID[it.ID] = it
	}
	p := &EvalPayload{
		Survey:        make([]EvalSurveyItem, 0, len(sub.Survey.Items)),
		ParentNote:    sub.ParentNote.Content,
		TeacherReview: sub.TeacherReview.RenderedText,
		Composite:     sub.Composite.Composite,
	}
	for _, a := range sub.Survey.Items {
		row := EvalSurveyItem{ItemID: a.SurveyItemID, Frequency: a.Frequency, Skill: a.Skill, Traits: a.Traits}
		if it := byID[a.SurveyItemID]; it != nil {
			row.Category, row.Subcategory, row.Prompt = it.MajorCategory, it.MinorCategory, it.Prompt
		}
		p.Survey = append(p.Survey, row)
	}
	p.Highlights = Highlights(p.Survey)
	return p, nil
}

// Highlights ranks major categories by weighted frequency and keeps the top
// three. Ties keep first-seen order.
func Highlights(items []EvalSurveyItem) []string {
	type cat struct {
		name  string
		score int
		order int
	}
	byName := map[string]*cat{}
	var cats []*cat
	for _, it := range items {
		name := it.Category
		if name == "" {
			name = "综合劳动"
		}
		c, ok := byName[name]
		if !ok {
			c = &cat{name: name, order: len(cats)}
			byName[name] = c
			cats = append(cats, c)
		}
		c.score += highlightWeights[it.Frequency]
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].score > cats[j].score })
	out := make([]string, 0, 3)
	for _, c := range cats {
		if len(out) == 3 {
			break
		}
		out = append(out, c.name)
	}
	return out
}

func (s *evaluationService) invoke(ctx context.Context, p *EvalPayload) (string, string) {
	if s.llm == nil {
		return HeuristicEvaluation(p.Highlights), EvalSourceHeuristic
	}
	raw, err := json.Marshal(p)
	if err != nil {
		s.log.Warn("Encode evaluation payload failed; using template", "error", err)
		return HeuristicEvaluation(p.Highlights), EvalSourceHeuristic
	}
	text, err := s.llm.GenerateText(ctx, evalSystemPrompt, evalPromptHeader+string(raw))
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn("LLM evaluation failed; using template", "error", err)
		return HeuristicEvaluation(p.Highlights), EvalSourceHeuristic
	}
	return strings.TrimSpace(text), EvalSourceLLM
}

func HeuristicEvaluation(highlights []string) string {
	text := "多种劳动实践"
	if len(highlights) > 0 {
		text = strings.Join(highlights, "、")
	}
	return fmt.Sprintf(evalFallbackTemplate, text)
}
