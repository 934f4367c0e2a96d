package services

import (
	"fmt"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	domainerrs "github.com/MAximeXX/AIEval/internal/pkg/errors"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/questionnaire"
)

type ConfigItem struct {
	ID     int    `json:"id"`
	Prompt string `json:"prompt"`
}

type ConfigSection struct {
	MajorCategory string       `json:"major_category"`
	MinorCategory string       `json:"minor_category"`
	Items         []ConfigItem `json:"items"`
}

type SurveyConfig struct {
	Description        string                            `json:"description"`
	GradeBand          types.GradeBand                   `json:"grade_band"`
	Traits             []string                          `json:"traits"`
	Sections           []ConfigSection                   `json:"sections"`
	CompositeQuestions []questionnaire.CompositeQuestion `json:"composite_questions"`
}

type ConfigService interface {
	SurveyConfig(dbc dbctx.Context, band types.GradeBand) (*SurveyConfig, error)
}

type configService struct {
	log   *logger.Logger
	bank  *questionnaire.Bank
	items repos.SurveyItemRepo
}

func NewConfigService(baseLog *logger.Logger, bank *questionnaire.Bank, items repos.SurveyItemRepo) ConfigService {
	return &configService{log: baseLog.With("service", "ConfigService"), bank: bank, items: items}
}

// SurveyConfig joins the questionnaire bank with the seeded item ids. Prompts
// that were never seeded are left out.
func (s *configService) SurveyConfig(dbc dbctx.Context, band types.GradeBand) (*SurveyConfig, error) {
	gb, ok := s.bank.Band(band)
	if !ok || !band.Valid() {
		return nil, domainerrs.NotFound("questionnaire", "问卷配置不存在")
	}
	rows, err := s.items.ListByBand(dbc, band)
	if err != nil {
		return nil, fmt.Errorf("list survey items: %w", err)
	}
	type key struct{ major, minor, prompt string }
	index := make(map[key]*types.SurveyItem, len(rows))
	for _, it := range rows {
		index[key{it.MajorCategory, it.MinorCategory, it.Prompt}] = it
	}

	out := &SurveyConfig{
		Description:        s.bank.Description,
		GradeBand:          band,
		Traits:             survey.ReviewTraitsFor(band),
		Sections:           make([]ConfigSection, 0, len(gb.Sections)),
		CompositeQuestions: s.bank.CompositeQuestions,
	}
	for _, sec := range gb.Sections {
		cs := ConfigSection{MajorCategory: sec.MajorCategory, MinorCategory: sec.MinorCategory, Items: []ConfigItem{}}
		for _, prompt := range sec.Items {
			if it, ok := index[key{sec.MajorCategory, sec.MinorCategory, prompt}]; ok {
				cs.Items = append(cs.Items, ConfigItem{ID: it.ID, Prompt: it.Prompt})
			}
		}
		out.Sections = append(out.Sections, cs)
	}
	return out, nil
}
