package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MAximeXX/AIEval/internal/data/repos"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	"github.com/MAximeXX/AIEval/internal/pkg/ctxutil"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
)

// ScoreMapping turns q1/q2 labels into a 0-100 score.
var ScoreMapping = map[string]float64{
	"每天":   100,
	"经常":   66,
	"偶尔":   33,
	"从不":   0,
	"完全同意": 100,
	"比较同意": 66,
	"部分同意": 33,
	"不同意":  0,
}

type MetricChart struct {
	Stages []string                      `json:"stages"`
	Series map[types.GradeBand][]float64 `json:"series"`
}

type Charts struct {
	ChartA   map[string]MetricChart                 `json:"chart_a"`
	ChartB   map[types.GradeBand]map[string]float64 `json:"chart_b"`
	ChartC   map[types.GradeBand]map[string]float64 `json:"chart_c"`
	OverallB map[string]float64                     `json:"overall_b"`
	OverallC map[string]float64                     `json:"overall_c"`
}

type AnalyticsService interface {
	Progress(dbc dbctx.Context) ([]repos.ClassProgress, error)
	Charts(dbc dbctx.Context) (*Charts, error)
}

type analyticsService struct {
	log        *logger.Logger
	users      repos.UserRepo
	composites repos.CompositeResponseRepo
	completion repos.CompletionStatusRepo
}

func NewAnalyticsService(
	baseLog *logger.Logger,
	users repos.UserRepo,
	composites repos.CompositeResponseRepo,
	completion repos.CompletionStatusRepo,
) AnalyticsService {
	return &analyticsService{
		log:        baseLog.With("service", "AnalyticsService"),
		users:      users,
		composites: composites,
		completion: completion,
	}
}

func (s *analyticsService) Progress(dbc dbctx.Context) ([]repos.ClassProgress, error) {
	rows, err := s.completion.ProgressByClass(dbc)
	if err != nil {
		return nil, fmt.Errorf("progress by class: %w", err)
	}
	if rows == nil {
		rows = []repos.ClassProgress{}
	}
	return rows, nil
}

// running is a sum and a count keyed by phase or stage.
type running struct {
	sum map[string]float64
	n   map[string]int
}

func newRunning() *running { return &running{sum: map[string]float64{}, n: map[string]int{}} }

func (r *running) add(k string, v float64) {
	r.sum[k] += v
	r.n[k]++
}

func (r *running) avg(k string) float64 {
	if r.n[k] == 0 {
		return 0
	}
	return round2(r.sum[k] / float64(r.n[k]))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (s *analyticsService) Charts(dbc dbctx.Context) (*Charts, error) {
	var (
		students []*types.User
		rows     []*types.CompositeResponse
	)
	g, gctx := errgroup.WithContext(ctxutil.Default(dbc.Ctx))
	g.Go(func() error {
		var err error
		students, err = s.users.ListAllStudents(dbc.WithCtx(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.composites.ListAll(dbc.WithCtx(gctx))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load chart data: %w", err)
	}

	bandOf := make(map[uuid.UUID]types.GradeBand, len(students))
	for _, st := range students {
		bandOf[st.ID] = st.Band()
	}

	chartA := map[string]map[types.GradeBand]*running{}
	for _, m := range survey.Q3Metrics {
		chartA[m] = map[types.GradeBand]*running{}
	}
	lineB := map[types.GradeBand]*running{}
	lineC := map[types.GradeBand]*running{}
	totalB, totalC := newRunning(), newRunning()

	for _, row := range rows {
		band, ok := bandOf[row.StudentID]
		if !ok {
			continue
		}
		comp, err := decodeComposite(row.Payload)
		if err != nil {
			s.log.Warn("Skipping undecodable composite", "student_id", row.StudentID, "error", err)
			continue
		}
		for _, phase := range survey.Phases {
			if score, ok := ScoreMapping[comp.Q1[phase]]; ok {
				bandRunning(lineB, band).add(phase, score)
				totalB.add(phase, score)
			}
			if score, ok := ScoreMapping[comp.Q2[phase]]; ok {
				bandRunning(lineC, band).add(phase, score)
				totalC.add(phase, score)
			}
		}
		for stage, metrics := range comp.Q3 {
			for _, m := range survey.Q3Metrics {
				if v := metrics[m]; v != nil {
					bandRunning(chartA[m], band).add(stage, float64(*v))
				}
			}
		}
	}

	out := &Charts{
		ChartA:   make(map[string]MetricChart, len(chartA)),
		ChartB:   finalizeLine(lineB),
		ChartC:   finalizeLine(lineC),
		OverallB: map[string]float64{},
		OverallC: map[string]float64{},
	}
	for metric, bands := range chartA {
		stageSet := map[string]struct{}{}
		for _, r := range bands {
			for stage := range r.n {
				stageSet[stage] = struct{}{}
			}
		}
		stages := make([]string, 0, len(stageSet))
		for stage := range stageSet {
			stages = append(stages, stage)
		}
		sort.Strings(stages)
		series := make(map[types.GradeBand][]float64, len(types.GradeBands))
		for _, band := range types.GradeBands {
			r := bands[band]
			vals := make([]float64, 0, len(stages))
			for _, stage := range stages {
				if r == nil {
					vals = append(vals, 0)
					continue
				}
				vals = append(vals, r.avg(stage))
			}
			series[band] = vals
		}
		out.ChartA[metric] = MetricChart{Stages: stages, Series: series}
	}
	for _, phase := range survey.Phases {
		out.OverallB[phase] = totalB.avg(phase)
		out.OverallC[phase] = totalC.avg(phase)
	}
	return out, nil
}

func bandRunning(m map[types.GradeBand]*running, band types.GradeBand) *running {
	r, ok := m[band]
	if !ok {
		r = newRunning()
		m[band] = r
	}
	return r
}

func finalizeLine(m map[types.GradeBand]*running) map[types.GradeBand]map[string]float64 {
	out := make(map[types.GradeBand]map[string]float64, len(types.GradeBands))
	for _, band := range types.GradeBands {
		phases := map[string]float64{}
		if r := m[band]; r != nil {
			for phase := range r.n {
				phases[phase] = r.avg(phase)
			}
		}
		out[band] = phases
	}
	return out
}
