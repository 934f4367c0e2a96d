package app

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/questionnaire"
)

const DemoSchool = "彩蝶小学"

// SeedSurveyItems loads every prompt of the bank into survey_items. It does
// nothing when the table already has rows and returns the number inserted.
func (a *App) SeedSurveyItems(dbc dbctx.Context) (int, error) {
	n, err := a.Repos.SurveyItem.Count(dbc)
	if err != nil {
		return 0, fmt.Errorf("count survey items: %w", err)
	}
	if n > 0 {
		a.Log.Info("Survey items already seeded", "count", n)
		return 0, nil
	}
	bank, err := questionnaire.Load()
	if err != nil {
		return 0, err
	}
	var rows []*types.SurveyItem
	for _, band := range types.GradeBands {
		gb, ok := bank.Band(band)
		if !ok {
			continue
		}
		sortKey := 0
		for _, sec := range gb.Sections {
			for _, prompt := range sec.Items {
				sortKey++
				rows = append(rows, &types.SurveyItem{
					GradeBand:     band,
					MajorCategory: sec.MajorCategory,
					MinorCategory: sec.MinorCategory,
					Prompt:        prompt,
					SortKey:       sortKey,
				})
			}
		}
	}
	if _, err := a.Repos.SurveyItem.Create(dbc, rows); err != nil {
		return 0, fmt.Errorf("insert survey items: %w", err)
	}
	a.Log.Info("Survey items seeded", "count", len(rows))
	return len(rows), nil
}

// EnsureUser creates u with password unless the username is taken. It
// reports whether a row was written.
func (a *App) EnsureUser(dbc dbctx.Context, u *types.User, password string) (bool, error) {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" || password == "" {
		return false, fmt.Errorf("username and password required")
	}
	if u.Role != types.RoleAdmin && !types.ValidClassNo(u.ClassNo) {
		return false, fmt.Errorf("user %s: class_no %q must be non-empty and contain no '-'", u.Username, u.ClassNo)
	}
	existing, err := a.Repos.User.GetByUsername(dbc, u.Username)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.IsActive = true
	if u.Role == types.RoleStudent || u.Role == types.RoleTeacher {
		u.GradeBand = types.GradeBandForGrade(u.Grade)
	}
	if _, err := a.Repos.User.Create(dbc, []*types.User{u}); err != nil {
		return false, fmt.Errorf("create user %s: %w", u.Username, err)
	}
	a.Log.Info("User created", "username", u.Username, "role", u.Role)
	return true, nil
}

// SeedDemoClass creates one grade-3 class with a teacher and two students,
// all sharing password.
func (a *App) SeedDemoClass(dbc dbctx.Context, password string) (int, error) {
	users := []*types.User{
		{Username: "demo_teacher", Role: types.RoleTeacher, SchoolName: DemoSchool, Grade: 3, ClassNo: "1", TeacherName: "王老师"},
		{Username: "demo_s01", Role: types.RoleStudent, SchoolName: DemoSchool, Grade: 3, ClassNo: "1", StudentNo: "01", StudentName: "小明"},
		{Username: "demo_s02", Role: types.RoleStudent, SchoolName: DemoSchool, Grade: 3, ClassNo: "1", StudentNo: "02", StudentName: "小红"},
	}
	created := 0
	for _, u := range users {
		ok, err := a.EnsureUser(dbc, u, password)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}
