package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/domain/user"
)

const (
	School   = "earon小学"
	Password = "test01"
)

var (
	hashOnce sync.Once
	hash     string
	hashErr  error
)

func passwordHash(tb testing.TB) string {
	tb.Helper()
	hashOnce.Do(func() {
		var h []byte
		h, hashErr = bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		hash = string(h)
	})
	if hashErr != nil {
		tb.Fatalf("hash password: %v", hashErr)
	}
	return hash
}

func seedUser(tb testing.TB, tx *gorm.DB, u *types.User) *types.User {
	tb.Helper()
	now := time.Now().UTC()
	u.ID = uuid.New()
	u.PasswordHash = passwordHash(tb)
	u.IsActive = true
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Username == "" {
		u.Username = fmt.Sprintf("%s-%s", u.Role, u.ID.String()[:8])
	}
	if err := tx.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed %s: %v", u.Role, err)
	}
	return u
}

func SeedStudent(tb testing.TB, tx *gorm.DB, grade int, classNo, studentNo string) *types.User {
	tb.Helper()
	return seedUser(tb, tx, &types.User{
		Role:        user.RoleStudent,
		SchoolName:  School,
		Grade:       grade,
		ClassNo:     classNo,
		GradeBand:   user.GradeBandForGrade(grade),
		StudentNo:   studentNo,
		StudentName: "学生" + studentNo,
	})
}

func SeedTeacher(tb testing.TB, tx *gorm.DB, grade int, classNo string) *types.User {
	tb.Helper()
	return seedUser(tb, tx, &types.User{
		Role:        user.RoleTeacher,
		SchoolName:  School,
		Grade:       grade,
		ClassNo:     classNo,
		GradeBand:   user.GradeBandForGrade(grade),
		TeacherName: fmt.Sprintf("教师%d年级", grade),
	})
}

func SeedAdmin(tb testing.TB, tx *gorm.DB) *types.User {
	tb.Helper()
	return seedUser(tb, tx, &types.User{
		Role:        user.RoleAdmin,
		SchoolName:  School,
		ClassNo:     "管理员",
		TeacherName: "管理员",
	})
}

// SeedSurveyItems inserts n prompts for band and returns their ids in order.
func SeedSurveyItems(tb testing.TB, tx *gorm.DB, band types.GradeBand, n int) []int {
	tb.Helper()
	items := make([]*types.SurveyItem, 0, n)
	suffix := uuid.NewString()[:8]
	for i := 0; i < n; i++ {
		items = append(items, &types.SurveyItem{
			GradeBand:     band,
			MajorCategory: []string{"家务劳动", "班级劳动", "校园劳动", "社会实践"}[i%4],
			MinorCategory: "测试",
			Prompt:        fmt.Sprintf("题目%d-%s", i+1, suffix),
			SortKey:       i + 1,
		})
	}
	if err := tx.WithContext(context.Background()).Create(&items).Error; err != nil {
		tb.Fatalf("seed survey items: %v", err)
	}
	ids := make([]int, 0, n)
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func PtrBool(v bool) *bool { return &v }

func PtrInt(v int) *int { return &v }
