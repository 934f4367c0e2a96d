package user

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Staff covers every role allowed to lock, override and review.
func (r Role) Staff() bool { return r == RoleTeacher || r == RoleAdmin }

type GradeBand string

const (
	GradeBandLow  GradeBand = "low"
	GradeBandMid  GradeBand = "mid"
	GradeBandHigh GradeBand = "high"
)

var GradeBands = []GradeBand{GradeBandLow, GradeBandMid, GradeBandHigh}

func (b GradeBand) Valid() bool {
	switch b {
	case GradeBandLow, GradeBandMid, GradeBandHigh:
		return true
	}
	return false
}

// GradeBandForGrade maps grades 1-2 to low, 3-4 to mid and everything above to high.
func GradeBandForGrade(grade int) GradeBand {
	switch {
	case grade <= 2:
		return GradeBandLow
	case grade <= 4:
		return GradeBandMid
	default:
		return GradeBandHigh
	}
}

type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username        string     `gorm:"uniqueIndex;not null;column:username" json:"username"`
	PasswordHash    string     `gorm:"not null;column:password_hash" json:"-"`
	Role            Role       `gorm:"not null;index;column:role" json:"role"`
	SchoolName      string     `gorm:"column:school_name;index:idx_user_class" json:"school_name"`
	Grade           int        `gorm:"column:grade;index:idx_user_class" json:"grade"`
	ClassNo         string     `gorm:"column:class_no;index:idx_user_class" json:"class_no"`
	GradeBand       GradeBand  `gorm:"column:grade_band" json:"grade_band,omitempty"`
	StudentNo       string     `gorm:"column:student_no" json:"student_no,omitempty"`
	StudentName     string     `gorm:"column:student_name" json:"student_name,omitempty"`
	TeacherName     string     `gorm:"column:teacher_name" json:"teacher_name,omitempty"`
	IsActive        bool       `gorm:"not null;column:is_active" json:"is_active"`
	ActiveSessionID *uuid.UUID `gorm:"type:uuid;column:active_session_id" json:"-"`
	CreatedAt       time.Time  `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// ClassKey identifies the class a user belongs to: {school}-{grade}-{class_no}.
func (u *User) ClassKey() string {
	return ClassKey(u.SchoolName, u.Grade, u.ClassNo)
}

func ClassKey(school string, grade int, classNo string) string {
	return fmt.Sprintf("%s-%d-%s", school, grade, classNo)
}

// ValidClassNo reports whether classNo can appear in a class key. A dash in
// the class number would make two classes share one key.
func ValidClassNo(classNo string) bool {
	return strings.TrimSpace(classNo) != "" && !strings.Contains(classNo, "-")
}

// ParseClassKey splits a key from the right: the class number carries no
// dash and the grade is numeric, so whatever is left is the school.
func ParseClassKey(key string) (school string, grade int, classNo string, ok bool) {
	i := strings.LastIndexByte(key, '-')
	if i <= 0 || i == len(key)-1 {
		return "", 0, "", false
	}
	rest, classNo := key[:i], key[i+1:]
	j := strings.LastIndexByte(rest, '-')
	if j <= 0 {
		return "", 0, "", false
	}
	grade, err := strconv.Atoi(rest[j+1:])
	if err != nil {
		return "", 0, "", false
	}
	return rest[:j], grade, classNo, true
}

// InClass compares u's school, grade and class against a parsed class key.
func (u *User) InClass(key string) bool {
	school, grade, classNo, ok := ParseClassKey(key)
	if !ok || u == nil {
		return false
	}
	return u.SchoolName == school && u.Grade == grade && u.ClassNo == classNo
}

// SameClass reports whether a and b share school, grade and class.
func SameClass(a, b *User) bool {
	if a == nil || b == nil {
		return false
	}
	return a.SchoolName == b.SchoolName && a.Grade == b.Grade && a.ClassNo == b.ClassNo
}

// Band returns the stored grade band, deriving it from the grade when unset.
func (u *User) Band() GradeBand {
	if u.GradeBand.Valid() {
		return u.GradeBand
	}
	return GradeBandForGrade(u.Grade)
}

func (u *User) DisplayName() string {
	switch {
	case u.StudentName != "":
		return u.StudentName
	case u.TeacherName != "":
		return u.TeacherName
	default:
		return u.Username
	}
}
