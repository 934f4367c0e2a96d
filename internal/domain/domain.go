package domain

import (
	"github.com/MAximeXX/AIEval/internal/domain/survey"
	"github.com/MAximeXX/AIEval/internal/domain/user"
)

type User = user.User
type Role = user.Role
type GradeBand = user.GradeBand

const (
	RoleStudent = user.RoleStudent
	RoleTeacher = user.RoleTeacher
	RoleAdmin   = user.RoleAdmin

	GradeBandLow  = user.GradeBandLow
	GradeBandMid  = user.GradeBandMid
	GradeBandHigh = user.GradeBandHigh
)

var (
	SameClass         = user.SameClass
	ClassKey          = user.ClassKey
	GradeBandForGrade = user.GradeBandForGrade
	GradeBands        = user.GradeBands
	ValidClassNo      = user.ValidClassNo
	ParseClassKey     = user.ParseClassKey
)

type SurveyItem = survey.SurveyItem
type SurveyResponse = survey.SurveyResponse
type CompositeResponse = survey.CompositeResponse
type ParentNote = survey.ParentNote
type TeacherReview = survey.TeacherReview
type StudentLock = survey.StudentLock
type CompletionStatus = survey.CompletionStatus
type LLMEval = survey.LLMEval
type CompletionPatch = survey.CompletionPatch

type SurveyAnswer = survey.SurveyAnswer
type Composite = survey.Composite
type Section = survey.Section
type SectionWrite = survey.SectionWrite
type SurveyWrite = survey.SurveyWrite
type CompositeWrite = survey.CompositeWrite
type ParentNoteWrite = survey.ParentNoteWrite
type TeacherReviewWrite = survey.TeacherReviewWrite
type StudentSubmission = survey.StudentSubmission
type LockState = survey.LockState
type Writer = survey.Writer

const (
	SectionSurvey        = survey.SectionSurvey
	SectionComposite     = survey.SectionComposite
	SectionParentNote    = survey.SectionParentNote
	SectionTeacherReview = survey.SectionTeacherReview

	WriterStudent         = survey.WriterStudent
	WriterTeacherOverride = survey.WriterTeacherOverride
)

var EmptySubmission = survey.EmptySubmission
