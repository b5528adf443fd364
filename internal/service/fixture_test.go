package service

import (
	"errors"
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/database"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	now        time.Time
	course     *model.Course
	learner    *model.User
	enrollment *model.Enrollment

	quizzes  *QuizService
	attempts *AttemptService
	grades   *GradeService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}
	db, err := database.InitDB(cfg, true)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:  db,
		now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	courses := repository.NewCourseRepository(db)
	quizzes := repository.NewQuizRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	responses := repository.NewResponseRepository(db)

	f.course = f.addCourse(t, "Go para iniciantes", model.CourseSelfPaced)
	f.learner = f.addUser(t, "Ana", model.RoleLearner)
	f.enrollment = f.enroll(t, f.learner, f.course)

	clock := func() time.Time { return f.now }
	f.quizzes = NewQuizService(quizzes, courses)
	f.quizzes.Now = clock
	f.attempts = NewAttemptService(db, quizzes, responses, enrollments, UnavailableAttemptLocker{}, false)
	f.attempts.Now = clock
	f.grades = NewGradeService(courses, quizzes, enrollments, responses)
	return f
}

func (f *fixture) addCourse(t *testing.T, title string, kind model.CourseKind) *model.Course {
	t.Helper()
	c := &model.Course{Title: title, Kind: kind, Active: true}
	if err := f.db.Create(c).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}

func (f *fixture) addUser(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: strings.ToLower(name) + "@example.com", Role: role}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) enroll(t *testing.T, u *model.User, c *model.Course) *model.Enrollment {
	t.Helper()
	e := &model.Enrollment{UserID: u.ID, CourseID: c.ID}
	if err := f.db.Create(e).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
	return e
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }
func intPtr(i int) *int           { return &i }

// sampleQuestions returns a multi-select question with options 0 and 2
// correct and a true/false question with option 1 correct, 4 points each.
func sampleQuestions() []QuestionRequest {
	return []QuestionRequest{
		{
			Text: "Quais são tipos de referência em Go?",
			Kind: model.QuestionMultipleChoice,
			Options: []OptionRequest{
				{Text: "map", IsCorrect: true},
				{Text: "int"},
				{Text: "slice", IsCorrect: true},
				{Text: "bool"},
			},
		},
		{
			Text:   "Go exige ponto e vírgula no fim de cada linha.",
			Kind:   model.QuestionTrueFalse,
			Points: floatPtr(4),
			Options: []OptionRequest{
				{Text: "Verdadeiro"},
				{Text: "Falso", IsCorrect: true},
			},
		},
	}
}

func (f *fixture) createQuiz(t *testing.T, timeLimit *int) *model.Quiz {
	t.Helper()
	questions := sampleQuestions()
	req := &QuizRequest{
		CourseID:  f.course.ID,
		Title:     strPtr("Quiz 1"),
		Questions: &questions,
	}
	if timeLimit != nil {
		req.TimeLimit.Set = true
		req.TimeLimit.Value = timeLimit
	}
	quiz, err := f.quizzes.CreateQuiz(t.Context(), req)
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	return quiz
}

// answersFor maps the quiz's questions, in order, to the given selections.
func answersFor(quiz *model.Quiz, selections ...Selection) map[uint]Selection {
	out := make(map[uint]Selection, len(selections))
	for i, sel := range selections {
		out[quiz.Questions[i].ID] = sel
	}
	return out
}

func (f *fixture) count(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", m, err)
	}
	return n
}

var errInjected = errors.New("injected write failure")

// failWrites makes every create or update against table fail until the
// returned func is called.
func failWrites(t *testing.T, db *gorm.DB, op, table string) func() {
	t.Helper()
	name := "test:fail_" + op + "_" + table
	hook := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errInjected)
		}
	}

	var register, remove func() error
	switch op {
	case "create":
		register = func() error { return db.Callback().Create().Before("gorm:create").Register(name, hook) }
		remove = func() error { return db.Callback().Create().Remove(name) }
	case "update":
		register = func() error { return db.Callback().Update().Before("gorm:update").Register(name, hook) }
		remove = func() error { return db.Callback().Update().Remove(name) }
	default:
		t.Fatalf("failWrites: unknown op %q", op)
	}
	if err := register(); err != nil {
		t.Fatalf("register %s: %v", name, err)
	}

	var once sync.Once
	disarm := func() {
		once.Do(func() {
			if err := remove(); err != nil {
				t.Errorf("remove %s: %v", name, err)
			}
		})
	}
	t.Cleanup(disarm)
	return disarm
}
