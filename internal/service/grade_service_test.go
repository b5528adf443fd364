package service

import (
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"testing"
)

func TestGradesForCourse(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	first := f.createQuiz(t, nil)
	second := f.createQuiz(t, nil)
	if _, err := f.quizzes.UpdateQuiz(ctx, second.ID, &QuizRequest{Title: strPtr("A primeira")}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	zoe := f.addUser(t, "Zoe", model.RoleLearner)
	f.enroll(t, zoe, f.course)

	submit := func(quiz *model.Quiz, userID uint, answers ...Selection) {
		t.Helper()
		if _, err := f.attempts.StartAttempt(ctx, quiz.ID, userID); err != nil {
			t.Fatalf("StartAttempt: %v", err)
		}
		if _, err := f.attempts.SubmitAttempt(ctx, quiz.ID, userID, answersFor(quiz, answers...)); err != nil {
			t.Fatalf("SubmitAttempt: %v", err)
		}
	}
	submit(first, f.learner.ID, Selection{0, 2}, Selection{1}) // 10
	submit(second, f.learner.ID, Selection{0})                 // 2.5
	submit(first, zoe.ID, Selection{0, 2})                     // 5
	// in-progress attempts do not count
	if _, err := f.attempts.StartAttempt(ctx, second.ID, zoe.ID); err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	grades, err := f.grades.GradesForCourse(ctx, f.course.ID)
	if err != nil {
		t.Fatalf("GradesForCourse: %v", err)
	}
	if len(grades) != 2 || grades[0].Name != "Ana" || grades[1].Name != "Zoe" {
		t.Fatalf("grades = %+v", grades)
	}

	ana := grades[0]
	if ana.CompletedCount != 2 || ana.TotalQuizzes != 2 || ana.Average != 6.25 {
		t.Errorf("ana = %+v", ana)
	}
	if ana.Quizzes[0].Title != "A primeira" || ana.Quizzes[0].QuizID != second.ID {
		t.Errorf("quizzes not sorted by title: %+v", ana.Quizzes)
	}

	z := grades[1]
	if z.CompletedCount != 1 || z.Average != 5 {
		t.Errorf("zoe = %+v", z)
	}
	if z.Quizzes[0].Score != nil {
		t.Errorf("in-progress quiz reported a score: %v", *z.Quizzes[0].Score)
	}
}

func TestGradesForCourseEmptyAverage(t *testing.T) {
	f := newFixture(t)
	f.createQuiz(t, nil)

	grades, err := f.grades.GradesForCourse(t.Context(), f.course.ID)
	if err != nil {
		t.Fatalf("GradesForCourse: %v", err)
	}
	if len(grades) != 1 || grades[0].Average != 0 || grades[0].CompletedCount != 0 {
		t.Errorf("grades = %+v", grades)
	}
}

func TestGradesForCourseErrors(t *testing.T) {
	f := newFixture(t)
	live := f.addCourse(t, "Turma presencial", model.CourseInstructorLed)

	if _, err := f.grades.GradesForCourse(t.Context(), 404); !errors.Is(err, util.ErrCourseNotFound) {
		t.Errorf("missing course = %v", err)
	}
	if _, err := f.grades.GradesForCourse(t.Context(), live.ID); !errors.Is(err, util.ErrCourseNotSelfPaced) {
		t.Errorf("instructor-led course = %v", err)
	}
}

func TestResponsesForQuiz(t *testing.T) {
	f := newFixture(t)
	quiz := f.createQuiz(t, nil)
	ctx := t.Context()

	if _, err := f.attempts.StartAttempt(ctx, quiz.ID, f.learner.ID); err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	rows, err := f.grades.ResponsesForQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("ResponsesForQuiz: %v", err)
	}
	if len(rows) != 1 || rows[0].UserName != "Ana" || rows[0].UserID != f.learner.ID || rows[0].Completed {
		t.Errorf("rows = %+v", rows)
	}
	if _, err := f.grades.ResponsesForQuiz(ctx, 31337); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("missing quiz = %v", err)
	}
}
