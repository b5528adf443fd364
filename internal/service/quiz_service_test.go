package service

import (
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"strings"
	"testing"
	"time"
)

func TestCreateQuizTree(t *testing.T) {
	f := newFixture(t)
	quiz := f.createQuiz(t, intPtr(20))

	if !quiz.Active {
		t.Error("new quiz should default to active")
	}
	if quiz.TimeLimitStart == nil || !quiz.TimeLimitStart.Equal(f.now) {
		t.Errorf("time limit start = %v, want %v", quiz.TimeLimitStart, f.now)
	}

	got, err := f.quizzes.GetQuiz(t.Context(), quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(got.Questions))
	}
	first := got.Questions[0]
	if first.Points != model.DefaultQuestionPoints || first.OrderIndex != 0 || first.Kind != model.QuestionMultipleChoice {
		t.Errorf("first question = %+v", first)
	}
	if len(first.Options) != 4 || first.Options[1].Text != "int" || first.Options[1].OrderIndex != 1 {
		t.Errorf("options = %+v", first.Options)
	}
	if got.TotalPoints() != 8 {
		t.Errorf("total points = %v", got.TotalPoints())
	}
}

func TestCreateQuizExplicitOrder(t *testing.T) {
	f := newFixture(t)
	questions := sampleQuestions()
	questions[0].Order = intPtr(5)
	questions[1].Order = intPtr(1)

	quiz, err := f.quizzes.CreateQuiz(t.Context(), &QuizRequest{
		CourseID:  f.course.ID,
		Title:     strPtr("Ordem"),
		Questions: &questions,
	})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	got, err := f.quizzes.GetQuiz(t.Context(), quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Questions[0].Kind != model.QuestionTrueFalse {
		t.Errorf("questions not loaded in stored order: %+v", got.Questions)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	f := newFixture(t)
	live := f.addCourse(t, "Aula ao vivo", model.CourseInstructorLed)

	tooFewOptions := sampleQuestions()
	tooFewOptions[0].Options = tooFewOptions[0].Options[:1]
	noCorrect := sampleQuestions()
	noCorrect[1].Options[1].IsCorrect = false
	badKind := sampleQuestions()
	badKind[0].Kind = "essay"
	empty := []QuestionRequest{}
	valid := sampleQuestions()

	tests := []struct {
		name    string
		req     *QuizRequest
		kind    util.ErrorKind
		wantMsg string
	}{
		{"missing title", &QuizRequest{CourseID: f.course.ID, Questions: &valid}, util.KindValidation, "titulo"},
		{"no questions", &QuizRequest{CourseID: f.course.ID, Title: strPtr("x"), Questions: &empty}, util.KindValidation, "perguntas"},
		{"absent questions", &QuizRequest{CourseID: f.course.ID, Title: strPtr("x")}, util.KindValidation, "perguntas"},
		{"one option", &QuizRequest{CourseID: f.course.ID, Title: strPtr("x"), Questions: &tooFewOptions}, util.KindValidation, "perguntas[0].opcoes"},
		{"no correct option", &QuizRequest{CourseID: f.course.ID, Title: strPtr("x"), Questions: &noCorrect}, util.KindValidation, "perguntas[1].opcoes"},
		{"unknown kind", &QuizRequest{CourseID: f.course.ID, Title: strPtr("x"), Questions: &badKind}, util.KindValidation, "perguntas[0].tipo"},
		{"zero time limit", &QuizRequest{CourseID: f.course.ID, Title: strPtr("x"), Questions: &valid, TimeLimit: util.NullableInt{Set: true, Value: intPtr(0)}}, util.KindValidation, "tempo_limite"},
		{"time limit over a year", &QuizRequest{CourseID: f.course.ID, Title: strPtr("x"), Questions: &valid, TimeLimit: util.NullableInt{Set: true, Value: intPtr(MaxTimeLimitMinutes + 1)}}, util.KindValidation, "tempo_limite"},
		{"missing course", &QuizRequest{CourseID: 777, Title: strPtr("x"), Questions: &valid}, util.KindNotFound, ""},
		{"instructor-led course", &QuizRequest{CourseID: live.ID, Title: strPtr("x"), Questions: &valid}, util.KindInvalidState, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.quizzes.CreateQuiz(t.Context(), tt.req)
			if util.KindOf(err) != tt.kind {
				t.Fatalf("CreateQuiz error = %v, want kind %s", err, tt.kind)
			}
			if tt.wantMsg == "" {
				return
			}
			var appErr *util.AppError
			errors.As(err, &appErr)
			found := false
			for _, e := range appErr.Errors {
				if strings.HasPrefix(e, tt.wantMsg) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v lack an entry for %s", appErr.Errors, tt.wantMsg)
			}
		})
	}

	if n := f.count(t, &model.Quiz{}, ""); n != 0 {
		t.Errorf("invalid requests persisted %d quizzes", n)
	}
}

func TestCreateQuizRollsBack(t *testing.T) {
	f := newFixture(t)
	questions := sampleQuestions()
	failWrites(t, f.db, "create", "quiz_options")

	_, err := f.quizzes.CreateQuiz(t.Context(), &QuizRequest{
		CourseID:  f.course.ID,
		Title:     strPtr("Quiz 1"),
		Questions: &questions,
	})
	if !errors.Is(err, errInjected) || !util.IsKind(err, util.KindInternal) {
		t.Fatalf("CreateQuiz = %v, want internal wrapping the injected failure", err)
	}
	if n := f.count(t, &model.Quiz{}, ""); n != 0 {
		t.Errorf("quizzes after failed create = %d", n)
	}
	if n := f.count(t, &model.Question{}, ""); n != 0 {
		t.Errorf("questions after failed create = %d", n)
	}
}

func TestUpdateQuizReplaceRollsBack(t *testing.T) {
	f := newFixture(t)
	quiz := f.createQuiz(t, nil)
	failWrites(t, f.db, "create", "quiz_options")

	replacement := []QuestionRequest{{
		Text: "Qual palavra-chave inicia uma goroutine?",
		Kind: model.QuestionMultipleChoice,
		Options: []OptionRequest{
			{Text: "go", IsCorrect: true},
			{Text: "async"},
		},
	}}
	_, err := f.quizzes.UpdateQuiz(t.Context(), quiz.ID, &QuizRequest{
		Title:     strPtr("Quiz renomeado"),
		Questions: &replacement,
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("UpdateQuiz = %v, want the injected failure", err)
	}

	var stored model.Quiz
	if err := f.db.Preload("Questions.Options").First(&stored, quiz.ID).Error; err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	if stored.Title != "Quiz 1" {
		t.Errorf("title = %q, want the pre-update title", stored.Title)
	}
	if len(stored.Questions) != 2 {
		t.Fatalf("questions after failed replace = %d, want 2", len(stored.Questions))
	}
	ids := map[uint]bool{quiz.Questions[0].ID: true, quiz.Questions[1].ID: true}
	for _, q := range stored.Questions {
		if !ids[q.ID] {
			t.Errorf("question %d is not one of the originals", q.ID)
		}
	}
	if n := f.count(t, &model.Option{}, ""); n != 6 {
		t.Errorf("options after failed replace = %d, want 6", n)
	}
}

func TestUpdateQuizScalars(t *testing.T) {
	f := newFixture(t)
	quiz := f.createQuiz(t, nil)
	ctx := t.Context()

	f.now = f.now.Add(time.Hour)
	updated, err := f.quizzes.UpdateQuiz(ctx, quiz.ID, &QuizRequest{
		Title:     strPtr("Quiz renomeado"),
		TimeLimit: util.NullableInt{Set: true, Value: intPtr(15)},
	})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	if updated.Title != "Quiz renomeado" || updated.TimeLimit == nil || *updated.TimeLimit != 15 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.TimeLimitStart == nil || !updated.TimeLimitStart.Equal(f.now) {
		t.Errorf("time limit start = %v, want %v", updated.TimeLimitStart, f.now)
	}
	if len(updated.Questions) != 2 || updated.Questions[0].ID != quiz.Questions[0].ID {
		t.Error("questions changed by a scalar update")
	}

	// absent tempo_limite leaves the countdown alone
	f.now = f.now.Add(time.Minute)
	updated, err = f.quizzes.UpdateQuiz(ctx, quiz.ID, &QuizRequest{Description: strPtr("nova descrição")})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	if updated.TimeLimit == nil || !updated.TimeLimitStart.Equal(f.now.Add(-time.Minute)) {
		t.Errorf("time limit touched: %v %v", updated.TimeLimit, updated.TimeLimitStart)
	}

	// explicit null removes it
	updated, err = f.quizzes.UpdateQuiz(ctx, quiz.ID, &QuizRequest{TimeLimit: util.NullableInt{Set: true}})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	if updated.TimeLimit != nil || updated.TimeLimitStart != nil {
		t.Errorf("time limit not cleared: %v %v", updated.TimeLimit, updated.TimeLimitStart)
	}

	if _, err := f.quizzes.UpdateQuiz(ctx, quiz.ID, &QuizRequest{Title: strPtr("  ")}); !util.IsKind(err, util.KindValidation) {
		t.Errorf("blank title = %v, want validation", err)
	}
	if _, err := f.quizzes.UpdateQuiz(ctx, quiz.ID, &QuizRequest{TimeLimit: util.NullableInt{Set: true, Value: intPtr(1 << 30)}}); !util.IsKind(err, util.KindValidation) {
		t.Errorf("oversized time limit = %v, want validation", err)
	}
	updated, err = f.quizzes.UpdateQuiz(ctx, quiz.ID, &QuizRequest{TimeLimit: util.NullableInt{Set: true, Value: intPtr(MaxTimeLimitMinutes)}})
	if err != nil {
		t.Fatalf("UpdateQuiz at the cap: %v", err)
	}
	if IsExpired(updated, f.now) {
		t.Error("quiz at the time limit cap reads as expired")
	}
	if _, err := f.quizzes.UpdateQuiz(ctx, 555, &QuizRequest{}); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("missing quiz = %v", err)
	}
}

func TestUpdateQuizReplacesQuestions(t *testing.T) {
	f := newFixture(t)
	quiz := f.createQuiz(t, nil)
	ctx := t.Context()

	if _, err := f.attempts.StartAttempt(ctx, quiz.ID, f.learner.ID); err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := f.attempts.SubmitAttempt(ctx, quiz.ID, f.learner.ID, answersFor(quiz, Selection{0}, Selection{1})); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	oldIDs := []uint{quiz.Questions[0].ID, quiz.Questions[1].ID}
	replacement := []QuestionRequest{{
		Text:   "Qual palavra-chave inicia uma goroutine?",
		Kind:   model.QuestionMultipleChoice,
		Points: floatPtr(2),
		Options: []OptionRequest{
			{Text: "go", IsCorrect: true},
			{Text: "async"},
			{Text: "spawn"},
		},
	}}

	updated, err := f.quizzes.UpdateQuiz(ctx, quiz.ID, &QuizRequest{Questions: &replacement})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	if len(updated.Questions) != 1 || updated.Questions[0].Text != replacement[0].Text {
		t.Fatalf("questions after replace = %+v", updated.Questions)
	}
	if len(updated.Questions[0].Options) != 3 {
		t.Errorf("options after replace = %d", len(updated.Questions[0].Options))
	}

	if n := f.count(t, &model.Question{}, "id IN ?", oldIDs); n != 0 {
		t.Errorf("%d old questions survived", n)
	}
	if n := f.count(t, &model.Option{}, "question_id IN ?", oldIDs); n != 0 {
		t.Errorf("%d old options survived", n)
	}
	if n := f.count(t, &model.ResponseDetail{}, "question_id IN ?", oldIDs); n != 0 {
		t.Errorf("%d old details survived", n)
	}
	// the completed response itself is kept
	if n := f.count(t, &model.Response{}, "quiz_id = ?", quiz.ID); n != 1 {
		t.Errorf("responses = %d, want 1", n)
	}

	bad := []QuestionRequest{{Text: "x", Kind: model.QuestionTrueFalse, Options: []OptionRequest{{Text: "a"}, {Text: "b"}}}}
	if _, err := f.quizzes.UpdateQuiz(ctx, quiz.ID, &QuizRequest{Questions: &bad}); !util.IsKind(err, util.KindValidation) {
		t.Fatalf("invalid replacement = %v, want validation", err)
	}
	if n := f.count(t, &model.Question{}, "quiz_id = ?", quiz.ID); n != 1 {
		t.Errorf("invalid replacement touched questions: %d", n)
	}
}

func TestDeleteQuizCascades(t *testing.T) {
	f := newFixture(t)
	quiz := f.createQuiz(t, nil)
	keep := f.createQuiz(t, nil)
	ctx := t.Context()

	if _, err := f.attempts.StartAttempt(ctx, quiz.ID, f.learner.ID); err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := f.attempts.SubmitAttempt(ctx, quiz.ID, f.learner.ID, answersFor(quiz, Selection{0, 2}, Selection{1})); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if err := f.quizzes.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("DeleteQuiz: %v", err)
	}

	checks := []struct {
		model interface{}
		query string
		want  int64
	}{
		{&model.Quiz{}, "", 1},
		{&model.Question{}, "quiz_id = ?", 0},
		{&model.Response{}, "quiz_id = ?", 0},
		{&model.Question{}, "", 2},
		{&model.Option{}, "", 6},
		{&model.ResponseDetail{}, "", 0},
	}
	for _, c := range checks {
		var args []interface{}
		if c.query != "" {
			args = append(args, quiz.ID)
		}
		if n := f.count(t, c.model, c.query, args...); n != c.want {
			t.Errorf("%T %q = %d, want %d", c.model, c.query, n, c.want)
		}
	}

	if _, err := f.quizzes.GetQuiz(ctx, keep.ID); err != nil {
		t.Errorf("unrelated quiz lost: %v", err)
	}
	if err := f.quizzes.DeleteQuiz(ctx, quiz.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("second delete = %v", err)
	}
}

func TestListQuizzesWithCounts(t *testing.T) {
	f := newFixture(t)
	quiz := f.createQuiz(t, nil)
	f.createQuiz(t, nil)
	ctx := t.Context()

	if _, err := f.attempts.StartAttempt(ctx, quiz.ID, f.learner.ID); err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := f.attempts.SubmitAttempt(ctx, quiz.ID, f.learner.ID, nil); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	rows, err := f.quizzes.ListQuizzes(ctx, f.course.ID)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	for _, r := range rows {
		if r.QuestionCount != 2 {
			t.Errorf("quiz %d question count = %d", r.ID, r.QuestionCount)
		}
		want := 0
		if r.ID == quiz.ID {
			want = 1
		}
		if r.CompletedCount != want {
			t.Errorf("quiz %d completed count = %d, want %d", r.ID, r.CompletedCount, want)
		}
	}

	if _, err := f.quizzes.ListQuizzes(ctx, 999); !errors.Is(err, util.ErrCourseNotFound) {
		t.Errorf("missing course = %v", err)
	}
}
