package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type OptionRequest struct {
	Text      string `json:"texto" validate:"required"`
	IsCorrect bool   `json:"correta"`
	Order     *int   `json:"ordem"`
}

type QuestionRequest struct {
	Text    string             `json:"texto" validate:"required"`
	Kind    model.QuestionKind `json:"tipo" validate:"required,oneof=multiple_choice true_false"`
	Points  *float64           `json:"pontos" validate:"omitempty,gte=0"`
	Order   *int               `json:"ordem"`
	Options []OptionRequest    `json:"opcoes" validate:"min=2,dive"`
}

// QuizRequest is shared by create and update. Pointer fields distinguish
// "absent" from zero values; tempo_limite additionally distinguishes an
// explicit null.
type QuizRequest struct {
	CourseID    uint               `json:"id_curso"`
	Title       *string            `json:"titulo"`
	Description *string            `json:"descricao"`
	TimeLimit   util.NullableInt   `json:"tempo_limite"`
	Active      *bool              `json:"ativo"`
	Questions   *[]QuestionRequest `json:"perguntas"`
}

type QuizService struct {
	Quizzes  *repository.QuizRepository
	Courses  *repository.CourseRepository
	Now      func() time.Time
	validate *validator.Validate
}

func NewQuizService(quizzes *repository.QuizRepository, courses *repository.CourseRepository) *QuizService {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &QuizService{
		Quizzes:  quizzes,
		Courses:  courses,
		Now:      time.Now,
		validate: v,
	}
}

func (s *QuizService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "oneof":
		return "deve ser um de: " + fe.Param()
	case "min":
		return fmt.Sprintf("deve ter pelo menos %s elementos", fe.Param())
	case "gte":
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	}
	return "valor inválido (" + fe.Tag() + ")"
}

func (s *QuizService) fieldErrors(prefix string, err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{prefix + ": " + err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		out = append(out, fmt.Sprintf("%s.%s: %s", prefix, ns, describeTag(fe)))
	}
	return out
}

func (s *QuizService) validateQuestions(questions []QuestionRequest) []string {
	if len(questions) == 0 {
		return []string{"perguntas: é necessária pelo menos uma pergunta"}
	}
	var errs []string
	for i := range questions {
		prefix := fmt.Sprintf("perguntas[%d]", i)
		if err := s.validate.Struct(questions[i]); err != nil {
			errs = append(errs, s.fieldErrors(prefix, err)...)
		}
		correct := 0
		for _, opt := range questions[i].Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			errs = append(errs, prefix+".opcoes: pelo menos uma opção deve estar correta")
		}
	}
	return errs
}

// MaxTimeLimitMinutes caps tempo_limite at one year.
const MaxTimeLimitMinutes = 525600

func validateTimeLimit(n util.NullableInt) []string {
	if !n.Set || n.Value == nil {
		return nil
	}
	switch v := *n.Value; {
	case v <= 0:
		return []string{"tempo_limite: deve ser um número positivo de minutos"}
	case v > MaxTimeLimitMinutes:
		return []string{fmt.Sprintf("tempo_limite: não pode exceder %d minutos", MaxTimeLimitMinutes)}
	}
	return nil
}

// buildQuestions converts requests to models. A missing order falls back to
// the array position and missing points to DefaultQuestionPoints.
func buildQuestions(reqs []QuestionRequest) []model.Question {
	questions := make([]model.Question, len(reqs))
	for i, r := range reqs {
		points := model.DefaultQuestionPoints
		if r.Points != nil {
			points = *r.Points
		}
		order := i
		if r.Order != nil {
			order = *r.Order
		}
		options := make([]model.Option, len(r.Options))
		for j, o := range r.Options {
			optOrder := j
			if o.Order != nil {
				optOrder = *o.Order
			}
			options[j] = model.Option{
				Text:       strings.TrimSpace(o.Text),
				IsCorrect:  o.IsCorrect,
				OrderIndex: optOrder,
			}
		}
		questions[i] = model.Question{
			Text:       strings.TrimSpace(r.Text),
			Kind:       r.Kind,
			Points:     points,
			OrderIndex: order,
			Options:    options,
		}
	}
	return questions
}

func (s *QuizService) CreateQuiz(ctx context.Context, req *QuizRequest) (*model.Quiz, error) {
	var errs []string
	if req.CourseID == 0 {
		errs = append(errs, "id_curso: campo obrigatório")
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		errs = append(errs, "titulo: campo obrigatório")
	}
	errs = append(errs, validateTimeLimit(req.TimeLimit)...)
	if req.Questions == nil {
		errs = append(errs, "perguntas: é necessária pelo menos uma pergunta")
	} else {
		errs = append(errs, s.validateQuestions(*req.Questions)...)
	}
	if len(errs) > 0 {
		return nil, util.NewValidation("dados do quiz inválidos", errs)
	}

	course, err := s.Courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrCourseNotFound, "loading course")
	}
	if !course.IsSelfPaced() {
		return nil, util.ErrCourseNotSelfPaced
	}

	quiz := &model.Quiz{
		CourseID:  course.ID,
		Title:     strings.TrimSpace(*req.Title),
		Active:    true,
		Questions: buildQuestions(*req.Questions),
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.Active != nil {
		quiz.Active = *req.Active
	}
	if req.TimeLimit.Set {
		quiz.SetTimeLimit(req.TimeLimit.Value, s.now())
	}

	if err := s.Quizzes.CreateTree(ctx, quiz); err != nil {
		return nil, util.NewInternal("creating quiz", err)
	}

	logger.Log.Info("Quiz created",
		zap.Uint("quiz_id", quiz.ID),
		zap.Uint("course_id", quiz.CourseID),
		zap.Int("questions", len(quiz.Questions)),
	)
	return quiz, nil
}

// UpdateQuiz applies the scalar fields present in req. When req.Questions is
// non-nil the whole question tree is replaced.
func (s *QuizService) UpdateQuiz(ctx context.Context, id uint, req *QuizRequest) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, util.ErrQuizNotFound, "loading quiz")
	}

	var errs []string
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		errs = append(errs, "titulo: não pode ser vazio")
	}
	errs = append(errs, validateTimeLimit(req.TimeLimit)...)
	if req.Questions != nil {
		errs = append(errs, s.validateQuestions(*req.Questions)...)
	}
	if len(errs) > 0 {
		return nil, util.NewValidation("dados do quiz inválidos", errs)
	}

	if req.Title != nil {
		quiz.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.Active != nil {
		quiz.Active = *req.Active
	}
	if req.TimeLimit.Set {
		quiz.SetTimeLimit(req.TimeLimit.Value, s.now())
	}

	var questions []model.Question
	if req.Questions != nil {
		questions = buildQuestions(*req.Questions)
	}
	if err := s.Quizzes.UpdateTree(ctx, quiz, questions, req.Questions != nil); err != nil {
		return nil, util.NewInternal("updating quiz", err)
	}

	logger.Log.Info("Quiz updated",
		zap.Uint("quiz_id", quiz.ID),
		zap.Bool("questions_replaced", req.Questions != nil),
	)
	return s.GetQuiz(ctx, quiz.ID)
}

func (s *QuizService) DeleteQuiz(ctx context.Context, id uint) error {
	if _, err := s.Quizzes.FindByID(ctx, id); err != nil {
		return notFoundOr(err, util.ErrQuizNotFound, "loading quiz")
	}
	if err := s.Quizzes.Delete(ctx, id); err != nil {
		return util.NewInternal("deleting quiz", err)
	}
	logger.Log.Info("Quiz deleted", zap.Uint("quiz_id", id))
	return nil
}

// GetQuiz returns the full tree, correct flags included.
func (s *QuizService) GetQuiz(ctx context.Context, id uint) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindWithQuestions(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, util.ErrQuizNotFound, "loading quiz")
	}
	return quiz, nil
}

func (s *QuizService) ListQuizzes(ctx context.Context, courseID uint) ([]repository.QuizListRow, error) {
	if _, err := s.Courses.FindByID(ctx, courseID); err != nil {
		return nil, notFoundOr(err, util.ErrCourseNotFound, "loading course")
	}
	rows, err := s.Quizzes.ListWithCounts(ctx, courseID)
	if err != nil {
		return nil, util.NewInternal("listing quizzes", err)
	}
	return rows, nil
}
