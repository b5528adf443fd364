package service

import (
	"context"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

type QuizGrade struct {
	QuizID      uint       `json:"id_quiz"`
	Title       string     `json:"titulo"`
	Score       *float64   `json:"nota"`
	AutoScored  bool       `json:"nota_automatica"`
	CompletedAt *time.Time `json:"data_conclusao"`
}

type LearnerGrades struct {
	UserID         uint        `json:"id_utilizador"`
	Name           string      `json:"nome"`
	EnrollmentID   uint        `json:"id_inscricao"`
	Quizzes        []QuizGrade `json:"quizzes"`
	CompletedCount int         `json:"quizzes_concluidos"`
	TotalQuizzes   int         `json:"total_quizzes"`
	Average        float64     `json:"media"`
}

// GradeService serves the read-only grade views consumed by trainers.
type GradeService struct {
	Courses     *repository.CourseRepository
	Quizzes     *repository.QuizRepository
	Enrollments *repository.EnrollmentRepository
	Responses   *repository.ResponseRepository
}

func NewGradeService(
	courses *repository.CourseRepository,
	quizzes *repository.QuizRepository,
	enrollments *repository.EnrollmentRepository,
	responses *repository.ResponseRepository,
) *GradeService {
	return &GradeService{Courses: courses, Quizzes: quizzes, Enrollments: enrollments, Responses: responses}
}

type gradeKey struct {
	quizID       uint
	enrollmentID uint
}

// GradesForCourse returns one row per enrolled learner with the persisted
// score of every quiz in the course. Average covers completed quizzes only
// and is 0 when there are none.
func (s *GradeService) GradesForCourse(ctx context.Context, courseID uint) ([]LearnerGrades, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrCourseNotFound, "loading course")
	}
	if !course.IsSelfPaced() {
		return nil, util.ErrCourseNotSelfPaced
	}

	var (
		quizzes     []model.Quiz
		enrollments []model.Enrollment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quizzes, err = s.Quizzes.ListByCourse(gctx, courseID, false)
		return err
	})
	g.Go(func() error {
		var err error
		enrollments, err = s.Enrollments.ListByCourse(gctx, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, util.NewInternal("loading course grades", err)
	}

	sort.SliceStable(quizzes, func(i, j int) bool {
		if quizzes[i].Title != quizzes[j].Title {
			return quizzes[i].Title < quizzes[j].Title
		}
		return quizzes[i].ID < quizzes[j].ID
	})

	ids := make([]uint, len(quizzes))
	for i, q := range quizzes {
		ids[i] = q.ID
	}
	responses, err := s.Responses.ListCompletedByQuizzes(ctx, ids)
	if err != nil {
		return nil, util.NewInternal("loading completed responses", err)
	}
	byKey := make(map[gradeKey]*model.Response, len(responses))
	for i := range responses {
		r := &responses[i]
		byKey[gradeKey{r.QuizID, r.EnrollmentID}] = r
	}

	grades := make([]LearnerGrades, 0, len(enrollments))
	for _, e := range enrollments {
		row := LearnerGrades{
			UserID:       e.UserID,
			EnrollmentID: e.ID,
			TotalQuizzes: len(quizzes),
			Quizzes:      make([]QuizGrade, 0, len(quizzes)),
		}
		if e.User != nil {
			row.Name = e.User.Name
		}
		sum := 0.0
		for _, q := range quizzes {
			grade := QuizGrade{QuizID: q.ID, Title: q.Title}
			if r, ok := byKey[gradeKey{q.ID, e.ID}]; ok && r.Score != nil {
				grade.Score = r.Score
				grade.AutoScored = r.AutoScored
				grade.CompletedAt = r.CompletedAt
				sum += *r.Score
				row.CompletedCount++
			}
			row.Quizzes = append(row.Quizzes, grade)
		}
		if row.CompletedCount > 0 {
			row.Average = roundTo(sum/float64(row.CompletedCount), 2)
		}
		grades = append(grades, row)
	}

	sort.SliceStable(grades, func(i, j int) bool {
		a, b := strings.ToLower(grades[i].Name), strings.ToLower(grades[j].Name)
		if a != b {
			return a < b
		}
		return grades[i].UserID < grades[j].UserID
	})
	return grades, nil
}

// ResponsesForQuiz lists every response to the quiz with the learner's name.
func (s *GradeService) ResponsesForQuiz(ctx context.Context, quizID uint) ([]repository.ResponseListRow, error) {
	if _, err := s.Quizzes.FindByID(ctx, quizID); err != nil {
		return nil, notFoundOr(err, util.ErrQuizNotFound, "loading quiz")
	}
	rows, err := s.Responses.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, util.NewInternal("listing responses", err)
	}
	return rows, nil
}
