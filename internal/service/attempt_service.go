package service

import (
	"context"
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/tracing"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type QuizState string

const (
	StateCompleted QuizState = "concluido"
	StateExpired   QuizState = "expirado"
	StateAvailable QuizState = "disponivel"
)

type AttemptService struct {
	DB          *gorm.DB
	Quizzes     *repository.QuizRepository
	Responses   *repository.ResponseRepository
	Enrollments *repository.EnrollmentRepository
	Locker      AttemptLocker
	Now         func() time.Time

	// ExposeCorrectAnswers keeps correct indices in the live learner payload.
	// It can be flipped by a config reload.
	ExposeCorrectAnswers atomic.Bool

	autoZero singleflight.Group
}

func NewAttemptService(
	db *gorm.DB,
	quizzes *repository.QuizRepository,
	responses *repository.ResponseRepository,
	enrollments *repository.EnrollmentRepository,
	locker AttemptLocker,
	exposeCorrectAnswers bool,
) *AttemptService {
	if locker == nil {
		locker = UnavailableAttemptLocker{}
	}
	s := &AttemptService{
		DB:          db,
		Quizzes:     quizzes,
		Responses:   responses,
		Enrollments: enrollments,
		Locker:      locker,
		Now:         time.Now,
	}
	s.ExposeCorrectAnswers.Store(exposeCorrectAnswers)
	return s
}

func (s *AttemptService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AttemptService) lock(ctx context.Context, quizID, enrollmentID uint) (func(), error) {
	release, err := s.Locker.Acquire(ctx, attemptLockKey(quizID, enrollmentID))
	if errors.Is(err, ErrLockHeld) {
		return nil, util.ErrAttemptBusy
	}
	if err != nil {
		// 锁服务故障时仅依赖唯一索引
		logger.Log.Warn("Attempt lock unavailable, relying on unique index",
			zap.String("locker", s.Locker.Name()), zap.Error(err))
		return func() {}, nil
	}
	return release, nil
}

func (s *AttemptService) enrollmentFor(ctx context.Context, userID, courseID uint) (*model.Enrollment, error) {
	e, err := s.Enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrNotEnrolled, "loading enrollment")
	}
	return e, nil
}

type StartAttemptResult struct {
	ResponseID     uint       `json:"id_resposta"`
	StartedAt      time.Time  `json:"data_inicio"`
	TimeLimit      *int       `json:"tempo_limite"`
	TimeLimitStart *time.Time `json:"tempo_limite_inicio"`
}

// ResumableAttempt is returned with the conflict raised when an attempt is
// already in progress.
type ResumableAttempt struct {
	ResponseID uint      `json:"id_resposta"`
	StartedAt  time.Time `json:"data_inicio"`
}

func (s *AttemptService) StartAttempt(ctx context.Context, quizID, userID uint) (result *StartAttemptResult, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService.StartAttempt")
	defer func() {
		tracing.End(span, err)
		monitoring.AttemptsStarted.WithLabelValues(outcomeOf(err)).Inc()
	}()

	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrQuizNotFound, "loading quiz")
	}
	if !quiz.Active {
		return nil, util.ErrQuizUnavailable
	}
	now := s.now()
	if IsExpired(quiz, now) {
		return nil, util.ErrQuizExpired
	}

	enrollment, err := s.enrollmentFor(ctx, userID, quiz.CourseID)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, quiz.ID, enrollment.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.Responses.FindIncomplete(ctx, quiz.ID, enrollment.ID)
	switch {
	case err == nil:
		return nil, util.NewConflict("já existe uma tentativa em curso", ResumableAttempt{
			ResponseID: existing.ID,
			StartedAt:  existing.StartedAt,
		})
	case !isNotFound(err):
		return nil, util.NewInternal("loading in-progress response", err)
	}

	if _, err := s.Responses.FindCompleted(ctx, quiz.ID, enrollment.ID); err == nil {
		return nil, util.ErrAlreadyCompleted
	} else if !isNotFound(err) {
		return nil, util.NewInternal("loading completed response", err)
	}

	resp := &model.Response{
		QuizID:       quiz.ID,
		EnrollmentID: enrollment.ID,
		StartedAt:    now,
	}
	if err := s.Responses.Create(ctx, resp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.NewConflict("já existe uma tentativa em curso", nil)
		}
		return nil, util.NewInternal("creating response", err)
	}

	logger.Log.Info("Quiz attempt started",
		zap.Uint("quiz_id", quiz.ID),
		zap.Uint("enrollment_id", enrollment.ID),
		zap.Uint("response_id", resp.ID),
	)

	return &StartAttemptResult{
		ResponseID:     resp.ID,
		StartedAt:      resp.StartedAt,
		TimeLimit:      quiz.TimeLimit,
		TimeLimitStart: quiz.TimeLimitStart,
	}, nil
}

type SubmissionResult struct {
	ResponseID     uint    `json:"id_resposta"`
	Score          float64 `json:"nota"`
	PointsObtained float64 `json:"pontos_obtidos"`
	PointsTotal    float64 `json:"pontos_totais"`
	Percentage     int     `json:"percentagem"`
	CorrectCount   int     `json:"respostas_corretas"`
	TotalQuestions int     `json:"total_perguntas"`
}

// SubmitAttempt scores every question of the quiz against answers (keyed by
// question id) and completes the in-progress response, atomically.
func (s *AttemptService) SubmitAttempt(ctx context.Context, quizID, userID uint, answers map[uint]Selection) (result *SubmissionResult, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService.SubmitAttempt")
	defer func() {
		tracing.End(span, err)
		monitoring.Submissions.WithLabelValues(outcomeOf(err)).Inc()
		if err == nil {
			monitoring.QuizScores.Observe(result.Score)
		}
	}()

	now := s.now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quizzes := s.Quizzes.WithTx(tx)
		enrollments := s.Enrollments.WithTx(tx)
		responses := s.Responses.WithTx(tx)

		quiz, err := quizzes.FindWithQuestions(ctx, quizID)
		if err != nil {
			return notFoundOr(err, util.ErrQuizNotFound, "loading quiz")
		}
		if IsExpired(quiz, now) {
			return util.ErrQuizExpired
		}

		enrollment, err := enrollments.FindByUserAndCourse(ctx, userID, quiz.CourseID)
		if err != nil {
			return notFoundOr(err, util.ErrEnrollmentNotFound, "loading enrollment")
		}

		resp, err := responses.FindIncomplete(ctx, quiz.ID, enrollment.ID)
		if err != nil {
			return notFoundOr(err, util.ErrNoActiveAttempt, "loading in-progress response")
		}

		obtained := 0.0
		correctCount := 0
		details := make([]model.ResponseDetail, 0, len(quiz.Questions))
		for i := range quiz.Questions {
			q := &quiz.Questions[i]
			selected := answers[q.ID]
			picked := selected.Normalize()
			score := ScoreQuestion(q, selected)

			obtained += score.Points
			if score.FullyCorrect {
				correctCount++
			}

			var optionID *uint
			if len(picked) > 0 && picked[0] >= 0 && picked[0] < len(q.Options) {
				id := q.Options[picked[0]].ID
				optionID = &id
			}

			details = append(details, model.ResponseDetail{
				ResponseID:      resp.ID,
				QuestionID:      q.ID,
				SelectedIndices: joinIndices(selected),
				OptionID:        optionID,
				IsCorrect:       score.FullyCorrect,
				Points:          score.Points,
			})
		}

		if err := responses.CreateDetails(ctx, details); err != nil {
			return util.NewInternal("saving response details", err)
		}

		total := quiz.TotalPoints()
		persisted, display := ScaleScore(obtained, total)
		if err := responses.Complete(ctx, resp, persisted, now); err != nil {
			switch {
			case isNotFound(err):
				return util.ErrNoActiveAttempt
			case errors.Is(err, gorm.ErrDuplicatedKey):
				return util.ErrAlreadyCompleted
			}
			return util.NewInternal("completing response", err)
		}

		result = &SubmissionResult{
			ResponseID:     resp.ID,
			Score:          display,
			PointsObtained: roundTo(obtained, 2),
			PointsTotal:    total,
			Percentage:     Percentage(obtained, total),
			CorrectCount:   correctCount,
			TotalQuestions: len(quiz.Questions),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz attempt submitted",
		zap.Uint("quiz_id", quizID),
		zap.Uint("response_id", result.ResponseID),
		zap.Float64("score", result.Score),
	)
	return result, nil
}

// EnsureAutoZero returns the existing response for the pair or records a
// completed zero-score one. Concurrent calls in this process share one
// database round trip.
func (s *AttemptService) EnsureAutoZero(ctx context.Context, quiz *model.Quiz, enrollment *model.Enrollment) (*model.Response, error) {
	key := attemptLockKey(quiz.ID, enrollment.ID)
	v, err, _ := s.autoZero.Do(key, func() (interface{}, error) {
		return s.ensureAutoZero(ctx, quiz.ID, enrollment.ID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Response), nil
}

func (s *AttemptService) ensureAutoZero(ctx context.Context, quizID, enrollmentID uint) (*model.Response, error) {
	existing, err := s.Responses.FindByQuizAndEnrollment(ctx, quizID, enrollmentID)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, util.NewInternal("loading response", err)
	}

	release, err := s.lock(ctx, quizID, enrollmentID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 加锁后再次检查
	if existing, err := s.Responses.FindByQuizAndEnrollment(ctx, quizID, enrollmentID); err == nil {
		return existing, nil
	} else if !isNotFound(err) {
		return nil, util.NewInternal("loading response", err)
	}

	now := s.now()
	zero := 0.0
	resp := &model.Response{
		QuizID:       quizID,
		EnrollmentID: enrollmentID,
		StartedAt:    now,
		CompletedAt:  &now,
		Score:        &zero,
		Completed:    true,
		AutoScored:   true,
	}
	if err := s.Responses.Create(ctx, resp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, ferr := s.Responses.FindByQuizAndEnrollment(ctx, quizID, enrollmentID); ferr == nil {
				return existing, nil
			}
		}
		return nil, util.NewInternal("creating auto-zero response", err)
	}

	monitoring.AutoZeroResponses.Inc()
	logger.Log.Info("Expired quiz auto-scored as zero",
		zap.Uint("quiz_id", quizID),
		zap.Uint("enrollment_id", enrollmentID),
		zap.Uint("response_id", resp.ID),
	)
	return resp, nil
}

func stateFor(resp *model.Response, expired bool) QuizState {
	if resp != nil && resp.Completed && !resp.AutoScored {
		return StateCompleted
	}
	if expired {
		return StateExpired
	}
	return StateAvailable
}

type LearnerQuizView struct {
	model.Quiz
	State            QuizState       `json:"estado"`
	RemainingSeconds *int            `json:"tempo_restante,omitempty"`
	Response         *model.Response `json:"resposta,omitempty"`
}

// ListForLearner lists the course's active quizzes annotated for the caller.
// Expired quizzes without a response get their zero score materialized here.
func (s *AttemptService) ListForLearner(ctx context.Context, courseID, userID uint) ([]LearnerQuizView, error) {
	enrollment, err := s.enrollmentFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.Quizzes.ListByCourse(ctx, courseID, true)
	if err != nil {
		return nil, util.NewInternal("listing quizzes", err)
	}

	ids := make([]uint, len(quizzes))
	for i, q := range quizzes {
		ids[i] = q.ID
	}
	responses, err := s.Responses.ListForEnrollment(ctx, enrollment.ID, ids)
	if err != nil {
		return nil, util.NewInternal("listing responses", err)
	}
	byQuiz := make(map[uint]*model.Response, len(responses))
	for i := range responses {
		if _, seen := byQuiz[responses[i].QuizID]; !seen {
			byQuiz[responses[i].QuizID] = &responses[i]
		}
	}

	now := s.now()
	views := make([]LearnerQuizView, 0, len(quizzes))
	for i := range quizzes {
		quiz := &quizzes[i]
		resp := byQuiz[quiz.ID]
		expired := IsExpired(quiz, now)
		if expired && resp == nil {
			zeroed, err := s.EnsureAutoZero(ctx, quiz, enrollment)
			if err != nil {
				logger.Log.Error("Failed to auto-score expired quiz",
					zap.Uint("quiz_id", quiz.ID),
					zap.Uint("enrollment_id", enrollment.ID),
					zap.Error(err),
				)
			} else {
				resp = zeroed
			}
		}

		view := LearnerQuizView{
			Quiz:     *quiz,
			State:    stateFor(resp, expired),
			Response: resp,
		}
		if !expired {
			view.RemainingSeconds = RemainingSeconds(quiz, now)
		}
		views = append(views, view)
	}
	return views, nil
}

type LearnerOption struct {
	Index int    `json:"indice"`
	Text  string `json:"texto"`
}

type LearnerQuestion struct {
	ID             uint               `json:"id"`
	Text           string             `json:"texto"`
	Kind           model.QuestionKind `json:"tipo"`
	Points         float64            `json:"pontos"`
	Order          int                `json:"ordem"`
	Options        []LearnerOption    `json:"opcoes"`
	CorrectIndices []int              `json:"indices_corretos,omitempty"`
}

type LearnerQuizPayload struct {
	ID               uint              `json:"id"`
	CourseID         uint              `json:"id_curso"`
	Title            string            `json:"titulo"`
	Description      string            `json:"descricao"`
	TimeLimit        *int              `json:"tempo_limite"`
	TimeLimitStart   *time.Time        `json:"tempo_limite_inicio"`
	RemainingSeconds *int              `json:"tempo_restante,omitempty"`
	State            QuizState         `json:"estado"`
	Response         *model.Response   `json:"resposta,omitempty"`
	Questions        []LearnerQuestion `json:"perguntas"`
}

// GetLearnerQuiz builds the learner-facing shape of a quiz. Correct indices
// are only included once the learner has completed it, unless
// ExposeCorrectAnswers is set.
func (s *AttemptService) GetLearnerQuiz(ctx context.Context, quizID, userID uint) (*LearnerQuizPayload, error) {
	quiz, err := s.Quizzes.FindWithQuestions(ctx, quizID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrQuizNotFound, "loading quiz")
	}

	enrollment, err := s.enrollmentFor(ctx, userID, quiz.CourseID)
	if err != nil {
		return nil, err
	}

	resp, err := s.Responses.FindByQuizAndEnrollment(ctx, quiz.ID, enrollment.ID)
	if err != nil {
		if !isNotFound(err) {
			return nil, util.NewInternal("loading response", err)
		}
		resp = nil
	}
	completed := resp != nil && resp.Completed

	if !quiz.Active && !completed {
		return nil, util.ErrQuizUnavailable
	}

	reveal := s.ExposeCorrectAnswers.Load() || completed
	return learnerPayload(quiz, resp, reveal, s.now()), nil
}

// PreviewLearnerQuiz shows staff what a learner sees mid-attempt, without
// an enrollment. Inactive quizzes can be previewed.
func (s *AttemptService) PreviewLearnerQuiz(ctx context.Context, quizID uint) (*LearnerQuizPayload, error) {
	quiz, err := s.Quizzes.FindWithQuestions(ctx, quizID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrQuizNotFound, "loading quiz")
	}
	return learnerPayload(quiz, nil, s.ExposeCorrectAnswers.Load(), s.now()), nil
}

func learnerPayload(quiz *model.Quiz, resp *model.Response, reveal bool, now time.Time) *LearnerQuizPayload {
	expired := IsExpired(quiz, now)
	payload := &LearnerQuizPayload{
		ID:             quiz.ID,
		CourseID:       quiz.CourseID,
		Title:          quiz.Title,
		Description:    quiz.Description,
		TimeLimit:      quiz.TimeLimit,
		TimeLimitStart: quiz.TimeLimitStart,
		State:          stateFor(resp, expired),
		Response:       resp,
		Questions:      make([]LearnerQuestion, 0, len(quiz.Questions)),
	}
	if !expired {
		payload.RemainingSeconds = RemainingSeconds(quiz, now)
	}

	for _, q := range quiz.Questions {
		lq := LearnerQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Kind:    q.Kind,
			Points:  q.Points,
			Order:   q.OrderIndex,
			Options: make([]LearnerOption, len(q.Options)),
		}
		for i, opt := range q.Options {
			lq.Options[i] = LearnerOption{Index: i, Text: opt.Text}
		}
		if reveal {
			lq.CorrectIndices = q.CorrectIndices()
		}
		payload.Questions = append(payload.Questions, lq)
	}
	return payload
}

type AttemptResult struct {
	Response       *model.Response        `json:"resposta"`
	Details        []model.ResponseDetail `json:"detalhes"`
	PointsTotal    float64                `json:"pontos_totais"`
	CorrectCount   int                    `json:"respostas_corretas"`
	TotalQuestions int                    `json:"total_perguntas"`
}

// GetResult returns the caller's completed response with per-question details.
func (s *AttemptService) GetResult(ctx context.Context, quizID, userID uint) (*AttemptResult, error) {
	quiz, err := s.Quizzes.FindWithQuestions(ctx, quizID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrQuizNotFound, "loading quiz")
	}
	enrollment, err := s.enrollmentFor(ctx, userID, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	resp, err := s.Responses.FindCompleted(ctx, quiz.ID, enrollment.ID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrResponseNotFound, "loading response")
	}
	details, err := s.Responses.ListDetails(ctx, resp.ID)
	if err != nil {
		return nil, util.NewInternal("loading response details", err)
	}

	correct := 0
	for _, d := range details {
		if d.IsCorrect {
			correct++
		}
	}
	return &AttemptResult{
		Response:       resp,
		Details:        details,
		PointsTotal:    quiz.TotalPoints(),
		CorrectCount:   correct,
		TotalQuestions: len(quiz.Questions),
	}, nil
}
