package repository

import (
	"context"
	"learnhub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

func (r *ResponseRepository) WithTx(tx *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: tx}
}

func (r *ResponseRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.Response, error) {
	var resp model.Response
	err := r.DB.WithContext(ctx).Where(query, args...).Order("id asc").First(&resp).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// FindByQuizAndEnrollment returns any response for the pair, completed first.
func (r *ResponseRepository) FindByQuizAndEnrollment(ctx context.Context, quizID, enrollmentID uint) (*model.Response, error) {
	var resp model.Response
	err := r.DB.WithContext(ctx).
		Where("quiz_id = ? AND enrollment_id = ?", quizID, enrollmentID).
		Order("completed desc, id asc").
		First(&resp).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *ResponseRepository) FindIncomplete(ctx context.Context, quizID, enrollmentID uint) (*model.Response, error) {
	return r.findOne(ctx, "quiz_id = ? AND enrollment_id = ? AND completed = ?", quizID, enrollmentID, false)
}

func (r *ResponseRepository) FindCompleted(ctx context.Context, quizID, enrollmentID uint) (*model.Response, error) {
	return r.findOne(ctx, "quiz_id = ? AND enrollment_id = ? AND completed = ?", quizID, enrollmentID, true)
}

func (r *ResponseRepository) Create(ctx context.Context, resp *model.Response) error {
	return r.DB.WithContext(ctx).Create(resp).Error
}

func (r *ResponseRepository) CreateDetails(ctx context.Context, details []model.ResponseDetail) error {
	if len(details) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&details).Error
}

// Complete flips an in-progress response to completed. It affects no row,
// and returns gorm.ErrRecordNotFound, when the response was already completed.
func (r *ResponseRepository) Complete(ctx context.Context, resp *model.Response, score float64, completedAt time.Time) error {
	res := r.DB.WithContext(ctx).Model(&model.Response{}).
		Where("id = ? AND completed = ?", resp.ID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": completedAt,
			"score":        score,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	resp.Completed = true
	resp.CompletedAt = &completedAt
	resp.Score = &score
	return nil
}

// ListForEnrollment returns the enrollment's responses to the given quizzes.
func (r *ResponseRepository) ListForEnrollment(ctx context.Context, enrollmentID uint, quizIDs []uint) ([]model.Response, error) {
	var rs []model.Response
	if len(quizIDs) == 0 {
		return rs, nil
	}
	err := r.DB.WithContext(ctx).
		Where("enrollment_id = ? AND quiz_id IN ?", enrollmentID, quizIDs).
		Order("completed desc, id asc").
		Find(&rs).Error
	return rs, err
}

func (r *ResponseRepository) ListCompletedByQuizzes(ctx context.Context, quizIDs []uint) ([]model.Response, error) {
	var rs []model.Response
	if len(quizIDs) == 0 {
		return rs, nil
	}
	err := r.DB.WithContext(ctx).
		Where("quiz_id IN ? AND completed = ?", quizIDs, true).
		Find(&rs).Error
	return rs, err
}

type ResponseListRow struct {
	model.Response
	UserID   uint   `json:"id_utilizador"`
	UserName string `json:"nome_utilizador"`
}

func (r *ResponseRepository) ListByQuiz(ctx context.Context, quizID uint) ([]ResponseListRow, error) {
	var rows []ResponseListRow
	err := r.DB.WithContext(ctx).Table("quiz_responses r").
		Select("r.*, u.id as user_id, u.name as user_name").
		Joins("JOIN course_enrollments e ON e.id = r.enrollment_id").
		Joins("JOIN users u ON u.id = e.user_id").
		Where("r.quiz_id = ?", quizID).
		Order("u.name asc, r.id asc").
		Scan(&rows).Error
	return rows, err
}

func (r *ResponseRepository) ListDetails(ctx context.Context, responseID uint) ([]model.ResponseDetail, error) {
	var ds []model.ResponseDetail
	err := r.DB.WithContext(ctx).Where("response_id = ?", responseID).Order("id asc").Find(&ds).Error
	return ds, err
}
