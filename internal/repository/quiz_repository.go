package repository

import (
	"context"
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) WithTx(tx *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: tx}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("order_index asc, id asc")
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("order_index asc, id asc")
}

func (r *QuizRepository) FindByID(ctx context.Context, id uint) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.WithContext(ctx).First(&q, id).Error
	return &q, err
}

// FindWithQuestions loads the quiz tree with questions and options in
// stored order.
func (r *QuizRepository) FindWithQuestions(ctx context.Context, id uint) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Preload("Questions.Options", orderedOptions).
		First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) ListByCourse(ctx context.Context, courseID uint, activeOnly bool) ([]model.Quiz, error) {
	var qs []model.Quiz
	query := r.DB.WithContext(ctx).Where("course_id = ?", courseID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("created_at desc, id desc").Find(&qs).Error
	return qs, err
}

type QuizListRow struct {
	model.Quiz
	QuestionCount  int `json:"total_perguntas"`
	CompletedCount int `json:"total_concluidas"`
}

func (r *QuizRepository) ListWithCounts(ctx context.Context, courseID uint) ([]QuizListRow, error) {
	var rows []QuizListRow
	err := r.DB.WithContext(ctx).Table("quizzes q").
		Select("q.*, "+
			"(SELECT COUNT(*) FROM quiz_questions qq WHERE qq.quiz_id = q.id) as question_count, "+
			"(SELECT COUNT(*) FROM quiz_responses qr WHERE qr.quiz_id = q.id AND qr.completed = ?) as completed_count", true).
		Where("q.course_id = ?", courseID).
		Order("q.created_at desc, q.id desc").
		Scan(&rows).Error
	return rows, err
}

// CreateTree inserts the quiz, then each question followed by its options,
// all in one transaction.
func (r *QuizRepository) CreateTree(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := quiz.Questions
		if err := tx.Omit(clause.Associations).Create(quiz).Error; err != nil {
			return err
		}
		if err := insertQuestions(tx, quiz.ID, questions); err != nil {
			return err
		}
		quiz.Questions = questions
		return nil
	})
}

// UpdateTree saves the scalar fields and, when questions is non-nil, drops
// the old question tree and inserts the new one.
func (r *QuizRepository) UpdateTree(ctx context.Context, quiz *model.Quiz, questions []model.Question, replace bool) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(quiz).Error; err != nil {
			return err
		}
		if !replace {
			return nil
		}
		if err := deleteQuestionTree(tx, quiz.ID); err != nil {
			return err
		}
		if err := insertQuestions(tx, quiz.ID, questions); err != nil {
			return err
		}
		quiz.Questions = questions
		return nil
	})
}

// Delete removes the quiz and everything hanging off it.
func (r *QuizRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteQuestionTree(tx, id); err != nil {
			return err
		}
		var responseIDs []uint
		if err := tx.Model(&model.Response{}).Where("quiz_id = ?", id).Pluck("id", &responseIDs).Error; err != nil {
			return err
		}
		if len(responseIDs) > 0 {
			// 题目已删除，兜底清理残留明细
			if err := tx.Where("response_id IN ?", responseIDs).Delete(&model.ResponseDetail{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.Response{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, id).Error
	})
}

func insertQuestions(tx *gorm.DB, quizID uint, questions []model.Question) error {
	for i := range questions {
		q := &questions[i]
		q.ID = 0
		q.QuizID = quizID
		options := q.Options
		if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
			return err
		}
		for j := range options {
			options[j].ID = 0
			options[j].QuestionID = q.ID
		}
		if len(options) > 0 {
			if err := tx.Create(&options).Error; err != nil {
				return err
			}
		}
		q.Options = options
	}
	return nil
}

// deleteQuestionTree removes details, options and questions, in that order.
func deleteQuestionTree(tx *gorm.DB, quizID uint) error {
	var questionIDs []uint
	if err := tx.Model(&model.Question{}).Where("quiz_id = ?", quizID).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) == 0 {
		return nil
	}
	if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.ResponseDetail{}).Error; err != nil {
		return err
	}
	if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.Option{}).Error; err != nil {
		return err
	}
	return tx.Where("quiz_id = ?", quizID).Delete(&model.Question{}).Error
}
