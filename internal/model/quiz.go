package model

import "time"

type QuestionKind string

const (
	QuestionMultipleChoice QuestionKind = "multiple_choice"
	QuestionTrueFalse      QuestionKind = "true_false"
)

// DefaultQuestionPoints is applied when an author omits the point value.
const DefaultQuestionPoints = 4.0

func (k QuestionKind) Valid() bool {
	return k == QuestionMultipleChoice || k == QuestionTrueFalse
}

// swagger:model Quiz
type Quiz struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID       uint       `gorm:"not null;index" json:"id_curso"`
	Title          string     `gorm:"size:255;not null" json:"titulo"`
	Description    string     `gorm:"type:text" json:"descricao"`
	TimeLimit      *int       `json:"tempo_limite"` // minutes
	TimeLimitStart *time.Time `json:"tempo_limite_inicio"`
	Active         bool       `gorm:"not null" json:"ativo"`
	CreatedAt      time.Time  `json:"data_criacao"`
	UpdatedAt      time.Time  `json:"data_atualizacao"`
	Questions      []Question `gorm:"foreignKey:QuizID" json:"perguntas,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// SetTimeLimit assigns the limit and restarts the countdown; nil removes both.
func (q *Quiz) SetTimeLimit(minutes *int, now time.Time) {
	if minutes == nil {
		q.TimeLimit = nil
		q.TimeLimitStart = nil
		return
	}
	m := *minutes
	start := now
	q.TimeLimit = &m
	q.TimeLimitStart = &start
}

// TotalPoints sums the point value of every question.
func (q *Quiz) TotalPoints() float64 {
	total := 0.0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// swagger:model Question
type Question struct {
	ID         uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID     uint         `gorm:"not null;index" json:"id_quiz"`
	Text       string       `gorm:"type:text;not null" json:"texto"`
	Kind       QuestionKind `gorm:"size:20;not null" json:"tipo"`
	Points     float64      `gorm:"not null" json:"pontos"`
	OrderIndex int          `gorm:"not null" json:"ordem"`
	Options    []Option     `gorm:"foreignKey:QuestionID" json:"opcoes,omitempty"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// CorrectIndices returns the positions of the options flagged correct,
// in stored option order.
func (q *Question) CorrectIndices() []int {
	var idx []int
	for i, opt := range q.Options {
		if opt.IsCorrect {
			idx = append(idx, i)
		}
	}
	return idx
}

// swagger:model Option
type Option struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"id_pergunta"`
	Text       string `gorm:"type:text;not null" json:"texto"`
	IsCorrect  bool   `gorm:"not null" json:"correta"`
	OrderIndex int    `gorm:"not null" json:"ordem"`
}

func (Option) TableName() string {
	return "quiz_options"
}
