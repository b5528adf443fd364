package model

import "time"

// Response is one learner attempt. The unique index keeps at most one
// in-progress and one completed row per (quiz, enrollment).
// swagger:model Response
type Response struct {
	ID           uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID       uint             `gorm:"not null;uniqueIndex:idx_quiz_response_attempt,priority:1" json:"id_quiz"`
	EnrollmentID uint             `gorm:"not null;uniqueIndex:idx_quiz_response_attempt,priority:2;index" json:"id_inscricao"`
	Completed    bool             `gorm:"not null;uniqueIndex:idx_quiz_response_attempt,priority:3" json:"concluido"`
	StartedAt    time.Time        `gorm:"not null" json:"data_inicio"`
	CompletedAt  *time.Time       `json:"data_conclusao"`
	Score        *float64         `json:"nota"` // 0-10
	AutoScored   bool             `gorm:"not null" json:"nota_automatica"`
	CreatedAt    time.Time        `json:"-"`
	UpdatedAt    time.Time        `json:"-"`
	Details      []ResponseDetail `gorm:"foreignKey:ResponseID" json:"detalhes,omitempty"`
}

func (Response) TableName() string {
	return "quiz_responses"
}

// swagger:model ResponseDetail
type ResponseDetail struct {
	ID              uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ResponseID      uint    `gorm:"not null;index" json:"id_resposta"`
	QuestionID      uint    `gorm:"not null;index" json:"id_pergunta"`
	SelectedIndices string  `gorm:"type:text" json:"resposta"` // comma-joined option indices
	OptionID        *uint   `json:"id_opcao"`
	IsCorrect       bool    `gorm:"not null" json:"correta"`
	Points          float64 `gorm:"not null" json:"pontos"`
}

func (ResponseDetail) TableName() string {
	return "quiz_response_details"
}
