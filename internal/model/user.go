package model

// UserRole mirrors the numeric role ids carried in access tokens.
type UserRole int

const (
	RoleAdmin   UserRole = 1
	RoleTrainer UserRole = 2
	RoleLearner UserRole = 3
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"nome"`
	Email    string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Role     UserRole `gorm:"not null" json:"id_cargo"`
	Disabled bool     `gorm:"not null" json:"inativo"`
}

func (User) TableName() string {
	return "users"
}
