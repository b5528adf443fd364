package model

type CourseKind string

const (
	CourseSelfPaced     CourseKind = "assincrono"
	CourseInstructorLed CourseKind = "sincrono"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title  string     `gorm:"size:255;not null" json:"titulo"`
	Kind   CourseKind `gorm:"size:20;not null;index" json:"tipo"`
	Active bool       `gorm:"not null" json:"ativo"`
}

func (Course) TableName() string {
	return "courses"
}

// IsSelfPaced reports whether the course may host quizzes.
func (c *Course) IsSelfPaced() bool {
	return c.Kind == CourseSelfPaced
}

// Enrollment is the (learner, course) membership that gates quiz access.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID   uint  `gorm:"not null;uniqueIndex:idx_enrollment_user_course,priority:1" json:"id_utilizador"`
	CourseID uint  `gorm:"not null;uniqueIndex:idx_enrollment_user_course,priority:2;index" json:"id_curso"`
	User     *User `gorm:"foreignKey:UserID" json:"utilizador,omitempty"`
}

func (Enrollment) TableName() string {
	return "course_enrollments"
}
