package models

import "time"

// Student is the person an offer was made to. ID is the roll number.
type Student struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Branch    string    `json:"branch" db:"branch"`
	CGPA      float64   `json:"cgpa" db:"cgpa"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Student model
func (Student) TableName() string {
	return "students"
}

// NewStudent creates a new Student instance
func NewStudent(rollNo, name, branch string, cgpa float64) *Student {
	now := time.Now()
	return &Student{
		ID:        rollNo,
		Name:      name,
		Branch:    branch,
		CGPA:      cgpa,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
