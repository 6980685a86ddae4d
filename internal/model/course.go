package model

import "time"

type CourseLevel string

const (
	CourseLevelEasy   CourseLevel = "easy"
	CourseLevelMedium CourseLevel = "medium"
	CourseLevelHard   CourseLevel = "hard"
)

func (l CourseLevel) Valid() bool {
	switch l {
	case CourseLevelEasy, CourseLevelMedium, CourseLevelHard:
		return true
	default:
		return false
	}
}

type Course struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       int64       `json:"price"`
	Level       CourseLevel `json:"level"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
