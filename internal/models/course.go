package models

import "time"

// Course represents a course offering managed by administrators.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Department  string    `gorm:"size:255" json:"department"`
	FacultyName string    `gorm:"size:255" json:"faculty_name"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
