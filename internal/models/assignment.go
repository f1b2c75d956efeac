package models

import "time"

// Assignment represents a student's submitted assignment together with the
// evaluation produced at submission time. Submissions are append-only; a
// student may submit multiple assignments per course.
type Assignment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StudentID        uint      `gorm:"not null;index" json:"student_id"`
	Course           string    `gorm:"size:255;not null;index" json:"course"`
	Title            string    `gorm:"size:255" json:"title"`
	OriginalFileName string    `gorm:"size:512" json:"original_file_name"`
	FileURL          string    `gorm:"size:512" json:"file_url"`
	ContentType      string    `gorm:"size:128" json:"content_type"`
	Grade            string    `gorm:"size:4" json:"grade"`
	Feedback         string    `gorm:"type:text" json:"feedback"`
	ContentScore     int       `json:"content_score"`
	GrammarScore     int       `json:"grammar_score"`
	StructureScore   int       `json:"structure_score"`
	OriginalityScore int       `json:"originality_score"`
	TotalScore       int       `json:"total_score"`
	SubmittedAt      time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Student          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsGraded reports whether the assignment carries a letter grade.
func (a Assignment) IsGraded() bool {
	return a.Grade != ""
}
