package dto

import (
	"time"

	"github.com/campushub/portal-api/internal/models"
)

// AssignmentResponse is the API representation of a submitted assignment.
type AssignmentResponse struct {
	ID               uint      `json:"id"`
	StudentID        uint      `json:"student_id"`
	StudentName      string    `json:"student_name"`
	Course           string    `json:"course"`
	Title            string    `json:"title,omitempty"`
	OriginalFileName string    `json:"original_file_name"`
	FileURL          string    `json:"file_url"`
	Grade            string    `json:"grade"`
	Feedback         string    `json:"feedback"`
	ContentScore     int       `json:"content_score"`
	GrammarScore     int       `json:"grammar_score"`
	StructureScore   int       `json:"structure_score"`
	OriginalityScore int       `json:"originality_score"`
	TotalScore       int       `json:"total_score"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// NewAssignmentResponse maps an assignment model onto its response DTO.
func NewAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:               assignment.ID,
		StudentID:        assignment.StudentID,
		StudentName:      assignment.Student.Name,
		Course:           assignment.Course,
		Title:            assignment.Title,
		OriginalFileName: assignment.OriginalFileName,
		FileURL:          assignment.FileURL,
		Grade:            assignment.Grade,
		Feedback:         assignment.Feedback,
		ContentScore:     assignment.ContentScore,
		GrammarScore:     assignment.GrammarScore,
		StructureScore:   assignment.StructureScore,
		OriginalityScore: assignment.OriginalityScore,
		TotalScore:       assignment.TotalScore,
		SubmittedAt:      assignment.SubmittedAt,
	}
}

// NewAssignmentResponseSlice maps a collection of assignments.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}

// AssignmentSubmitRequest carries the multipart form fields accompanying a
// submission upload.
type AssignmentSubmitRequest struct {
	StudentID uint   `validate:"required"`
	Course    string `validate:"required"`
	Title     string
}

// AssignmentGradeUpdateRequest is the faculty payload for overriding the
// grade or feedback on a submission.
type AssignmentGradeUpdateRequest struct {
	Grade    *string `json:"grade" validate:"omitempty,oneof=A B C a b c"`
	Feedback *string `json:"feedback"`
}
