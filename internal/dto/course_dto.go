package dto

import "github.com/campushub/portal-api/internal/models"

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	Code        string `json:"code" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Department  string `json:"department"`
	FacultyName string `json:"faculty_name"`
	Active      bool   `json:"active"`
}

// CourseResponse is the API representation of a course.
type CourseResponse struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Department  string `json:"department"`
	FacultyName string `json:"faculty_name"`
	Active      bool   `json:"active"`
}

// NewCourseResponse maps a course model onto its response DTO.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:          course.ID,
		Code:        course.Code,
		Title:       course.Title,
		Department:  course.Department,
		FacultyName: course.FacultyName,
		Active:      course.Active,
	}
}

// NewCourseResponseSlice maps a collection of courses.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
