package dto

import (
	"github.com/campushub/portal-api/internal/models"
)

// DateLayout is the wire format for attendance dates.
const DateLayout = "2006-01-02"

// AttendanceMarkRequest marks a single student's attendance.
type AttendanceMarkRequest struct {
	StudentID uint   `json:"student_id" validate:"required"`
	ClassName string `json:"class_name" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// AttendanceBatchItem is one entry of a batch marking request.
type AttendanceBatchItem struct {
	StudentID uint   `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// AttendanceBatchRequest marks a whole class roster for one date.
type AttendanceBatchRequest struct {
	ClassName string                `json:"class_name" validate:"required"`
	Date      string                `json:"date" validate:"required"`
	Records   []AttendanceBatchItem `json:"records" validate:"required,min=1,dive"`
}

// AttendanceResponse is the API representation of one attendance record.
type AttendanceResponse struct {
	ID          uint   `json:"id"`
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name"`
	ClassName   string `json:"class_name"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

// NewAttendanceResponse maps an attendance model onto its response DTO.
func NewAttendanceResponse(record models.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:          record.ID,
		StudentID:   record.StudentID,
		StudentName: record.Student.Name,
		ClassName:   record.ClassName,
		Date:        record.Date.Format(DateLayout),
		Status:      string(record.Status),
	}
}

// NewAttendanceResponseSlice maps a collection of attendance records.
func NewAttendanceResponseSlice(records []models.Attendance) []AttendanceResponse {
	responses := make([]AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewAttendanceResponse(record))
	}
	return responses
}

// AttendanceReportEntry is one (student, class) group of the report.
type AttendanceReportEntry struct {
	StudentID      uint    `json:"student_id"`
	StudentName    string  `json:"student_name"`
	ClassName      string  `json:"class_name"`
	TotalClasses   int64   `json:"total_classes"`
	PresentClasses int64   `json:"present_classes"`
	Percentage     float64 `json:"percentage"`
}
