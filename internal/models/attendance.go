package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidAttendanceStatus indicates a status outside the recognised set.
var ErrInvalidAttendanceStatus = errors.New("invalid attendance status")

// AttendanceStatus enumerates the recognised attendance outcomes.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
)

// ParseAttendanceStatus converts a raw string into an AttendanceStatus.
func ParseAttendanceStatus(value string) (AttendanceStatus, error) {
	switch AttendanceStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case AttendancePresent:
		return AttendancePresent, nil
	case AttendanceAbsent:
		return AttendanceAbsent, nil
	case AttendanceLate:
		return AttendanceLate, nil
	case AttendanceExcused:
		return AttendanceExcused, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAttendanceStatus, value)
	}
}

// Attendance records one student's status for one class on one date.
// The (student_id, class_name, date) triple is unique; marking the same
// triple again overwrites the status instead of creating a second row.
type Attendance struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	StudentID uint             `gorm:"not null;uniqueIndex:idx_attendance_key" json:"student_id"`
	ClassName string           `gorm:"size:255;not null;uniqueIndex:idx_attendance_key" json:"class_name"`
	Date      time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_key" json:"date"`
	Status    AttendanceStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Student   User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}
