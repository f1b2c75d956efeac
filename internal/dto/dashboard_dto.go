package dto

// StudentDashboardResponse aggregates a student's headline numbers.
type StudentDashboardResponse struct {
	AttendancePercentage float64 `json:"attendance_percentage"`
	SubmittedAssignments int64   `json:"submitted_assignments"`
	AverageGrade         string  `json:"average_grade"`
}

// FacultyDashboardResponse aggregates faculty-facing counts.
type FacultyDashboardResponse struct {
	TotalCourses       int64 `json:"total_courses"`
	TotalStudents      int64 `json:"total_students"`
	PendingEvaluations int64 `json:"pending_evaluations"`
}

// AdminStatsResponse aggregates portal-wide counts for administrators.
type AdminStatsResponse struct {
	TotalUsers       int64 `json:"total_users"`
	TotalStudents    int64 `json:"total_students"`
	TotalFaculty     int64 `json:"total_faculty"`
	TotalAdmins      int64 `json:"total_admins"`
	TotalCourses     int64 `json:"total_courses"`
	TotalAssignments int64 `json:"total_assignments"`
}
