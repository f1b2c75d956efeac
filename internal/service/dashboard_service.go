package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/repository"
)

// attendanceWindowMonths is how far back the student dashboard looks when
// computing the attendance percentage.
const attendanceWindowMonths = 6

// DashboardService produces aggregated per-role dashboard metrics. Results
// are cached in Redis for a short TTL since they are read far more often
// than the underlying rows change.
type DashboardService interface {
	StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
	FacultyDashboard(ctx context.Context) (dto.FacultyDashboardResponse, error)
	AdminStats(ctx context.Context) (dto.AdminStatsResponse, error)
}

type dashboardService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	attendance  AttendanceService
	grades      AssignmentService
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(users repository.UserRepository, courses repository.CourseRepository, assignments repository.AssignmentRepository, attendance AttendanceService, grades AssignmentService, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		users:       users,
		courses:     courses,
		assignments: assignments,
		attendance:  attendance,
		grades:      grades,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%d", studentID)

	var response dto.StudentDashboardResponse
	if s.readCache(ctx, cacheKey, &response) {
		return response, nil
	}

	end := s.now()
	start := end.AddDate(0, -attendanceWindowMonths, 0)
	percentage, err := s.attendance.Percentage(ctx, studentID, start, end)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	averageGrade, err := s.grades.AverageGradeForStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response = dto.StudentDashboardResponse{
		AttendancePercentage: percentage,
		SubmittedAssignments: int64(len(submissions)),
		AverageGrade:         averageGrade,
	}

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

func (s *dashboardService) FacultyDashboard(ctx context.Context) (dto.FacultyDashboardResponse, error) {
	const cacheKey = "dashboard:faculty"

	var response dto.FacultyDashboardResponse
	if s.readCache(ctx, cacheKey, &response) {
		return response, nil
	}

	totalCourses, err := s.courses.Count(ctx)
	if err != nil {
		return dto.FacultyDashboardResponse{}, err
	}

	totalStudents, err := s.users.CountByRole(ctx, models.RoleStudent)
	if err != nil {
		return dto.FacultyDashboardResponse{}, err
	}

	pending, err := s.grades.PendingEvaluations(ctx)
	if err != nil {
		return dto.FacultyDashboardResponse{}, err
	}

	response = dto.FacultyDashboardResponse{
		TotalCourses:       totalCourses,
		TotalStudents:      totalStudents,
		PendingEvaluations: pending,
	}

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

func (s *dashboardService) AdminStats(ctx context.Context) (dto.AdminStatsResponse, error) {
	const cacheKey = "dashboard:admin"

	var response dto.AdminStatsResponse
	if s.readCache(ctx, cacheKey, &response) {
		return response, nil
	}

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	totalStudents, err := s.users.CountByRole(ctx, models.RoleStudent)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	totalFaculty, err := s.users.CountByRole(ctx, models.RoleFaculty)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	totalAdmins, err := s.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	totalCourses, err := s.courses.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	totalAssignments, err := s.assignments.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}

	response = dto.AdminStatsResponse{
		TotalUsers:       totalUsers,
		TotalStudents:    totalStudents,
		TotalFaculty:     totalFaculty,
		TotalAdmins:      totalAdmins,
		TotalCourses:     totalCourses,
		TotalAssignments: totalAssignments,
	}

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

func (s *dashboardService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read dashboard cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		return false
	}

	s.logger.Debug().Str("key", key).Msg("dashboard cache hit")
	return true
}

func (s *dashboardService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store dashboard cache")
	}
}
