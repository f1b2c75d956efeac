package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/repository"
)

var (
	// ErrClassNameRequired indicates a blank class name.
	ErrClassNameRequired = errors.New("class name cannot be empty")
	// ErrInvalidDate indicates a date outside the YYYY-MM-DD wire format.
	ErrInvalidDate = errors.New("date must use the YYYY-MM-DD format")
	// ErrEmptyBatch indicates a batch request without records.
	ErrEmptyBatch = errors.New("attendance batch cannot be empty")
)

// AttendanceService keeps the attendance ledger. Marking the same
// (student, class, date) twice overwrites the status instead of creating a
// duplicate row.
type AttendanceService interface {
	Mark(ctx context.Context, payload dto.AttendanceMarkRequest, actor ActivityActor) (dto.AttendanceResponse, error)
	MarkBatch(ctx context.Context, payload dto.AttendanceBatchRequest, actor ActivityActor) ([]dto.AttendanceResponse, error)
	ByStudent(ctx context.Context, studentID uint) ([]dto.AttendanceResponse, error)
	ByClass(ctx context.Context, className string) ([]dto.AttendanceResponse, error)
	ByClassAndDate(ctx context.Context, className string, date string) ([]dto.AttendanceResponse, error)
	// Percentage returns the share of PRESENT records for the student within
	// [start, end], rounded to 2 decimals; 0.0 when no records exist.
	Percentage(ctx context.Context, studentID uint, start, end time.Time) (float64, error)
	// Report aggregates per (student, class) over the range, groups ordered by
	// first encounter while scanning records most-recent-date-first.
	Report(ctx context.Context, className string, start, end *time.Time) ([]dto.AttendanceReportEntry, error)
	StudentsForClass(ctx context.Context, className string) ([]dto.UserResponse, error)
}

type attendanceService struct {
	attendances repository.AttendanceRepository
	users       UserService
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(attendances repository.AttendanceRepository, users UserService, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		attendances: attendances,
		users:       users,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "attendance_service").Logger(),
		now:         time.Now,
	}
}

func (s *attendanceService) Mark(ctx context.Context, payload dto.AttendanceMarkRequest, actor ActivityActor) (dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceResponse{}, err
	}

	record, err := s.buildRecord(ctx, payload.StudentID, payload.ClassName, payload.Date, payload.Status)
	if err != nil {
		return dto.AttendanceResponse{}, err
	}

	if err := s.attendances.Upsert(ctx, &record); err != nil {
		return dto.AttendanceResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", record.StudentID).
		Str("class_name", record.ClassName).
		Str("status", string(record.Status)).
		Msg("attendance marked")

	s.recordActivity(ctx, actor, record.ID, "attendance.marked", map[string]interface{}{
		"student_id": record.StudentID,
		"class_name": record.ClassName,
		"date":       record.Date.Format(dto.DateLayout),
		"status":     string(record.Status),
	})

	return dto.NewAttendanceResponse(record), nil
}

func (s *attendanceService) MarkBatch(ctx context.Context, payload dto.AttendanceBatchRequest, actor ActivityActor) ([]dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}
	if len(payload.Records) == 0 {
		return nil, ErrEmptyBatch
	}

	// Validate every item before any write so a bad entry cannot leave the
	// batch half-applied.
	records := make([]*models.Attendance, 0, len(payload.Records))
	for _, item := range payload.Records {
		record, err := s.buildRecord(ctx, item.StudentID, payload.ClassName, payload.Date, item.Status)
		if err != nil {
			return nil, fmt.Errorf("student %d: %w", item.StudentID, err)
		}
		records = append(records, &record)
	}

	if err := s.attendances.UpsertBatch(ctx, records); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("class_name", strings.TrimSpace(payload.ClassName)).
		Str("date", payload.Date).
		Int("count", len(records)).
		Msg("attendance batch marked")

	s.recordActivity(ctx, actor, 0, "attendance.batch_marked", map[string]interface{}{
		"class_name": strings.TrimSpace(payload.ClassName),
		"date":       payload.Date,
		"count":      len(records),
	})

	responses := make([]dto.AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewAttendanceResponse(*record))
	}
	return responses, nil
}

func (s *attendanceService) buildRecord(ctx context.Context, studentID uint, className, date, status string) (models.Attendance, error) {
	className = strings.TrimSpace(className)
	if className == "" {
		return models.Attendance{}, ErrClassNameRequired
	}

	day, err := parseAttendanceDate(date)
	if err != nil {
		return models.Attendance{}, err
	}

	parsedStatus, err := models.ParseAttendanceStatus(status)
	if err != nil {
		return models.Attendance{}, err
	}

	student, err := s.users.ResolveStudent(ctx, studentID)
	if err != nil {
		return models.Attendance{}, err
	}

	return models.Attendance{
		StudentID: student.ID,
		ClassName: className,
		Date:      day,
		Status:    parsedStatus,
		Student:   student,
	}, nil
}

func (s *attendanceService) ByStudent(ctx context.Context, studentID uint) ([]dto.AttendanceResponse, error) {
	if _, err := s.users.ResolveStudent(ctx, studentID); err != nil {
		return nil, err
	}

	records, err := s.attendances.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewAttendanceResponseSlice(records), nil
}

func (s *attendanceService) ByClass(ctx context.Context, className string) ([]dto.AttendanceResponse, error) {
	className = strings.TrimSpace(className)
	if className == "" {
		return nil, ErrClassNameRequired
	}

	records, err := s.attendances.ListByClass(ctx, className)
	if err != nil {
		return nil, err
	}
	return dto.NewAttendanceResponseSlice(records), nil
}

func (s *attendanceService) ByClassAndDate(ctx context.Context, className string, date string) ([]dto.AttendanceResponse, error) {
	className = strings.TrimSpace(className)
	if className == "" {
		return nil, ErrClassNameRequired
	}

	day, err := parseAttendanceDate(date)
	if err != nil {
		return nil, err
	}

	records, err := s.attendances.ListByClassAndDate(ctx, className, day)
	if err != nil {
		return nil, err
	}
	return dto.NewAttendanceResponseSlice(records), nil
}

func (s *attendanceService) Percentage(ctx context.Context, studentID uint, start, end time.Time) (float64, error) {
	if _, err := s.users.ResolveStudent(ctx, studentID); err != nil {
		return 0, err
	}

	records, err := s.attendances.ListByStudentInRange(ctx, studentID, start, end)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0.0, nil
	}

	var present int
	for _, record := range records {
		if record.Status == models.AttendancePresent {
			present++
		}
	}

	return roundTwoDecimals(float64(present) * 100.0 / float64(len(records))), nil
}

func (s *attendanceService) Report(ctx context.Context, className string, start, end *time.Time) ([]dto.AttendanceReportEntry, error) {
	rangeEnd := s.now()
	if end != nil {
		rangeEnd = *end
	}
	rangeStart := rangeEnd.AddDate(0, -1, 0)
	if start != nil {
		rangeStart = *start
	}

	records, err := s.attendances.ListForReport(ctx, strings.TrimSpace(className), rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	type accumulator struct {
		entry   dto.AttendanceReportEntry
		present int64
		total   int64
	}

	index := make(map[string]int)
	groups := make([]*accumulator, 0)
	for _, record := range records {
		key := fmt.Sprintf("%d|%s", record.StudentID, record.ClassName)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, &accumulator{
				entry: dto.AttendanceReportEntry{
					StudentID:   record.StudentID,
					StudentName: record.Student.Name,
					ClassName:   record.ClassName,
				},
			})
		}

		groups[pos].total++
		if record.Status == models.AttendancePresent {
			groups[pos].present++
		}
	}

	entries := make([]dto.AttendanceReportEntry, 0, len(groups))
	for _, group := range groups {
		entry := group.entry
		entry.TotalClasses = group.total
		entry.PresentClasses = group.present
		entry.Percentage = roundTwoDecimals(float64(group.present) * 100.0 / float64(group.total))
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *attendanceService) StudentsForClass(ctx context.Context, className string) ([]dto.UserResponse, error) {
	if strings.TrimSpace(className) == "" {
		return nil, ErrClassNameRequired
	}
	return s.users.ListByRole(ctx, models.RoleStudent.String())
}

func (s *attendanceService) recordActivity(ctx context.Context, actor ActivityActor, entityID uint, action string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	var idRef *uint
	if entityID != 0 {
		id := entityID
		idRef = &id
	}

	if _, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "attendance",
		EntityID:   idRef,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

// parseAttendanceDate parses the wire date and normalises it to midnight UTC
// so the composite ledger key compares by calendar day.
func parseAttendanceDate(value string) (time.Time, error) {
	day, err := time.Parse(dto.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC), nil
}

// roundTwoDecimals keeps aggregate percentages at fixed 2-decimal precision.
func roundTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
