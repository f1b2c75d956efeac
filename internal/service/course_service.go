package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/repository"
)

var (
	// ErrCourseNotFound indicates the referenced course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseCodeTaken indicates another course already uses the code.
	ErrCourseCodeTaken = errors.New("course code already exists")
)

// CourseService manages the course catalogue.
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	ListActive(ctx context.Context) ([]dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseRequest, actor ActivityActor) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, payload dto.CourseRequest, actor ActivityActor) (dto.CourseResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

type courseService struct {
	courses   repository.CourseRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses repository.CourseRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) ListActive(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courses.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseRequest, actor ActivityActor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(payload.Code))
	if err := s.ensureCodeAvailable(ctx, code, 0); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Code:        code,
		Title:       strings.TrimSpace(payload.Title),
		Department:  strings.TrimSpace(payload.Department),
		FacultyName: strings.TrimSpace(payload.FacultyName),
		Active:      payload.Active,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Str("code", course.Code).Msg("course created")
	s.recordActivity(ctx, actor, course.ID, "course.created", map[string]interface{}{"code": course.Code})

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id uint, payload dto.CourseRequest, actor ActivityActor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(payload.Code))
	if err := s.ensureCodeAvailable(ctx, code, id); err != nil {
		return dto.CourseResponse{}, err
	}

	course.Code = code
	course.Title = strings.TrimSpace(payload.Title)
	course.Department = strings.TrimSpace(payload.Department)
	course.FacultyName = strings.TrimSpace(payload.FacultyName)
	course.Active = payload.Active

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course updated")
	s.recordActivity(ctx, actor, course.ID, "course.updated", map[string]interface{}{"code": course.Code})

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.logger.Info().Uint("course_id", id).Msg("course deleted")
	s.recordActivity(ctx, actor, id, "course.deleted", nil)

	return nil
}

func (s *courseService) ensureCodeAvailable(ctx context.Context, code string, currentID uint) error {
	existing, err := s.courses.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if existing.ID != currentID {
		return ErrCourseCodeTaken
	}
	return nil
}

func (s *courseService) recordActivity(ctx context.Context, actor ActivityActor, entityID uint, action string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	if _, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "course",
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}
