package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/repository"
	"github.com/campushub/portal-api/pkg/grader"
)

var (
	// ErrAssignmentNotFound indicates the referenced submission is absent.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrCourseRequired indicates a blank course name on submission.
	ErrCourseRequired = errors.New("course name cannot be empty")
	// ErrFileRequired indicates a submission without a file.
	ErrFileRequired = errors.New("file cannot be empty")
	// ErrFileTooLarge indicates the upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file size exceeds maximum limit of 10MB")
	// ErrFileTypeNotAllowed indicates a file extension outside the allow-list.
	ErrFileTypeNotAllowed = errors.New("only PDF, DOC, DOCX, PNG, JPG, or JPEG files are allowed")
	// ErrGradeRequired indicates a grade update without grade or feedback.
	ErrGradeRequired = errors.New("grade or feedback is required")
)

const (
	maxUploadBytes = 10 * 1024 * 1024
	// Evaluation reads at most this many characters of the decoded text.
	evaluationTextLimit = 12000
)

var allowedExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".png": {}, ".jpg": {}, ".jpeg": {},
}

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// AssignmentService orchestrates submission, evaluation and grading of
// assignments.
type AssignmentService interface {
	Submit(ctx context.Context, payload dto.AssignmentSubmitRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.AssignmentResponse, error)
	ListByCourse(ctx context.Context, course string) ([]dto.AssignmentResponse, error)
	List(ctx context.Context) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	UpdateGrade(ctx context.Context, id uint, payload dto.AssignmentGradeUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	PendingEvaluations(ctx context.Context) (int64, error)
	AverageGradeForStudent(ctx context.Context, studentID uint) (string, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	users       UserService
	evaluator   grader.Evaluator
	uploader    FileUploader
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignments repository.AssignmentRepository, users UserService, evaluator grader.Evaluator, uploader FileUploader, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		users:       users,
		evaluator:   evaluator,
		uploader:    uploader,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		tracer:      otel.Tracer("assignment_service"),
		now:         time.Now,
	}
}

func (s *assignmentService) Submit(ctx context.Context, payload dto.AssignmentSubmitRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.submit")
	span.SetAttributes(attribute.Int64("assignment.student_id", int64(payload.StudentID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssignmentResponse{}, err
	}

	student, err := s.users.ResolveStudent(ctx, payload.StudentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_resolution_failed")
		return dto.AssignmentResponse{}, err
	}

	course := strings.TrimSpace(payload.Course)
	if course == "" {
		return dto.AssignmentResponse{}, ErrCourseRequired
	}

	if file == nil || file.Size == 0 {
		return dto.AssignmentResponse{}, ErrFileRequired
	}
	if file.Size > maxUploadBytes {
		return dto.AssignmentResponse{}, ErrFileTooLarge
	}

	originalName := file.Filename
	if originalName == "" {
		originalName = "assignment"
	}
	extension := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[extension]; !ok {
		return dto.AssignmentResponse{}, ErrFileTypeNotAllowed
	}

	content, err := readFileContent(file)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	detected := mimetype.Detect(content)

	storedName := uuid.NewString() + "_" + sanitizeFileName(originalName)
	fileURL, err := s.uploader.Upload(ctx, storedName, bytes.NewReader(content))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload_failed")
		return dto.AssignmentResponse{}, fmt.Errorf("failed to store file: %w", err)
	}

	title := strings.TrimSpace(payload.Title)
	text := extractTextForEvaluation(content)
	if title != "" {
		text = "Assignment: " + title + "\n" + text
	}

	evaluation := s.evaluator.Evaluate(text, course)

	assignment := models.Assignment{
		StudentID:        student.ID,
		Course:           course,
		Title:            title,
		OriginalFileName: originalName,
		FileURL:          fileURL,
		ContentType:      detected.String(),
		Grade:            evaluation.Grade,
		Feedback:         evaluation.Feedback,
		ContentScore:     evaluation.ContentScore,
		GrammarScore:     evaluation.GrammarScore,
		StructureScore:   evaluation.StructureScore,
		OriginalityScore: evaluation.OriginalityScore,
		TotalScore:       evaluation.TotalScore,
		SubmittedAt:      s.now(),
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assignment_create_failed")
		return dto.AssignmentResponse{}, err
	}
	assignment.Student = student

	span.SetAttributes(
		attribute.Int("assignment.total_score", evaluation.TotalScore),
		attribute.String("assignment.grade", evaluation.Grade),
	)

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("student_id", student.ID).
		Str("course", course).
		Int("total_score", evaluation.TotalScore).
		Msg("assignment submitted and evaluated")

	s.recordActivity(ctx, ActivityActor{ID: student.ID, Role: models.RoleStudent}, assignment.ID, "assignment.submitted", map[string]interface{}{
		"course":      course,
		"total_score": evaluation.TotalScore,
		"grade":       evaluation.Grade,
	})

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListByStudent(ctx context.Context, studentID uint) ([]dto.AssignmentResponse, error) {
	if _, err := s.users.ResolveStudent(ctx, studentID); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, course string) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByCourse(ctx, course)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) List(ctx context.Context) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) UpdateGrade(ctx context.Context, id uint, payload dto.AssignmentGradeUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Grade == nil && payload.Feedback == nil {
		return dto.AssignmentResponse{}, ErrGradeRequired
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if payload.Grade != nil && strings.TrimSpace(*payload.Grade) != "" {
		assignment.Grade = strings.ToUpper(strings.TrimSpace(*payload.Grade))
	}
	if payload.Feedback != nil && strings.TrimSpace(*payload.Feedback) != "" {
		assignment.Feedback = strings.TrimSpace(*payload.Feedback)
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Str("grade", assignment.Grade).Msg("grade updated")
	s.recordActivity(ctx, actor, assignment.ID, "assignment.graded", map[string]interface{}{
		"student_id": assignment.StudentID,
		"grade":      assignment.Grade,
	})

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if err := s.uploader.Remove(ctx, assignment.FileURL); err != nil {
		s.logger.Warn().Err(err).Str("file_url", assignment.FileURL).Msg("failed to delete stored file")
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, id, "assignment.deleted", nil)
	return nil
}

func (s *assignmentService) PendingEvaluations(ctx context.Context) (int64, error) {
	return s.assignments.CountUngraded(ctx)
}

// AverageGradeForStudent maps letter grades onto a 3-point scale and back;
// returns "N/A" when the student has no graded submissions.
func (s *assignmentService) AverageGradeForStudent(ctx context.Context, studentID uint) (string, error) {
	assignments, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return "", err
	}

	var total, graded int
	for _, assignment := range assignments {
		if !assignment.IsGraded() {
			continue
		}
		graded++
		switch strings.ToUpper(assignment.Grade) {
		case "A":
			total += 3
		case "B":
			total += 2
		default:
			total++
		}
	}

	if graded == 0 {
		return "N/A", nil
	}

	average := float64(total) / float64(graded)
	switch {
	case average >= 2.6:
		return "A", nil
	case average >= 1.8:
		return "B", nil
	default:
		return "C", nil
	}
}

func (s *assignmentService) recordActivity(ctx context.Context, actor ActivityActor, entityID uint, action string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	if _, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "assignment",
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

func readFileContent(file *multipart.FileHeader) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(io.LimitReader(reader, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) > maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	return content, nil
}

// extractTextForEvaluation decodes the upload as UTF-8 text for scoring.
// Content that is not meaningfully textual is replaced with a synthesized
// description so the scorer still produces a full result.
func extractTextForEvaluation(content []byte) string {
	preview := string(content)
	stripped := strings.Join(strings.Fields(preview), "")
	if stripped == "" || !utf8.ValidString(preview) {
		return fmt.Sprintf("Binary or image assignment submission with size %d bytes.", len(content))
	}

	if len(preview) > evaluationTextLimit {
		return preview[:evaluationTextLimit]
	}
	return preview
}

func sanitizeFileName(name string) string {
	return unsafeFileNameChars.ReplaceAllString(name, "_")
}
