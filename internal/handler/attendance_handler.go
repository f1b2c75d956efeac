package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/service"
	"github.com/campushub/portal-api/internal/utils"
)

// AttendanceHandler wires attendance ledger HTTP routes.
type AttendanceHandler struct {
	service service.AttendanceService
	policy  service.AccessPolicy
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service service.AttendanceService, policy service.AccessPolicy, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		policy:  policy,
		logger:  logger.With().Str("component", "attendance_handler").Logger(),
		now:     time.Now,
	}
}

// Register attaches attendance endpoints to the router group.
func (h *AttendanceHandler) Register(router fiber.Router) {
	staff := middleware.RequireRole(models.RoleFaculty, models.RoleAdmin)

	router.Post("/mark", staff, h.mark)
	router.Post("/mark-batch", staff, h.markBatch)
	router.Get("/student/:studentId", h.byStudent)
	router.Get("/student/:studentId/percentage", h.percentage)
	router.Get("/class/:className", staff, h.byClass)
	router.Get("/report", staff, h.report)
	router.Get("/students", staff, h.studentsForClass)
}

func (h *AttendanceHandler) mark(c *fiber.Ctx) error {
	var payload dto.AttendanceMarkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.service.Mark(c.Context(), payload, activityActorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance marked", record)
}

func (h *AttendanceHandler) markBatch(c *fiber.Ctx) error {
	var payload dto.AttendanceBatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	records, err := h.service.MarkBatch(c.Context(), payload, activityActorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance batch marked", records)
}

func (h *AttendanceHandler) byStudent(c *fiber.Ctx) error {
	identity, ok := identityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.policy.EnforceOwnership(identity, studentID); err != nil {
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	}

	records, err := h.service.ByStudent(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance retrieved", records)
}

func (h *AttendanceHandler) percentage(c *fiber.Ctx) error {
	identity, ok := identityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.policy.EnforceOwnership(identity, studentID); err != nil {
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	}

	start, end, err := h.parseRange(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	percentage, err := h.service.Percentage(c.Context(), studentID, start, end)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance percentage calculated", fiber.Map{
		"student_id": studentID,
		"start":      start.Format(dto.DateLayout),
		"end":        end.Format(dto.DateLayout),
		"percentage": percentage,
	})
}

func (h *AttendanceHandler) byClass(c *fiber.Ctx) error {
	className := c.Params("className")

	var (
		records []dto.AttendanceResponse
		err     error
	)
	if date := strings.TrimSpace(c.Query("date")); date != "" {
		records, err = h.service.ByClassAndDate(c.Context(), className, date)
	} else {
		records, err = h.service.ByClass(c.Context(), className)
	}
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance retrieved", records)
}

func (h *AttendanceHandler) report(c *fiber.Ctx) error {
	className := strings.TrimSpace(c.Query("class_name"))

	var start, end *time.Time
	if value := strings.TrimSpace(c.Query("start")); value != "" {
		parsed, err := time.Parse(dto.DateLayout, value)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "start must use the YYYY-MM-DD format")
		}
		start = &parsed
	}
	if value := strings.TrimSpace(c.Query("end")); value != "" {
		parsed, err := time.Parse(dto.DateLayout, value)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "end must use the YYYY-MM-DD format")
		}
		end = &parsed
	}

	entries, err := h.service.Report(c.Context(), className, start, end)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance report generated", entries)
}

func (h *AttendanceHandler) studentsForClass(c *fiber.Ctx) error {
	students, err := h.service.StudentsForClass(c.Context(), c.Query("class_name"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

// parseRange reads the optional start/end query parameters, defaulting to
// the last month when absent.
func (h *AttendanceHandler) parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	end := h.now()
	if value := strings.TrimSpace(c.Query("end")); value != "" {
		parsed, err := time.Parse(dto.DateLayout, value)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("end must use the YYYY-MM-DD format")
		}
		end = parsed
	}

	start := end.AddDate(0, -1, 0)
	if value := strings.TrimSpace(c.Query("start")); value != "" {
		parsed, err := time.Parse(dto.DateLayout, value)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("start must use the YYYY-MM-DD format")
		}
		start = parsed
	}

	return start, end, nil
}

func (h *AttendanceHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrNotStudent),
		errors.Is(err, service.ErrClassNameRequired),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, models.ErrInvalidAttendanceStatus):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
