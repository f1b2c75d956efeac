package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/service"
	"github.com/campushub/portal-api/internal/utils"
)

// AssignmentHandler wires assignment submission and grading HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	policy  service.AccessPolicy
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, policy service.AccessPolicy, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		policy:  policy,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group. Role checks
// are applied per route since students, faculty and admins share the prefix.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("/submit", middleware.RequireRole(models.RoleStudent), h.submit)
	router.Get("/student/:studentId", h.listByStudent)
	router.Get("/course/:course", middleware.RequireRole(models.RoleFaculty, models.RoleAdmin), h.listByCourse)
	router.Get("", middleware.RequireRole(models.RoleFaculty, models.RoleAdmin), h.list)
	router.Get("/:id", h.get)
	router.Put("/:id/grade", middleware.RequireRole(models.RoleFaculty, models.RoleAdmin), h.updateGrade)
	router.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.delete)
}

func (h *AssignmentHandler) submit(c *fiber.Ctx) error {
	identity, ok := identityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	studentID, err := parseFormUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if studentID == 0 {
		studentID = identity.ID
	}

	if err := h.policy.EnforceOwnership(identity, studentID); err != nil {
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	}

	payload := dto.AssignmentSubmitRequest{
		StudentID: studentID,
		Course:    c.FormValue("course"),
		Title:     c.FormValue("title"),
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	assignment, err := h.service.Submit(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "assignment submitted", assignment)
}

func (h *AssignmentHandler) listByStudent(c *fiber.Ctx) error {
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

	assignments, err := h.service.ListByStudent(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) listByCourse(c *fiber.Ctx) error {
	course := c.Params("course")
	assignments, err := h.service.ListByCourse(c.Context(), course)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	identity, ok := identityFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	if err := h.policy.EnforceOwnership(identity, assignment.StudentID); err != nil {
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) updateGrade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentGradeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.UpdateGrade(c.Context(), id, payload, activityActorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grade updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, activityActorFromCtx(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment deleted", fiber.Map{"id": id})
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrNotStudent),
		errors.Is(err, service.ErrCourseRequired),
		errors.Is(err, service.ErrFileRequired),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrFileTypeNotAllowed),
		errors.Is(err, service.ErrGradeRequired):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
