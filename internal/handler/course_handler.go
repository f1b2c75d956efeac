package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/service"
	"github.com/campushub/portal-api/internal/utils"
)

// CourseHandler wires course catalogue HTTP routes.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches read endpoints available to every authenticated user.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

// RegisterAdmin attaches catalogue management endpoints.
func (h *CourseHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	var (
		courses []dto.CourseResponse
		err     error
	)
	if c.QueryBool("active") {
		courses, err = h.service.ListActive(c.Context())
	} else {
		courses, err = h.service.List(c.Context())
	}
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Create(c.Context(), payload, activityActorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "course created", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Update(c.Context(), id, payload, activityActorFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, activityActorFromCtx(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course deleted", fiber.Map{"id": id})
}

func (h *CourseHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrCourseCodeTaken):
		return utils.SendError(c, fiber.StatusConflict, "course code already exists")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
