package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/service"
	"github.com/campushub/portal-api/internal/utils"
)

// DashboardHandler wires per-role dashboard HTTP routes.
type DashboardHandler struct {
	service service.DashboardService
	policy  service.AccessPolicy
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, policy service.AccessPolicy, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		policy:  policy,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches dashboard endpoints to the router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/student/:studentId", h.student)
	router.Get("/faculty", middleware.RequireRole(models.RoleFaculty, models.RoleAdmin), h.faculty)
	router.Get("/admin", middleware.RequireRole(models.RoleAdmin), h.admin)
}

func (h *DashboardHandler) student(c *fiber.Ctx) error {
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

	dashboard, err := h.service.StudentDashboard(c.Context(), studentID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *DashboardHandler) faculty(c *fiber.Ctx) error {
	dashboard, err := h.service.FacultyDashboard(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *DashboardHandler) admin(c *fiber.Ctx) error {
	stats, err := h.service.AdminStats(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "stats retrieved", stats)
}

func (h *DashboardHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
