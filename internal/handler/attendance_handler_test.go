package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/service"
)

// stubAttendanceService returns canned errors so the handler's status
// mapping can be asserted without a database.
type stubAttendanceService struct {
	markErr error
}

func (s stubAttendanceService) Mark(_ context.Context, _ dto.AttendanceMarkRequest, _ service.ActivityActor) (dto.AttendanceResponse, error) {
	return dto.AttendanceResponse{}, s.markErr
}

func (s stubAttendanceService) MarkBatch(_ context.Context, _ dto.AttendanceBatchRequest, _ service.ActivityActor) ([]dto.AttendanceResponse, error) {
	return nil, s.markErr
}

func (s stubAttendanceService) ByStudent(_ context.Context, _ uint) ([]dto.AttendanceResponse, error) {
	return nil, nil
}

func (s stubAttendanceService) ByClass(_ context.Context, _ string) ([]dto.AttendanceResponse, error) {
	return nil, nil
}

func (s stubAttendanceService) ByClassAndDate(_ context.Context, _ string, _ string) ([]dto.AttendanceResponse, error) {
	return nil, nil
}

func (s stubAttendanceService) Percentage(_ context.Context, _ uint, _, _ time.Time) (float64, error) {
	return 0, nil
}

func (s stubAttendanceService) Report(_ context.Context, _ string, _, _ *time.Time) ([]dto.AttendanceReportEntry, error) {
	return nil, nil
}

func (s stubAttendanceService) StudentsForClass(_ context.Context, _ string) ([]dto.UserResponse, error) {
	return nil, nil
}

func newAttendanceTestApp(svc service.AttendanceService, role models.Role) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, uint(1))
		c.Locals(middleware.LocalUserRole, role)
		return c.Next()
	})

	h := NewAttendanceHandler(svc, service.NewAccessPolicy(), zerolog.New(io.Discard))
	h.Register(app.Group("/attendance"))
	return app
}

func postMark(t *testing.T, app *fiber.App, payload dto.AttendanceMarkRequest) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/attendance/mark", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestMarkStatusMapping(t *testing.T) {
	payload := dto.AttendanceMarkRequest{
		StudentID: 5,
		ClassName: "CS101",
		Date:      time.Now().UTC().Format(dto.DateLayout),
		Status:    "PRESENT",
	}

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown student", service.ErrUserNotFound, fiber.StatusNotFound},
		{"non-student target", service.ErrNotStudent, fiber.StatusBadRequest},
		{"invalid status", models.ErrInvalidAttendanceStatus, fiber.StatusBadRequest},
		{"invalid date", service.ErrInvalidDate, fiber.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newAttendanceTestApp(stubAttendanceService{markErr: tc.err}, models.RoleFaculty)
			resp := postMark(t, app, payload)
			defer resp.Body.Close()
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestMarkRejectsStudentRole(t *testing.T) {
	app := newAttendanceTestApp(stubAttendanceService{}, models.RoleStudent)
	resp := postMark(t, app, dto.AttendanceMarkRequest{
		StudentID: 1,
		ClassName: "CS101",
		Date:      time.Now().UTC().Format(dto.DateLayout),
		Status:    "PRESENT",
	})
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
