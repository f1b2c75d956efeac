package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campushub/portal-api/internal/config"
	"github.com/campushub/portal-api/internal/dto"
	"github.com/campushub/portal-api/internal/handler"
	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/repository"
	"github.com/campushub/portal-api/internal/router"
	"github.com/campushub/portal-api/internal/service"
	"github.com/campushub/portal-api/pkg/grader"
)

type integrationUploader struct{}

func (integrationUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://files.test/" + name, nil
}

func (integrationUploader) Remove(_ context.Context, _ string) error {
	return nil
}

func setupPortalApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Assignment{},
		&models.Attendance{},
		&models.ActivityLog{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	cfg := config.Config{AppName: "Portal Test", AppEnv: "test", JWTSecret: "integration-secret"}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, validate, logger)
	userService := service.NewUserService(userRepo, validate, activityService, logger)
	authService := service.NewAuthService(userRepo, userService, validate, cfg.JWTSecret, time.Hour, logger)
	courseService := service.NewCourseService(courseRepo, validate, activityService, logger)
	evaluator := grader.NewHeuristicEvaluator(logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, userService, evaluator, integrationUploader{}, validate, activityService, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, userService, validate, activityService, logger)
	dashboardService := service.NewDashboardService(userRepo, courseRepo, assignmentRepo, attendanceService, assignmentService, nil, 0, logger)
	policy := service.NewAccessPolicy()

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(userService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, policy, logger),
		AttendanceHandler: handler.NewAttendanceHandler(attendanceService, policy, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, policy, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	return app
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func registerAndLogin(t *testing.T, app *fiber.App, name, email, role string) (uint, string) {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var login struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	decode(t, resp, &login)
	require.True(t, login.Success)
	require.Equal(t, "Bearer", login.Data.TokenType)
	require.Equal(t, role, login.Data.Role)

	return login.Data.UserID, login.Data.Token
}

func TestPortalEndToEndFlow(t *testing.T) {
	app := setupPortalApp(t)

	studentID, studentToken := registerAndLogin(t, app, "Alice", "alice@example.com", "STUDENT")
	otherID, otherToken := registerAndLogin(t, app, "Bob", "bob@example.com", "STUDENT")
	_, facultyToken := registerAndLogin(t, app, "Dr. Chen", "chen@example.com", "FACULTY")
	_, adminToken := registerAndLogin(t, app, "Dana", "dana@example.com", "ADMIN")

	// Step 1: student submits an assignment upload
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	require.NoError(t, writer.WriteField("course", "CS101"))
	require.NoError(t, writer.WriteField("title", "Concurrency Essay"))
	file, err := writer.CreateFormFile("file", "essay.pdf")
	require.NoError(t, err)
	_, err = file.Write([]byte(strings.Repeat("Goroutines and channels make concurrent pipelines composable. ", 20)))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	submitReq := httptest.NewRequest(http.MethodPost, "/api/assignments/submit", buf)
	submitReq.Header.Set("Content-Type", writer.FormDataContentType())
	submitReq.Header.Set("Authorization", "Bearer "+studentToken)
	submitResp, err := app.Test(submitReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, submitResp.StatusCode)

	var submitted struct {
		Success bool                   `json:"success"`
		Data    dto.AssignmentResponse `json:"data"`
	}
	decode(t, submitResp, &submitted)
	require.True(t, submitted.Success)
	require.Equal(t, studentID, submitted.Data.StudentID)
	require.Equal(t, "CS101", submitted.Data.Course)
	require.NotZero(t, submitted.Data.TotalScore)
	require.Contains(t, []string{"A", "B", "C"}, submitted.Data.Grade)
	require.True(t, strings.HasPrefix(submitted.Data.FileURL, "https://files.test/"))

	// Step 2: ownership is enforced on student-scoped listings
	resp := doJSON(t, app, http.MethodGet, "/api/assignments/student/"+strconv.Itoa(int(studentID)), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ownList struct {
		Success bool                     `json:"success"`
		Data    []dto.AssignmentResponse `json:"data"`
	}
	decode(t, resp, &ownList)
	require.Len(t, ownList.Data, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/assignments/student/"+strconv.Itoa(int(studentID)), otherToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/assignments/student/"+strconv.Itoa(int(studentID)), facultyToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Step 3: faculty overrides the grade
	resp = doJSON(t, app, http.MethodPut, "/api/assignments/"+strconv.Itoa(int(submitted.Data.ID))+"/grade", facultyToken, map[string]interface{}{
		"grade":    "a",
		"feedback": "Strong structure",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var graded struct {
		Success bool                   `json:"success"`
		Data    dto.AssignmentResponse `json:"data"`
	}
	decode(t, resp, &graded)
	require.Equal(t, "A", graded.Data.Grade)
	require.Equal(t, "Strong structure", graded.Data.Feedback)

	resp = doJSON(t, app, http.MethodPut, "/api/assignments/"+strconv.Itoa(int(submitted.Data.ID))+"/grade", studentToken, map[string]interface{}{
		"grade": "B",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Step 4: faculty marks the class roster for today
	today := time.Now().UTC().Format(dto.DateLayout)
	resp = doJSON(t, app, http.MethodPost, "/api/attendance/mark-batch", facultyToken, map[string]interface{}{
		"class_name": "CS101",
		"date":       today,
		"records": []map[string]interface{}{
			{"student_id": studentID, "status": "PRESENT"},
			{"student_id": otherID, "status": "ABSENT"},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var marked struct {
		Success bool                     `json:"success"`
		Data    []dto.AttendanceResponse `json:"data"`
	}
	decode(t, resp, &marked)
	require.Len(t, marked.Data, 2)

	// Marking the same key again updates in place instead of duplicating.
	resp = doJSON(t, app, http.MethodPost, "/api/attendance/mark", facultyToken, map[string]interface{}{
		"student_id": otherID,
		"class_name": "CS101",
		"date":       today,
		"status":     "LATE",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/attendance/class/CS101", facultyToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var classRecords struct {
		Success bool                     `json:"success"`
		Data    []dto.AttendanceResponse `json:"data"`
	}
	decode(t, resp, &classRecords)
	require.Len(t, classRecords.Data, 2)

	// Step 5: attendance report groups by student and class
	resp = doJSON(t, app, http.MethodGet, "/api/attendance/report?class_name=CS101", facultyToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var report struct {
		Success bool                        `json:"success"`
		Data    []dto.AttendanceReportEntry `json:"data"`
	}
	decode(t, resp, &report)
	require.Len(t, report.Data, 2)
	for _, entry := range report.Data {
		require.Equal(t, "CS101", entry.ClassName)
		require.Equal(t, int64(1), entry.TotalClasses)
		if entry.StudentID == studentID {
			require.Equal(t, int64(1), entry.PresentClasses)
			require.Equal(t, 100.0, entry.Percentage)
		} else {
			require.Equal(t, int64(0), entry.PresentClasses)
		}
	}

	resp = doJSON(t, app, http.MethodGet, "/api/attendance/report", studentToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Step 6: student dashboard aggregates the activity above
	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/student/"+strconv.Itoa(int(studentID)), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var dashboard struct {
		Success bool                         `json:"success"`
		Data    dto.StudentDashboardResponse `json:"data"`
	}
	decode(t, resp, &dashboard)
	require.Equal(t, 100.0, dashboard.Data.AttendancePercentage)
	require.Equal(t, int64(1), dashboard.Data.SubmittedAssignments)
	require.Equal(t, "A", dashboard.Data.AverageGrade)

	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/student/"+strconv.Itoa(int(studentID)), otherToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Step 7: admin-only surfaces reject other roles
	resp = doJSON(t, app, http.MethodGet, "/api/dashboard/admin", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats struct {
		Success bool                   `json:"success"`
		Data    dto.AdminStatsResponse `json:"data"`
	}
	decode(t, resp, &stats)
	require.Equal(t, int64(4), stats.Data.TotalUsers)
	require.Equal(t, int64(2), stats.Data.TotalStudents)
	require.Equal(t, int64(1), stats.Data.TotalAssignments)

	resp = doJSON(t, app, http.MethodGet, "/api/users", facultyToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/activity", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var activity struct {
		Success bool                     `json:"success"`
		Data    dto.ActivityListResponse `json:"data"`
	}
	decode(t, resp, &activity)
	require.NotEmpty(t, activity.Data.Items)

	// Step 8: requests without a token are rejected outright
	resp = doJSON(t, app, http.MethodGet, "/api/assignments", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthEndpoint(t *testing.T) {
	app := setupPortalApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health struct {
		Success bool `json:"success"`
		Data    struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	decode(t, resp, &health)
	require.True(t, health.Success)
	require.Equal(t, "ok", health.Data.Status)
}
