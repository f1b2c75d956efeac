package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/portal-api/internal/config"
	"github.com/campushub/portal-api/internal/database"
	"github.com/campushub/portal-api/internal/handler"
	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/repository"
	"github.com/campushub/portal-api/internal/router"
	"github.com/campushub/portal-api/internal/service"
	cloud "github.com/campushub/portal-api/pkg/cloudinary"
	"github.com/campushub/portal-api/pkg/grader"
	"github.com/campushub/portal-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := buildUploader(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create file store: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, validate, logger)
	userService := service.NewUserService(userRepo, validate, activityService, logger)
	authService := service.NewAuthService(userRepo, userService, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	courseService := service.NewCourseService(courseRepo, validate, activityService, logger)
	evaluator := grader.NewHeuristicEvaluator(logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, userService, evaluator, uploader, validate, activityService, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, userService, validate, activityService, logger)
	dashboardService := service.NewDashboardService(userRepo, courseRepo, assignmentRepo, attendanceService, assignmentService, redisClient, cfg.DashboardCacheTTL, logger)
	accessPolicy := service.NewAccessPolicy()

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, accessPolicy, logger)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, accessPolicy, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, accessPolicy, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		CourseHandler:     courseHandler,
		AssignmentHandler: assignmentHandler,
		AttendanceHandler: attendanceHandler,
		DashboardHandler:  dashboardHandler,
		ActivityHandler:   activityHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		LoginRateLimit:    middleware.RateLimit("auth", cfg.LoginRateLimit, cfg.LoginRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildUploader(cfg config.Config, logger zerolog.Logger) (service.FileUploader, error) {
	if cfg.StorageDriver == "cloudinary" {
		store, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := storage.NewLocalStore(cfg.UploadDir, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
