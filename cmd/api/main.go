package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/nestegg/backend/internal/config"
	"github.com/nestegg/backend/internal/handler"
	"github.com/nestegg/backend/internal/logger"
	"github.com/nestegg/backend/internal/mailer"
	"github.com/nestegg/backend/internal/repository"
	"github.com/nestegg/backend/internal/scheduler"
	"github.com/nestegg/backend/internal/service"
)

func main() {
	cfg := config.Load()
	slogger := logger.Logger()
	service.ConfigureJWT(cfg.JWTSecret)

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Email is optional; without SMTP credentials notifications stay
	// dashboard-only.
	var emailSender service.EmailSender
	if cfg.SMTP.Username != "" {
		emailSender = mailer.New(cfg.SMTP)
	}

	// Services
	userService := service.NewUserService(userRepo)
	notificationService := service.NewNotificationService(notificationRepo, goalRepo, userRepo, emailSender)
	goalService := service.NewGoalService(goalRepo, notificationService)
	advisorService := service.NewAdvisorService(goalService, cfg.OpenAIAPIKey, cfg.EnableAIChat)

	// Handlers
	authHandler := handler.NewAuthHandler(userService)
	goalHandler := handler.NewGoalHandler(goalService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	advisorHandler := handler.NewAdvisorHandler(advisorService)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public routes
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(handler.AuthMiddleware)

		// Current user
		r.Get("/api/auth/me", authHandler.Me)
		r.Put("/api/auth/settings", authHandler.UpdateSettings)

		// Savings goals
		r.Get("/api/goals", goalHandler.List)
		r.Post("/api/goals", goalHandler.Create)
		r.Get("/api/goals/completed", goalHandler.ListCompleted)
		r.Get("/api/goals/{id}", goalHandler.Get)
		r.Put("/api/goals/{id}", goalHandler.Update)
		r.Delete("/api/goals/{id}", goalHandler.Delete)
		r.Post("/api/goals/{id}/deposit", goalHandler.Deposit)
		r.Post("/api/goals/{id}/auto-contribute", goalHandler.AutoContribute)
		r.Post("/api/goals/{id}/skip-period", goalHandler.SkipPeriod)
		r.Get("/api/goals/{id}/deposits", goalHandler.ListDeposits)

		// Notifications
		r.Get("/api/notifications", notificationHandler.List)
		r.Post("/api/notifications/read-all", notificationHandler.MarkAllRead)
		r.Post("/api/notifications/check", notificationHandler.Check)
		r.Post("/api/notifications/{id}/read", notificationHandler.MarkRead)

		// AI advisor
		r.Post("/api/chat", advisorHandler.Chat)
		r.Post("/api/chat/confirm-goal", advisorHandler.ConfirmGoal)
	})

	// Daily reminder sweep
	var reminderScheduler *scheduler.Scheduler
	if cfg.ReminderEnabled {
		reminderScheduler = scheduler.New(scheduler.Config{
			Schedule: cfg.ReminderSchedule,
			Timeout:  5 * time.Minute,
			Enabled:  cfg.ReminderEnabled,
		}, notificationService, slogger)
		if err := reminderScheduler.Start(); err != nil {
			slogger.Error("Failed to start reminder scheduler", slog.String("error", err.Error()))
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slogger.Info("Shutting down server...")

		if reminderScheduler != nil {
			ctx := reminderScheduler.Stop()
			<-ctx.Done()
			slogger.Info("Scheduler stopped")
		}

		if err := server.Shutdown(context.Background()); err != nil {
			slogger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("Server failed: %v", err)
	}
}
