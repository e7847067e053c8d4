package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-project-hub/internal/config"
	"go-project-hub/internal/database"
	"go-project-hub/internal/event"
	"go-project-hub/internal/handler"
	"go-project-hub/internal/mail"
	"go-project-hub/internal/middleware"
	"go-project-hub/internal/repository"
	"go-project-hub/internal/router"
	"go-project-hub/internal/service"
	"go-project-hub/internal/storage"
	"go-project-hub/internal/throttle"
	"go-project-hub/internal/token"
)

type App struct {
	server       *http.Server
	recorder     *service.ActivityService
	cleanupFuncs []func()
}

// dependencies are the outer resources the HTTP stack is built on.
type dependencies struct {
	pool    *pgxpool.Pool
	files   *storage.Storage
	mailer  mail.Sender
	limiter throttle.Limiter
	bus     event.Bus
}

func New(cfg *config.Config) (*App, error) {
	store, err := storage.New(cfg.UploadRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database ready")

	cleanupFuncs := []func(){db.Close}

	var limiter throttle.Limiter = throttle.NewMemoryLimiter()
	if cfg.RedisURL != "" {
		client, redisErr := throttle.NewRedisClient(context.Background(), cfg.RedisURL)
		if redisErr != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", redisErr)
		}
		limiter = throttle.NewRedisLimiter(client)
		cleanupFuncs = append(cleanupFuncs, func() {
			if closeErr := client.Close(); closeErr != nil {
				slog.Warn("redis close failed", "error", closeErr)
			}
		})
		slog.Info("login throttle backed by redis")
	}

	var mailer mail.Sender
	if cfg.SMTPEnabled() {
		mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			TLS:      cfg.SMTPTLS,
		})
	} else {
		slog.Warn("SMTP_HOST not set, outgoing mail is logged instead of sent")
		mailer = mail.NewLogSender(slog.Default())
	}

	appRouter, recorder, err := newHandler(cfg, dependencies{
		pool:    db.Pool,
		files:   store,
		mailer:  mailer,
		limiter: limiter,
		bus:     event.NewBus(),
	}, db)
	if err != nil {
		for _, cleanup := range cleanupFuncs {
			cleanup()
		}
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, recorder: recorder, cleanupFuncs: cleanupFuncs}, nil
}

// newHandler builds repositories, services and handlers on top of deps.
func newHandler(cfg *config.Config, deps dependencies, health interface{ Health(context.Context) error }) (http.Handler, *service.ActivityService, error) {
	userRepo := repository.NewUserRepository(deps.pool)
	projectRepo := repository.NewProjectRepository(deps.pool)
	memberRepo := repository.NewMemberRepository(deps.pool)
	taskRepo := repository.NewTaskRepository(deps.pool)
	subTaskRepo := repository.NewSubTaskRepository(deps.pool)
	noteRepo := repository.NewNoteRepository(deps.pool)
	activityRepo := repository.NewActivityRepository(deps.pool)

	issuer := token.NewIssuer(token.Config{
		AccessSecret:    cfg.AccessTokenSecret,
		RefreshSecret:   cfg.RefreshTokenSecret,
		AccessTTL:       cfg.AccessTokenTTL,
		RefreshTTL:      cfg.RefreshTokenTTL,
		VerificationTTL: cfg.VerificationTokenTTL,
	})

	authService, err := service.NewAuthService(userRepo, issuer, deps.mailer, deps.files, deps.limiter, service.AuthConfig{
		VerificationTTL: cfg.VerificationTokenTTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	projectService := service.NewProjectService(projectRepo, memberRepo, userRepo, deps.bus)
	taskService := service.NewTaskService(taskRepo, subTaskRepo, userRepo, projectService, deps.files, deps.bus)
	noteService := service.NewNoteService(noteRepo, projectService, deps.bus)
	activityService := service.NewActivityService(activityRepo, projectService, deps.bus)

	cookies := handler.CookieConfig{Secure: cfg.CookieSecure, MaxAge: int(cfg.CookieMaxAge / time.Second)}

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService, projectService), router.Handlers{
		Auth:     handler.NewAuthHandler(authService, cookies, cfg.BaseURL, cfg.MaxAvatarSize),
		Project:  handler.NewProjectHandler(projectService),
		Task:     handler.NewTaskHandler(taskService, cfg.BaseURL, cfg.MaxAttachmentSize),
		Note:     handler.NewNoteHandler(noteService),
		Activity: handler.NewActivityHandler(activityService),
		Health:   handler.NewHealthHandler(health),
	})

	return appRouter, activityService, nil
}

func (a *App) Run() error {
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		a.recorder.Run(recorderCtx)
	}()

	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	// Recorder stops only after the server has drained.
	stopRecorder()
	<-recorderDone

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
