package app

import (
	"fmt"

	"github.com/daedal-bit/yearplan/internal/config"
	"github.com/daedal-bit/yearplan/internal/db"
	"github.com/daedal-bit/yearplan/internal/repository"
	"github.com/daedal-bit/yearplan/internal/service"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	AuthService     *service.AuthService
	UserService     *service.UserService
	GoalService     *service.GoalService
	EmailService    *service.EmailService
	ReportService   *service.ReportService
	ReminderService *service.ReminderService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations unless managed externally
	if cfg.DBAutoMigrate {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			return nil, fmt.Errorf("failed to run migrations: %v", err)
		}
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	eventRepository := repository.NewEventRepository(database)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	goalService := service.NewGoalService(goalRepository, eventRepository)
	authService := service.NewAuthService(
		userRepository,
		tokenRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.TokenEmailVerifyExpiry,
		cfg.TokenPasswordResetExpiry,
	)
	userService := service.NewUserService(userRepository)
	reportService := service.NewReportService(goalService)
	reminderService := service.NewReminderService(userRepository, reportService, emailService)

	return &App{
		Cfg:             cfg,
		DB:              database,
		AuthService:     authService,
		UserService:     userService,
		GoalService:     goalService,
		EmailService:    emailService,
		ReportService:   reportService,
		ReminderService: reminderService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
