package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/dmorales/becas-core/internal/app/controllers"
	"github.com/dmorales/becas-core/internal/app/events"
	"github.com/dmorales/becas-core/internal/app/importer"
	appMigrations "github.com/dmorales/becas-core/internal/app/migrations"
	appRepos "github.com/dmorales/becas-core/internal/app/repositories"
	appRoutes "github.com/dmorales/becas-core/internal/app/routes"
	"github.com/dmorales/becas-core/internal/app/selection"
	appServices "github.com/dmorales/becas-core/internal/app/services"
	"github.com/dmorales/becas-core/internal/config"
	"github.com/dmorales/becas-core/internal/db"
	appMiddleware "github.com/dmorales/becas-core/internal/middleware"
	pkgAuth "github.com/dmorales/becas-core/internal/pkg/auth"
	"github.com/dmorales/becas-core/internal/pkg/email"
	"github.com/dmorales/becas-core/internal/pkg/filestorage"
	"github.com/dmorales/becas-core/internal/pkg/helpers"
	"github.com/dmorales/becas-core/internal/pkg/logger"
	"github.com/dmorales/becas-core/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService           appServices.AuthService
	PeriodService         appServices.PeriodService
	ImportService         appServices.ImportService
	LifecycleService      appServices.LifecycleService
	ScholarshipService    appServices.ScholarshipService
	EvidenceService       appServices.EvidenceService
	AuthController        *appControllers.AuthController
	PeriodController      *appControllers.PeriodController
	ImportController      *appControllers.ImportController
	ScholarshipController *appControllers.ScholarshipController
	AuthMiddleware        *appMiddleware.AuthMiddleware
	Repos                 *appRepos.Repositories
	JWTService            *pkgAuth.JWTService
	EventBus              *events.Bus
	FileStorage           *filestorage.LocalStorage
	Logger                zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, the event bus, services and
// controllers. The returned bus is already started; the caller owns Close.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	baseURL := strings.TrimSuffix(cfg.Server.BaseURL, "/")
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.StudentRepository,
		deps.JWTService,
		lgr,
	)
	deps.PeriodService = appServices.NewPeriodService(deps.Repos.PeriodRepository, lgr)
	deps.ImportService = appServices.NewImportService(
		importer.NewParser(cfg.University.EmailDomain),
		selection.NewEngine(),
		deps.Repos.PeriodRepository,
		deps.Repos.StudentRepository,
		deps.Repos.ScholarshipRepository,
		lgr,
	)
	deps.EvidenceService = appServices.NewEvidenceService(
		deps.Repos.ScholarshipRepository,
		deps.Repos.EvidenceRepository,
		deps.Repos.FileRepository,
		deps.FileStorage,
		lgr,
	)
	deps.ScholarshipService = appServices.NewScholarshipService(
		deps.Repos.ScholarshipRepository,
		deps.Repos.HistoryRepository,
		lgr,
	)

	// Event bus: every applied transition fans out to the audit trail, the
	// applicant notification and, when the transition announces one, the
	// generated artifact.
	deps.EventBus = events.NewBus(lgr)
	deps.EventBus.Subscribe(events.NewAuditRecorder(deps.Repos.HistoryRepository, lgr))

	mailer := email.NewService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
	}, lgr)
	deps.EventBus.Subscribe(events.NewNotifier(deps.Repos.ScholarshipRepository, mailer, lgr))
	deps.EventBus.Subscribe(events.NewArtifactGenerator(events.PlainRenderer{}, deps.EvidenceService, lgr))
	deps.EventBus.Start(context.Background())

	deps.LifecycleService = appServices.NewLifecycleService(
		deps.Repos.ScholarshipRepository,
		deps.Repos.EvidenceRepository,
		deps.EventBus,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.PeriodController = appControllers.NewPeriodController(deps.PeriodService)
	deps.ImportController = appControllers.NewImportController(deps.ImportService)
	deps.ScholarshipController = appControllers.NewScholarshipController(
		deps.ScholarshipService,
		deps.LifecycleService,
		deps.EvidenceService,
	)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.PeriodController,
		deps.ImportController,
		deps.ScholarshipController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
