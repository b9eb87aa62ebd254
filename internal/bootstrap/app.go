package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"records-backend/internal/jobs"
	"records-backend/internal/records"
	"records-backend/internal/scheduler"
	"records-backend/internal/shared/config"
	"records-backend/internal/shared/server"
	"records-backend/internal/shared/storage/db"
	"records-backend/internal/shared/storage/object"
	localstore "records-backend/internal/shared/storage/object/local"
	s3store "records-backend/internal/shared/storage/object/s3"
	"records-backend/internal/textract"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.Store

	// Provider is nil when ANALYSIS_PROVIDER=none; the scheduler is then
	// nil too and submitted jobs stay pending. Tests override Provider by
	// building the scheduler themselves.
	Provider  textract.Client
	Scheduler *scheduler.Scheduler

	JobsRepo       jobs.Repo
	RecordsService *records.Service
	RecordsHandler *records.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo jobs.Repo
	if sqlDB != nil {
		repo = &jobs.PGRepo{DB: sqlDB}
	} else {
		repo = jobs.NewMemoryRepo()
	}

	svc := &records.Service{
		Jobs:     repo,
		Store:    store,
		Renderer: records.FitzRenderer{DPI: 300},
	}

	app := &App{
		Config:         cfg,
		DB:             sqlDB,
		Store:          store,
		Provider:       provider,
		JobsRepo:       repo,
		RecordsService: svc,
		RecordsHandler: records.NewHandler(svc),
	}

	if provider != nil {
		app.Scheduler = &scheduler.Scheduler{
			Jobs:           repo,
			Provider:       provider,
			SubmitInterval: cfg.SubmitInterval,
			FetchInterval:  cfg.FetchInterval,
			CallTimeout:    cfg.ProviderTimeout,
		}
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		RecordsHandler: app.RecordsHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildProvider(ctx context.Context, cfg config.Config) (textract.Client, error) {
	switch cfg.Provider {
	case "textract":
		if strings.TrimSpace(cfg.AWSRegion) == "" {
			return nil, fmt.Errorf("ANALYSIS_PROVIDER=textract requires AWS_REGION")
		}
		return textract.NewAWSClient(ctx, cfg.AWSRegion)
	default:
		return nil, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
