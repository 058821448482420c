package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/chat"
	"contractguard-web/internal/dashboard"
	"contractguard-web/internal/evidence"
	"contractguard-web/internal/shared/auth"
	"contractguard-web/internal/shared/config"
	"contractguard-web/internal/shared/server"
	"contractguard-web/internal/shared/storage/db"
	"contractguard-web/internal/shared/storage/object"
	localstore "contractguard-web/internal/shared/storage/object/local"
	s3store "contractguard-web/internal/shared/storage/object/s3"
	"contractguard-web/internal/shared/telemetry"
	"contractguard-web/internal/theme"
	"contractguard-web/internal/upload"
	"contractguard-web/internal/waitlist"
)

// App holds shared dependencies and the assembled router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	API    *auditapi.Client

	WaitlistRepo     waitlist.Repo
	DashboardService *dashboard.Service
	UploadService    *upload.Service
	ChatService      *chat.Service
	EvidenceService  *evidence.Service
	WaitlistService  *waitlist.Service
	ThemeService     *theme.Service

	closers []func()
}

// Build prepares dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
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

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		API:    auditapi.NewClient(cfg.APIBase, cfg.APITimeout),
	}
	if err := buildServices(app); err != nil {
		app.Close()
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		Verifier:         auth.NewVerifier(cfg.JWTSecret),
		DashboardHandler: dashboard.NewHandler(app.DashboardService),
		UploadHandler:    upload.NewHandler(app.UploadService),
		ChatHandler:      chat.NewHandler(app.ChatService),
		EvidenceHandler:  evidence.NewHandler(app.EvidenceService),
		WaitlistHandler:  waitlist.NewHandler(app.WaitlistService),
		ThemeHandler:     theme.NewHandler(app.ThemeService),
	})
	return app, nil
}

// Close releases background resources in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) error {
	cfg := app.Config

	var repo waitlist.Repo
	if app.DB != nil {
		repo = &waitlist.PGRepo{DB: app.DB}
	} else {
		repo = waitlist.NewMemoryRepo()
	}

	deriver := dashboard.NewDeriver(dashboard.ParseDateOrder(cfg.DateOrder))
	if cfg.DefaultCurrency != "" {
		deriver.Currency = cfg.DefaultCurrency
	}
	dashboardSvc := dashboard.NewService(app.API, deriver, evidence.ContractPath)
	app.closers = append(app.closers, dashboardSvc.Close)

	app.UploadService = upload.NewService(app.API, app.Store, NewPoller(app.API, cfg))
	app.ChatService = chat.NewService(app.API)
	app.EvidenceService = evidence.NewService(app.API, app.Store)
	app.WaitlistRepo = repo
	app.WaitlistService = waitlist.NewService(repo)
	app.DashboardService = dashboardSvc

	themeSvc, closeTheme, err := NewThemeService(cfg.ThemeFile)
	if err != nil {
		return err
	}
	app.ThemeService = themeSvc
	app.closers = append(app.closers, closeTheme)
	return nil
}

// NewPoller builds a status poller honouring the configured limits.
func NewPoller(fetcher upload.StatusFetcher, cfg config.Config) *upload.Poller {
	p := upload.NewPoller(fetcher)
	if cfg.PollInterval > 0 {
		p.Interval = cfg.PollInterval
	}
	p.MaxInterval = cfg.PollMaxInterval
	if cfg.PollMaxAttempts > 0 {
		p.MaxAttempts = uint64(cfg.PollMaxAttempts)
	}
	p.Timeout = cfg.PollTimeout
	return p
}

// NewThemeService opens the file-backed theme store and initialises a
// service on it. The returned func tears both down.
func NewThemeService(path string) (*theme.Service, func(), error) {
	storage, err := theme.NewFileStorage(path)
	if err != nil {
		return nil, nil, fmt.Errorf("theme storage: %w", err)
	}
	svc := theme.NewService(storage, theme.NewStaticPreference(false))
	if err := svc.Init(); err != nil {
		storage.Close()
		return nil, nil, err
	}
	return svc, func() {
		svc.Teardown()
		if err := storage.Close(); err != nil {
			telemetry.Warn("theme.close_failed", map[string]any{"error": err.Error()})
		}
	}, nil
}
