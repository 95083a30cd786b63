// Package app assembles the service from its configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-api/internal/config"
	authHandler "github.com/jwalitptl/dental-api/internal/handler/auth"
	healthHandler "github.com/jwalitptl/dental-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/dental-api/internal/handler/patient"
	promHandler "github.com/jwalitptl/dental-api/internal/handler/prometheus"
	resourceHandler "github.com/jwalitptl/dental-api/internal/handler/resource"
	uploadHandler "github.com/jwalitptl/dental-api/internal/handler/upload"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/repository/memory"
	"github.com/jwalitptl/dental-api/internal/repository/postgres"
	"github.com/jwalitptl/dental-api/internal/router"
	authService "github.com/jwalitptl/dental-api/internal/service/auth"
	"github.com/jwalitptl/dental-api/internal/service/catalog"
	patientService "github.com/jwalitptl/dental-api/internal/service/patient"
	uploadService "github.com/jwalitptl/dental-api/internal/service/upload"
	"github.com/jwalitptl/dental-api/pkg/auth"
	"github.com/jwalitptl/dental-api/pkg/blob"
	"github.com/jwalitptl/dental-api/pkg/metrics"
	"github.com/jwalitptl/dental-api/pkg/security"
)

// systemCaller acts for command line tasks that have no logged-in account.
var systemCaller = policy.Caller{
	AccountID: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
	Username:  "system",
	IsAdmin:   true,
}

type App struct {
	Config   *config.Config
	Store    repository.Store
	Blobs    blob.Store
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Policy   *policy.Engine
	Catalog  *catalog.Catalog
	Auth     *authService.Service
	Router   *router.Router
}

// Options replaces parts of the assembly, mostly for tests.
type Options struct {
	Store  repository.Store
	Blobs  blob.Store
	Hasher security.PasswordHasher
}

// Open connects the configured store and blob store and assembles the app.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace, registry)
	}

	store, err := openStore(cfg.Database, m)
	if err != nil {
		return nil, err
	}

	blobs, err := openBlobs(ctx, cfg.Storage)
	if err != nil {
		store.Close()
		return nil, err
	}

	return assemble(cfg, registry, m, Options{Store: store, Blobs: blobs}), nil
}

// New assembles the app on the given stores; missing stores are in-memory.
func New(cfg *config.Config, opts Options) *App {
	registry := prometheus.NewRegistry()
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace, registry)
	}
	if opts.Store == nil {
		opts.Store = memory.New()
	}
	if opts.Blobs == nil {
		opts.Blobs = blob.NewMemoryStore()
	}
	return assemble(cfg, registry, m, opts)
}

func openStore(cfg config.DatabaseConfig, m *metrics.Metrics) (repository.Store, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory store; data is lost on exit")
		return memory.New(), nil
	case "postgres":
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(db, m), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func openBlobs(ctx context.Context, cfg config.StorageConfig) (blob.Store, error) {
	switch cfg.Driver {
	case "memory":
		return blob.NewMemoryStore(), nil
	case "s3":
		s3, err := blob.NewS3Store(ctx, blob.S3Options{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return blob.WithBreaker(s3, "s3", 5, 30*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func assemble(cfg *config.Config, registry *prometheus.Registry, m *metrics.Metrics, opts Options) *App {
	if opts.Hasher == nil {
		opts.Hasher = security.NewBcryptHasher(0)
	}

	engine := policy.NewEngine(opts.Store.Blocklist(), nil, m)
	cat := catalog.New(catalog.Options{
		Store:  opts.Store,
		Policy: engine,
		Hasher: opts.Hasher,
	})

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	authSvc := authService.NewService(opts.Store.Accounts(), jwtSvc, opts.Hasher)
	patientSvc := patientService.NewService(opts.Store.Patients(), cat.Blocklist, engine)
	uploadSvc := uploadService.NewService(opts.Blobs, opts.Store.Files(), engine, cfg.Storage.MaxUploadSize)

	root := []router.Handler{healthHandler.NewHandler(opts.Store)}
	if cfg.Metrics.Enabled {
		root = append(root, promHandler.New(registry))
	}

	r := router.NewRouter(routerConfig(cfg), router.Deps{
		Auth:    authSvc,
		Metrics: m,
		Root:    root,
		API: []router.Handler{
			authHandler.NewHandler(authSvc),
			resourceHandler.NewHandler[model.Account](cat.Accounts, &resourceHandler.SelfRoute{Path: "me"}),
			resourceHandler.NewHandler[model.Clinic](cat.Clinics, nil),
			resourceHandler.NewHandler[model.Patient](cat.Patients, &resourceHandler.SelfRoute{Path: "me"}),
			patientHandler.NewHandler(patientSvc),
			resourceHandler.NewHandler[model.Appointment](cat.Appointments, &resourceHandler.SelfRoute{Path: "mine", Many: true}),
			resourceHandler.NewHandler[model.DentalRecord](cat.DentalRecords, &resourceHandler.SelfRoute{Path: "mine", Many: true}),
			resourceHandler.NewHandler[model.File](cat.Files, &resourceHandler.SelfRoute{Path: "mine", Many: true}),
			resourceHandler.NewHandler[model.Blocklist](cat.Blocklist, nil),
			resourceHandler.NewHandler[model.Note](cat.Notes, &resourceHandler.SelfRoute{Path: "mine"}),
			resourceHandler.NewHandler[model.Ad](cat.Ads, &resourceHandler.SelfRoute{Path: "mine"}),
			uploadHandler.NewHandler(uploadSvc),
		},
	})
	r.Setup()

	return &App{
		Config:   cfg,
		Store:    opts.Store,
		Blobs:    opts.Blobs,
		Registry: registry,
		Metrics:  m,
		Policy:   engine,
		Catalog:  cat,
		Auth:     authSvc,
		Router:   r,
	}
}

func routerConfig(cfg *config.Config) router.Config {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORS.AllowOrigins
	}
	cors.AllowCredentials = cfg.CORS.AllowCredentials
	if cfg.CORS.MaxAge > 0 {
		cors.MaxAge = cfg.CORS.MaxAge
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if cfg.Server.MaxBodySize > 0 {
		sizeLimit.MaxBodySize = cfg.Server.MaxBodySize
	}
	if cfg.Storage.MaxUploadSize > 0 {
		// room for the multipart envelope around the file
		sizeLimit.MaxUploadSize = cfg.Storage.MaxUploadSize + 1<<20
	}

	timeout := middleware.DefaultTimeoutConfig()
	if cfg.Server.RequestTimeout > 0 {
		timeout.Duration = cfg.Server.RequestTimeout
	}

	return router.Config{
		RateLimit: middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RPS),
			Burst: cfg.RateLimit.Burst,
			TTL:   cfg.RateLimit.TTL,
		},
		TrustedProxies: cfg.Server.TrustedProxies,
		CORS:           cors,
		Security:       middleware.DefaultSecurityConfig(),
		SizeLimit:      sizeLimit,
		Timeout:        timeout,
	}
}

func (a *App) Handler() http.Handler {
	return a.Router.Engine()
}

// CreateAdmin adds an administrator account.
func (a *App) CreateAdmin(ctx context.Context, username, password string) (*model.Account, error) {
	return a.Catalog.Accounts.Create(ctx, systemCaller, &model.Account{
		Username: username,
		Password: password,
		IsAdmin:  true,
	})
}

func (a *App) Close() error {
	return a.Store.Close()
}
