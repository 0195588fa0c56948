package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/api"
	"github.com/linesmerrill/rider-safety-api/api/scheduler"
	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

const (
	requestTimeout = 30 * time.Second
	tokenCacheTTL  = 5 * time.Minute
	// upper bound for one background scan: classifier call plus the flag and
	// ban writes
	scanTaskTimeout = 30 * time.Second
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scans     *moderation.WorkerPool
	Metrics   *api.MetricsCollector
	Scheduler *scheduler.Scheduler

	dbHelper databases.DatabaseHelper
	client   databases.ClientHelper
	redis    *redis.Client
	cancel   context.CancelFunc
}

// Services are the moderation components behind the routes
type Services struct {
	Accounts *moderation.Accounts
	Queue    *moderation.Queue
	Images   *moderation.Images
	Scans    ScanDispatcher
	Messages databases.MessageDatabase
}

// NewServices wires the moderation components onto the database. External
// classifiers and the blob store are built from the config and degrade to
// their fail-safe behaviour when not configured.
func (a *App) NewServices(ctx context.Context) Services {
	audit := moderation.NewAuditLog(databases.NewModerationLogDatabase(a.dbHelper))
	accounts := moderation.NewAccounts(databases.NewUserDatabase(a.dbHelper), audit)
	flags := databases.NewContentFlagDatabase(a.dbHelper)

	blobs, err := databases.NewCloudinaryBlobStore(&a.Config)
	if err != nil {
		zap.S().Warnw("image uploads disabled, blob store not available", "error", err)
		blobs = nil
	}

	engine := moderation.NewEngine(flags, accounts)
	return Services{
		Accounts: accounts,
		Queue:    moderation.NewQueue(flags, accounts, audit),
		Images: moderation.NewImages(
			moderation.NewImageClassifier(ctx, &a.Config),
			blobs,
			databases.NewImageDatabase(a.dbHelper),
			audit,
			a.Config.MaxUploadBytes,
		),
		Scans:    moderation.NewScanDispatcher(a.Scans, moderation.NewScamClassifier(&a.Config), engine),
		Messages: databases.NewMessageDatabase(a.dbHelper),
	}
}

// counter picks the shared redis counter when REDIS_ADDR is set
func (a *App) counter(ctx context.Context) api.Counter {
	if a.Config.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr, Password: a.Config.RedisPassword})
		return api.NewRedisCounter(a.redis, a.Config.RateLimitWindow)
	}
	c := api.NewFixedWindowCounter(a.Config.RateLimitWindow)
	c.StartSweeper(ctx, a.Config.RateLimitWindow)
	return c
}

// New creates a new mux router and all the routes
func (a *App) New(ctx context.Context, svc Services, counter api.Counter) *mux.Router {
	auth := api.NewAuthenticator(ctx, a.Config.JWTSecret, tokenCacheTTL)
	v := NewValidator()

	msg := Message{DB: svc.Messages, Accounts: svc.Accounts, Scans: svc.Scans, Validator: v}
	img := Image{Images: svc.Images}
	cf := ContentFlag{Queue: svc.Queue, Validator: v}
	risk := Risk{Accounts: svc.Accounts}
	metrics := Metrics{Collector: a.Metrics}

	r := mux.NewRouter()
	r.Use(api.AfterResponse)
	if a.Metrics != nil {
		r.Use(a.Metrics.Middleware)
	}
	r.Use(api.TimeoutMiddleware(requestTimeout))

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(auth.Middleware)

	limitMessages := api.RateLimit(counter, "messages", a.Config.RateLimitMessages)
	limitUploads := api.RateLimit(counter, "images", a.Config.RateLimitUploads)

	apiCreate.Handle("/messages", limitMessages(http.HandlerFunc(msg.SendMessageHandler))).Methods("POST")
	apiCreate.Handle("/images", limitUploads(http.HandlerFunc(img.UploadImageHandler))).Methods("POST")

	apiCreate.HandleFunc("/admin/flags", cf.ContentFlagsHandler).Methods("GET")
	apiCreate.HandleFunc("/admin/flags/pending-count", cf.PendingCountHandler).Methods("GET")
	apiCreate.HandleFunc("/admin/flags/{flagId}/dismiss", cf.DismissFlagHandler).Methods("PUT")
	apiCreate.HandleFunc("/admin/flags/{flagId}/review", cf.ReviewFlagHandler).Methods("PUT")
	apiCreate.HandleFunc("/admin/flags/{flagId}/ban", cf.BanFromFlagHandler).Methods("POST")

	apiCreate.HandleFunc("/admin/images", img.ImagesHandler).Methods("GET")
	apiCreate.HandleFunc("/admin/images/{imageId}/approve", img.ApproveImageHandler).Methods("PUT")
	apiCreate.HandleFunc("/admin/images/{imageId}", img.DeleteImageHandler).Methods("DELETE")

	apiCreate.HandleFunc("/admin/users/{userId}/risk-flags", risk.RiskFlagsHandler).Methods("GET")
	apiCreate.HandleFunc("/admin/metrics", metrics.MetricsHandler).Methods("GET")

	return r
}

// Initialize connects to the database, makes sure the indexes exist and
// builds the router
func (a *App) Initialize() error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	defer connectCancel()
	if err := client.Connect(connectCtx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	zap.S().Info("rider-safety-api has connected to the database")

	flags := databases.NewContentFlagDatabase(a.dbHelper)
	if err := flags.EnsureIndexes(connectCtx); err != nil {
		zap.S().With(err).Error("failed to create content flag indexes")
		return err
	}

	a.Scans = moderation.NewWorkerPool(a.Config.ScanWorkers, a.Config.ScanQueueSize, scanTaskTimeout)
	a.Metrics = api.NewMetricsCollector(1000)

	a.Scheduler = scheduler.NewScheduler(&a.Config, flags,
		databases.NewImageDatabase(a.dbHelper), databases.NewSchedulerLockDatabase(a.dbHelper))
	if err := a.Scheduler.Start(); err != nil {
		return err
	}

	// initialize api router
	a.Router = a.New(ctx, a.NewServices(ctx), a.counter(ctx))
	return nil
}

// Shutdown stops background work. Queued scans get until ctx is done to
// finish.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Scans != nil {
		if err := a.Scans.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Metrics != nil {
		a.Metrics.Stop()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
