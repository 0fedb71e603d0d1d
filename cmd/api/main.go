// Command api runs the engineering marketplace HTTP service.
//
// @title                       Engineering Marketplace API
// @version                     1.0
// @description                 Clients post projects, engineers bid on them, and both sides talk, share files and review each other.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/api"
	"github.com/obralink/marketplace/internal/core/catalog"
	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
	"github.com/obralink/marketplace/internal/core/service"
	mongodb "github.com/obralink/marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/obralink/marketplace/internal/infrastructure/db/redis"
	"github.com/obralink/marketplace/internal/infrastructure/http/handlers"
	"github.com/obralink/marketplace/internal/infrastructure/queue"
	"github.com/obralink/marketplace/internal/infrastructure/realtime"
	"github.com/obralink/marketplace/internal/infrastructure/storage"
	"github.com/obralink/marketplace/internal/pkg/config"
	"github.com/obralink/marketplace/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "marketplace-api",
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server exited")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	blobs, err := newBlobStore(ctx, cfg.Blob)
	if err != nil {
		return err
	}

	// --- Repositories ---
	profileRepo := mongodb.NewProfileRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)
	proposalRepo := mongodb.NewProposalRepository(db)
	acceptanceRepo := mongodb.NewAcceptanceRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)
	messageRepo := mongodb.NewMessageRepository(db)
	attachmentRepo := mongodb.NewAttachmentRepository(db)
	revoker := redisdb.NewTokenRevoker(rdb)

	// --- Services ---
	policy := domain.UploadPolicy{MaxSizeMB: cfg.Upload.MaxSizeMB, AllowedExtensions: cfg.Upload.AllowedExtensions}
	authService := service.NewAuthService(profileRepo, revoker, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth_service"))
	profileService := service.NewProfileService(profileRepo, reviewRepo, logger.Component("profile_service"))
	projectService := service.NewProjectService(projectRepo, proposalRepo, logger.Component("project_service"))
	proposalService := service.NewProposalService(projectRepo, proposalRepo, acceptanceRepo, cfg.Workflow.ReconcileGrace, logger.Component("proposal_service"))
	reviewService := service.NewReviewService(reviewRepo, projectRepo, proposalRepo, logger.Component("review_service"))
	messageService := service.NewMessageService(messageRepo, profileRepo, projectRepo, proposalRepo, redisdb.NewFeedPublisher(rdb), logger.Component("message_service"))
	attachmentService := service.NewAttachmentService(attachmentRepo, blobs, projectRepo, proposalRepo, policy, logger.Component("attachment_service"))

	// --- Realtime feed: Redis listener → sharded dispatcher → hub ---
	hub := realtime.NewHub(logger.Component("feed_hub"))
	feedService := service.NewFeedService(messageRepo, redisdb.NewDedupChecker(rdb, cfg.Feed.InstanceID, cfg.Feed.DedupTTL), hub, logger.Component("feed_service"))
	dispatcher := queue.NewDispatcher(cfg.Feed.Workers, feedService, logger.Component("feed_dispatcher"))
	listener := redisdb.NewFeedListener(rdb, dispatcher.Enqueue, logger.Component("feed_listener"))
	reconciler := queue.NewReconcileLoop(proposalService, cfg.Workflow.ReconcileInterval, logger.Component("reconciler"))

	bgCtx, cancelBackground := context.WithCancel(context.Background())
	dispatcher.Start(bgCtx)
	reconciler.Start(bgCtx)
	var listenerDone sync.WaitGroup
	listenerDone.Add(1)
	go func() {
		defer listenerDone.Done()
		listener.Run(bgCtx)
	}()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:         logger.Component("http"),
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		BodyLimit:   fmt.Sprintf("%dM", cfg.Upload.MaxSizeMB+2),
		Auth:        authService,
		Profiles:    profileService,
		Projects:    projectService,
		Proposals:   proposalService,
		Reviews:     reviewService,
		Messages:    messageService,
		Attachments: attachmentService,
		Feed:        hub,
		Revoker:     revoker,
		Catalog:     catalog.Default(),
		Readiness: map[string]handlers.Check{
			"mongo": handlers.MongoCheck(db),
			"redis": handlers.RedisCheck(rdb),
		},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// Shutdown waits for active requests; closing the hub ends SSE streams.
	server.RegisterOnShutdown(hub.Close)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("blob_backend", cfg.Blob.Backend).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	case err := <-serveErr:
		cancelBackground()
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}

	cancelBackground()
	listenerDone.Wait()
	dispatcher.Wait()
	reconciler.Wait()
	return nil
}

func newBlobStore(ctx context.Context, cfg config.BlobConfig) (ports.BlobStore, error) {
	switch cfg.Backend {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.Bucket,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket)
	}
}
