// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ActivityStudio/config"
	"ActivityStudio/controllers"
	"ActivityStudio/middleware"
	"ActivityStudio/registry"
	"ActivityStudio/routes"
	"ActivityStudio/storage"
	"ActivityStudio/store"
	"ActivityStudio/tokens"

	"github.com/gofiber/fiber/v2"
	sharedmw "github.com/praleedsuvarna/shared-libs/middleware"
	"github.com/praleedsuvarna/shared-libs/utils"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect the data store (injected everywhere, constructed exactly once).
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("connecting data store", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = st.Close(ctx)
	}()

	// Object storage is optional at boot; uploads fail per request until
	// credentials are configured.
	var objects storage.ObjectStorage
	if s3, err := storage.NewS3(storage.S3Options{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Endpoint:        cfg.S3Endpoint,
		PathStyle:       cfg.S3PathStyle,
	}); err != nil {
		logger.Warn("object storage unavailable", zap.Error(err))
		objects = storage.Unconfigured()
	} else {
		objects = s3
	}

	// NATS is not critical for the API to function.
	nc, err := controllers.ConnectNATS(cfg.NATSURL, logger)
	if err != nil {
		logger.Warn("NATS unavailable, ingest pipeline disabled", zap.Error(err))
	} else {
		defer nc.Close()
	}

	relations := registry.NewRelationStore(st)
	activities := registry.NewActivityRegistry(st, logger)
	documents := registry.NewDocumentRegistry(st, relations, objects, logger)
	resolver := registry.NewShareResolver(st)
	issuer := registry.NewTokenIssuer(st, tokens.NewMinter(cfg.JWTSecret, cfg.RAGTokenTTL))
	publisher := controllers.NewIngestPublisher(nc, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: controllers.ErrorHandler(logger),
		BodyLimit:    32 * 1024 * 1024,
	})
	app.Use(middleware.Logger(logger))

	audit := controllers.AuditFunc(func(userID, action, objectID string) {
		utils.LogAudit(userID, action, objectID)
	})
	routes.SetupRoutes(app, routes.Controllers{
		Activities: controllers.NewActivityController(activities, resolver, issuer, cfg.ShareCodeTTL, audit, logger),
		Documents:  controllers.NewDocumentController(documents, publisher, audit, logger),
		Share:      controllers.NewShareController(resolver),
	}, sharedmw.AuthMiddleware)

	callbacks := controllers.NewIngestCallbackController(documents, logger)
	if err := callbacks.Register(app, nc); err != nil {
		logger.Warn("initializing ingest callbacks", zap.Error(err))
	}

	// Start the server in a goroutine.
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("starting server", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Fatal("shutting down server", zap.Error(err))
	}
	logger.Info("server successfully shutdown")
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return store.OpenSQLite(cfg.SQLitePath)
	default:
		return store.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	}
}
