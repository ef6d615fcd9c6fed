package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/event"
	"github.com/fekuna/omnipos-backoffice-service/internal/notify"
	"github.com/fekuna/omnipos-backoffice-service/internal/server"
	"github.com/fekuna/omnipos-backoffice-service/migrations"
	"github.com/fekuna/omnipos-backoffice-service/pkg/broker"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/search"
	"github.com/fekuna/omnipos-backoffice-service/pkg/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	bizH "github.com/fekuna/omnipos-backoffice-service/internal/business/handler"
	bizRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/business/repository"
	bizUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/business/usecase"

	catH "github.com/fekuna/omnipos-backoffice-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/category/usecase"

	dashH "github.com/fekuna/omnipos-backoffice-service/internal/dashboard/handler"
	dashRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/dashboard/repository"
	dashUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/dashboard/usecase"

	delH "github.com/fekuna/omnipos-backoffice-service/internal/delivery/handler"
	delRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/delivery/repository"
	delUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/delivery/usecase"

	idH "github.com/fekuna/omnipos-backoffice-service/internal/identity/handler"
	idRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/identity/repository"
	idUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/identity/usecase"

	invH "github.com/fekuna/omnipos-backoffice-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/inventory/usecase"

	ordH "github.com/fekuna/omnipos-backoffice-service/internal/order/handler"
	ordListenerPkg "github.com/fekuna/omnipos-backoffice-service/internal/order/listener"
	ordRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/order/repository"
	ordUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/order/usecase"

	prodH "github.com/fekuna/omnipos-backoffice-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/product/usecase"

	repH "github.com/fekuna/omnipos-backoffice-service/internal/report/handler"
	repUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/report/usecase"

	saH "github.com/fekuna/omnipos-backoffice-service/internal/superadmin/handler"
	saRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/superadmin/repository"
	saUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/superadmin/usecase"

	teamH "github.com/fekuna/omnipos-backoffice-service/internal/team/handler"
	teamRepoPkg "github.com/fekuna/omnipos-backoffice-service/internal/team/repository"
	teamUCPkg "github.com/fekuna/omnipos-backoffice-service/internal/team/usecase"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the gRPC health server and the order listener",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	// 1. Configuration and logger
	cfg := loadConfig()
	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Database
	db, err := openDatabase(cfg)
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if autoMigrate {
		if err := migrations.Apply(ctx, db, appLogger); err != nil {
			appLogger.Fatal("Could not apply migrations", zap.Error(err))
		}
	}

	// 3. Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 4. Kafka producer and consumer
	var publisher event.Publisher = event.NopPublisher{}
	var consumer *broker.KafkaConsumer
	if len(cfg.Kafka.Brokers) > 0 {
		brokerCfg := &broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}
		producer := broker.NewProducer(brokerCfg)
		defer producer.Close()
		publisher = event.NewKafkaPublisher(producer, appLogger)

		consumer = broker.NewConsumer(brokerCfg)
		defer consumer.Close()
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		appLogger.Warn("Kafka brokers not configured, order events are disabled")
	}

	// 5. Elasticsearch
	var esClient *search.Client
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch (Search features might be limited)", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 6. Object storage
	var uploader storage.Uploader
	store, err := storage.NewMinioStore(&storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLogger.Warn("Could not initialise object storage, uploads are disabled", zap.Error(err))
	} else {
		for _, bucket := range []string{cfg.Storage.InventoryBucket, cfg.Storage.DeliveryBucket} {
			if err := store.EnsureBucket(ctx, bucket); err != nil {
				appLogger.Warn("Could not ensure bucket", zap.String("bucket", bucket), zap.Error(err))
			}
		}
		uploader = store
	}

	// 7. Telegram
	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken)
		if err != nil {
			appLogger.Warn("Could not start Telegram bot, driver notifications are disabled", zap.Error(err))
		} else {
			notifier = tg
		}
	}

	// 8. Repositories
	idRepo := idRepoPkg.NewPGRepository(db)
	bizRepo := bizRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	ordRepo := ordRepoPkg.NewPGRepository(db)
	delRepo := delRepoPkg.NewPGRepository(db)
	teamRepo := teamRepoPkg.NewPGRepository(db)
	saRepo := saRepoPkg.NewPGRepository(db)
	dashRepo := dashRepoPkg.NewPGRepository(db)

	// 9. UseCases
	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TTL)
	idUC := idUCPkg.NewIdentityUseCase(idRepo, tokens, redisClient, appLogger)
	bizUC := bizUCPkg.NewBusinessUseCase(bizRepo, appLogger)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, redisClient, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, invUCPkg.Options{
		Cache:         redisClient,
		Search:        esClient,
		Storage:       uploader,
		ImageBucket:   cfg.Storage.InventoryBucket,
		MaxImageBytes: cfg.Upload.MaxImageBytes,
	}, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, esClient, appLogger)
	ordUC := ordUCPkg.NewOrderUseCase(ordRepo, publisher, redisClient, cfg.Server.PublicBaseURL, appLogger)
	delUC := delUCPkg.NewDeliveryUseCase(delRepo, delUCPkg.Options{
		Storage:       uploader,
		Bucket:        cfg.Storage.DeliveryBucket,
		MaxPhotoBytes: cfg.Upload.MaxPhotoBytes,
		Publisher:     publisher,
		Cache:         redisClient,
	}, appLogger)
	teamUC := teamUCPkg.NewTeamUseCase(teamRepo, appLogger)
	saUC := saUCPkg.NewSuperadminUseCase(saRepo, appLogger)
	dashUC := dashUCPkg.NewDashboardUseCase(dashRepo, redisClient, appLogger)
	repUC := repUCPkg.NewReportUseCase(ordRepo, bizRepo, appLogger)

	// 10. Listener
	if consumer != nil {
		ordListener := ordListenerPkg.NewOrderListener(consumer, ordRepo, notifier, redisClient, cfg.Server.PublicBaseURL, appLogger)
		go ordListener.Start(ctx)
	}

	// 11. Handlers and router
	handlers := &server.Handlers{
		Identity:   idH.NewIdentityHandler(idUC, appLogger),
		Business:   bizH.NewBusinessHandler(bizUC, appLogger),
		Category:   catH.NewCategoryHandler(catUC, appLogger),
		Inventory:  invH.NewInventoryHandler(invUC, appLogger),
		Product:    prodH.NewProductHandler(prodUC, appLogger),
		Order:      ordH.NewOrderHandler(ordUC, appLogger),
		Delivery:   delH.NewDeliveryHandler(delUC, appLogger),
		Team:       teamH.NewTeamHandler(teamUC, appLogger),
		Superadmin: saH.NewSuperadminHandler(saUC, appLogger),
		Dashboard:  dashH.NewDashboardHandler(dashUC, appLogger),
		Report:     repH.NewReportHandler(repUC, appLogger),
	}
	router := server.NewRouter(server.RouterConfig{
		AppEnv:      cfg.Server.AppEnv,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, handlers, auth.NewMiddleware(tokens, idUC, appLogger), db, appLogger)

	httpServer := &http.Server{
		Addr:              listenAddr(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 12. gRPC health server
	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	grpcServer, healthServer := server.NewGRPCServer(appLogger)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()
	server.SetServing(healthServer, true)

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	server.SetServing(healthServer, false)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
	return nil
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
