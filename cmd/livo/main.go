package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ekamauln/livo-next/internal/audit"
	"github.com/ekamauln/livo-next/internal/config"
	"github.com/ekamauln/livo-next/internal/confirm"
	"github.com/ekamauln/livo-next/internal/form"
	"github.com/ekamauln/livo-next/internal/handler"
	"github.com/ekamauln/livo-next/internal/lookup"
	"github.com/ekamauln/livo-next/internal/middleware"
	"github.com/ekamauln/livo-next/internal/report"
	"github.com/ekamauln/livo-next/internal/upstream"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect database", zap.Error(err))
	}
	auditRepo := audit.NewRepository(db)
	if err := auditRepo.AutoMigrate(); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Fatal("Failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	loc := cfg.Location()
	api := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, zapLogger.Named("upstream"))

	// report exports
	reportSvc := report.NewService(
		report.Catalog(api, loc),
		report.NewRedisSlot(rdb, cfg.Report.SlotTTL, zapLogger.Named("slot")),
		report.Options{
			PageSize: cfg.Report.FetchPageSize,
			MaxPages: cfg.Report.MaxPages,
			Location: loc,
		},
		zapLogger.Named("report"),
	)
	reportSvc.SetRecorder(audit.NewRecorder(auditRepo), uuid.NewString)

	if cfg.MinIO.Endpoint != "" {
		store, err := initMinIO(cfg.MinIO)
		if err != nil {
			zapLogger.Fatal("Failed to init object storage", zap.Error(err))
		}
		reportSvc.SetLinkSink(report.NewObjectSink(store, cfg.MinIO.Bucket, cfg.Report.LinkTTL, cfg.Report.RevokeDelay, zapLogger.Named("export-link")))
		zapLogger.Info("Export links enabled", zap.String("bucket", cfg.MinIO.Bucket))
	} else {
		zapLogger.Warn("MinIO endpoint not set, export links disabled")
	}

	// product and box lookups
	hub := lookup.NewHub(zapLogger.Named("lookup"))
	lookupMgr := lookup.NewManager(
		hub,
		lookup.Searchers(api),
		lookup.NewCache(rdb, cfg.Lookup.CacheTTL),
		lookup.Options{
			Delay:    cfg.Lookup.Debounce,
			MinChars: cfg.Lookup.MinChars,
			Limit:    cfg.Lookup.Limit,
		},
		zapLogger.Named("lookup"),
	)

	validator := form.New()
	handlers := &handler.Handlers{
		Health: handler.NewHealthHandler(db, rdb, Version, BuildTime),
		Report: handler.NewReportHandler(reportSvc, loc, zapLogger.Named("report")),
		Order:  handler.NewOrderHandler(api),
		QC:     handler.NewQCHandler(api, cfg.Report.FetchPageSize),
		User:   handler.NewUserHandler(api, validator),
		Delete: handler.NewDeleteHandler(confirm.NewRedisArmer(rdb, cfg.Confirm.Window), map[string]handler.DeleteFunc{
			handler.EntityProducts:   api.DeleteProduct,
			handler.EntityReturns:    api.DeleteReturn,
			handler.EntityComplaints: api.DeleteComplaint,
			handler.EntityUsers:      api.DeleteUser,
		}),
		Lookup:  handler.NewLookupHandler(lookupMgr),
		Barcode: handler.NewBarcodeHandler(),
		Export:  handler.NewExportHandler(auditRepo),
		List:    handler.NewListHandler(api),
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	// streams and binary downloads are written uncompressed
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{
		`^/api/v1/lookups/[^/]+/stream$`,
		`^/api/v1/reports/[^/]+/(pdf|xlsx)$`,
		`^/api/v1/barcodes/`,
	})))

	handler.RegisterRoutes(router, handlers, cfg.JWT.Secret, cfg.JWT.Issuer)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout, // 0 keeps SSE streams open
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port), zap.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	if cfg.Output == "" || cfg.Output == "stdout" {
		return zapCfg.Build()
	}

	// rotated file output, optionally teed with stdout
	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), fileSink, zapCfg.Level)
	if cfg.Output == "file" {
		return zap.New(fileCore, zap.AddCaller()), nil
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zapCfg.EncoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(zapCfg.EncoderConfig)
	}
	stdoutCore := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapCfg.Level)
	return zap.New(zapcore.NewTee(stdoutCore, fileCore), zap.AddCaller()), nil
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinIO(cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return client, nil
}
