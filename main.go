package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/princinho/eshopbackend/config"
	"github.com/princinho/eshopbackend/controllers"
	"github.com/princinho/eshopbackend/database"
	"github.com/princinho/eshopbackend/logger"
	"github.com/princinho/eshopbackend/metrics"
	"github.com/princinho/eshopbackend/middleware"
	"github.com/princinho/eshopbackend/storage"
	"github.com/princinho/eshopbackend/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zlog, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		zlog.Fatal("connect mongodb", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			zlog.Warn("disconnect mongodb", zap.Error(err))
		}
	}()
	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		zlog.Fatal("ensure indexes", zap.Error(err))
	}
	zlog.Info("connected to mongodb", zap.String("database", cfg.MongoDB.Database))

	users := database.NewMongoUsers(db)
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		seeded, err := database.SeedAdminUser(ctx, users, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			zlog.Fatal("seed admin user", zap.Error(err))
		}
		zlog.Info("admin user ready", zap.String("email", cfg.Admin.Email), zap.Bool("created", seeded))
	}

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		zlog.Fatal("init file storage", zap.Error(err))
	}
	if closer, ok := files.(io.Closer); ok {
		defer closer.Close()
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Fatal("connect redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		zlog.Fatal("trusted proxies", zap.Error(err))
	}
	r.MaxMultipartMemory = int64(cfg.Storage.MaxUploadSizeMB) << 20
	r.Use(ginzap.Ginzap(zlog, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(zlog, true))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(metrics.Middleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	app := &controllers.App{
		Products:         database.NewMongoProducts(db),
		Categories:       database.NewMongoCategories(db),
		Users:            users,
		Files:            files,
		Images:           utils.NewImageValidator(cfg.Storage.MaxUploadSizeMB),
		Logger:           zlog,
		JWTSecret:        cfg.JWT.Secret,
		TokenTTL:         cfg.JWT.TokenTTL,
		MaxGalleryImages: cfg.Storage.MaxGalleryImages,
	}
	rc := controllers.RouteConfig{
		APIPrefix:   cfg.Server.APIPrefix,
		AuthLimiter: middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window),
		// every gallery file at full size plus 1 MB for the form fields
		MaxUploadBytes: int64(cfg.Storage.MaxGalleryImages*cfg.Storage.MaxUploadSizeMB)<<20 + 1<<20,
	}
	if local, ok := files.(*storage.LocalStore); ok {
		rc.UploadDir = local.Root()
	}
	controllers.RegisterRoutes(r, app, rc)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		zlog.Info("http server listening", zap.String("addr", srv.Addr), zap.String("prefix", cfg.Server.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
}
