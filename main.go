package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	"storefront-service/controllers"
	"storefront-service/database"
	apperrors "storefront-service/errors"
	"storefront-service/logger"
	"storefront-service/middleware"
	awspkg "storefront-service/pkg/aws"
	"storefront-service/repository"
	"storefront-service/routes"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second

	authRateLimit = rate.Limit(5)
	authRateBurst = 10
	limiterTTL    = 10 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Initialize(os.Getenv("APP_ENV"))
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	awsCfg, err := awspkg.LoadAWSConfig(ctx, cfg.AWS())
	if err != nil {
		logger.Initialize(cfg.Env)
		logger.Log.Fatal("Failed to load AWS config", zap.Error(err))
	}

	var logSink io.Writer
	var shipErr error
	if cfg.CloudWatchEnabled {
		shipper, err := awspkg.NewLogShipper(ctx, awsCfg, cfg.CloudWatchLogGroup, cfg.Service)
		if err != nil {
			shipErr = err
		} else {
			logSink = shipper
		}
	}
	logger.InitializeWithWriter(cfg.Env, logSink)
	defer logger.Sync()
	if shipErr != nil {
		logger.Log.Warn("CloudWatch log shipping disabled", zap.Error(shipErr))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Log.Info("Starting storefront service", zap.String("env", cfg.Env), zap.String("port", cfg.Port))

	mongoClient, db, err := database.Connect(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Log.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Log.Warn("Failed to parse REDIS_URL, falling back to default", zap.Error(err))
		redisOpts = &redis.Options{Addr: "localhost:6379"}
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Log.Warn("Redis unavailable, product reads will not be cached", zap.Error(err))
	}

	metrics := awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)
	logger.Log.Info("CloudWatch metrics", zap.Bool("enabled", metrics.IsEnabled()), zap.String("namespace", cfg.CloudWatchNamespace))
	bucket := awspkg.NewBucket(awspkg.NewS3Client(awsCfg), cfg.S3Bucket, cfg.AWSEndpoint, cfg.CDNDomain)
	events := services.NewSNSCatalogEvents(awspkg.NewSNSClient(awsCfg), cfg.CatalogTopicARN)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	cartRepo := repository.NewCartRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)

	tokens := services.NewTokenService(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, tokens, metrics)
	userService := services.NewUserService(userRepo)
	productService := services.NewProductService(productRepo, categoryRepo, services.NewS3ImageStore(bucket, cfg.S3Prefix), events, metrics)
	categoryService := services.NewCategoryService(categoryRepo)
	cartService := services.NewCartService(cartRepo, userRepo, productRepo)
	wishlistService := services.NewWishlistService(wishlistRepo, userRepo, productRepo)

	handlers := routes.Handlers{
		Auth:       controllers.NewAuthController(authService, cfg.IsProduction()),
		Users:      controllers.NewUserController(userService),
		Products:   controllers.NewProductController(productService, controllers.NewCacheManager(redisClient, metrics)),
		Categories: controllers.NewCategoryController(categoryService),
		Carts:      controllers.NewCartController(cartService),
		Wishlists:  controllers.NewWishlistController(wishlistService),
	}

	limiter := middleware.NewRateLimiter(authRateLimit, authRateBurst, limiterTTL)
	go limiter.Run(ctx)

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger.Log),
		middleware.Metrics(metrics, cfg.Service),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.AllowedOrigins),
		apperrors.ErrorMiddleware(),
		middleware.Timeout(requestTimeout),
	)
	routes.RegisterRoutes(r, handlers, middleware.Auth(tokens), middleware.RateLimit(limiter))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Storefront service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()
	logger.Log.Info("Shutting down storefront service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := database.Close(mongoClient); err != nil {
		logger.Log.Error("Failed to close MongoDB", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		logger.Log.Error("Failed to close Redis", zap.Error(err))
	}

	logger.Log.Info("Storefront service stopped gracefully")
}
