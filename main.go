package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"github.com/huebase/api/api"
	"github.com/huebase/api/colornames"
	"github.com/huebase/api/datastore"
	"github.com/huebase/api/extractor"
	"github.com/huebase/api/imageloader"
	"github.com/huebase/api/indexer"
	"github.com/huebase/api/migrations"
	"github.com/huebase/api/ratelimit"
	"github.com/huebase/api/workers"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "huebase",
		Level:      hclog.LevelFromString(getEnv("LOG_LEVEL", "info")),
		JSONFormat: getEnvBool("LOG_JSON", false),
	})

	retry := imageloader.RetryPolicy{
		MaxAttempts: getEnvInt("HTTP_RETRY_ATTEMPTS", 3),
		Wait:        getEnvDuration("HTTP_RETRY_WAIT", 2*time.Second),
	}

	// Get configuration from environment
	config := api.Config{
		HTTPPort:         getEnv("HTTP_PORT", ":8080"),
		DatabaseType:     getEnv("DB_TYPE", "postgres"),
		DatabaseUser:     getEnv("DB_USER", "postgres"),
		DatabasePassword: getEnv("DB_PASSWORD", ""),
		DatabaseHost:     getEnv("DB_HOST", "localhost"),
		DatabaseName:     getEnv("DB_NAME", "huebase"),
		SSLMode:          getEnv("SSL_MODE", "disable"),
		AdminKeyHash:     getEnv("ADMIN_KEY_HASH", ""),
		JwtSecret:        getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JwtTTL:           getEnvDuration("JWT_TTL", time.Hour),
		AllowedOrigins:   getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		DevMode:          getEnvBool("DEV_MODE", true),
		RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitCount:   getEnvInt("RATE_LIMIT_COUNT", 30),
		Image: imageloader.Config{
			AllowedContentTypes: getEnvSlice("ALLOWED_CONTENT_TYPES", "image/jpeg,image/png,image/gif,image/webp"),
			MaxBytes:            int64(getEnvInt("IMAGE_MAX_BYTES", 10<<20)),
			MinWidth:            getEnvInt("IMAGE_MIN_WIDTH", 10),
			MinHeight:           getEnvInt("IMAGE_MIN_HEIGHT", 10),
			MaxWidth:            getEnvInt("IMAGE_MAX_WIDTH", 10000),
			MaxHeight:           getEnvInt("IMAGE_MAX_HEIGHT", 10000),
			Timeout:             getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
			Retry:               retry,
		},
		Indexer: indexer.Config{
			Periodicity:     getEnvDuration("INDEXING_INTERVAL", 10*time.Second),
			RewriteExisting: getEnvBool("INDEXING_REWRITE", false),
			StartPage:       getEnvInt("INDEXING_START_PAGE", 1),
			EndPage:         getEnvInt("INDEXING_END_PAGE", 0),
			Cyclic:          getEnvBool("INDEXING_CYCLIC", false),
		},
	}

	// Create database connection
	connStr := datastore.BuildDBConnStr(
		config.DatabasePassword,
		config.DatabaseUser,
		config.DatabaseHost,
		config.DatabaseName,
		config.SSLMode,
	)

	dbConn, dbErr := datastore.NewDB(config.DatabaseType, connStr)
	if dbErr != nil {
		logger.Error("failed to connect to database", "error", dbErr)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Run database migrations
	if err := migrations.RunMigrations(dbConn, logger.Named("migrations")); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	imageRepo, imageRepoErr := datastore.NewImageDatabase(dbConn)
	if imageRepoErr != nil {
		logger.Error("failed to create image repository", "error", imageRepoErr)
		os.Exit(1)
	}

	namer, namerErr := colornames.NewNamer()
	if namerErr != nil {
		logger.Error("failed to build color name catalog", "error", namerErr)
		os.Exit(1)
	}

	loader := imageloader.New(config.Image, logger.Named("imageloader"))
	paletteExtractor := extractor.New(namer)

	// The pool is shared by the API path and the indexing pipeline; it is
	// warmed up here so the first request pays no cold-start cost.
	pool, poolErr := workers.NewPool(getEnvInt("EXTRACTION_WORKERS", 4), logger.Named("workers"))
	if poolErr != nil {
		logger.Error("failed to start worker pool", "error", poolErr)
		os.Exit(1)
	}
	defer pool.Close()

	limiter := ratelimit.NewLimiter()
	defer limiter.Close()

	// Shutdown context for background work. The same signals that stop
	// the HTTP server cancel it, which stops the indexing page loop.
	lifecycle, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &api.Application{
		Config:    config,
		ImageRepo: imageRepo,
		Loader:    loader,
		Extractor: paletteExtractor,
		Pool:      pool,
		Limiter:   limiter,
		Log:       logger.Named("api"),
		Lifecycle: lifecycle,
	}

	// The feed is optional: without an access key the service still serves
	// the synchronous API, and indexing stays disabled.
	if accessKey := getEnv("UNSPLASH_ACCESS_KEY", ""); accessKey != "" {
		feed := indexer.NewUnsplashFeed(
			getEnv("UNSPLASH_API_URL", "https://api.unsplash.com/photos"),
			accessKey,
			config.Image.Timeout,
			retry,
			logger.Named("feed"),
		)
		app.Indexer = indexer.New(feed, loader, paletteExtractor, imageRepo, pool,
			config.Indexer, logger.Named("indexer"))

		if getEnvBool("INDEXING_ENABLED", false) {
			if err := app.Indexer.Start(lifecycle); err != nil {
				logger.Error("failed to start indexing", "error", err)
			}
		}
	}

	// Create and start server
	mux := http.NewServeMux()

	logger.Info("huebase api starting")
	serveErr := app.Serve(mux)

	// Stop the indexing run and let it drain before the deferred
	// pool.Close tears the workers down.
	stop()
	if app.Indexer != nil {
		app.Indexer.Wait()
	}

	if serveErr != nil {
		logger.Error("server error", "error", serveErr)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	durationVal, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return durationVal
}

func getEnvSlice(key, defaultValue string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return strings.Split(value, ",")
}
