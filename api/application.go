package api

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/huebase/api/datastore"
	"github.com/huebase/api/extractor"
	"github.com/huebase/api/imageloader"
	"github.com/huebase/api/indexer"
	"github.com/huebase/api/ratelimit"
	"github.com/huebase/api/workers"
)

type Config struct {
	HTTPPort         string
	DatabaseType     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseHost     string
	DatabaseName     string
	SSLMode          string

	AdminKeyHash   string // bcrypt hash of the admin key
	JwtSecret      string
	JwtTTL         time.Duration
	AllowedOrigins []string
	DevMode        bool

	// Throttling of the synchronous extraction path.
	RateLimitWindow time.Duration
	RateLimitCount  int

	Image   imageloader.Config
	Indexer indexer.Config
}

type Application struct {
	Config    Config
	ImageRepo datastore.ImageRepository
	Loader    *imageloader.Loader
	Extractor *extractor.Extractor
	Pool      *workers.Pool
	Limiter   *ratelimit.Limiter
	Indexer   *indexer.Indexer
	Log       hclog.Logger

	// Lifecycle is canceled on process shutdown; background work such as
	// admin-triggered indexing runs derives from it, never from a request
	// context.
	Lifecycle context.Context
}

func (app *Application) lifecycle() context.Context {
	if app.Lifecycle != nil {
		return app.Lifecycle
	}
	return context.Background()
}
