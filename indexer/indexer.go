// Package indexer drives the continuous ingestion pipeline: it discovers
// images page by page from a feed, extracts their palettes and persists
// the results.
package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/huebase/api/datastore"
	"github.com/huebase/api/extractor"
	"github.com/huebase/api/imageloader"
	"github.com/huebase/api/models"
	"github.com/huebase/api/workers"
)

// ErrAlreadyRunning is returned by Run when an indexing run is in flight.
var ErrAlreadyRunning = errors.New("an indexing run is already in progress")

// Stats is a snapshot of one indexing run's counters. Skips are images
// that were already indexed; failures are per-image fetch, validation,
// extraction or persistence errors.
type Stats struct {
	Running bool  `json:"running"`
	Indexed int64 `json:"indexed"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
}

// Config carries the pipeline knobs.
type Config struct {
	Periodicity     time.Duration
	RewriteExisting bool
	StartPage       int
	EndPage         int
	Cyclic          bool
}

// Indexer walks the feed sequentially page by page; the images within a
// page are processed concurrently. A single bad image or page never
// aborts the run.
type Indexer struct {
	feed      FeedSource
	loader    *imageloader.Loader
	extractor *extractor.Extractor
	repo      datastore.ImageRepository
	pool      *workers.Pool
	config    Config
	log       hclog.Logger

	running atomic.Bool
	runs    sync.WaitGroup
	indexed atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func New(
	feed FeedSource,
	loader *imageloader.Loader,
	ext *extractor.Extractor,
	repo datastore.ImageRepository,
	pool *workers.Pool,
	config Config,
	log hclog.Logger,
) *Indexer {
	return &Indexer{
		feed:      feed,
		loader:    loader,
		extractor: ext,
		repo:      repo,
		pool:      pool,
		config:    config,
		log:       log,
	}
}

// Stats returns a snapshot of the current (or last) run's counters.
func (ix *Indexer) Stats() Stats {
	return Stats{
		Running: ix.running.Load(),
		Indexed: ix.indexed.Load(),
		Skipped: ix.skipped.Load(),
		Failed:  ix.failed.Load(),
	}
}

// Run executes one indexing run until the cursor is exhausted, the feed
// runs dry on a non-cyclic cursor, or ctx is canceled. Pages are strictly
// sequential: page N+1 is not fetched before every image of page N has
// been processed and the mandatory pause has elapsed.
func (ix *Indexer) Run(ctx context.Context) error {
	if !ix.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ix.runs.Add(1)
	defer ix.runs.Done()
	defer ix.running.Store(false)
	return ix.run(ctx)
}

// Start launches Run in a background goroutine. It reports
// ErrAlreadyRunning synchronously so callers can surface the conflict
// without waiting for the run to finish.
func (ix *Indexer) Start(ctx context.Context) error {
	if !ix.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ix.runs.Add(1)
	go func() {
		defer ix.runs.Done()
		defer ix.running.Store(false)
		if err := ix.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			ix.log.Error("indexing run failed", "error", err)
		}
	}()
	return nil
}

// Wait blocks until any in-flight run has drained. Callers cancel the
// run's context first; Wait alone does not stop anything. It must only be
// run once no further Start or Run calls can happen, during shutdown.
func (ix *Indexer) Wait() {
	ix.runs.Wait()
}

func (ix *Indexer) run(ctx context.Context) error {
	ix.indexed.Store(0)
	ix.skipped.Store(0)
	ix.failed.Store(0)

	cursor := NewPageCursor(ix.config.StartPage, ix.config.EndPage, ix.config.Cyclic)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cursor.Exhausted() {
			ix.log.Info("page range exhausted, indexing run finished")
			return nil
		}

		page := cursor.Current()
		images, err := ix.feed.GetPage(ctx, page)
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			// A bad page is retried (or wrapped past, for cyclic cursors)
			// after the pause instead of killing the run.
			ix.log.Warn("failed to fetch feed page", "page", page, "error", err)
		case len(images) == 0:
			if !cursor.Cyclic() {
				ix.log.Info("feed exhausted, indexing run finished", "page", page)
				return nil
			}
			ix.log.Debug("feed exhausted, wrapping to start", "page", page)
			cursor.Reset()
		default:
			ix.indexPage(ctx, images)
			cursor.Advance()
		}

		select {
		case <-time.After(ix.config.Periodicity):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// indexPage fans out over the page's images and waits for all of them.
// Completion order within a page is not defined.
func (ix *Indexer) indexPage(ctx context.Context, images []models.Image) {
	var wg sync.WaitGroup
	for _, image := range images {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(image models.Image) {
			defer wg.Done()
			ix.index(ctx, image)
		}(image)
	}
	wg.Wait()
}

// index processes a single image reference: existence check, fetch,
// extract, persist. Every failure is logged and counted, never fatal.
func (ix *Indexer) index(ctx context.Context, image models.Image) {
	if !ix.config.RewriteExisting {
		exists, err := ix.repo.Exists(image.Origin)
		if err != nil {
			ix.log.Warn("existence check failed", "origin", image.Origin, "error", err)
			ix.failed.Add(1)
			return
		}
		if exists {
			ix.log.Debug("already indexed, skipping", "origin", image.Origin)
			ix.skipped.Add(1)
			return
		}
	}

	data, err := ix.loader.Fetch(ctx, image.URLBig)
	if err != nil {
		ix.logImageError(image, err)
		ix.failed.Add(1)
		return
	}

	var colors []models.Color
	err = ix.pool.Do(ctx, func() error {
		decoded, decodeErr := ix.loader.Decode(data)
		if decodeErr != nil {
			return decodeErr
		}
		var extractErr error
		colors, extractErr = ix.extractor.Extract(decoded)
		return extractErr
	})
	if err != nil {
		ix.logImageError(image, err)
		ix.failed.Add(1)
		return
	}

	if _, err := ix.repo.Replace(image, colors); err != nil {
		ix.log.Warn("failed to persist image", "origin", image.Origin, "error", err)
		ix.failed.Add(1)
		return
	}

	ix.indexed.Add(1)
	ix.log.Debug("indexed image", "origin", image.Origin, "colors", len(colors))
}

func (ix *Indexer) logImageError(image models.Image, err error) {
	var ve *imageloader.ValidationError
	var te *imageloader.TransientError
	switch {
	case errors.As(err, &ve):
		ix.log.Warn("image rejected", "origin", image.Origin, "kind", ve.Kind, "error", ve.Message)
	case errors.As(err, &te):
		ix.log.Warn("could not load image", "origin", image.Origin, "attempts", te.Attempts, "error", te.Err)
	default:
		ix.log.Warn("image processing failed", "origin", image.Origin, "error", err)
	}
}
