package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/huebase/api/imageloader"
	"github.com/huebase/api/models"
)

// FeedSource yields pages of image references to index. An empty page
// signals the feed is exhausted.
type FeedSource interface {
	GetPage(ctx context.Context, page int) ([]models.Image, error)
}

// UnsplashFeed pages the Unsplash photo listing API.
type UnsplashFeed struct {
	BaseURL   string
	AccessKey string
	PerPage   int
	Timeout   time.Duration
	Retry     imageloader.RetryPolicy

	client *http.Client
	log    hclog.Logger
}

// unsplashPhoto mirrors the fields of the listing response the indexer
// cares about.
type unsplashPhoto struct {
	Links struct {
		HTML string `json:"html"`
	} `json:"links"`
	URLs struct {
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
}

func NewUnsplashFeed(baseURL, accessKey string, timeout time.Duration, retry imageloader.RetryPolicy, log hclog.Logger) *UnsplashFeed {
	return &UnsplashFeed{
		BaseURL:   baseURL,
		AccessKey: accessKey,
		PerPage:   30,
		Timeout:   timeout,
		Retry:     retry,
		client:    &http.Client{},
		log:       log,
	}
}

// GetPage fetches one page of photo references. Network failures and bad
// statuses are retried per the feed's policy before surfacing as a
// TransientError.
func (f *UnsplashFeed) GetPage(ctx context.Context, page int) ([]models.Image, error) {
	var images []models.Image
	err := f.Retry.Do(ctx, func() error {
		var attemptErr error
		images, attemptErr = f.getPageOnce(ctx, page)
		return attemptErr
	}, func(error) bool { return true })
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (f *UnsplashFeed) getPageOnce(ctx context.Context, page int) ([]models.Image, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, f.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}

	query := req.URL.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(f.PerPage))
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Authorization", "Client-ID "+f.AccessKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var photos []unsplashPhoto
	if err := json.NewDecoder(resp.Body).Decode(&photos); err != nil {
		return nil, fmt.Errorf("decoding feed response: %w", err)
	}

	images := make([]models.Image, 0, len(photos))
	for _, photo := range photos {
		images = append(images, models.Image{
			Origin:   photo.Links.HTML,
			URLBig:   photo.URLs.Regular,
			URLThumb: photo.URLs.Small,
		})
	}

	f.log.Debug("fetched feed page", "page", page, "images", len(images))
	return images, nil
}
