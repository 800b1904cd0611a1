// Package imageloader downloads and validates remote images before they
// reach the color extraction pipeline.
package imageloader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	_ "golang.org/x/image/webp" // Register WebP format
)

// chunkSize bounds a single body read while streaming the response.
const chunkSize = 1 << 18

// Config holds the validation limits applied to every fetched image.
type Config struct {
	AllowedContentTypes []string
	MaxBytes            int64
	MinWidth            int
	MinHeight           int
	MaxWidth            int
	MaxHeight           int
	Timeout             time.Duration
	Retry               RetryPolicy
}

// Loader fetches image bytes over HTTP and decodes them, enforcing
// content-type, size and dimension constraints. Network failures are
// retried per the configured policy; validation failures never are.
type Loader struct {
	config Config
	client *http.Client
	log    hclog.Logger
}

func New(config Config, log hclog.Logger) *Loader {
	return &Loader{
		config: config,
		client: &http.Client{},
		log:    log,
	}
}

// Fetch downloads the raw bytes behind url. It fails with a
// ValidationError for images the service refuses to process and with a
// TransientError once the retry policy is exhausted.
func (l *Loader) Fetch(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := l.config.Retry.Do(ctx, func() error {
		var attemptErr error
		data, attemptErr = l.fetchOnce(ctx, url)
		if attemptErr != nil {
			l.log.Debug("image fetch attempt failed", "url", url, "error", attemptErr)
		}
		return attemptErr
	}, notValidation)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (l *Loader) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := l.validateContentType(resp.Header.Get("Content-Type")); err != nil {
		return nil, err
	}
	if err := l.validateContentLength(resp.ContentLength); err != nil {
		return nil, err
	}

	return l.readBody(resp.Body)
}

func (l *Loader) validateContentType(contentType string) error {
	for _, allowed := range l.config.AllowedContentTypes {
		if contentType == allowed {
			return nil
		}
	}
	return &ValidationError{
		Kind:    InvalidContentType,
		Field:   "image",
		Message: fmt.Sprintf("content type %q is not allowed", contentType),
	}
}

func (l *Loader) validateContentLength(contentLength int64) error {
	if contentLength < 0 {
		return &ValidationError{
			Kind:    MissingContentLength,
			Field:   "content_length",
			Message: "Content-Length header must be set",
		}
	}
	if contentLength > l.config.MaxBytes {
		return &ValidationError{
			Kind:    ContentTooLarge,
			Field:   "image",
			Message: fmt.Sprintf("image is too large: maximum size is %d bytes", l.config.MaxBytes),
		}
	}
	return nil
}

// readBody streams the body in bounded chunks and aborts the moment the
// accumulated size exceeds the limit, regardless of what Content-Length
// claimed.
func (l *Loader) readBody(body io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	for {
		_, err := io.CopyN(&buf, body, chunkSize)
		if int64(buf.Len()) > l.config.MaxBytes {
			return nil, &ValidationError{
				Kind:    ContentTooLarge,
				Field:   "image",
				Message: fmt.Sprintf("image is too large: maximum size is %d bytes", l.config.MaxBytes),
			}
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
	}
}

// Decode parses raw bytes into an image and validates its dimensions.
func (l *Loader) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{
			Kind:    InvalidFormat,
			Field:   "image",
			Message: "invalid image format",
		}
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	if width > l.config.MaxWidth || height > l.config.MaxHeight {
		return nil, &ValidationError{
			Kind:  DimensionOutOfRange,
			Field: "image",
			Message: fmt.Sprintf("maximum allowed image size is %d x %d pixels, currently it's %d x %d",
				l.config.MaxWidth, l.config.MaxHeight, width, height),
		}
	}
	if width < l.config.MinWidth || height < l.config.MinHeight {
		return nil, &ValidationError{
			Kind:  DimensionOutOfRange,
			Field: "image",
			Message: fmt.Sprintf("minimum allowed image size is %d x %d pixels, currently it's %d x %d",
				l.config.MinWidth, l.config.MinHeight, width, height),
		}
	}

	return img, nil
}

// LoadUpload validates and decodes an image submitted directly in a
// request body, applying the same limits as a remote fetch.
func (l *Loader) LoadUpload(contentType string, contentLength int64, body io.Reader) (image.Image, error) {
	if err := l.validateContentType(contentType); err != nil {
		return nil, err
	}
	if err := l.validateContentLength(contentLength); err != nil {
		return nil, err
	}
	data, err := l.readBody(body)
	if err != nil {
		return nil, err
	}
	return l.Decode(data)
}

// LoadByURL fetches and decodes an image in one step.
func (l *Loader) LoadByURL(ctx context.Context, url string) (image.Image, error) {
	data, err := l.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return l.Decode(data)
}
