package imageloader

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
)

func testConfig() Config {
	return Config{
		AllowedContentTypes: []string{"image/png", "image/jpeg"},
		MaxBytes:            1 << 20,
		MinWidth:            2,
		MinHeight:           2,
		MaxWidth:            1000,
		MaxHeight:           1000,
		Timeout:             2 * time.Second,
		Retry:               RetryPolicy{MaxAttempts: 3, Wait: 0},
	}
}

func newTestLoader(config Config) *Loader {
	return New(config, hclog.NewNullLogger())
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 45, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func serveBytes(contentType string, data []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	}))
}

func TestLoadByURLSuccess(t *testing.T) {
	data := pngBytes(t, 10, 10)
	server := serveBytes("image/png", data)
	defer server.Close()

	loader := newTestLoader(testConfig())
	img, err := loader.LoadByURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("LoadByURL: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 10 {
		t.Errorf("decoded image is %v, want 10x10", img.Bounds())
	}
}

func TestFetchRejectsContentType(t *testing.T) {
	server := serveBytes("text/html", []byte("<html></html>"))
	defer server.Close()

	loader := newTestLoader(testConfig())
	_, err := loader.Fetch(context.Background(), server.URL)

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Kind != InvalidContentType {
		t.Fatalf("got %v, want ValidationError with kind %s", err, InvalidContentType)
	}
}

func TestFetchContentLengthBoundary(t *testing.T) {
	data := pngBytes(t, 10, 10)

	tests := []struct {
		name     string
		maxBytes int64
		wantKind ValidationKind
	}{
		{name: "exactly at max accepted", maxBytes: int64(len(data))},
		{name: "one over max rejected", maxBytes: int64(len(data)) - 1, wantKind: ContentTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serveBytes("image/png", data)
			defer server.Close()

			config := testConfig()
			config.MaxBytes = tt.maxBytes
			loader := newTestLoader(config)

			got, err := loader.Fetch(context.Background(), server.URL)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Fetch: %v", err)
				}
				if len(got) != len(data) {
					t.Errorf("got %d bytes, want %d", len(got), len(data))
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Kind != tt.wantKind {
				t.Fatalf("got %v, want ValidationError with kind %s", err, tt.wantKind)
			}
		})
	}
}

func TestFetchRequiresContentLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		// Flushing before the body forces chunked encoding, dropping the
		// Content-Length header.
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		w.Write([]byte("data"))
	}))
	defer server.Close()

	loader := newTestLoader(testConfig())
	_, err := loader.Fetch(context.Background(), server.URL)

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Kind != MissingContentLength {
		t.Fatalf("got %v, want ValidationError with kind %s", err, MissingContentLength)
	}
}

func TestReadBodyAbortsOverLimit(t *testing.T) {
	// The stream check must trip even when Content-Length lied.
	config := testConfig()
	config.MaxBytes = 100
	loader := newTestLoader(config)

	_, err := loader.readBody(strings.NewReader(strings.Repeat("x", 5000)))

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Kind != ContentTooLarge {
		t.Fatalf("got %v, want ValidationError with kind %s", err, ContentTooLarge)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	loader := newTestLoader(testConfig())
	_, err := loader.Decode([]byte("definitely not an image"))

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Kind != InvalidFormat {
		t.Fatalf("got %v, want ValidationError with kind %s", err, InvalidFormat)
	}
}

func TestDecodeValidatesDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		ok   bool
	}{
		{name: "within bounds", w: 10, h: 10, ok: true},
		{name: "too small", w: 1, h: 1},
		{name: "too wide", w: 1200, h: 10},
	}

	loader := newTestLoader(testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Decode(pngBytes(t, tt.w, tt.h))
			if tt.ok {
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Kind != DimensionOutOfRange {
				t.Fatalf("got %v, want ValidationError with kind %s", err, DimensionOutOfRange)
			}
		})
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	data := pngBytes(t, 10, 10)
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	loader := newTestLoader(testConfig())
	if _, err := loader.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if attempts != 3 {
		t.Errorf("server saw %d attempts, want 3", attempts)
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	loader := newTestLoader(testConfig())
	_, err := loader.Fetch(context.Background(), server.URL)

	var te *TransientError
	if !errors.As(err, &te) {
		t.Fatalf("got %v, want TransientError", err)
	}
	if te.Attempts != 3 || attempts != 3 {
		t.Errorf("attempts = %d (server saw %d), want 3", te.Attempts, attempts)
	}
}

func TestFetchDoesNotRetryValidationFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	loader := newTestLoader(testConfig())
	_, err := loader.Fetch(context.Background(), server.URL)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if attempts != 1 {
		t.Errorf("server saw %d attempts, want 1", attempts)
	}
}
