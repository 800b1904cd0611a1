package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/huebase/api/datastore"
	"github.com/huebase/api/imageloader"
	"github.com/huebase/api/models"
	"github.com/huebase/api/workers"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// GET /
func (app *Application) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Huebase API")
}

// clientID identifies a caller for rate limiting purposes. Behind a
// reverse proxy every connection shares one peer address, so the
// proxy-set X-Real-IP header takes precedence.
func clientID(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// PUT /v1/image
//
// Accepts either a binary image body or a {"url": ...} JSON document and
// responds with the extracted palette. Extraction runs on the shared
// worker pool; when every worker is busy the request is rejected rather
// than queued.
func (app *Application) putImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		app.requireMethod(w, r, http.MethodPut, ErrPUT)
		return
	}

	admission := app.Limiter.Allow(clientID(r), "put_image", app.Config.RateLimitWindow, app.Config.RateLimitCount)
	if !admission.Allowed {
		app.rateLimitExceeded(w, r, admission.RetryAfter)
		return
	}

	var img image.Image
	var loadErr error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		request := struct {
			URL string `json:"url"`
		}{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			app.badJSONRequest(w, r, err)
			return
		}
		if request.URL == "" {
			app.badRequest(w, r, errors.New("url is required"))
			return
		}
		img, loadErr = app.Loader.LoadByURL(r.Context(), request.URL)
	} else {
		img, loadErr = app.Loader.LoadUpload(r.Header.Get("Content-Type"), r.ContentLength, r.Body)
	}
	if loadErr != nil {
		app.imageLoadError(w, r, loadErr)
		return
	}

	var colors []models.Color
	err := app.Pool.TryDo(func() error {
		var extractErr error
		colors, extractErr = app.Extractor.Extract(img)
		return extractErr
	})
	switch {
	case errors.Is(err, workers.ErrSaturated):
		app.serviceSaturated(w, r)
		return
	case err != nil:
		app.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(colors)
}

// imageLoadError maps loader failures onto the API error surface.
func (app *Application) imageLoadError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *imageloader.ValidationError
	var terr *imageloader.TransientError
	switch {
	case errors.As(err, &verr):
		app.invalidImage(w, r, verr)
	case errors.As(err, &terr):
		app.resourceUnavailable(w, r)
	default:
		app.internalServerError(w, r, err)
	}
}

// GET /v1/images?color=<hex>&limit=<n>&offset=<n>
func (app *Application) searchImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireMethod(w, r, http.MethodGet, ErrGET)
		return
	}

	hex := r.URL.Query().Get("color")
	if hex == "" {
		app.badRequest(w, r, errors.New("color query parameter is required"))
		return
	}
	color, err := models.ColorFromHex(hex)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	limit, err := queryInt(r, "limit", defaultSearchLimit)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}
	if limit < 1 || limit > maxSearchLimit {
		app.badRequest(w, r, fmt.Errorf("limit must be between 1 and %d", maxSearchLimit))
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}
	if offset < 0 {
		app.badRequest(w, r, errors.New("offset must not be negative"))
		return
	}

	images, err := app.ImageRepo.SearchByColor(color, limit, offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(images)
}

// GET /v1/images/{id}
func (app *Application) getImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireMethod(w, r, http.MethodGet, ErrGET)
		return
	}

	idPart := strings.TrimPrefix(r.URL.Path, "/v1/images/")
	id, err := strconv.Atoi(idPart)
	if err != nil {
		app.badRequest(w, r, fmt.Errorf("invalid image id %q", idPart))
		return
	}

	img, err := app.ImageRepo.Get(id)
	if err != nil {
		var noRows datastore.NoRowsError
		if errors.As(err, &noRows) {
			app.notFound(w, r, fmt.Errorf("no image with id %d", id))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	colors, err := app.ImageRepo.GetColors(id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := struct {
		Image  models.Image   `json:"image"`
		Colors []models.Color `json:"colors"`
	}{Image: img, Colors: colors}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return value, nil
}
