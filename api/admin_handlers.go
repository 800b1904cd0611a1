package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/huebase/api/indexer"
	"github.com/huebase/api/models"
)

// POST /v1/admin/login
//
// Exchanges the configured admin key for a short-lived bearer token.
func (app *Application) adminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requireMethod(w, r, http.MethodPost, ErrPOST)
		return
	}

	request := struct {
		Key string `json:"key"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(app.Config.AdminKeyHash), []byte(request.Key)); err != nil {
		app.invalidAuthorization(w, r, errors.New("wrong admin key"))
		return
	}

	token, err := models.NewAdminToken(app.Config.JwtSecret, app.Config.JwtTTL)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"` // seconds
	}{Token: token, ExpiresIn: int(app.Config.JwtTTL.Seconds())}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// POST /v1/admin/indexer/run
//
// Kicks off a one-shot indexing run in the background. A run already in
// progress is reported as a conflict instead of being doubled up.
func (app *Application) runIndexer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requireMethod(w, r, http.MethodPost, ErrPOST)
		return
	}
	if app.Indexer == nil {
		app.badRequest(w, r, errors.New("indexing is not configured"))
		return
	}

	if err := app.Indexer.Start(app.lifecycle()); errors.Is(err, indexer.ErrAlreadyRunning) {
		conflict := HandlerError{
			ErrorName:        "Indexer Busy",
			Description:      err.Error(),
			PossibleSolution: "Wait for the current run to finish",
			CallerInfo:       getCallerInfo(),
		}
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(conflict)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
	}{Status: "started"})
}

// GET /v1/admin/indexer/stats
func (app *Application) indexerStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireMethod(w, r, http.MethodGet, ErrGET)
		return
	}
	if app.Indexer == nil {
		app.badRequest(w, r, errors.New("indexing is not configured"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(app.Indexer.Stats())
}
