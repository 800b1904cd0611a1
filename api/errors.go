package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/huebase/api/imageloader"
)

// Helper function to get caller information
func getCallerInfo() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "[unknown]"
	}
	return fmt.Sprintf("[%s:%d]", filepath.Base(file), line)
}

type HandlerError struct {
	ErrorName        string `json:"errorName"`
	Description      string `json:"description"`
	Field            string `json:"field,omitempty"`
	PossibleSolution string `json:"possibleSolution"`
	CallerInfo       string `json:"callerInfo"`
}

var ErrGET = fmt.Errorf("GET method required for this endpoint")
var ErrPOST = fmt.Errorf("POST method required for this endpoint")
var ErrPUT = fmt.Errorf("PUT method required for this endpoint")

func (app *Application) invalidAuthorization(w http.ResponseWriter, r *http.Request, err error) {
	w.WriteHeader(http.StatusUnauthorized)
	errAuthorizingEndpoint := HandlerError{
		ErrorName:        "Error Authenticating for Endpoint",
		Description:      "Invalid Authentication",
		PossibleSolution: "Check your headers and ensure you're submitting a valid token",
		CallerInfo:       getCallerInfo(),
	}
	json.NewEncoder(w).Encode(errAuthorizingEndpoint)
}

func (app *Application) requireMethod(w http.ResponseWriter, r *http.Request, method string, err error) {
	w.Header().Set("Allow", method)
	w.WriteHeader(http.StatusMethodNotAllowed)
	methodRequired := HandlerError{
		ErrorName:        method + " Method Required",
		Description:      err.Error() + " you used: " + r.Method,
		PossibleSolution: "Use " + method + " method",
		CallerInfo:       getCallerInfo(),
	}
	json.NewEncoder(w).Encode(methodRequired)
}

func (app *Application) badJSONRequest(w http.ResponseWriter, r *http.Request, err error) {
	w.WriteHeader(http.StatusBadRequest)
	jsonErr := HandlerError{
		ErrorName:        "Error Parsing JSON",
		Description:      err.Error(),
		PossibleSolution: "Double check your JSON formatting",
		CallerInfo:       getCallerInfo(),
	}
	json.NewEncoder(w).Encode(jsonErr)
}

func (app *Application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	badRequest := HandlerError{
		ErrorName:        "Bad Request",
		Description:      err.Error(),
		PossibleSolution: "Check your request parameters",
		CallerInfo:       getCallerInfo(),
	}
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(badRequest)
}

// invalidImage names the offending field so clients can tell which of
// their inputs the service refused.
func (app *Application) invalidImage(w http.ResponseWriter, r *http.Request, verr *imageloader.ValidationError) {
	invalidImage := HandlerError{
		ErrorName:        "Invalid Image",
		Description:      verr.Message,
		Field:            verr.Field,
		PossibleSolution: "Submit an image within the documented format and size limits",
		CallerInfo:       getCallerInfo(),
	}
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(invalidImage)
}

// resourceUnavailable covers exhausted fetch retries without leaking the
// retry detail to clients.
func (app *Application) resourceUnavailable(w http.ResponseWriter, r *http.Request) {
	unavailable := HandlerError{
		ErrorName:        "Resource Unavailable",
		Description:      "the requested resource could not be retrieved",
		PossibleSolution: "Check the URL is reachable and retry later",
		CallerInfo:       getCallerInfo(),
	}
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(unavailable)
}

func (app *Application) rateLimitExceeded(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	tooManyRequests := HandlerError{
		ErrorName:        "Rate Limit Exceeded",
		Description:      "too many requests in the current window",
		PossibleSolution: "Wait for the Retry-After interval before retrying",
		CallerInfo:       getCallerInfo(),
	}
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(tooManyRequests)
}

func (app *Application) serviceSaturated(w http.ResponseWriter, r *http.Request) {
	saturated := HandlerError{
		ErrorName:        "Service Saturated",
		Description:      "all extraction workers are busy",
		PossibleSolution: "Retry shortly",
		CallerInfo:       getCallerInfo(),
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	json.NewEncoder(w).Encode(saturated)
}

func (app *Application) notFound(w http.ResponseWriter, r *http.Request, err error) {
	missing := HandlerError{
		ErrorName:        "Not Found",
		Description:      err.Error(),
		PossibleSolution: "Check the resource identifier",
		CallerInfo:       getCallerInfo(),
	}
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(missing)
}

func (app *Application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	serverError := HandlerError{
		ErrorName:        "Internal Server Error",
		Description:      err.Error(),
		PossibleSolution: "Internal Server Error requiring support",
		CallerInfo:       getCallerInfo(),
	}
	json.NewEncoder(w).Encode(serverError)
}
