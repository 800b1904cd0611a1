package imageloader

import "fmt"

// ValidationKind identifies why an image was rejected. Validation failures
// are attributable to the image itself and are never retried.
type ValidationKind string

const (
	InvalidContentType   ValidationKind = "invalid_content_type"
	MissingContentLength ValidationKind = "missing_content_length"
	ContentTooLarge      ValidationKind = "content_too_large"
	InvalidFormat        ValidationKind = "invalid_format"
	DimensionOutOfRange  ValidationKind = "dimension_out_of_range"
)

// ValidationError reports a non-retryable rejection of an image. Field
// names the offending request field for API error bodies.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransientError reports that the network call failed and all retry
// attempts were exhausted. It is distinct from any validation failure.
type TransientError struct {
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
