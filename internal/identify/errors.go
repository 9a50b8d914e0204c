package identify

import (
	"errors"
	"strings"
)

// Kind classifies an identification failure. Kinds are mutually exclusive and
// the caller maps each to a distinct user-facing message.
type Kind string

const (
	// KindAPIKeyMissing means no model credential is configured. Checked
	// before any network call.
	KindAPIKeyMissing Kind = "API_KEY_MISSING"
	// KindQuotaExceeded means the model call failed with a rate-limit or
	// quota signal.
	KindQuotaExceeded Kind = "QUOTA_EXCEEDED"
	// KindNoPlantDetected means the model explicitly reported no plant in
	// the image. Image path only.
	KindNoPlantDetected Kind = "NO_PLANT_DETECTED"
	// KindTechnicalError covers everything else: network failure,
	// unparseable output, unexpected response shape.
	KindTechnicalError Kind = "TECHNICAL_ERROR"
)

// Error is the typed failure returned by the identification client. It is the
// only typed error that crosses the integration boundary.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error returned by this package.
// Unknown errors report KindTechnicalError.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindTechnicalError
}

var quotaIndicators = []string{"429", "quota", "exhausted"}

// classify maps an upstream call failure to a typed error: quota/rate-limit
// signals in the error text become KindQuotaExceeded, the rest
// KindTechnicalError.
func classify(err error) *Error {
	msg := strings.ToLower(err.Error())
	for _, indicator := range quotaIndicators {
		if strings.Contains(msg, indicator) {
			return &Error{Kind: KindQuotaExceeded, Err: err}
		}
	}
	return &Error{Kind: KindTechnicalError, Err: err}
}

func technical(err error) *Error {
	return &Error{Kind: KindTechnicalError, Err: err}
}
