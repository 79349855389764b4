// internal/apierr/apierr.go
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Components wrap one of these so handlers can map any error
// chain to a status code with errors.Is.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrNoDataAvailable      = errors.New("no data available")
	ErrConflict             = errors.New("conflict")
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrModelUnavailable     = errors.New("model unavailable")
	ErrModelResponseInvalid = errors.New("model response invalid")
	ErrAdviceUnavailable    = errors.New("advice unavailable")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// kindError ties a kind to its cause while keeping both reachable.
type kindError struct {
	kind  error
	op    string
	cause error
}

func (e *kindError) Error() string {
	switch {
	case e.cause == nil && e.op == "":
		return e.kind.Error()
	case e.cause == nil:
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	case e.op == "":
		return fmt.Sprintf("%v: %v", e.kind, e.cause)
	default:
		return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.cause)
	}
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Wrap attaches kind to err. A nil err yields the bare kind annotated with op.
func Wrap(kind error, op string, err error) error {
	return &kindError{kind: kind, op: op, cause: err}
}

// Invalid is shorthand for an ErrInvalidInput with a formatted reason.
func Invalid(format string, args ...any) error {
	return &kindError{kind: ErrInvalidInput, cause: fmt.Errorf(format, args...)}
}

// table is checked in order; wrapping kinds come before the kinds they wrap.
var table = []struct {
	kind   error
	status int
	code   string
}{
	{ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{ErrForbidden, http.StatusForbidden, "forbidden"},
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ErrNoDataAvailable, http.StatusNotFound, "no_data"},
	{ErrConflict, http.StatusConflict, "conflict"},
	{ErrStorageUnavailable, http.StatusInternalServerError, "storage_unavailable"},
	{ErrAdviceUnavailable, http.StatusInternalServerError, "advice_unavailable"},
	{ErrModelUnavailable, http.StatusInternalServerError, "model_unavailable"},
	{ErrModelResponseInvalid, http.StatusInternalServerError, "model_response_invalid"},
}

// From classifies err. Unknown errors become a 500 "internal".
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	for _, row := range table {
		if errors.Is(err, row.kind) {
			return New(row.status, row.code, err)
		}
	}
	return New(http.StatusInternalServerError, "internal", err)
}
