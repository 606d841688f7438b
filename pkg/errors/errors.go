package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Common error types
var (
	// Decode errors
	ErrMalformedURI      = errors.New("malformed URI")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrMissingField      = errors.New("missing required field")
	ErrNoValidLinks      = errors.New("no valid links")

	// Input errors
	ErrValidation = errors.New("validation failed")

	// Catalog errors
	ErrCatalogEmpty       = errors.New("catalog is empty")
	ErrCatalogFetchFailed = errors.New("failed to fetch catalog")
	ErrNoEndpoints        = errors.New("no endpoints available")

	// Probe errors
	ErrProbeTimeout     = errors.New("probe timeout")
	ErrProbeBadResponse = errors.New("unexpected probe response")

	// Render errors
	ErrUnknownTarget = errors.New("unknown render target")
)

// DecodeKind classifies why a proxy URI could not be decoded.
type DecodeKind int

const (
	KindMalformedURI DecodeKind = iota
	KindUnsupportedScheme
	KindMissingField
)

func (k DecodeKind) String() string {
	switch k {
	case KindUnsupportedScheme:
		return "unsupported scheme"
	case KindMissingField:
		return "missing field"
	default:
		return "malformed URI"
	}
}

func (k DecodeKind) sentinel() error {
	switch k {
	case KindUnsupportedScheme:
		return ErrUnsupportedScheme
	case KindMissingField:
		return ErrMissingField
	default:
		return ErrMalformedURI
	}
}

// DecodeError is returned by every URI codec. errors.Is matches both the
// kind's sentinel and the underlying cause.
type DecodeError struct {
	Kind   DecodeKind
	Scheme string
	Field  string
	Input  string
	Err    error
}

// Malformed builds a KindMalformedURI error.
func Malformed(scheme, input string, err error) *DecodeError {
	return &DecodeError{Kind: KindMalformedURI, Scheme: scheme, Input: input, Err: err}
}

// Missing builds a KindMissingField error.
func Missing(scheme, field, input string) *DecodeError {
	return &DecodeError{Kind: KindMissingField, Scheme: scheme, Field: field, Input: input}
}

// Unsupported builds a KindUnsupportedScheme error.
func Unsupported(input string) *DecodeError {
	return &DecodeError{Kind: KindUnsupportedScheme, Input: input}
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	if e.Scheme != "" {
		b.WriteString(e.Scheme)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Field != "" {
		fmt.Fprintf(&b, " %q", e.Field)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// ValidationError reports structural input rejected before any work begins.
type ValidationError struct {
	Field string
	Rule  string
	Value any
}

func (e *ValidationError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s: %v (rule %s)", e.Field, e.Value, e.Rule)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// FromValidator converts the first failing field of a validator/v10 error
// into a *ValidationError. Other errors are returned unchanged.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err
	}
	fe := ves[0]
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return &ValidationError{Field: fe.Field(), Rule: rule, Value: fe.Value()}
}

// ProbeError wraps a failed liveness call. It is folded into the dead state
// and logged, never surfaced to scheduler callers.
type ProbeError struct {
	Targets []string
	Err     error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", strings.Join(e.Targets, ","), e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// HTTPError is returned for non-2xx responses from remote collaborators.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Retryable reports whether the request may succeed when repeated.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode < 400 || e.StatusCode >= 500
}

// CatalogError ties a catalog failure to its source.
type CatalogError struct {
	Source string
	Err    error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog '%s': %v", e.Source, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}
