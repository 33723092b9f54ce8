package schema

import (
	"errors"
	"fmt"
)

// UnknownOperationError reports that the model requested an operation name
// that is not in the registry. Non-fatal: it fails one request, not the turn.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.Name)
}

// ValidationError reports arguments that fail the operation's parameter
// schema. Surfaced in the request result, never thrown across the boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// UpstreamError reports a failed downstream platform call. The original
// message is always preserved so the model can explain the failure.
type UpstreamError struct {
	Service string
	Status  int
	Msg     string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Msg)
}

// NotFoundError reports a missing platform entity (dataset, batch, ...).
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ProviderError reports that the LLM call itself failed or returned
// unparsable output. Fatal for the turn; the conversation state is left
// unchanged so the user may retry.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AsUpstream converts an arbitrary handler error into the typed taxonomy.
// Errors that are already typed pass through unchanged; anything unexpected
// becomes an UpstreamError carrying the original message.
func AsUpstream(service string, err error) error {
	if err == nil {
		return nil
	}
	var (
		unknown    *UnknownOperationError
		validation *ValidationError
		upstream   *UpstreamError
		notFound   *NotFoundError
	)
	if errors.As(err, &unknown) || errors.As(err, &validation) ||
		errors.As(err, &upstream) || errors.As(err, &notFound) {
		return err
	}
	return &UpstreamError{Service: service, Msg: err.Error()}
}
