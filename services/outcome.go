package services

import "net/http"

// Outcome is the typed result every webhook handler returns instead of
// signalling retry-vs-drop through error propagation. The HTTP layer maps it
// to the status the provider keys its retry behaviour on: 2xx stops retries,
// 400 stops retries for payloads that can never succeed, 500 requests one.
type Outcome struct {
	kind   outcomeKind
	reason string
	err    error
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeDuplicate
	outcomeNonRetryable
	outcomeRetryable
)

func Success() Outcome {
	return Outcome{kind: outcomeSuccess}
}

// Duplicate marks an event that was already handled; acknowledged like a
// success so the provider stops delivering it.
func Duplicate(reason string) Outcome {
	return Outcome{kind: outcomeDuplicate, reason: reason}
}

// NonRetryable marks a payload that can never be processed (malformed,
// unverifiable); retrying would produce the same failure.
func NonRetryable(reason string, err error) Outcome {
	return Outcome{kind: outcomeNonRetryable, reason: reason, err: err}
}

// Retryable marks a transient failure; the 500 response asks the provider to
// deliver the event again later.
func Retryable(reason string, err error) Outcome {
	return Outcome{kind: outcomeRetryable, reason: reason, err: err}
}

func (o Outcome) IsSuccess() bool   { return o.kind == outcomeSuccess }
func (o Outcome) IsDuplicate() bool { return o.kind == outcomeDuplicate }
func (o Outcome) Reason() string    { return o.reason }
func (o Outcome) Err() error        { return o.err }

func (o Outcome) HTTPStatus() int {
	switch o.kind {
	case outcomeNonRetryable:
		return http.StatusBadRequest
	case outcomeRetryable:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
