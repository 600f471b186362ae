package repositories

import (
	"context"
	"fmt"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
)

// Responder abstracts anything that can turn a user utterance into a reply.
// Implementations are either remote (generative-text provider) or offline
// (keyword fallback).
type Responder interface {
	// Reply produces a reply for the utterance given the conversation so far.
	// The history excludes the current utterance.
	Reply(ctx context.Context, utterance string, history []entities.ChatTurn) (string, error)
}

// FailureKind classifies why a remote call produced no usable reply.
type FailureKind string

const (
	// FailureNetwork means no response was received at all.
	FailureNetwork FailureKind = "network_error"
	// FailureHTTPStatus means the provider responded outside the 2xx range.
	FailureHTTPStatus FailureKind = "http_status_error"
	// FailureMalformedPayload means the body lacked the expected candidate text.
	FailureMalformedPayload FailureKind = "malformed_payload"
	// FailureProvider means the body carried an explicit provider error message.
	FailureProvider FailureKind = "provider_error"
)

// RemoteCallError is the uniform failure value a remote Responder returns.
// Callers treat every kind identically (fall back to the offline responder);
// the kind and detail only differentiate diagnostics.
type RemoteCallError struct {
	Kind       FailureKind
	StatusCode int
	Detail     string
}

func (e *RemoteCallError) Error() string {
	if e.Kind == FailureHTTPStatus {
		return fmt.Sprintf("remote call failed: %s (%d): %s", e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("remote call failed: %s: %s", e.Kind, e.Detail)
}
