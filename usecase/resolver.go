package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

// ResponseResolver produces exactly one reply per submitted message: the
// remote responder is tried first, and on any classified failure the offline
// fallback answers instead. The failure never reaches the user; it is only
// logged.
type ResponseResolver struct {
	remote   repositories.Responder
	fallback repositories.Responder
	logger   *zap.Logger
}

// NewResponseResolver creates a new response resolver
func NewResponseResolver(remote, fallback repositories.Responder, logger *zap.Logger) *ResponseResolver {
	return &ResponseResolver{
		remote:   remote,
		fallback: fallback,
		logger:   logger,
	}
}

// Resolve returns the remote reply verbatim on success, and the fallback
// reply on any failure. It always returns a non-empty string.
func (r *ResponseResolver) Resolve(ctx context.Context, utterance string, history []entities.ChatTurn) string {
	text, err := r.remote.Reply(ctx, utterance, history)
	if err == nil && text != "" {
		return text
	}

	if err != nil {
		var remoteErr *repositories.RemoteCallError
		if errors.As(err, &remoteErr) {
			r.logger.Warn("Remote responder failed, using fallback",
				zap.String("kind", string(remoteErr.Kind)),
				zap.Int("statusCode", remoteErr.StatusCode),
				zap.String("detail", remoteErr.Detail))
		} else {
			r.logger.Warn("Remote responder failed, using fallback", zap.Error(err))
		}
	} else {
		r.logger.Warn("Remote responder returned empty text, using fallback")
	}

	text, err = r.fallback.Reply(ctx, utterance, history)
	if err != nil {
		// The fallback is pure and cannot fail; this branch guards against a
		// misconfigured responder being wired in its place.
		r.logger.Error("Fallback responder failed", zap.Error(err))
		return "I'm having trouble answering right now. Please try again."
	}

	return text
}
