package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/platform/logger"
)

// Authorization header schemes. Matching is case-sensitive.
const (
	bearerPrefix = "Bearer "
	basicPrefix  = "Basic "
)

// Gate resolves the caller of a request and checks they may perform an
// action. It holds no per-request state and is safe for concurrent use.
type Gate struct {
	verifier *Verifier
}

// NewGate creates a Gate using verifier for authentication.
func NewGate(verifier *Verifier) *Gate {
	return &Gate{verifier: verifier}
}

// Resolve authenticates the Authorization header value and authorizes action
// for the resulting identity. On failure the error matches (errors.Is) one of
// ErrMissingCredentials, ErrAuthenticationFailed, ErrMetadataMissing or
// ErrNotPermitted.
func (g *Gate) Resolve(ctx context.Context, header string, action Action) (domain.Identity, error) {
	identity, err := g.authenticate(ctx, header)
	if err != nil {
		return domain.Identity{}, classify(err)
	}

	if !Authorize(identity.Role, action) {
		logger.FromContext(ctx).Info("action not permitted",
			"client_id", identity.ClientID,
			"role", identity.Role,
			"action", action)
		return domain.Identity{}, fmt.Errorf("%w: role %q may not perform %q", ErrNotPermitted, identity.Role, action)
	}

	return identity, nil
}

func (g *Gate) authenticate(ctx context.Context, header string) (domain.Identity, error) {
	switch {
	case strings.HasPrefix(header, bearerPrefix):
		return g.verifier.VerifyToken(ctx, strings.TrimPrefix(header, bearerPrefix))
	case strings.HasPrefix(header, basicPrefix):
		username, password, err := decodeBasic(strings.TrimPrefix(header, basicPrefix))
		if err != nil {
			return domain.Identity{}, err
		}
		return g.verifier.VerifyPassword(ctx, username, password)
	default:
		return domain.Identity{}, ErrMissingCredentials
	}
}

// decodeBasic splits a base64 "username:password" payload on the first colon.
func decodeBasic(payload string) (string, string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid basic credentials encoding", ErrAuthenticationFailed)
	}
	username, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", fmt.Errorf("%w: basic credentials missing separator", ErrAuthenticationFailed)
	}
	return username, password, nil
}

// classify passes known failures through and folds anything else into
// ErrAuthenticationFailed.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrAuthenticationFailed),
		errors.Is(err, ErrMetadataMissing),
		errors.Is(err, ErrNotPermitted):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
}
