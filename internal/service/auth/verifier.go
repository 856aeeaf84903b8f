package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/platform/logger"
	"github.com/ctlabs/taskrouter/internal/redact"
)

// Metadata keys read from the identity provider's response.
const (
	MetadataClientID = "client_id"
	MetadataRole     = "role"
)

// IdentityProvider exchanges credentials for the metadata the provider keeps
// about the caller. Any error means the credentials were not accepted.
type IdentityProvider interface {
	LoginJWT(ctx context.Context, token string) (map[string]string, error)
	LoginUserpass(ctx context.Context, username, password string) (map[string]string, error)
}

// Verifier turns raw credentials into an Identity. Every call is a fresh
// provider round-trip; nothing is cached.
type Verifier struct {
	provider IdentityProvider
	parser   *jwt.Parser
}

// NewVerifier creates a Verifier backed by provider.
func NewVerifier(provider IdentityProvider) *Verifier {
	return &Verifier{
		provider: provider,
		parser:   jwt.NewParser(),
	}
}

// VerifyToken resolves a bearer token. The raw token is handed to the
// provider, which alone decides whether it is valid.
func (v *Verifier) VerifyToken(ctx context.Context, token string) (domain.Identity, error) {
	v.logTokenSubject(ctx, token)

	metadata, err := v.provider.LoginJWT(ctx, token)
	if err != nil {
		return domain.Identity{}, v.rejected(ctx, "jwt", err)
	}
	return identityFromMetadata(metadata)
}

// VerifyPassword resolves a username and password.
func (v *Verifier) VerifyPassword(ctx context.Context, username, password string) (domain.Identity, error) {
	metadata, err := v.provider.LoginUserpass(ctx, username, password)
	if err != nil {
		return domain.Identity{}, v.rejected(ctx, "userpass", err)
	}
	return identityFromMetadata(metadata)
}

// logTokenSubject records the unverified subject of JWT-shaped tokens for
// debugging. Opaque tokens are skipped silently.
func (v *Verifier) logTokenSubject(ctx context.Context, token string) {
	claims := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(token, claims); err != nil {
		return
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		logger.FromContext(ctx).Debug("bearer token presented", "unverified_subject", sub)
	}
}

// rejected logs the provider's detail and returns the generic failure. The
// provider error is not wrapped so its text cannot reach a response.
func (v *Verifier) rejected(ctx context.Context, method string, err error) error {
	logger.FromContext(ctx).Info("identity provider rejected credentials",
		"method", method,
		"error", redact.Error(err))
	return ErrAuthenticationFailed
}

func identityFromMetadata(metadata map[string]string) (domain.Identity, error) {
	clientID := metadata[MetadataClientID]
	role := metadata[MetadataRole]
	if clientID == "" || role == "" {
		return domain.Identity{}, ErrMetadataMissing
	}
	return domain.Identity{ClientID: clientID, Role: domain.Role(role)}, nil
}
