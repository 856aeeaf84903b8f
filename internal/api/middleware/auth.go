package middleware

import (
	"context"
	"net/http"

	"github.com/ctlabs/taskrouter/internal/api"
	"github.com/ctlabs/taskrouter/internal/api/shared"
	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/platform/logger"
	"github.com/ctlabs/taskrouter/internal/service/auth"
)

// IdentityResolver authenticates an Authorization header and authorizes an
// action. auth.Gate implements it.
type IdentityResolver interface {
	Resolve(ctx context.Context, header string, action auth.Action) (domain.Identity, error)
}

// AuthMiddleware guards routes with an IdentityResolver.
type AuthMiddleware struct {
	resolver IdentityResolver
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(resolver IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAction returns middleware that lets a request through only if its
// caller may perform action. The resolved identity is added to the request
// context. Nothing is read from the body before this check passes.
func (m *AuthMiddleware) RequireAction(action auth.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := m.resolver.Resolve(r.Context(), r.Header.Get("Authorization"), action)
			if err != nil {
				shared.RespondWithErrorAndLog(w, r,
					api.MapErrorToStatusCode(err), api.GetSafeErrorMessage(err), err,
					shared.WithElevatedLogLevel())
				return
			}

			log := logger.FromContext(r.Context()).With(
				"client_id", identity.ClientID,
				"role", identity.Role)
			log.Debug("caller authorized", "action", action)

			ctx := shared.WithIdentity(r.Context(), identity)
			ctx = logger.WithLogger(ctx, log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the caller stored by RequireAction.
func GetIdentity(r *http.Request) (domain.Identity, bool) {
	return shared.GetIdentity(r.Context())
}
