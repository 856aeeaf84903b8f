package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/ctlabs/taskrouter/internal/service/auth"
)

// Credential is a username/password pair known to MockIdentityProvider.
type Credential struct {
	Username string
	Password string
}

// MockIdentityProvider implements auth.IdentityProvider for testing.
type MockIdentityProvider struct {
	// LoginJWTFn allows test cases to mock the LoginJWT behavior
	LoginJWTFn func(ctx context.Context, token string) (map[string]string, error)

	// LoginUserpassFn allows test cases to mock the LoginUserpass behavior
	LoginUserpassFn func(ctx context.Context, username, password string) (map[string]string, error)

	// Tokens and Users are looked up when no Fn is set. An unknown token or
	// credential yields Err, or ErrRejected if Err is nil.
	Tokens map[string]map[string]string
	Users  map[Credential]map[string]string
	Err    error

	mu    sync.Mutex
	calls int
}

var _ auth.IdentityProvider = (*MockIdentityProvider)(nil)

// ErrRejected is the default login failure.
var ErrRejected = errors.New("credentials rejected")

// LoginJWT implements auth.IdentityProvider.
func (m *MockIdentityProvider) LoginJWT(ctx context.Context, token string) (map[string]string, error) {
	m.count()
	if m.LoginJWTFn != nil {
		return m.LoginJWTFn(ctx, token)
	}
	if md, ok := m.Tokens[token]; ok {
		return md, nil
	}
	return nil, m.failure()
}

// LoginUserpass implements auth.IdentityProvider.
func (m *MockIdentityProvider) LoginUserpass(ctx context.Context, username, password string) (map[string]string, error) {
	m.count()
	if m.LoginUserpassFn != nil {
		return m.LoginUserpassFn(ctx, username, password)
	}
	if md, ok := m.Users[Credential{Username: username, Password: password}]; ok {
		return md, nil
	}
	return nil, m.failure()
}

// Calls returns how many logins were attempted.
func (m *MockIdentityProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockIdentityProvider) count() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *MockIdentityProvider) failure() error {
	if m.Err != nil {
		return m.Err
	}
	return ErrRejected
}
