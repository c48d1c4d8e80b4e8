package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/odg-delivery/console/internal/api"
	"github.com/odg-delivery/console/internal/storage"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated. Please run 'odg login' first")
	ErrTermsNotAccepted = errors.New("you must agree to the Terms and Privacy Policy")
)

// Gate owns the session and its persistence. It is the token source for
// the API client and is safe for concurrent use.
type Gate struct {
	mu      sync.RWMutex
	session Session
	store   storage.Store
	client  *api.Client
}

// NewGate loads the persisted session and registers the gate as client's token source
func NewGate(store storage.Store, client *api.Client) (*Gate, error) {
	session, err := loadSession(store)
	if err != nil {
		return nil, err
	}

	g := &Gate{
		session: session,
		store:   store,
		client:  client,
	}
	client.SetTokenSource(g)

	return g, nil
}

// Session returns a copy of the current session
func (g *Gate) Session() Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// Token implements api.TokenSource
func (g *Gate) Token() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.Token, g.session.Token != ""
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

// LoginResponse is the body returned by POST /auth/login
type LoginResponse struct {
	Token      string `json:"token" validate:"required"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`
}

// Login authenticates and persists the returned session. On failure the
// API error is returned unchanged and nothing is mutated. A store failure
// part way through restores the keys already written.
func (g *Gate) Login(ctx context.Context, identifier, secret string) (Session, error) {
	resp, err := api.Post[LoginResponse](ctx, g.client, "/auth/login", LoginRequest{
		EmailOrPhone: identifier,
		Password:     secret,
	}, api.WithoutAuth())
	if err != nil {
		return Session{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	role := write{key: storage.KeyRole, value: resp.Role, what: "role"}
	if resp.Role == "" {
		role.clear = true
	}
	if err := g.persist(
		write{key: storage.KeyToken, value: resp.Token, what: "authentication token"},
		role,
		write{key: storage.KeyIsVerified, value: strconv.FormatBool(resp.IsVerified), what: "verification flag"},
	); err != nil {
		return Session{}, err
	}

	g.session = Session{
		Token:      resp.Token,
		Role:       Role(resp.Role),
		IsVerified: resp.IsVerified,
	}

	return g.session, nil
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	Password      string `json:"password" validate:"required"`
	AgreedToTerms bool   `json:"agreedToTerms"`
}

// Signup registers an account. The session is not touched: the account
// has to verify its email before it can log in.
func (g *Gate) Signup(ctx context.Context, req SignupRequest) error {
	if !req.AgreedToTerms {
		return ErrTermsNotAccepted
	}
	if err := g.client.Validator().Struct(req); err != nil {
		return fmt.Errorf("invalid signup: %w", err)
	}

	_, err := api.Post[map[string]any](ctx, g.client, "/auth/signup", req, api.WithoutAuth())
	return err
}

type selectRoleRequest struct {
	Role Role `json:"role"`
}

type selectRoleResponse struct {
	Token string `json:"token" validate:"required"`
	Role  string `json:"role" validate:"required"`
}

// SelectRole picks student or rider for a freshly signed-up account and
// persists the new token and role. The verification flag is kept.
func (g *Gate) SelectRole(ctx context.Context, role Role) (Session, error) {
	if !role.Selectable() {
		return Session{}, fmt.Errorf("invalid role %q, must be one of: %s, %s", role, RoleStudent, RoleRider)
	}

	resp, err := api.Post[selectRoleResponse](ctx, g.client, "/auth/select-role", selectRoleRequest{Role: role})
	if err != nil {
		return Session{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.persist(
		write{key: storage.KeyToken, value: resp.Token, what: "authentication token"},
		write{key: storage.KeyRole, value: resp.Role, what: "role"},
	); err != nil {
		return Session{}, err
	}

	g.session.Token = resp.Token
	g.session.Role = Role(resp.Role)

	return g.session, nil
}

// write is one key change made by persist
type write struct {
	key   string
	value string
	clear bool
	what  string
}

// persist applies writes in order. When one fails the keys written before it
// are put back to their previous values so the store never holds a mix of
// two sessions. Callers hold g.mu.
func (g *Gate) persist(writes ...write) error {
	type prior struct {
		value string
		ok    bool
	}

	before := make([]prior, len(writes))
	for i, w := range writes {
		value, ok, err := g.store.Get(w.key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", w.what, err)
		}
		before[i] = prior{value: value, ok: ok}
	}

	for i, w := range writes {
		var err error
		if w.clear {
			err = g.store.Delete(w.key)
		} else {
			err = g.store.Set(w.key, w.value)
		}
		if err == nil {
			continue
		}

		verb := "save"
		if w.clear {
			verb = "clear"
		}
		errs := []error{fmt.Errorf("failed to %s %s: %w", verb, w.what, err)}
		for j := i - 1; j >= 0; j-- {
			var rerr error
			if before[j].ok {
				rerr = g.store.Set(writes[j].key, before[j].value)
			} else {
				rerr = g.store.Delete(writes[j].key)
			}
			if rerr != nil {
				errs = append(errs, fmt.Errorf("failed to restore %s: %w", writes[j].what, rerr))
			}
		}
		return errors.Join(errs...)
	}
	return nil
}

// Logout clears the persisted keys and the in-memory session. It makes no
// network call. Memory is reset even when the store fails.
func (g *Gate) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.session = Session{}

	var errs []error
	for _, key := range []string{storage.KeyToken, storage.KeyRole, storage.KeyIsVerified} {
		if err := g.store.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// VerifyEmail submits the emailed verification code
func (g *Gate) VerifyEmail(ctx context.Context, email, code string) error {
	_, err := api.Post[map[string]any](ctx, g.client, "/auth/verify", map[string]string{
		"email": email,
		"code":  code,
	}, api.WithoutAuth())
	return err
}

// RequestVerification asks for a new verification code
func (g *Gate) RequestVerification(ctx context.Context, email string) error {
	_, err := api.Post[map[string]any](ctx, g.client, "/auth/request-verification", map[string]string{
		"email": email,
	}, api.WithoutAuth())
	return err
}

// ForgotPassword asks for a password reset code
func (g *Gate) ForgotPassword(ctx context.Context, email string) error {
	_, err := api.Post[map[string]any](ctx, g.client, "/auth/forgot-password", map[string]string{
		"email": email,
	}, api.WithoutAuth())
	return err
}

// ResetPassword sets a new password using an emailed code
func (g *Gate) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := api.Post[map[string]any](ctx, g.client, "/auth/reset-password", map[string]string{
		"email":       email,
		"code":        code,
		"newPassword": newPassword,
	}, api.WithoutAuth())
	return err
}
