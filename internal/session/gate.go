package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/internal/storage"
	"github.com/Allengabo/Yankicks-web/pkg/logger"
	"go.uber.org/zap"
)

// SnapshotKey is where the logged in user lives in the store.
const SnapshotKey = "yankicks_user"

// LoginPage is where protected actions send an anonymous shopper.
const LoginPage = "login-register"

type AuthClient interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*domain.SessionUser, error)
}

// Redirect is returned by protected actions when nobody is logged in.
type Redirect struct {
	To      string
	Message string
}

func (r *Redirect) Error() string {
	return r.Message
}

func (r *Redirect) Unwrap() error {
	return domain.NewUnauthorized(r.Message)
}

// Gate tracks who is logged in on this client. At most one user is active.
type Gate struct {
	mu      sync.RWMutex
	store   storage.Store
	client  AuthClient
	current *domain.SessionUser
}

// NewGate restores any previous session from the store.
func NewGate(ctx context.Context, store storage.Store, client AuthClient) (*Gate, error) {
	g := &Gate{store: store, client: client}

	data, err := store.Get(ctx, SnapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return g, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session snapshot: %w", err)
	}

	var user domain.SessionUser
	if errUnmarshal := json.Unmarshal(data, &user); errUnmarshal != nil || user.ID <= 0 {
		logger.FromContext(ctx).Warn("discarding unreadable session snapshot")
		return g, nil
	}
	g.current = &user
	return g, nil
}

// Register creates an account. It does not log the user in.
func (g *Gate) Register(ctx context.Context, name, email, password string) error {
	var missing []string
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return domain.NewValidationError(missing...)
	}

	return g.client.Register(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
}

// Login replaces whatever session was active with the authenticated user.
func (g *Gate) Login(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	var missing []string
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(missing...)
	}

	user, err := g.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Put(ctx, SnapshotKey, data); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	g.current = user

	logger.FromContext(ctx).Info("user logged in", zap.Int64("user_id", user.ID))
	return user, nil
}

// Logout ends the session if confirm agrees. The cart is left alone.
// It reports whether the session was actually ended.
func (g *Gate) Logout(ctx context.Context, confirm func() bool) (bool, error) {
	if confirm != nil && !confirm() {
		return false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Delete(ctx, SnapshotKey); err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	g.current = nil
	return true, nil
}

func (g *Gate) Current() *domain.SessionUser {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return nil
	}
	u := *g.current
	return &u
}

// RequireSession returns the active user or a *Redirect to the login page.
// action completes the message "Please login to <action>.".
func (g *Gate) RequireSession(action string) (*domain.SessionUser, error) {
	if u := g.Current(); u != nil {
		return u, nil
	}
	return nil, &Redirect{To: LoginPage, Message: "Please login to " + action + "."}
}

// Account is the account page greeting.
func (g *Gate) Account() (string, error) {
	u, err := g.RequireSession("view your account")
	if err != nil {
		return "", err
	}
	return "Welcome, " + u.Name, nil
}
