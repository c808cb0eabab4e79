package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthClient struct {
	mu         sync.Mutex
	users      map[string]*domain.SessionUser
	passwords  map[string]string
	registered int
	err        error
}

func newMockAuthClient() *mockAuthClient {
	return &mockAuthClient{
		users: map[string]*domain.SessionUser{
			"ana@example.com": {ID: 1, Name: "Ana"},
			"ben@example.com": {ID: 2, Name: "Ben"},
		},
		passwords: map[string]string{
			"ana@example.com": "secret",
			"ben@example.com": "hunter2",
		},
	}
}

func (m *mockAuthClient) Register(_ context.Context, name, email, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[email]; ok {
		return domain.NewConflict("Email already exists")
	}
	m.registered++
	m.users[email] = &domain.SessionUser{ID: int64(len(m.users) + 1), Name: name}
	m.passwords[email] = password
	return nil
}

func (m *mockAuthClient) Login(_ context.Context, email, password string) (*domain.SessionUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok || m.passwords[email] != password {
		return nil, domain.NewUnauthorized("invalid email or password")
	}
	copied := *u
	return &copied, nil
}

func newGate(t *testing.T) (*Gate, storage.Store, *mockAuthClient) {
	store := storage.NewMemoryStore()
	client := newMockAuthClient()
	g, err := NewGate(context.Background(), store, client)
	require.NoError(t, err)
	return g, store, client
}

func TestLogin_PersistsSessionAndSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	g, store, client := newGate(t)

	user, err := g.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, &domain.SessionUser{ID: 1, Name: "Ana"}, user)

	data, err := store.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Ana"}`, string(data))

	restored, err := NewGate(ctx, store, client)
	require.NoError(t, err)
	assert.Equal(t, user, restored.Current())
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newGate(t)

	_, err := g.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	_, err = g.Login(ctx, "ben@example.com", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "Ben", g.Current().Name)
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newGate(t)
	_, err := g.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)

	_, err = g.Login(ctx, "ben@example.com", "wrong")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, "Ana", g.Current().Name)
}

func TestLogin_MissingFields(t *testing.T) {
	g, _, _ := newGate(t)

	_, err := g.Login(context.Background(), " ", "")

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, []string{"email", "password"}, derr.Fields)
	assert.Nil(t, g.Current())
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		email    string
		password string
		wantKind domain.Kind
		wantCall bool
	}{
		{"new account", "Cara", "cara@example.com", "pw", domain.KindUnknown, true},
		{"duplicate email", "Ana Two", "ana@example.com", "pw", domain.KindConflict, false},
		{"blank name", " ", "dan@example.com", "pw", domain.KindValidation, false},
		{"missing password", "Dan", "dan@example.com", "", domain.KindValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, client := newGate(t)

			err := g.Register(context.Background(), tt.user, tt.email, tt.password)

			if tt.wantKind == domain.KindUnknown {
				require.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
			}
			assert.Equal(t, tt.wantCall, client.registered == 1)
			// registering never logs anybody in
			assert.Nil(t, g.Current())
		})
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	g, store, _ := newGate(t)
	require.NoError(t, store.Put(ctx, "yankicks_cart", []byte(`[{"id":1,"quantity":1}]`)))
	_, err := g.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)

	done, err := g.Logout(ctx, func() bool { return false })
	require.NoError(t, err)
	assert.False(t, done)
	assert.NotNil(t, g.Current())

	done, err = g.Logout(ctx, func() bool { return true })
	require.NoError(t, err)
	assert.True(t, done)
	assert.Nil(t, g.Current())

	_, err = store.Get(ctx, SnapshotKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, "yankicks_cart")
	assert.NoError(t, err, "logout must keep the cart")
}

func TestRequireSession_RedirectsAnonymousShopper(t *testing.T) {
	g, _, _ := newGate(t)

	_, err := g.RequireSession("view your orders")

	var redirect *Redirect
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, LoginPage, redirect.To)
	assert.Equal(t, "Please login to view your orders.", err.Error())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAccount(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newGate(t)

	_, err := g.Account()
	assert.EqualError(t, err, "Please login to view your account.")

	_, err = g.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	greeting, err := g.Account()
	require.NoError(t, err)
	assert.Equal(t, "Welcome, Ana", greeting)
}

func TestNewGate_IgnoresCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(ctx, SnapshotKey, []byte("garbage")))

	g, err := NewGate(ctx, store, newMockAuthClient())

	require.NoError(t, err)
	assert.Nil(t, g.Current())
}

func TestLogin_TransportErrorPassesThrough(t *testing.T) {
	g, _, client := newGate(t)
	client.err = domain.NewConnectivity("api unreachable", errors.New("refused"))

	_, err := g.Login(context.Background(), "ana@example.com", "secret")

	assert.ErrorIs(t, err, domain.ErrConnectivity)
	assert.Nil(t, g.Current())
}
