package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"academy/internal/access"
	"academy/internal/domain/entity"
	domainerrors "academy/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"code":    status,
		"message": "ok",
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    status,
		"message": "error",
		"error":   map[string]string{"code": code, "details": details},
	})
}

func sessionData(accountID uuid.UUID, email string) map[string]any {
	return map[string]any{
		"accessToken":  "access-token",
		"refreshToken": "refresh-token",
		"expiresAt":    time.Now().Add(15 * time.Minute).Format(time.RFC3339Nano),
		"account": map[string]any{
			"id":    accountID.String(),
			"email": email,
		},
	}
}

func newGateway(t *testing.T, cfg Config) *Gateway {
	t.Helper()

	g := New(cfg, nil)
	t.Cleanup(g.Close)

	return g
}

func TestGateway_Authenticate(t *testing.T) {
	accountID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "learning-rocks-2024" {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "")

			return
		}
		writeSuccess(w, http.StatusOK, sessionData(accountID, body["email"]))
	}))
	defer server.Close()

	g := newGateway(t, Config{BaseURL: server.URL})

	session, err := g.Authenticate(context.Background(), "learner@example.com", "learning-rocks-2024")

	require.NoError(t, err)
	assert.Equal(t, accountID, session.AccountID)
	assert.Equal(t, "learner@example.com", session.Email)
	assert.Equal(t, "access-token", session.AccessToken)
	assert.Equal(t, "refresh-token", session.RefreshToken)

	// The gateway now holds the session for rehydration.
	current, err := g.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, session.AccessToken, current.AccessToken)
}

func TestGateway_Authenticate_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "")
	}))
	defer server.Close()

	g := newGateway(t, Config{BaseURL: server.URL})

	_, err := g.Authenticate(context.Background(), "learner@example.com", "wrong")

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestGateway_Authenticate_EmailNotConfirmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusUnauthorized, "EMAIL_NOT_CONFIRMED", "confirm your email first")
	}))
	defer server.Close()

	g := newGateway(t, Config{BaseURL: server.URL})

	_, err := g.Authenticate(context.Background(), "learner@example.com", "learning-rocks-2024")

	// Stays distinguishable from a bad password.
	assert.True(t, errors.Is(err, domainerrors.ErrEmailNotConfirmed))
	assert.False(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestGateway_CreateAccount(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeSuccess(w, http.StatusCreated, nil)
	}))
	defer server.Close()

	g := newGateway(t, Config{BaseURL: server.URL})

	err := g.CreateAccount(context.Background(), "trader1@example.com", "Passw0rd!", "Trader One")

	require.NoError(t, err)
	assert.Equal(t, "trader1@example.com", got["email"])
	assert.Equal(t, "Trader One", got["displayName"])
}

func TestGateway_CreateAccount_AlreadyRegistered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		writeError(w, http.StatusConflict, "ALREADY_REGISTERED", "")
	}))
	defer server.Close()

	g := newGateway(t, Config{BaseURL: server.URL})

	err := g.CreateAccount(context.Background(), "taken@example.com", "learning-rocks-2024", "")

	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyRegistered))
}

func TestGateway_FetchProfile(t *testing.T) {
	accountID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/portal/profile", r.URL.Path)
		require.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		writeSuccess(w, http.StatusOK, map[string]any{
			"accountId":   accountID.String(),
			"displayName": "Casey",
			"entitlement": "premium",
		})
	}))
	defer server.Close()

	g := newGateway(t, Config{BaseURL: server.URL})

	profile, err := g.FetchProfile(context.Background(), &entity.Session{AccessToken: "access-token"})

	require.NoError(t, err)
	assert.Equal(t, accountID, profile.AccountID)
	assert.Equal(t, "Casey", profile.DisplayName)
	assert.Equal(t, entity.EntitlementPremium, profile.Entitlement)
}

func TestGateway_FetchProfile_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "")
	}))
	defer server.Close()

	g := newGateway(t, Config{BaseURL: server.URL})

	_, err := g.FetchProfile(context.Background(), &entity.Session{AccessToken: "access-token"})

	assert.True(t, errors.Is(err, domainerrors.ErrProfileNotFound))
}

func TestGateway_RemoteDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused from here on

	g := newGateway(t, Config{BaseURL: server.URL})

	err := g.CreateAccount(context.Background(), "learner@example.com", "learning-rocks-2024", "")

	assert.True(t, errors.Is(err, domainerrors.ErrRemoteUnavailable))
}

func TestGateway_MalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	g := newGateway(t, Config{BaseURL: server.URL})

	err := g.CreateAccount(context.Background(), "learner@example.com", "learning-rocks-2024", "")

	assert.True(t, errors.Is(err, domainerrors.ErrRemoteUnavailable))
}

func TestGateway_WriteTier(t *testing.T) {
	var gotTier string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/portal/profile/tier", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotTier = body["tier"]
		writeSuccess(w, http.StatusOK, nil)
	}))
	defer server.Close()

	g := newGateway(t, Config{BaseURL: server.URL})

	err := g.WriteTier(context.Background(), &entity.Session{AccessToken: "access-token"}, entity.EntitlementBasic)

	require.NoError(t, err)
	assert.Equal(t, "basic", gotTier)
}

func TestGateway_InvalidateSession_ClearsStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		writeSuccess(w, http.StatusOK, nil)
	}))
	defer server.Close()

	seed := &entity.Session{
		AccountID:    uuid.New(),
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	g := newGateway(t, Config{BaseURL: server.URL, Session: seed})

	require.NoError(t, g.InvalidateSession(context.Background(), seed))

	current, err := g.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestGateway_BackgroundRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "refresh-token", body["refreshToken"])
		writeSuccess(w, http.StatusOK, map[string]any{
			"accessToken": "rotated-access",
			"expiresAt":   time.Now().Add(time.Hour).Format(time.RFC3339Nano),
		})
	}))
	defer server.Close()

	seed := &entity.Session{
		AccountID:    uuid.New(),
		AccessToken:  "stale-access",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(50 * time.Millisecond),
	}
	g := newGateway(t, Config{
		BaseURL:       server.URL,
		RefreshMargin: 10 * time.Millisecond,
		Session:       seed,
	})

	select {
	case ev := <-g.SessionEvents():
		require.Equal(t, access.SessionRefreshed, ev.Type)
		require.NotNil(t, ev.Session)
		assert.Equal(t, "rotated-access", ev.Session.AccessToken)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a refresh event")
	}

	current, err := g.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "rotated-access", current.AccessToken)
}

func TestGateway_BackgroundRefresh_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusUnauthorized, "SESSION_INVALID", "refresh token revoked")
	}))
	defer server.Close()

	seed := &entity.Session{
		AccountID:    uuid.New(),
		RefreshToken: "revoked-token",
		ExpiresAt:    time.Now().Add(50 * time.Millisecond),
	}
	g := newGateway(t, Config{
		BaseURL:       server.URL,
		RefreshMargin: 10 * time.Millisecond,
		Session:       seed,
	})

	select {
	case ev := <-g.SessionEvents():
		assert.Equal(t, access.SessionEnded, ev.Type)
		assert.Nil(t, ev.Session)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a session-ended event")
	}

	current, err := g.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestMapRemoteError_FallsBackOnStatus(t *testing.T) {
	assert.True(t, errors.Is(mapRemoteError(http.StatusBadGateway, nil, ""), domainerrors.ErrRemoteUnavailable))
	assert.True(t, errors.Is(mapRemoteError(http.StatusUnauthorized, nil, ""), domainerrors.ErrSessionInvalid))
	assert.True(t, errors.Is(mapRemoteError(http.StatusNotFound, nil, ""), domainerrors.ErrNotFound))
	assert.Error(t, mapRemoteError(http.StatusTeapot, &errorInfo{Code: "SOMETHING_NEW"}, ""))
}

func TestMapRemoteError_SniffsCodelessMessages(t *testing.T) {
	// Responses without an error code fall back on message sniffing.
	err := mapRemoteError(http.StatusConflict, nil, "User already registered")
	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyRegistered))

	err = mapRemoteError(http.StatusBadRequest, nil, "Invalid login credentials")
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

	err = mapRemoteError(http.StatusBadRequest, nil, "Email not confirmed")
	assert.True(t, errors.Is(err, domainerrors.ErrEmailNotConfirmed))

	// A known code always wins over the message text.
	err = mapRemoteError(http.StatusConflict, &errorInfo{Code: "ALREADY_REGISTERED"}, "Invalid login credentials")
	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyRegistered))
}
