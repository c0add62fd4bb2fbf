// Package rest implements the access.Gateway over the portal's HTTP API.
// It owns the token pair for the lifetime of a session: callers hand it
// credentials once and it keeps the access token fresh in the background.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"academy/internal/access"
	"academy/internal/domain/entity"
	domainerrors "academy/internal/domain/errors"
	"academy/internal/errors"

	"github.com/google/uuid"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRefreshMargin = time.Minute
)

// Config carries the knobs for a REST gateway.
type Config struct {
	// BaseURL is the portal API root, e.g. "http://localhost:8080".
	BaseURL string
	// HTTPClient is optional; a client with a sane timeout is used when nil.
	HTTPClient *http.Client
	// RefreshMargin is how long before access token expiry the background
	// refresh fires. Defaults to one minute.
	RefreshMargin time.Duration
	// Session seeds the gateway with a session persisted from an earlier
	// run. CurrentSession returns it until it is replaced or ended.
	Session *entity.Session
}

// Gateway talks to the portal API and satisfies access.Gateway.
type Gateway struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	margin  time.Duration

	mu      sync.Mutex
	session *entity.Session

	events chan access.SessionEvent
	kick   chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

var _ access.Gateway = (*Gateway)(nil)

// New builds a gateway against the portal API and starts its background
// token refresh loop. Call Close when done.
func New(cfg Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	margin := cfg.RefreshMargin
	if margin <= 0 {
		margin = defaultRefreshMargin
	}

	g := &Gateway{
		baseURL: cfg.BaseURL,
		client:  client,
		logger:  logger,
		margin:  margin,
		session: cfg.Session,
		events:  make(chan access.SessionEvent, 8),
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	g.wg.Add(1)
	go g.refreshLoop()

	return g
}

// Close stops the refresh loop and closes the event channel.
func (g *Gateway) Close() {
	close(g.done)
	g.wg.Wait()
}

// --- wire shapes, mirroring the portal's response envelope ---

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *errorInfo      `json:"error,omitempty"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

type sessionPayload struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Account      struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"account"`
}

type refreshPayload struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type profilePayload struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Entitlement string `json:"entitlement"`
}

func (g *Gateway) CreateAccount(ctx context.Context, email, password, displayName string) error {
	body := map[string]string{"email": email, "password": password}
	if displayName != "" {
		body["displayName"] = displayName
	}

	return g.do(ctx, http.MethodPost, "/auth/register", "", body, nil)
}

func (g *Gateway) Authenticate(ctx context.Context, email, password string) (*entity.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var payload sessionPayload
	if err := g.do(ctx, http.MethodPost, "/auth/login", "", body, &payload); err != nil {
		return nil, err
	}

	session, err := payload.toSession()
	if err != nil {
		return nil, err
	}

	g.setSession(session)

	return cloneSession(session), nil
}

func (g *Gateway) InvalidateSession(ctx context.Context, session *entity.Session) error {
	g.setSession(nil)

	body := map[string]string{"refreshToken": session.RefreshToken}

	return g.do(ctx, http.MethodPost, "/auth/logout", "", body, nil)
}

func (g *Gateway) CurrentSession(_ context.Context) (*entity.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return cloneSession(g.session), nil
}

func (g *Gateway) SessionEvents() <-chan access.SessionEvent {
	return g.events
}

func (g *Gateway) FetchProfile(ctx context.Context, session *entity.Session) (*entity.Profile, error) {
	var payload profilePayload
	if err := g.do(ctx, http.MethodGet, "/portal/profile", session.AccessToken, nil, &payload); err != nil {
		return nil, err
	}

	return payload.toProfile()
}

func (g *Gateway) WriteTier(ctx context.Context, session *entity.Session, tier entity.Entitlement) error {
	body := map[string]string{"tier": tier.String()}

	return g.do(ctx, http.MethodPut, "/portal/profile/tier", session.AccessToken, body, nil)
}

func (g *Gateway) UpgradeTier(ctx context.Context, session *entity.Session) error {
	return g.do(ctx, http.MethodPost, "/portal/profile/upgrade", session.AccessToken, nil, nil)
}

// do performs one API call and decodes the envelope's data into out.
// Transport failures surface as ErrRemoteUnavailable; application failures
// come back as the sentinel matching the envelope's error code.
func (g *Gateway) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domainerrors.ErrRemoteUnavailable.WrapMessage(err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domainerrors.ErrRemoteUnavailable.WrapMessage("failed to read response body")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domainerrors.ErrRemoteUnavailable.WrapMessage("malformed response envelope")
	}

	if !env.Success {
		return mapRemoteError(resp.StatusCode, env.Error, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "failed to decode response data")
		}
	}

	return nil
}

// mapRemoteError turns the portal's business error codes back into the
// shared sentinels. When a response carries no code at all the message is
// sniffed as a last resort; that path is fragile and exists only for
// remotes that predate the envelope's error codes. Unknown codes fall back
// on the HTTP status class.
func mapRemoteError(status int, info *errorInfo, message string) error {
	code := ""
	details := ""
	if info != nil {
		code = info.Code
		details = info.Details
	}
	if code == "" {
		if sniffed := sniffRemoteError(message); sniffed != nil {
			return sniffed
		}
	}

	sentinels := map[string]*domainerrors.BaseError{
		"VALIDATION_FAILED":   domainerrors.ErrValidationFailed,
		"PASSWORD_STRENGTH":   domainerrors.ErrPasswordStrength,
		"ALREADY_REGISTERED":  domainerrors.ErrAlreadyRegistered,
		"INVALID_CREDENTIALS": domainerrors.ErrInvalidCredentials,
		"EMAIL_NOT_CONFIRMED": domainerrors.ErrEmailNotConfirmed,
		"SESSION_INVALID":     domainerrors.ErrSessionInvalid,
		"PROFILE_NOT_FOUND":   domainerrors.ErrProfileNotFound,
		"ACCOUNT_NOT_FOUND":   domainerrors.ErrAccountNotFound,
		"TIER_NOT_SELECTED":   domainerrors.ErrTierNotSelected,
		"UPGRADE_REQUIRED":    domainerrors.ErrUpgradeRequired,
	}
	if sentinel, ok := sentinels[code]; ok {
		if details != "" {
			return sentinel.WrapMessage(details)
		}

		return sentinel
	}

	switch {
	case status >= http.StatusInternalServerError:
		return domainerrors.ErrRemoteUnavailable
	case status == http.StatusUnauthorized:
		return domainerrors.ErrSessionInvalid
	case status == http.StatusNotFound:
		return domainerrors.ErrNotFound
	default:
		return errors.Errorf("remote call failed with status %d code %q", status, code)
	}
}

// sniffRemoteError matches well-known phrases in a codeless error message.
func sniffRemoteError(message string) error {
	needle := strings.ToLower(message)
	switch {
	case needle == "":
		return nil
	case strings.Contains(needle, "already registered"):
		return domainerrors.ErrAlreadyRegistered
	case strings.Contains(needle, "invalid login") || strings.Contains(needle, "incorrect"):
		return domainerrors.ErrInvalidCredentials
	case strings.Contains(needle, "not confirmed"):
		return domainerrors.ErrEmailNotConfirmed
	case strings.Contains(needle, "no profile"):
		return domainerrors.ErrProfileNotFound
	default:
		return nil
	}
}

// --- session bookkeeping and background refresh ---

func (g *Gateway) setSession(session *entity.Session) {
	g.mu.Lock()
	g.session = session
	g.mu.Unlock()

	select {
	case g.kick <- struct{}{}:
	default:
	}
}

// refreshLoop keeps the access token fresh. It wakes up shortly before the
// token expires, trades the refresh token for a new access token and
// reports the rotation as a SessionRefreshed event. A rejected refresh
// token ends the session.
func (g *Gateway) refreshLoop() {
	defer g.wg.Done()
	defer close(g.events)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		g.mu.Lock()
		session := g.session
		g.mu.Unlock()

		if session == nil {
			// Nothing to refresh; wait for a session or shutdown.
			select {
			case <-g.done:
				return
			case <-g.kick:
				continue
			}
		}

		wait := time.Until(session.ExpiresAt.Add(-g.margin))
		if wait < 0 {
			wait = 0
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-g.done:
			return
		case <-g.kick:
			continue
		case <-timer.C:
			g.refreshOnce(session)
		}
	}
}

func (g *Gateway) refreshOnce(session *entity.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	body := map[string]string{"refreshToken": session.RefreshToken}

	var payload refreshPayload
	err := g.do(ctx, http.MethodPost, "/auth/refresh", "", body, &payload)
	if err != nil && errors.Is(err, domainerrors.ErrRemoteUnavailable) {
		g.logger.Warn("Token refresh hit an unavailable remote, will retry", slog.Any("error", err))
		g.holdOff(session)

		return
	}
	if err != nil {
		// The refresh token itself was rejected; the session is over.
		g.logger.Warn("Refresh token rejected, ending session", slog.Any("error", err))
		g.setSession(nil)
		g.emit(access.SessionEvent{Type: access.SessionEnded})

		return
	}

	refreshed := *session
	refreshed.AccessToken = payload.AccessToken
	refreshed.ExpiresAt = payload.ExpiresAt

	g.mu.Lock()
	stale := g.session == nil || g.session.RefreshToken != session.RefreshToken
	if !stale {
		g.session = &refreshed
	}
	g.mu.Unlock()
	if stale {
		return
	}

	g.emit(access.SessionEvent{Type: access.SessionRefreshed, Session: cloneSession(&refreshed)})
}

// holdOff pushes the stored expiry forward a little so the loop retries
// instead of spinning against an unreachable remote.
func (g *Gateway) holdOff(session *entity.Session) {
	g.mu.Lock()
	if g.session != nil && g.session.RefreshToken == session.RefreshToken {
		updated := *g.session
		updated.ExpiresAt = time.Now().Add(g.margin + 5*time.Second)
		g.session = &updated
	}
	g.mu.Unlock()
}

func (g *Gateway) emit(ev access.SessionEvent) {
	select {
	case g.events <- ev:
	case <-g.done:
	}
}

func (p sessionPayload) toSession() (*entity.Session, error) {
	accountID, err := uuid.Parse(p.Account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "malformed account id in session payload")
	}

	return &entity.Session{
		AccountID:    accountID,
		Email:        p.Account.Email,
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    p.ExpiresAt,
	}, nil
}

func (p profilePayload) toProfile() (*entity.Profile, error) {
	accountID, err := uuid.Parse(p.AccountID)
	if err != nil {
		return nil, errors.Wrap(err, "malformed account id in profile payload")
	}

	return &entity.Profile{
		AccountID:   accountID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Entitlement: entity.ParseEntitlement(p.Entitlement),
	}, nil
}

func cloneSession(s *entity.Session) *entity.Session {
	if s == nil {
		return nil
	}
	cp := *s

	return &cp
}
