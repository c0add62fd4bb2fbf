package access

import (
	"context"
	"log/slog"
	"net/mail"
	"sync"

	"academy/internal/domain/entity"
	domainerrors "academy/internal/domain/errors"
	"academy/internal/errors"

	"golang.org/x/sync/singleflight"
)

const minPasswordLength = 8

// Controller owns the session and profile pair and keeps every consumer's
// view consistent. All exported methods are safe for concurrent use.
//
// The ordering guarantee is strict: snapshots are published to subscribers
// in the order the underlying changes were applied, and a consumer never
// observes an entitled state while a profile fetch is still in flight.
type Controller struct {
	gw     Gateway
	logger *slog.Logger

	mu      sync.Mutex
	session *entity.Session
	profile *entity.Profile
	loading bool

	subs   map[int]func(Snapshot)
	nextID int

	// publishMu serializes subscriber notification so snapshot order
	// matches mutation order.
	publishMu sync.Mutex

	fetchGroup singleflight.Group

	done chan struct{}
	wg   sync.WaitGroup
}

// NewController wires a controller to its gateway and starts consuming the
// gateway's session events. Call Close when done.
func NewController(gw Gateway, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		gw:     gw,
		logger: logger,
		subs:   make(map[int]func(Snapshot)),
		done:   make(chan struct{}),
	}

	c.wg.Add(1)
	go c.consumeSessionEvents()

	return c
}

// Close detaches all subscribers and stops the event loop. The gateway is
// not closed; its owner remains responsible for it.
func (c *Controller) Close() {
	close(c.done)
	c.wg.Wait()

	c.mu.Lock()
	c.subs = make(map[int]func(Snapshot))
	c.mu.Unlock()
}

// Start rehydrates a session left over from an earlier run. When one is
// found the profile fetch is awaited before Start returns, so callers see
// a settled state.
func (c *Controller) Start(ctx context.Context) error {
	session, err := c.gw.CurrentSession(ctx)
	if err != nil {
		c.logger.Warn("Session rehydration failed", slog.Any("error", err))

		return errors.Wrap(err, "failed to restore session")
	}
	if session == nil {
		return nil
	}

	// Loading is raised together with the session so subscribers never see
	// a transient tier-selection state before the fetch starts.
	c.mu.Lock()
	c.session = session
	c.loading = true
	c.mu.Unlock()
	c.publish()

	if err := c.FetchProfile(ctx); err != nil {
		// The session itself survives; the learner settles on the tier
		// selection screen until a refetch succeeds.
		c.logger.Warn("Profile fetch after rehydration failed", slog.Any("error", err))
	}

	return nil
}

// Subscribe registers fn and immediately delivers the current snapshot.
// The returned function detaches the subscriber; calling it twice is safe.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publishMu.Lock()
	fn(snap)
	c.publishMu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Snapshot returns the current state without subscribing.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// SignUp registers a new account with an optional display name. Validation
// failures are caught locally and never reach the gateway. A successful
// sign-up does not authenticate; the learner signs in afterwards.
func (c *Controller) SignUp(ctx context.Context, email, password, displayName string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	if err := c.gw.CreateAccount(ctx, email, password, displayName); err != nil {
		c.logger.Warn("Sign-up failed", slog.String("email", email), slog.Any("error", err))

		return err
	}

	c.logger.Info("Sign-up completed", slog.String("email", email))

	return nil
}

// SignIn authenticates and awaits the profile fetch before returning, so
// the caller lands on a settled state: entitled, or awaiting tier
// selection when no usable profile came back.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	session, err := c.gw.Authenticate(ctx, email, password)
	if err != nil {
		c.logger.Warn("Sign-in failed", slog.String("email", email), slog.Any("error", err))

		return err
	}

	c.mu.Lock()
	c.session = session
	c.profile = nil
	c.loading = true
	c.mu.Unlock()
	c.publish()

	if err := c.FetchProfile(ctx); err != nil {
		// Authentication succeeded; a failed fetch settles the learner on
		// the tier selection screen rather than undoing the sign-in.
		c.logger.Warn("Profile fetch after sign-in failed", slog.Any("error", err))
	}

	return nil
}

// SignOut revokes the session remotely and clears local state. The local
// clear is unconditional: whatever the remote side says, this client is
// signed out when SignOut returns. The remote error is returned for
// logging only.
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.profile = nil
	c.loading = false
	c.mu.Unlock()
	c.publish()

	if session == nil {
		return nil
	}

	if err := c.gw.InvalidateSession(ctx, session); err != nil {
		c.logger.Warn("Remote sign-out failed, local state already cleared", slog.Any("error", err))

		return errors.Wrap(err, "remote sign-out failed")
	}

	return nil
}

// FetchProfile loads the profile row for the current session. Concurrent
// calls coalesce into a single remote read; every caller receives that
// read's outcome. A missing row is not an error here: the state simply
// settles on AwaitingTierSelection. Without a session the call is a no-op
// that leaves the state Unauthenticated.
func (c *Controller) FetchProfile(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil
	}

	_, err, _ := c.fetchGroup.Do("profile", func() (any, error) {
		return nil, c.fetchProfileOnce(ctx, session)
	})

	return err
}

func (c *Controller) fetchProfileOnce(ctx context.Context, session *entity.Session) error {
	c.setLoading(true)
	defer c.setLoading(false)

	profile, err := c.gw.FetchProfile(ctx, session)
	if err != nil && errors.Is(err, domainerrors.ErrRemoteUnavailable) {
		// One bounded retry for transient failures; anything past that
		// settles the state instead of spinning.
		c.logger.Debug("Profile fetch retrying", slog.Any("error", err))
		profile, err = c.gw.FetchProfile(ctx, session)
	}

	c.mu.Lock()
	if c.session == nil || c.session.AccountID != session.AccountID {
		// Signed out or re-authenticated as someone else while the fetch
		// was in flight; drop the stale result.
		c.mu.Unlock()

		return nil
	}

	switch {
	case err == nil:
		c.profile = profile
	case errors.Is(err, domainerrors.ErrProfileNotFound):
		c.profile = nil
		err = nil
	default:
		c.profile = nil
	}
	c.mu.Unlock()

	if err != nil {
		return errors.Wrap(err, "profile fetch failed")
	}

	return nil
}

// SelectTier records the learner's chosen plan, then refetches the profile
// so local state reflects what the store actually holds. Selection is
// rejected while a fetch is in flight to preserve snapshot ordering.
func (c *Controller) SelectTier(ctx context.Context, tier entity.Entitlement) error {
	if !tier.Selectable() {
		return domainerrors.ErrValidationFailed.WrapMessage("tier must be basic or premium")
	}

	c.mu.Lock()
	session := c.session
	loading := c.loading
	c.mu.Unlock()
	if session == nil {
		return domainerrors.ErrSessionInvalid.WrapMessage("no session to select a tier for")
	}
	if loading {
		return domainerrors.ErrConflict.WrapMessage("a profile fetch is in flight")
	}

	if err := c.gw.WriteTier(ctx, session, tier); err != nil {
		c.logger.Warn("Tier selection failed", slog.String("tier", tier.String()), slog.Any("error", err))

		return err
	}

	return c.FetchProfile(ctx)
}

// UpgradeEntitlement moves the account to the premium plan and refetches.
// Upgrading an already premium account succeeds and changes nothing.
func (c *Controller) UpgradeEntitlement(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return domainerrors.ErrSessionInvalid.WrapMessage("no session to upgrade")
	}

	if err := c.gw.UpgradeTier(ctx, session); err != nil {
		c.logger.Warn("Upgrade failed", slog.Any("error", err))

		return err
	}

	return c.FetchProfile(ctx)
}

// --- internals ---

func (c *Controller) consumeSessionEvents() {
	defer c.wg.Done()

	events := c.gw.SessionEvents()
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.applySessionEvent(ev)
		}
	}
}

func (c *Controller) applySessionEvent(ev SessionEvent) {
	c.mu.Lock()
	switch ev.Type {
	case SessionRefreshed:
		if c.session == nil {
			// Refresh for a session this controller no longer holds.
			c.mu.Unlock()

			return
		}
		c.session = ev.Session
	case SessionEnded:
		c.session = nil
		c.profile = nil
		c.loading = false
	}
	c.mu.Unlock()
	c.publish()
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	changed := c.loading != v && c.session != nil
	if c.session != nil {
		c.loading = v
	}
	c.mu.Unlock()

	if changed {
		c.publish()
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:   computeState(c.session, c.profile, c.loading),
		Session: cloneSession(c.session),
		Profile: cloneProfile(c.profile),
	}
}

func (c *Controller) publish() {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.mu.Lock()
	snap := c.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func cloneSession(s *entity.Session) *entity.Session {
	if s == nil {
		return nil
	}
	cp := *s

	return &cp
}

func cloneProfile(p *entity.Profile) *entity.Profile {
	if p == nil {
		return nil
	}
	cp := *p

	return &cp
}

func validateCredentials(email, password string) error {
	if email == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("email format is invalid")
	}
	if len(password) < minPasswordLength {
		return domainerrors.ErrPasswordStrength.WrapMessage("password is too short")
	}

	return nil
}
