package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"leave-portal/internal/domain"
	"leave-portal/internal/metrics"
	sessionerrors "leave-portal/internal/session/errors"
	"leave-portal/internal/shared/apperror"
	"leave-portal/internal/shared/audit"

	"go.uber.org/zap"
)

const (
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultWarningWindow = 30 * time.Second

	// storeTimeout bounds slot I/O that no caller context covers.
	storeTimeout = 5 * time.Second

	reasonIdleTimeout  = "idle timeout"
	reasonTokenExpired = "token expired"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Guard owns the authentication state of one page session: it decodes the
// stored token, tracks idle time and answers role checks for protected views.
//
// The idle timer is a single one-shot timer armed for the next deadline
// (warning start, idle expiry or token exp) and re-armed on every activity.
//
// Store I/O never runs under mu. ioMu orders slot writes so that a clear for
// an ended session cannot wipe a newer login; it is always taken before mu.
type Guard struct {
	mu   sync.Mutex
	ioMu sync.Mutex

	store         Store
	auth          Authenticator
	clock         Clock
	idleTimeout   time.Duration
	warningWindow time.Duration
	audit         audit.Logger
	logger        *zap.Logger

	state        State
	current      *Session
	lastActivity time.Time
	timer        Timer
	gen          uint64
	epoch        uint64
	closed       bool

	nextSub     int
	subscribers map[int]func(Event)
}

type Option func(*Guard)

func WithAuthenticator(a Authenticator) Option {
	return func(g *Guard) { g.auth = a }
}

func WithClock(c Clock) Option {
	return func(g *Guard) { g.clock = c }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.idleTimeout = d
		}
	}
}

func WithWarningWindow(d time.Duration) Option {
	return func(g *Guard) {
		if d >= 0 {
			g.warningWindow = d
		}
	}
}

func WithAuditLogger(l audit.Logger) Option {
	return func(g *Guard) { g.audit = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l.Named("session.guard")
		}
	}
}

func NewGuard(store Store, opts ...Option) *Guard {
	g := &Guard{
		store:         store,
		clock:         realClock{},
		idleTimeout:   DefaultIdleTimeout,
		warningWindow: DefaultWarningWindow,
		audit:         audit.Nop{},
		logger:        zap.L().Named("session.guard"),
		state:         StateInitializing,
		subscribers:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.warningWindow >= g.idleTimeout {
		g.warningWindow = 0
	}
	return g
}

// Initialize reads the stored session and settles into Authenticated or
// Unauthenticated. It never returns an error: a missing, unreadable or
// expired token just means the user has to sign in.
func (g *Guard) Initialize(ctx context.Context) State {
	stored, err := g.store.Get(ctx)

	g.mu.Lock()
	var (
		events []Event
		clear  bool
	)
	switch {
	case errors.Is(err, ErrNoSession):
		g.logger.Debug("no stored session")
		g.setStateLocked(StateUnauthenticated)
	case err != nil:
		g.logger.Warn("stored session unreadable, clearing", zap.Error(err))
		clear = true
		g.setStateLocked(StateUnauthenticated)
	default:
		now := g.clock.Now()
		claims, derr := DecodeToken(stored.Token, now)
		if derr != nil {
			g.logger.Info("stored token rejected, clearing", zap.Error(derr))
			clear = true
			g.setStateLocked(StateUnauthenticated)
			break
		}
		sess := mergeClaims(stored, claims)
		events = g.enterAuthenticatedLocked(sess, now)
	}
	state, epoch := g.state, g.epoch
	g.mu.Unlock()

	if clear {
		g.clearStore(ctx, epoch)
	}
	g.emit(events)
	return state
}

// Login validates the credentials, exchanges them for a token and makes the
// result the only stored session.
func (g *Guard) Login(ctx context.Context, email, password string) (Session, error) {
	req := LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := apperror.Validator().Struct(req); err != nil {
		return Session{}, apperror.MapValidationError(err)
	}
	if g.auth == nil {
		return Session{}, sessionerrors.ErrNoAuthenticator
	}

	res, err := g.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		g.logger.Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		return Session{}, err
	}

	now := g.clock.Now()
	claims, err := DecodeToken(res.Token, now)
	if err != nil {
		g.logger.Warn("login returned unusable token", zap.Error(err))
		return Session{}, apperror.Wrap(err, sessionerrors.ErrInvalidToken.Code, sessionerrors.ErrInvalidToken.Message, sessionerrors.ErrInvalidToken.HTTPStatus)
	}

	stored := Session{
		Token:  res.Token,
		Email:  res.Email,
		Name:   res.Name,
		UserID: res.UserID,
	}
	if r, ok := domain.ParseRole(res.Role); ok {
		stored.Role = r
	}
	sess := mergeClaims(stored, claims)

	g.ioMu.Lock()
	if err := g.store.Set(ctx, sess); err != nil {
		g.ioMu.Unlock()
		g.logger.Error("persist session failed", zap.Error(err))
		return Session{}, apperror.Wrap(err, apperror.CodeInternalError, "could not save your session", http.StatusInternalServerError)
	}

	g.mu.Lock()
	g.closed = false
	events := g.enterAuthenticatedLocked(sess, now)
	g.mu.Unlock()
	g.ioMu.Unlock()

	g.audit.Log(ctx, audit.Entry{
		Action:  audit.ActionLogin,
		Message: "user signed in",
		Meta:    map[string]any{"email": sess.Email, "role": sess.Role.String()},
	})
	g.logger.Info("login success", zap.String("email", sess.Email), zap.String("role", sess.Role.String()))
	g.emit(events)
	return sess, nil
}

// CurrentSession returns the active session, if any.
func (g *Guard) CurrentSession() (Session, bool) {
	g.mu.Lock()
	events := g.evaluateLocked(g.clock.Now())
	var (
		sess Session
		ok   bool
	)
	if g.state.Active() && g.current != nil {
		sess, ok = *g.current, true
	}
	g.mu.Unlock()

	g.emit(events)
	return sess, ok
}

// Authorize checks the session's role against required using the role
// hierarchy: any role at or above required is allowed. An empty required
// role only needs an authenticated session.
func (g *Guard) Authorize(required domain.Role) Decision {
	g.mu.Lock()
	events := g.evaluateLocked(g.clock.Now())
	d := Decision{Required: required}
	switch {
	case !g.state.Active() || g.current == nil:
		d.Reason = ReasonUnauthenticated
	default:
		d.Actual = g.current.Role
		if required == "" || d.Actual.Satisfies(required) {
			d.Allowed = true
			d.Reason = ReasonAllowed
		} else {
			d.Reason = ReasonInsufficientRole
		}
	}
	g.mu.Unlock()

	g.emit(events)
	if d.Reason == ReasonInsufficientRole {
		g.logger.Debug("authorization denied",
			zap.String("required", required.String()),
			zap.String("role", d.Actual.String()),
		)
	}
	return d
}

// RecordActivity resets the idle clock. Activity after the deadline does not
// revive an expired session.
func (g *Guard) RecordActivity() {
	g.mu.Lock()
	now := g.clock.Now()
	events := g.evaluateLocked(now)
	if g.state.Active() {
		g.lastActivity = now
		events = append(events, g.evaluateLocked(now)...)
	}
	g.mu.Unlock()

	g.emit(events)
}

// ExtendSession is the explicit "stay signed in" action from the warning.
func (g *Guard) ExtendSession() error {
	g.mu.Lock()
	now := g.clock.Now()
	events := g.evaluateLocked(now)
	if !g.state.Active() {
		g.mu.Unlock()
		g.emit(events)
		return sessionerrors.ErrSessionExpired
	}
	g.lastActivity = now
	events = append(events, g.evaluateLocked(now)...)
	g.mu.Unlock()

	g.emit(events)
	return nil
}

// Status evaluates the idle clock at the current instant.
func (g *Guard) Status() Status {
	g.mu.Lock()
	now := g.clock.Now()
	events := g.evaluateLocked(now)
	st := Status{State: g.state, LastActivity: g.lastActivity}
	if g.state.Active() && g.current != nil {
		st.Email = g.current.Email
		st.Role = g.current.Role
		st.Remaining = g.remainingLocked(now)
	}
	g.mu.Unlock()

	g.emit(events)
	return st
}

// Logout ends the session on the user's request.
func (g *Guard) Logout(ctx context.Context) {
	g.endSession(ctx, audit.ActionLogout, "user signed out")
}

// ForceLogout ends the session because the API rejected the token.
func (g *Guard) ForceLogout(ctx context.Context, reason string) {
	g.endSession(ctx, audit.ActionForcedLogout, reason)
}

func (g *Guard) endSession(ctx context.Context, action, message string) {
	g.mu.Lock()
	email := ""
	if g.current != nil {
		email = g.current.Email
	}
	wasActive := g.state.Active()
	epoch := g.epoch
	g.resetLocked()
	g.setStateLocked(StateUnauthenticated)
	now := g.clock.Now()
	g.mu.Unlock()

	g.clearStore(ctx, epoch)

	if !wasActive {
		return
	}
	g.audit.Log(ctx, audit.Entry{
		Action:  action,
		Message: message,
		Meta:    map[string]any{"email": email},
	})
	g.logger.Info("session ended", zap.String("action", action), zap.String("email", email))
	g.emit([]Event{{Type: EventLoggedOut, At: now, Reason: message}})
}

// Close stops the idle timer. Call it when the page session is torn down.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.stopTimerLocked()
}

// Subscribe registers fn for state-change events and returns a function
// that removes it. fn runs outside the guard's lock.
func (g *Guard) Subscribe(fn func(Event)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextSub
	g.nextSub++
	g.subscribers[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subscribers, id)
	}
}

func (g *Guard) enterAuthenticatedLocked(sess Session, now time.Time) []Event {
	g.epoch++
	g.current = &sess
	g.lastActivity = now
	g.setStateLocked(StateAuthenticated)
	events := []Event{{Type: EventAuthenticated, At: now}}
	return append(events, g.evaluateLocked(now)...)
}

// evaluateLocked derives the state from the token exp and the idle clock and
// re-arms the timer.
func (g *Guard) evaluateLocked(now time.Time) []Event {
	if !g.state.Active() {
		return nil
	}
	if g.tokenExpiredLocked(now) {
		return g.expireLocked(now, reasonTokenExpired)
	}

	remaining := g.remainingLocked(now)
	var events []Event
	switch {
	case remaining <= 0:
		return g.expireLocked(now, reasonIdleTimeout)
	case remaining <= g.warningWindow:
		if g.state != StateWarning {
			g.setStateLocked(StateWarning)
			events = append(events, Event{Type: EventWarning, At: now, Remaining: remaining})
		}
	default:
		if g.state == StateWarning {
			g.setStateLocked(StateAuthenticated)
			events = append(events, Event{Type: EventExtended, At: now, Remaining: remaining})
		}
	}
	g.armLocked(now, remaining)
	return events
}

func (g *Guard) tokenExpiredLocked(now time.Time) bool {
	return g.current != nil && !g.current.ExpiresAt.IsZero() && !now.Before(g.current.ExpiresAt)
}

func (g *Guard) remainingLocked(now time.Time) time.Duration {
	remaining := g.idleTimeout - now.Sub(g.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (g *Guard) armLocked(now time.Time, remaining time.Duration) {
	g.stopTimerLocked()
	if g.closed {
		return
	}
	next := remaining
	if g.state == StateAuthenticated {
		next = remaining - g.warningWindow
	}
	if g.current != nil && !g.current.ExpiresAt.IsZero() {
		if untilExp := g.current.ExpiresAt.Sub(now); untilExp < next {
			next = untilExp
		}
	}
	gen := g.gen
	g.timer = g.clock.AfterFunc(next, func() { g.onTimer(gen) })
}

func (g *Guard) onTimer(gen uint64) {
	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return
	}
	events := g.evaluateLocked(g.clock.Now())
	g.mu.Unlock()

	g.emit(events)
}

// expireLocked ends the session in memory. The slot is cleared and the
// expiry audited by emit, once mu is released.
func (g *Guard) expireLocked(now time.Time, reason string) []Event {
	email := ""
	if g.current != nil {
		email = g.current.Email
	}
	epoch := g.epoch
	g.resetLocked()
	g.setStateLocked(StateUnauthenticated)

	g.logger.Info("session expired", zap.String("email", email), zap.String("reason", reason))
	return []Event{{Type: EventExpired, At: now, Reason: reason, email: email, epoch: epoch}}
}

func (g *Guard) finishExpiry(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	g.clearStore(ctx, e.epoch)
	g.audit.Log(ctx, audit.Entry{
		Action:  audit.ActionSessionExpired,
		Message: "session " + e.Reason,
		Meta:    map[string]any{"email": e.email, "idle_timeout": g.idleTimeout.String()},
	})
}

func (g *Guard) resetLocked() {
	g.stopTimerLocked()
	g.current = nil
	g.lastActivity = time.Time{}
}

func (g *Guard) stopTimerLocked() {
	g.gen++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// clearStore empties the slot unless a login has replaced the session that
// was current at epoch. Must be called without mu held.
func (g *Guard) clearStore(ctx context.Context, epoch uint64) {
	g.ioMu.Lock()
	defer g.ioMu.Unlock()

	g.mu.Lock()
	replaced := g.epoch != epoch
	g.mu.Unlock()
	if replaced {
		g.logger.Debug("skip clearing slot, a newer login owns it")
		return
	}
	if err := g.store.Clear(ctx); err != nil {
		g.logger.Error("clear stored session failed", zap.Error(err))
	}
}

func (g *Guard) setStateLocked(s State) {
	if g.state == s {
		return
	}
	g.state = s
	metrics.SessionTransition(string(s))
}

func (g *Guard) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	for _, e := range events {
		if e.Type == EventExpired {
			g.finishExpiry(e)
		}
	}

	g.mu.Lock()
	subs := make([]func(Event), 0, len(g.subscribers))
	for _, fn := range g.subscribers {
		subs = append(subs, fn)
	}
	g.mu.Unlock()

	for _, e := range events {
		for _, fn := range subs {
			fn(e)
		}
	}
}

// mergeClaims prefers what the token says over what was stored next to it.
// A session without any recognisable role gets the lowest one.
func mergeClaims(stored Session, c Claims) Session {
	s := stored
	if c.Email != "" {
		s.Email = c.Email
	}
	if c.Role.Valid() {
		s.Role = c.Role
	}
	if !s.Role.Valid() {
		if r, ok := domain.ParseRole(string(s.Role)); ok {
			s.Role = r
		} else {
			s.Role = domain.RoleEmployee
		}
	}
	if c.Name != "" {
		s.Name = c.Name
	}
	if c.UserID != "" {
		s.UserID = c.UserID
	}
	s.IssuedAt = c.IssuedAt
	s.ExpiresAt = c.ExpiresAt
	return s
}
