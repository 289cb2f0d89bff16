package leave

import (
	"context"
	"errors"
	"sync"
	"time"

	"leave-portal/internal/domain"
	leaveerrors "leave-portal/internal/leave/errors"
	"leave-portal/internal/metrics"
	"leave-portal/internal/rbac"
	"leave-portal/internal/session"
	sessionerrors "leave-portal/internal/session/errors"
	"leave-portal/internal/shared/apperror"
	"leave-portal/internal/shared/contextutil"

	"go.uber.org/zap"
)

// SessionReader is the read side of the session guard.
type SessionReader interface {
	CurrentSession() (session.Session, bool)
}

// PermissionChecker is satisfied by rbac.Service.
type PermissionChecker interface {
	Permits(role domain.Role, resource, action string) bool
}

// TypeResolver looks up a leave type name by id, for the emergency rule.
type TypeResolver interface {
	Name(ctx context.Context, id domain.ID) (string, error)
}

// Controller runs the leave workflow against the API and keeps the cached
// list for the current view. Every successful mutation is followed by one
// refresh; a failed mutation leaves the cache untouched.
//
// Role and status checks here only spare the user a round trip. The server
// enforces them again.
type Controller struct {
	gateway  Gateway
	sessions SessionReader
	perms    PermissionChecker
	types    TypeResolver
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.Mutex
	scope    Scope
	leaves   []LeaveApplication
	loaded   bool
	seq      uint64
	inflight context.CancelFunc
	lastErr  error
}

type Option func(*Controller)

func WithTypeResolver(r TypeResolver) Option {
	return func(c *Controller) { c.types = r }
}

func WithNow(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l.Named("leave.controller")
		}
	}
}

func NewController(gateway Gateway, sessions SessionReader, perms PermissionChecker, opts ...Option) *Controller {
	c := &Controller{
		gateway:  gateway,
		sessions: sessions,
		perms:    perms,
		now:      time.Now,
		logger:   zap.L().Named("leave.controller"),
		scope:    AllScope(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scope returns the view the next refresh reads.
func (c *Controller) Scope() Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

// List refreshes and returns the current view.
func (c *Controller) List(ctx context.Context) ([]LeaveApplication, error) {
	return c.refresh(ctx)
}

// ListScope switches the view and refreshes it. Later refreshes, including
// the ones that follow mutations, keep using scope.
func (c *Controller) ListScope(ctx context.Context, scope Scope) ([]LeaveApplication, error) {
	c.mu.Lock()
	c.scope = scope
	c.mu.Unlock()
	return c.refresh(ctx)
}

// Leaves returns the cached list without a network call.
func (c *Controller) Leaves() ([]LeaveApplication, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LeaveApplication(nil), c.leaves...), c.loaded
}

// LastError is the inline message of the most recent failure, or "".
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastErr == nil {
		return ""
	}
	return apperror.Message(c.lastErr, c.lastErr.Error())
}

func (c *Controller) Get(ctx context.Context, id domain.ID) (LeaveApplication, error) {
	if _, err := c.requireSession(); err != nil {
		return LeaveApplication{}, err
	}
	if id.IsZero() {
		return LeaveApplication{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := c.gateway.Get(ctx, id)
	if err != nil {
		c.setLastErr(err)
		return LeaveApplication{}, err
	}
	return l, nil
}

func (c *Controller) Create(ctx context.Context, req CreateLeaveRequest) (LeaveApplication, error) {
	const op = "leave.create"
	log := contextutil.GetLogger(ctx, c.logger)

	sess, err := c.requireSession()
	if err != nil {
		return LeaveApplication{}, c.rejected(op, err)
	}
	if !c.perms.Permits(sess.Role, rbac.ResourceLeave, rbac.ActionCreate) {
		return LeaveApplication{}, c.rejected(op, leaveerrors.ErrNotAllowed)
	}

	req = req.normalized()
	if err := ValidateLeaveRequest(req, c.typeName(ctx, req), c.now()); err != nil {
		return LeaveApplication{}, c.rejected(op, err)
	}
	if req.UserID.IsZero() && sess.UserID != "" {
		req.UserID = domain.ID(sess.UserID)
	}

	log.Info("create leave requested",
		zap.String("user_id", req.UserID.String()),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)
	created, err := c.gateway.Create(ctx, req)
	if err != nil {
		return LeaveApplication{}, c.failed(ctx, op, err)
	}
	c.succeeded(ctx, op)
	return created, nil
}

func (c *Controller) Update(ctx context.Context, id domain.ID, req UpdateLeaveRequest) (LeaveApplication, error) {
	const op = "leave.update"
	log := contextutil.GetLogger(ctx, c.logger)

	sess, err := c.requireSession()
	if err != nil {
		return LeaveApplication{}, c.rejected(op, err)
	}
	if id.IsZero() {
		return LeaveApplication{}, c.rejected(op, leaveerrors.ErrInvalidLeaveID)
	}
	if err := c.checkEditable(sess, id); err != nil {
		return LeaveApplication{}, c.rejected(op, err)
	}

	req = req.normalized()
	if err := ValidateLeaveRequest(req, c.typeName(ctx, req), c.now()); err != nil {
		return LeaveApplication{}, c.rejected(op, err)
	}

	log.Info("update leave requested", zap.String("leave_id", id.String()))
	updated, err := c.gateway.Update(ctx, id, req)
	if err != nil {
		return LeaveApplication{}, c.failed(ctx, op, err)
	}
	c.succeeded(ctx, op)
	return updated, nil
}

func (c *Controller) Approve(ctx context.Context, id domain.ID) error {
	const op = "leave.approve"
	log := contextutil.GetLogger(ctx, c.logger)

	if err := c.checkDecision(id, rbac.ActionApprove); err != nil {
		return c.rejected(op, err)
	}

	log.Info("approve leave requested", zap.String("leave_id", id.String()))
	if err := c.gateway.Approve(ctx, id); err != nil {
		if ctx.Err() != nil {
			return c.abandoned(ctx, op, id, "abandoned")
		}
		return c.failed(ctx, op, err)
	}
	if ctx.Err() != nil {
		return c.abandoned(ctx, op, id, "ok")
	}
	c.succeeded(ctx, op)
	return nil
}

func (c *Controller) Reject(ctx context.Context, id domain.ID, reason string) error {
	const op = "leave.reject"
	log := contextutil.GetLogger(ctx, c.logger)

	if err := c.checkDecision(id, rbac.ActionReject); err != nil {
		return c.rejected(op, err)
	}
	reason, err := ValidateRejectReason(reason)
	if err != nil {
		return c.rejected(op, err)
	}

	log.Info("reject leave requested", zap.String("leave_id", id.String()), zap.Int("reason_len", len(reason)))
	if err := c.gateway.Reject(ctx, id, reason); err != nil {
		if ctx.Err() != nil {
			return c.abandoned(ctx, op, id, "abandoned")
		}
		return c.failed(ctx, op, err)
	}
	if ctx.Err() != nil {
		return c.abandoned(ctx, op, id, "ok")
	}
	c.succeeded(ctx, op)
	return nil
}

// Remove deletes a leave. Only admins get as far as the network.
func (c *Controller) Remove(ctx context.Context, id domain.ID) error {
	const op = "leave.delete"
	log := contextutil.GetLogger(ctx, c.logger)

	sess, err := c.requireSession()
	if err != nil {
		return c.rejected(op, err)
	}
	if id.IsZero() {
		return c.rejected(op, leaveerrors.ErrInvalidLeaveID)
	}
	if !c.perms.Permits(sess.Role, rbac.ResourceLeave, rbac.ActionDelete) {
		return c.rejected(op, leaveerrors.ErrNotAllowed)
	}

	log.Info("delete leave requested", zap.String("leave_id", id.String()))
	if err := c.gateway.Delete(ctx, id); err != nil {
		return c.failed(ctx, op, err)
	}
	c.succeeded(ctx, op)
	return nil
}

// Summary computes the dashboard counters over the cached list.
func (c *Controller) Summary() Summary {
	leaves, _ := c.Leaves()
	return Summarize(leaves, c.now())
}

func (c *Controller) refresh(ctx context.Context) ([]LeaveApplication, error) {
	if _, err := c.requireSession(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.inflight != nil {
		c.inflight()
	}
	rctx, cancel := context.WithCancel(ctx)
	c.inflight = cancel
	scope := c.scope
	c.mu.Unlock()
	defer cancel()

	items, err := c.gateway.List(rctx, scope)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		metrics.StaleRefresh()
		contextutil.GetLogger(ctx, c.logger).Debug("stale refresh discarded",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.seq),
		)
		return nil, leaveerrors.ErrRefreshSuperseded
	}
	c.inflight = nil
	if err != nil {
		c.lastErr = err
		return nil, err
	}
	c.leaves = items
	c.loaded = true
	c.lastErr = nil
	return append([]LeaveApplication(nil), items...), nil
}

func (c *Controller) requireSession() (session.Session, error) {
	sess, ok := c.sessions.CurrentSession()
	if !ok {
		return session.Session{}, sessionerrors.ErrNotAuthenticated
	}
	return sess, nil
}

// checkEditable mirrors the server rule: admins edit anything, everyone else
// only their own pending leaves. A leave missing from the cache is left to
// the server.
func (c *Controller) checkEditable(sess session.Session, id domain.ID) error {
	if c.perms.Permits(sess.Role, rbac.ResourceLeave, rbac.ActionUpdate) {
		return nil
	}
	if !c.perms.Permits(sess.Role, rbac.ResourceLeave, rbac.ActionUpdateOwn) {
		return leaveerrors.ErrNotAllowed
	}
	l, ok := c.cached(id)
	if !ok {
		return nil
	}
	if !l.OwnedBy(sess.UserID) || l.Status != StatusPending {
		return leaveerrors.ErrNotEditable
	}
	return nil
}

// checkDecision gates approve and reject: manager or above, and the cached
// copy, when there is one, must still be pending.
func (c *Controller) checkDecision(id domain.ID, action string) error {
	sess, err := c.requireSession()
	if err != nil {
		return err
	}
	if id.IsZero() {
		return leaveerrors.ErrInvalidLeaveID
	}
	if !c.perms.Permits(sess.Role, rbac.ResourceLeave, action) {
		return leaveerrors.ErrNotAllowed
	}
	if l, ok := c.cached(id); ok && l.Status != StatusPending {
		return leaveerrors.ErrNotPending
	}
	return nil
}

func (c *Controller) cached(id domain.ID) (LeaveApplication, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.leaves {
		if l.ID == id {
			return l, true
		}
	}
	return LeaveApplication{}, false
}

func (c *Controller) typeName(ctx context.Context, req LeaveRequest) string {
	if req.LeaveType != "" || c.types == nil || req.LeaveTypeID.IsZero() {
		return req.LeaveType
	}
	name, err := c.types.Name(ctx, req.LeaveTypeID)
	if err != nil {
		contextutil.GetLogger(ctx, c.logger).Debug("leave type lookup failed",
			zap.String("leave_type_id", req.LeaveTypeID.String()),
			zap.Error(err),
		)
		return ""
	}
	return name
}

func (c *Controller) setLastErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// rejected records a request stopped before the network.
func (c *Controller) rejected(op string, err error) error {
	metrics.Mutation(op, "rejected")
	c.setLastErr(err)
	return err
}

func (c *Controller) failed(ctx context.Context, op string, err error) error {
	metrics.Mutation(op, "failed")
	c.setLastErr(err)
	contextutil.GetLogger(ctx, c.logger).Warn("leave mutation failed",
		zap.String("operation", op),
		zap.String("message", apperror.Message(err, "")),
		zap.Error(err),
	)
	return err
}

// succeeded runs the follow-up refresh. Its failure does not undo the
// mutation; it only shows up in LastError.
func (c *Controller) succeeded(ctx context.Context, op string) {
	metrics.Mutation(op, "ok")
	c.setLastErr(nil)
	if _, err := c.refresh(ctx); err != nil && !errors.Is(err, leaveerrors.ErrRefreshSuperseded) {
		contextutil.GetLogger(ctx, c.logger).Warn("refresh after mutation failed",
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}

// abandoned drops the result of a call whose view went away. outcome is "ok"
// when the server answered, "abandoned" when the call was cut off in flight
// and the server may or may not have applied it.
func (c *Controller) abandoned(ctx context.Context, op string, id domain.ID, outcome string) error {
	metrics.Mutation(op, outcome)
	contextutil.GetLogger(ctx, c.logger).Info("view closed before response, skipping refresh",
		zap.String("operation", op),
		zap.String("leave_id", id.String()),
	)
	return leaveerrors.ErrAbandoned
}
