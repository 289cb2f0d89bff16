package session

import (
	"time"

	"leave-portal/internal/domain"
	sessionerrors "leave-portal/internal/session/errors"
)

// Session is the single stored login. A new login overwrites it.
type Session struct {
	Token     string      `json:"token"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Name      string      `json:"name,omitempty"`
	UserID    string      `json:"userId,omitempty"`
	IssuedAt  time.Time   `json:"issuedAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type State string

const (
	StateInitializing    State = "INITIALIZING"
	StateUnauthenticated State = "UNAUTHENTICATED"
	StateAuthenticated   State = "AUTHENTICATED"
	StateWarning         State = "WARNING"
)

// Active reports whether the state carries a usable session.
func (s State) Active() bool {
	return s == StateAuthenticated || s == StateWarning
}

type Status struct {
	State        State
	Email        string
	Role         domain.Role
	Remaining    time.Duration
	LastActivity time.Time
}

type Reason string

const (
	ReasonAllowed          Reason = "allowed"
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
)

// Decision is the outcome of a role check for a protected view.
type Decision struct {
	Allowed  bool
	Reason   Reason
	Required domain.Role
	Actual   domain.Role
}

func (d Decision) Err() error {
	switch d.Reason {
	case ReasonAllowed:
		return nil
	case ReasonUnauthenticated:
		return sessionerrors.ErrNotAuthenticated
	default:
		return sessionerrors.ErrInsufficientRole
	}
}

type EventType string

const (
	EventAuthenticated EventType = "AUTHENTICATED"
	EventWarning       EventType = "WARNING"
	EventExtended      EventType = "EXTENDED"
	EventExpired       EventType = "EXPIRED"
	EventLoggedOut     EventType = "LOGGED_OUT"
)

type Event struct {
	Type      EventType
	At        time.Time
	Remaining time.Duration
	Reason    string

	// set on EventExpired so the slot can be cleared after the guard unlocks
	email string
	epoch uint64
}

// LoginResult is what an Authenticator hands back after a successful login.
type LoginResult struct {
	Token  string
	Email  string
	Role   string
	Name   string
	UserID string
}
