// Package authflow drives the redirect-based login flow against the identity
// provider: requesting a provider login URL, handing the browser off to it,
// and exchanging the authorization code on return for a session.
//
// The full-page redirect is a hard context boundary. The two legs of the flow
// are independent operations that share state only through the persisted
// store (the pending role) and the callback URL (the code); no in-memory
// value survives from InitiateLogin to CompleteLogin.
package authflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/backendapi"
	"github.com/jobport/jobport/pkg/kvstore"
	"github.com/jobport/jobport/pkg/logger"
	"github.com/jobport/jobport/pkg/session"
)

// Phase is a state of the login flow machine.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseRedirecting      Phase = "redirecting"
	PhaseAwaitingCallback Phase = "awaiting_callback"
	PhaseExchanging       Phase = "exchanging"
	PhaseAuthenticated    Phase = "authenticated"
	PhaseFailed           Phase = "failed"
)

// pendingRoleKey stores the role declared before the redirect. It is written
// immediately before navigating away and consumed exactly once on callback.
const pendingRoleKey = "auth_pending_role"

// HomePath is the post-login navigation target.
const HomePath = "/"

// User-visible failure messages for errors the backend reported no detail for.
const (
	msgNetworkFailure = "network error during login"
	msgAuthFailure    = "authentication failed"
)

// Navigator moves the browser to a target location. The web layer adapts it
// to an HTTP redirect; navigating to an external URL unloads the page.
type Navigator interface {
	NavigateTo(url string) error
}

// Backend is the consumed slice of the backend auth API.
// *backendapi.Client satisfies it.
type Backend interface {
	LoginURL(ctx context.Context, role string) (string, error)
	ExchangeCode(ctx context.Context, code, role string) (*backendapi.ExchangeResult, error)
}

// Controller orchestrates the two legs of the login flow.
type Controller struct {
	backend  Backend
	sessions *session.State
	store    kvstore.Store
	log      *slog.Logger

	defaultRole session.Role

	mu    sync.Mutex
	phase Phase
}

// Option configures a Controller during construction.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDefaultRole overrides the role assumed when none was specified or the
// pending role did not survive.
func WithDefaultRole(role session.Role) Option {
	return func(c *Controller) {
		if role != "" {
			c.defaultRole = role
		}
	}
}

// New creates a flow controller. The store must be the same durable store the
// session state persists through, so the pending role survives the redirect.
func New(backend Backend, sessions *session.State, store kvstore.Store, opts ...Option) *Controller {
	c := &Controller{
		backend:     backend,
		sessions:    sessions,
		store:       store,
		log:         logger.Noop(),
		defaultRole: session.RoleStudent,
		phase:       PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current flow phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// InitiateLogin starts the first leg: persist the declared role, fetch the
// provider login URL, and navigate the browser to it. On failure the error is
// recorded on the session state and no navigation happens. A second initiation
// while one is still redirecting is rejected.
func (c *Controller) InitiateLogin(ctx context.Context, nav Navigator, role session.Role) error {
	c.mu.Lock()
	if c.phase == PhaseRedirecting {
		c.mu.Unlock()
		return ErrLoginInProgress
	}
	c.phase = PhaseRedirecting
	c.mu.Unlock()

	if role == "" {
		role = c.defaultRole
	}

	flowID := uuid.New()
	c.log.Info("initiating login",
		logger.Component("authflow"),
		logger.FlowID(flowID),
		logger.Role(role),
	)

	// The pending role must be durable before the page unloads; it is the
	// only continuation state besides the code in the callback URL.
	if err := c.store.Set(ctx, pendingRoleKey, string(role)); err != nil {
		c.fail(flowID, msgAuthFailure, err)
		return err
	}

	c.sessions.SetLoading(true)

	url, err := c.backend.LoginURL(ctx, string(role))
	if err != nil {
		c.fail(flowID, failureMessage(err), err)
		return err
	}

	if err := nav.NavigateTo(url); err != nil {
		c.fail(flowID, msgAuthFailure, err)
		return err
	}

	// Past this point the page has unloaded; the flow resumes as a fresh
	// CompleteLogin driven by the callback URL.
	c.setPhase(PhaseAwaitingCallback)
	return nil
}

// CompleteLogin runs the second leg: consume the pending role, exchange the
// authorization code, commit the session, and navigate home. All failures are
// recorded on the session state and returned; prior session state is left
// untouched on failure.
func (c *Controller) CompleteLogin(ctx context.Context, nav Navigator, code string) error {
	flowID := uuid.New()

	if code == "" {
		c.fail(flowID, msgAuthFailure, ErrMissingCode)
		return ErrMissingCode
	}

	role := c.pendingRole(ctx)

	c.sessions.SetLoading(true)
	c.setPhase(PhaseExchanging)

	// Consume-once: a retry after this point falls back to the default role
	// instead of re-reading stale intent.
	if err := c.store.Delete(ctx, pendingRoleKey); err != nil {
		c.log.Warn("failed to consume pending role",
			logger.Component("authflow"),
			logger.FlowID(flowID),
			logger.Error(err),
		)
	}

	result, err := c.backend.ExchangeCode(ctx, code, string(role))
	if err != nil {
		c.fail(flowID, failureMessage(err), err)
		return err
	}

	// Tokens before user, so a reader racing on IsAuthenticated never
	// observes a user without a matching authenticated flag.
	if err := c.sessions.SetTokens(ctx, result.Tokens); err != nil {
		c.fail(flowID, msgAuthFailure, err)
		return err
	}
	if err := c.sessions.SetUser(ctx, result.User); err != nil {
		// Roll back the half-committed pair; user and tokens exist together or not at all.
		_ = c.sessions.ClearAuth(ctx)
		c.fail(flowID, msgAuthFailure, err)
		return err
	}

	c.setPhase(PhaseAuthenticated)
	c.log.Info("login completed",
		logger.Component("authflow"),
		logger.FlowID(flowID),
		logger.UserID(result.User.ID),
		logger.Role(result.User.Role),
	)

	if err := nav.NavigateTo(HomePath); err != nil {
		c.log.Warn("post-login navigation failed",
			logger.Component("authflow"),
			logger.FlowID(flowID),
			logger.Error(err),
		)
	}

	c.sessions.SetLoading(false)
	return nil
}

// Logout tears the session down and resets the flow.
func (c *Controller) Logout(ctx context.Context) error {
	c.setPhase(PhaseIdle)
	return c.sessions.ClearAuth(ctx)
}

// pendingRole reads the role captured before the redirect, defaulting when
// the key is absent or unreadable.
func (c *Controller) pendingRole(ctx context.Context) session.Role {
	raw, err := c.store.Get(ctx, pendingRoleKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrKeyNotFound) {
			c.log.Warn("failed to read pending role",
				logger.Component("authflow"),
				logger.Error(err),
			)
		}
		return c.defaultRole
	}
	if raw == "" {
		return c.defaultRole
	}
	return session.Role(raw)
}

// fail records the failure on the session state and moves to PhaseFailed.
func (c *Controller) fail(flowID uuid.UUID, message string, err error) {
	c.setPhase(PhaseFailed)
	c.sessions.SetError(message)
	c.log.Error("login flow failed",
		logger.Component("authflow"),
		logger.FlowID(flowID),
		logger.Error(err),
	)
}

// failureMessage maps an operation error to its user-visible message:
// backend-reported detail verbatim, a generic message for a rejected
// exchange, and a transport message for everything else.
func failureMessage(err error) string {
	var apiErr *backendapi.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Detail
	case errors.Is(err, backendapi.ErrMissingAccessToken),
		errors.Is(err, backendapi.ErrMissingLoginURL):
		return msgAuthFailure
	default:
		return msgNetworkFailure
	}
}
