package auth

import (
	"context"
	"sync"

	"github.com/jrsteele09/web-analyzer-client/apiclient"
	"github.com/jrsteele09/web-analyzer-client/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// State is the observable authentication state of a Manager.
type State int

const (
	Unauthenticated State = iota
	Loading
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Authenticator is the remote side of the manager, implemented by Service.
type Authenticator interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Logout(ctx context.Context, refreshToken string)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
}

// SessionStore persists the session record, implemented by sessions.Store.
type SessionStore interface {
	Save(ctx context.Context, user sessions.UserIdentity, token, tokenType string, options ...sessions.SaveOption) error
	Load(ctx context.Context) (*sessions.Record, bool)
	Clear(ctx context.Context) error
}

var (
	_ Authenticator = (*Service)(nil)
	_ SessionStore  = (*sessions.Store)(nil)
)

// Snapshot is a consistent copy of the manager's observable state.
type Snapshot struct {
	State State
	User  *sessions.UserIdentity
	Error string
}

// Manager owns the client-side authentication session: it rehydrates the
// stored session on start, drives login and registration, and exposes the
// current user, loading flag and last error.
//
// Every call applies its state change under one lock acquisition once the
// remote call has resolved. Overlapping calls are not serialised; each one
// holds the manager in Loading until it resolves.
type Manager struct {
	auth     Authenticator
	store    SessionStore
	logger   zerolog.Logger
	onChange func(Snapshot)

	lock     sync.RWMutex
	user     *sessions.UserIdentity
	inFlight int
	errMsg   string

	startOnce sync.Once
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger used for state transitions.
func WithManagerLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithStateListener registers fn to receive a snapshot after every state
// change. fn runs outside the manager lock.
func WithStateListener(fn func(Snapshot)) ManagerOption {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// NewManager creates a Manager in the Unauthenticated state. Call Start to
// rehydrate a stored session.
func NewManager(authenticator Authenticator, store SessionStore, options ...ManagerOption) (*Manager, error) {
	if authenticator == nil {
		return nil, errors.New("[NewManager] authenticator is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] session store is required")
	}
	m := &Manager{
		auth:   authenticator,
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Start rehydrates the stored session. Only the first call does any work. A
// missing or malformed record is cleared and leaves the manager
// Unauthenticated; no error is ever surfaced.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.update(func() { m.inFlight++ })

		record, ok := m.store.Load(ctx)
		if !ok {
			if err := m.store.Clear(ctx); err != nil {
				m.logger.Debug().Err(err).Msg("clear on rehydrate failed")
			}
		}

		m.update(func() {
			m.inFlight--
			if ok {
				user := *record.User
				m.user = &user
			}
		})
		m.logger.Debug().Bool("restored", ok).Msg("session rehydrated")
	})
}

// Login authenticates with the remote service and persists the session. On
// failure the user is unset, the error message is recorded and the error is
// returned so callers can react to it.
func (m *Manager) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	m.update(func() {
		m.inFlight++
		m.errMsg = ""
	})

	resp, err := m.auth.Login(ctx, req)
	if err != nil {
		err = apiclient.Normalize(err, LoginFailedMessage)
	} else {
		var opts []sessions.SaveOption
		if resp.RefreshToken != "" {
			opts = append(opts, sessions.WithRefreshToken(resp.RefreshToken))
		}
		if saveErr := m.store.Save(ctx, resp.User, resp.AccessToken, resp.TokenType, opts...); saveErr != nil {
			err = apiclient.Normalize(saveErr, LoginFailedMessage)
		}
	}

	m.update(func() {
		m.inFlight--
		if err != nil {
			m.user = nil
			m.errMsg = failureMessage(err, LoginFailedMessage)
			return
		}
		user := resp.User
		m.user = &user
	})

	if err != nil {
		m.logger.Debug().Err(err).Str("username", req.Username).Msg("login failed")
		return nil, err
	}
	m.logger.Debug().Str("username", resp.User.Username).Msg("logged in")
	return resp, nil
}

// Register creates an account. It never establishes a session and leaves the
// authenticated state as it was.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	m.update(func() {
		m.inFlight++
		m.errMsg = ""
	})

	resp, err := m.auth.Register(ctx, req)
	if err != nil {
		err = apiclient.Normalize(err, RegistrationFailedMessage)
	}

	m.update(func() {
		m.inFlight--
		if err != nil {
			m.errMsg = failureMessage(err, RegistrationFailedMessage)
		}
	})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout clears the stored record, the in-memory user and any error. It is
// purely local and safe to repeat.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("clear session failed")
	}
	m.update(func() {
		m.user = nil
		m.errMsg = ""
	})
}

// EndSession notifies the server on a best-effort basis and then logs out
// locally whatever the server answered.
func (m *Manager) EndSession(ctx context.Context) {
	var refreshToken string
	if record, ok := m.store.Load(ctx); ok {
		refreshToken = record.RefreshToken
	}
	m.auth.Logout(ctx, refreshToken)
	m.Logout(ctx)
}

// Refresh swaps the stored token pair for a new one using the stored refresh
// token. It is only ever invoked explicitly; the manager never refreshes on
// its own. The user identity is carried over from the current record.
func (m *Manager) Refresh(ctx context.Context) (*RefreshResponse, error) {
	record, ok := m.store.Load(ctx)
	if !ok || record.RefreshToken == "" {
		return nil, &apiclient.Error{Message: RefreshFailedMessage, StatusCode: 0}
	}

	resp, err := m.auth.Refresh(ctx, record.RefreshToken)
	if err != nil {
		err = apiclient.Normalize(err, RefreshFailedMessage)
	} else {
		if saveErr := m.store.Save(ctx, *record.User, resp.AccessToken, resp.TokenType, sessions.WithRefreshToken(resp.RefreshToken)); saveErr != nil {
			err = apiclient.Normalize(saveErr, RefreshFailedMessage)
		}
	}
	if err != nil {
		m.update(func() { m.errMsg = failureMessage(err, RefreshFailedMessage) })
		return nil, err
	}
	return resp, nil
}

// ClearError drops the recorded error message without touching the session.
func (m *Manager) ClearError() {
	m.update(func() { m.errMsg = "" })
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state()
}

// User returns a copy of the authenticated user, or nil.
func (m *Manager) User() *sessions.UserIdentity {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// Err returns the last recorded user-facing error message.
func (m *Manager) Err() string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.errMsg
}

func (m *Manager) IsAuthenticated() bool {
	return m.User() != nil
}

func (m *Manager) IsLoading() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.inFlight > 0
}

// Snapshot returns state, user and error read under one lock.
func (m *Manager) Snapshot() Snapshot {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot()
}

func (m *Manager) state() State {
	switch {
	case m.inFlight > 0:
		return Loading
	case m.user != nil:
		return Authenticated
	default:
		return Unauthenticated
	}
}

func (m *Manager) snapshot() Snapshot {
	s := Snapshot{State: m.state(), Error: m.errMsg}
	if m.user != nil {
		user := *m.user
		s.User = &user
	}
	return s
}

// update applies fn under the write lock and notifies the listener.
func (m *Manager) update(fn func()) {
	m.lock.Lock()
	fn()
	snap := m.snapshot()
	m.lock.Unlock()

	if m.onChange != nil {
		m.onChange(snap)
	}
}

// failureMessage prefers the message of a normalized error.
func failureMessage(err error, fallback string) string {
	if apiErr, ok := apiclient.AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
