package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	domainauth "github.com/target/siperu-booking/internal/domain/auth"
	apperrors "github.com/target/siperu-booking/internal/errors"
	obserrors "github.com/target/siperu-booking/internal/observability/errors"
	"github.com/target/siperu-booking/internal/ports"
)

const (
	// DefaultSessionKey is the storage slot holding the persisted session.
	DefaultSessionKey = "user"
	// DefaultMinPasswordLength is the registration password policy floor.
	DefaultMinPasswordLength = 6
)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Provider ports.AuthProvider   // Required: credential verification
	Storage  ports.SessionStorage // Required: persisted session slot
	Logger   *slog.Logger         // Optional: structured logger

	Key               string        // Optional: storage key, default "user"
	MinPasswordLength int           // Optional: default 6
	SessionTTL        time.Duration // Optional: zero keeps sessions until logout
	LoginTimeout      time.Duration // Optional: bounds the provider round trip, zero disables
	Now               func() time.Time
}

// RegisterInput groups the fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domainauth.Role
}

// Observer receives every session state transition.
type Observer func(domainauth.State)

type subscription struct {
	id int
	fn Observer
}

// SessionService is the single authority for who is signed in.
//
// It owns the tri-state session (unauthenticated, authenticating,
// authenticated), persists the principal through SessionStorage so it
// survives restarts, and allows at most one login or register attempt in
// flight. Observers are notified of transitions in the order they happen.
type SessionService struct {
	provider    ports.AuthProvider
	storage     ports.SessionStorage
	logger      *slog.Logger
	key         string
	minPassword int
	ttl         time.Duration
	timeout     time.Duration
	now         func() time.Time

	mu    sync.RWMutex
	state domainauth.State
	// epoch changes whenever Logout abandons an in-flight attempt.
	epoch    uint64
	pending  []domainauth.State
	draining bool

	obsMu     sync.Mutex
	observers []subscription
	nextObsID int
}

// NewSessionService constructs a new SessionService in the unauthenticated state.
// Call Restore once at startup before making navigation decisions.
func NewSessionService(opts SessionServiceOptions) (*SessionService, error) {
	if opts.Provider == nil {
		return nil, errors.New("AuthProvider is required")
	}
	if opts.Storage == nil {
		return nil, errors.New("SessionStorage is required")
	}

	key := opts.Key
	if key == "" {
		key = DefaultSessionKey
	}
	minLen := opts.MinPasswordLength
	if minLen <= 0 {
		minLen = DefaultMinPasswordLength
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "session_service")

	return &SessionService{
		provider:    opts.Provider,
		storage:     opts.Storage,
		logger:      logger,
		key:         key,
		minPassword: minLen,
		ttl:         opts.SessionTTL,
		timeout:     opts.LoginTimeout,
		now:         now,
		state:       domainauth.UnauthenticatedState(),
	}, nil
}

// Restore loads the persisted session. A missing, unreadable, corrupted or
// expired record yields the unauthenticated state; corrupted and expired
// records are deleted. Readers never observe a partially restored state.
// While a login or register is in flight the current state is returned as is.
func (s *SessionService) Restore(ctx context.Context) domainauth.State {
	s.mu.Lock()
	if s.state.Kind == domainauth.Authenticating {
		st := s.snapshotLocked()
		s.mu.Unlock()
		return st
	}

	prev := s.state
	s.state = s.loadLocked(ctx)
	st := s.snapshotLocked()
	if !sameState(prev, s.state) {
		s.enqueueLocked()
	}
	s.mu.Unlock()
	s.drain()

	s.logger.DebugContext(ctx, "session restored", "state", st.Kind.String())
	return st
}

// loadLocked reads and validates the stored record. Caller holds s.mu.
func (s *SessionService) loadLocked(ctx context.Context) domainauth.State {
	data, err := s.storage.Read(ctx, s.key)
	if apperrors.IsCorruptedSessionData(err) {
		s.logger.WarnContext(ctx, "discarding persisted session", "key", s.key, "error", err)
		s.discardLocked(ctx)
		return domainauth.UnauthenticatedState()
	}
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "read persisted session failed",
				"key", s.key, "error_type", obserrors.Classify(err), "error", err)
		}
		return domainauth.UnauthenticatedState()
	}

	rec, err := domainauth.DecodeRecord(data)
	if err != nil {
		corrupt := apperrors.CorruptedSessionData(err)
		s.logger.WarnContext(ctx, "discarding persisted session", "key", s.key, "error", corrupt)
		s.discardLocked(ctx)
		return domainauth.UnauthenticatedState()
	}
	if rec.Expired(s.now()) {
		s.logger.InfoContext(ctx, "persisted session expired", "key", s.key, "expires_at", rec.ExpiresAt)
		s.discardLocked(ctx)
		return domainauth.UnauthenticatedState()
	}

	return domainauth.AuthenticatedState(rec.Principal)
}

func (s *SessionService) discardLocked(ctx context.Context) {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.logger.ErrorContext(ctx, "delete persisted session failed", "key", s.key, "error", err)
	}
}

// Login verifies credentials and, on success, persists and publishes the principal.
// It fails with operation_in_progress while another attempt is in flight and
// with invalid_credentials when either field is empty or the provider rejects them.
func (s *SessionService) Login(ctx context.Context, email, password string) (domainauth.Principal, error) {
	return s.attempt(ctx, "login", func() error {
		if email == "" || password == "" {
			return apperrors.InvalidCredentials("Email and password are required")
		}
		return nil
	}, func(ctx context.Context) (domainauth.Principal, error) {
		return s.provider.Authenticate(ctx, email, password)
	})
}

// Register creates an account and signs it in.
// All four fields are required and the role must be user or admin
// (invalid_input); the password must have at least the configured number of
// characters (password_too_short).
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (domainauth.Principal, error) {
	return s.attempt(ctx, "register", func() error {
		return s.validateRegistration(in)
	}, func(ctx context.Context) (domainauth.Principal, error) {
		return s.provider.Enroll(ctx, ports.EnrollInput{
			Name:     in.Name,
			Email:    in.Email,
			Password: in.Password,
			Role:     in.Role,
		})
	})
}

func (s *SessionService) validateRegistration(in RegisterInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperrors.InvalidInput("name", "Name is required")
	case strings.TrimSpace(in.Email) == "":
		return apperrors.InvalidInput("email", "Email is required")
	case !strings.Contains(in.Email, "@"):
		return apperrors.InvalidInput("email", "Email must contain @")
	case in.Password == "":
		return apperrors.InvalidInput("password", "Password is required")
	case in.Role == "":
		return apperrors.InvalidInput("role", "Role is required")
	case !in.Role.Valid():
		return apperrors.InvalidInput("role", fmt.Sprintf("Unknown role %q", in.Role))
	case utf8.RuneCountInString(in.Password) < s.minPassword:
		return apperrors.PasswordTooShort(s.minPassword)
	}
	return nil
}

// attempt runs one guarded login/register round trip.
func (s *SessionService) attempt(
	ctx context.Context,
	op string,
	validate func() error,
	call func(context.Context) (domainauth.Principal, error),
) (domainauth.Principal, error) {
	s.mu.Lock()
	if s.state.Kind == domainauth.Authenticating {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "rejected concurrent attempt", "op", op)
		return domainauth.Principal{}, apperrors.OperationInProgress(op)
	}
	if err := validate(); err != nil {
		s.mu.Unlock()
		return domainauth.Principal{}, err
	}
	prev := s.state
	epoch := s.epoch
	s.state = domainauth.AuthenticatingState()
	s.enqueueLocked()
	s.mu.Unlock()
	s.drain()

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	principal, callErr := call(callCtx)
	if callErr == nil {
		callErr = apperrors.MapContextError(ctx.Err())
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// Logout already moved the session on; this result is stale.
		s.mu.Unlock()
		s.logger.InfoContext(ctx, "discarding attempt superseded by logout", "op", op)
		return domainauth.Principal{}, apperrors.Wrap(errors.New("superseded by logout"), apperrors.ErrCodeCanceled, op+" was canceled")
	}

	if callErr == nil {
		callErr = s.persistLocked(ctx, principal)
	}
	if callErr != nil {
		s.state = prev
		s.enqueueLocked()
		s.mu.Unlock()
		s.drain()
		s.logger.InfoContext(ctx, op+" failed", "error_type", obserrors.Classify(callErr), "error", callErr)
		return domainauth.Principal{}, callErr
	}

	s.state = domainauth.AuthenticatedState(principal)
	s.enqueueLocked()
	s.mu.Unlock()
	s.drain()

	s.logger.InfoContext(ctx, op+" succeeded", "principal_id", principal.ID, "role", string(principal.Role))
	return principal, nil
}

// persistLocked writes the session record. Caller holds s.mu.
func (s *SessionService) persistLocked(ctx context.Context, p domainauth.Principal) error {
	rec := domainauth.NewRecord(p, s.now(), s.ttl)
	if err := rec.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "auth provider returned an invalid principal")
	}
	data, err := domainauth.EncodeRecord(rec)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode session")
	}
	if err := s.storage.Write(ctx, s.key, data); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist session")
	}
	return nil
}

// Logout moves any state to unauthenticated and removes the persisted record.
// An in-flight attempt is abandoned and will fail with canceled. Calling it
// while already signed out is a no-op. A storage failure is returned, but the
// in-memory session is cleared regardless.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.state
	if prev.Kind == domainauth.Authenticating {
		s.epoch++
	}
	s.state = domainauth.UnauthenticatedState()
	err := s.storage.Delete(ctx, s.key)
	changed := prev.Kind != domainauth.Unauthenticated
	if changed {
		s.enqueueLocked()
	}
	s.mu.Unlock()
	s.drain()

	if err != nil {
		s.logger.ErrorContext(ctx, "delete persisted session failed",
			"key", s.key, "error_type", obserrors.Classify(err), "error", err)
		if !changed {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear persisted session")
	}
	if changed {
		s.logger.InfoContext(ctx, "logged out", "from", prev.Kind.String())
	}
	return nil
}

// CurrentPrincipal returns a copy of the signed-in principal, if any.
func (s *SessionService) CurrentPrincipal() (domainauth.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.IsAuthenticated() {
		return domainauth.Principal{}, false
	}
	return *s.state.Principal, true
}

// State returns a snapshot of the session state.
func (s *SessionService) State() domainauth.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for state transitions and returns a function that removes it.
// Observers run on the goroutine that caused the transition; transitions
// triggered from inside an observer are delivered after it returns.
func (s *SessionService) Subscribe(fn Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			defer s.obsMu.Unlock()
			s.observers = slices.DeleteFunc(s.observers, func(sub subscription) bool { return sub.id == id })
		})
	}
}

func (s *SessionService) snapshotLocked() domainauth.State {
	if s.state.IsAuthenticated() {
		return domainauth.AuthenticatedState(*s.state.Principal)
	}
	return domainauth.State{Kind: s.state.Kind}
}

// enqueueLocked records the current state for delivery. Caller holds s.mu.
func (s *SessionService) enqueueLocked() {
	s.pending = append(s.pending, s.snapshotLocked())
}

// drain delivers queued transitions in order. Only one goroutine drains at a
// time; others leave their transitions to the active drainer.
func (s *SessionService) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		s.deliver(next)
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

func (s *SessionService) deliver(st domainauth.State) {
	s.obsMu.Lock()
	subs := slices.Clone(s.observers)
	s.obsMu.Unlock()

	for _, sub := range subs {
		s.notify(sub, st)
	}
}

func (s *SessionService) notify(sub subscription, st domainauth.State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session observer panicked", "observer", sub.id, "error", r)
		}
	}()
	if st.Principal != nil {
		st = domainauth.AuthenticatedState(*st.Principal)
	}
	sub.fn(st)
}

func sameState(a, b domainauth.State) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Principal == nil || b.Principal == nil {
		return a.Principal == b.Principal
	}
	return *a.Principal == *b.Principal
}
