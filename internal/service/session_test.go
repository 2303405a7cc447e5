package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/siperu-booking/internal/adapters/demoauth"
	"github.com/target/siperu-booking/internal/adapters/sealedstore"
	domainauth "github.com/target/siperu-booking/internal/domain/auth"
	apperrors "github.com/target/siperu-booking/internal/errors"
	mocks "github.com/target/siperu-booking/internal/mocks/auth"
	"github.com/target/siperu-booking/internal/testutil"
	"golang.org/x/sync/errgroup"
)

func newDemoProvider(t *testing.T) *demoauth.Provider {
	t.Helper()
	prov, err := demoauth.NewProvider(demoauth.Config{AdminEmail: "admin@booking.com", AdminPassword: "admin123"})
	require.NoError(t, err)
	return prov
}

func newTestService(t *testing.T, storage *mocks.FaultyStorage) *SessionService {
	t.Helper()
	svc, err := NewSessionService(SessionServiceOptions{
		Provider: newDemoProvider(t),
		Storage:  storage,
	})
	require.NoError(t, err)
	return svc
}

// recorder collects observed transitions.
type recorder struct {
	mu     sync.Mutex
	states []domainauth.StateKind
}

func (r *recorder) observe(st domainauth.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st.Kind)
}

func (r *recorder) kinds() []domainauth.StateKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domainauth.StateKind(nil), r.states...)
}

func TestNewSessionService_RequiresDependencies(t *testing.T) {
	_, err := NewSessionService(SessionServiceOptions{Storage: mocks.NewFaultyStorage()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthProvider is required")

	_, err = NewSessionService(SessionServiceOptions{Provider: mocks.NewMockAuthProvider()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SessionStorage is required")
}

func TestSessionService_StartsUnauthenticated(t *testing.T) {
	svc := newTestService(t, mocks.NewFaultyStorage())

	_, ok := svc.CurrentPrincipal()
	assert.False(t, ok)
	assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
}

func TestSessionService_Login(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantRole domainauth.Role
		wantName string
		wantCode apperrors.ErrorCode
	}{
		{name: "reserved admin", email: "admin@booking.com", password: "admin123", wantRole: domainauth.RoleAdmin, wantName: "Admin User"},
		{name: "regular user", email: "x@y.com", password: "abcdef", wantRole: domainauth.RoleUser, wantName: "x"},
		{name: "short password", email: "x@y.com", password: "ab", wantCode: apperrors.ErrCodeInvalidCredentials},
		{name: "both empty", email: "", password: "", wantCode: apperrors.ErrCodeInvalidCredentials},
		{name: "empty password", email: "x@y.com", password: "", wantCode: apperrors.ErrCodeInvalidCredentials},
		{name: "no at sign", email: "xy.com", password: "abcdef", wantCode: apperrors.ErrCodeInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := mocks.NewFaultyStorage()
			svc := newTestService(t, storage)

			p, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
				assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
				assert.False(t, storage.Has(DefaultSessionKey))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, p.Role)
			assert.Equal(t, tt.wantName, p.Name)

			current, ok := svc.CurrentPrincipal()
			require.True(t, ok)
			assert.Equal(t, p, current)
			assert.True(t, storage.Has(DefaultSessionKey))
		})
	}
}

func TestSessionService_Register(t *testing.T) {
	tests := []struct {
		name      string
		in        RegisterInput
		wantCode  apperrors.ErrorCode
		wantField string
	}{
		{name: "admin account", in: RegisterInput{Name: "Jane", Email: "jane@x.com", Password: "abcdef", Role: domainauth.RoleAdmin}},
		{name: "user account", in: RegisterInput{Name: "Joe", Email: "joe@x.com", Password: "abcdefgh", Role: domainauth.RoleUser}},
		{name: "password of five", in: RegisterInput{Name: "Jane", Email: "jane@x.com", Password: "abcde", Role: domainauth.RoleAdmin}, wantCode: apperrors.ErrCodePasswordTooShort, wantField: "password"},
		{name: "missing name", in: RegisterInput{Email: "jane@x.com", Password: "abcdef", Role: domainauth.RoleUser}, wantCode: apperrors.ErrCodeInvalidInput, wantField: "name"},
		{name: "missing email", in: RegisterInput{Name: "Jane", Password: "abcdef", Role: domainauth.RoleUser}, wantCode: apperrors.ErrCodeInvalidInput, wantField: "email"},
		{name: "email without at", in: RegisterInput{Name: "Jane", Email: "jane", Password: "abcdef", Role: domainauth.RoleUser}, wantCode: apperrors.ErrCodeInvalidInput, wantField: "email"},
		{name: "missing password", in: RegisterInput{Name: "Jane", Email: "jane@x.com", Role: domainauth.RoleUser}, wantCode: apperrors.ErrCodeInvalidInput, wantField: "password"},
		{name: "missing role", in: RegisterInput{Name: "Jane", Email: "jane@x.com", Password: "abcdef"}, wantCode: apperrors.ErrCodeInvalidInput, wantField: "role"},
		{name: "unknown role", in: RegisterInput{Name: "Jane", Email: "jane@x.com", Password: "abcdef", Role: "root"}, wantCode: apperrors.ErrCodeInvalidInput, wantField: "role"},
		{name: "empty password short and missing", in: RegisterInput{Name: "", Email: "", Password: "ab", Role: ""}, wantCode: apperrors.ErrCodeInvalidInput, wantField: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := mocks.NewFaultyStorage()
			svc := newTestService(t, storage)

			p, err := svc.Register(context.Background(), tt.in)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
				assert.Equal(t, tt.wantField, apperrors.GetField(err))
				assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
				assert.Zero(t, storage.Writes())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.in.Role, p.Role)
			assert.Equal(t, tt.in.Name, p.Name)
			st := svc.State()
			require.True(t, st.IsAuthenticated())
			assert.Equal(t, tt.in.Role, st.Principal.Role)
			assert.True(t, storage.Has(DefaultSessionKey))
		})
	}
}

func TestSessionService_Register_MinPasswordLengthIsConfigurable(t *testing.T) {
	svc, err := NewSessionService(SessionServiceOptions{
		Provider:          newDemoProvider(t),
		Storage:           mocks.NewFaultyStorage(),
		MinPasswordLength: 8,
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Jane", Email: "jane@x.com", Password: "abcdefg", Role: domainauth.RoleUser})
	assert.True(t, apperrors.IsPasswordTooShort(err))
	assert.Contains(t, err.Error(), "at least 8")

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Jane", Email: "jane@x.com", Password: "abcdefgh", Role: domainauth.RoleUser})
	require.NoError(t, err)
}

func TestSessionService_LoginLogoutRestore(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	ctx := context.Background()

	svc := newTestService(t, storage)
	_, err := svc.Login(ctx, "x@y.com", "abcdef")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))
	assert.False(t, storage.Has(DefaultSessionKey))

	restarted := newTestService(t, storage)
	st := restarted.Restore(ctx)
	assert.Equal(t, domainauth.Unauthenticated, st.Kind)
	assert.Nil(t, st.Principal)
}

func TestSessionService_RestoreAfterRestart(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	ctx := context.Background()

	svc := newTestService(t, storage)
	p, err := svc.Login(ctx, "admin@booking.com", "admin123")
	require.NoError(t, err)

	restarted := newTestService(t, storage)
	st := restarted.Restore(ctx)
	require.True(t, st.IsAuthenticated())
	assert.Equal(t, p, *st.Principal)

	current, ok := restarted.CurrentPrincipal()
	require.True(t, ok)
	assert.Equal(t, domainauth.RoleAdmin, current.Role)
}

func TestSessionService_RestoreMalformedPayloads(t *testing.T) {
	payloads := map[string]string{
		"empty":          ``,
		"garbage":        `not json at all`,
		"truncated":      `{"id":"1","name":"x","email":"x@y.com"`,
		"array":          `[]`,
		"null":           `null`,
		"number":         `42`,
		"missing role":   `{"id":"1","name":"x","email":"x@y.com"}`,
		"invalid role":   `{"id":"1","name":"x","email":"x@y.com","role":"superuser"}`,
		"missing id":     `{"name":"x","email":"x@y.com","role":"admin"}`,
		"bad email":      `{"id":"1","name":"x","email":"nobody","role":"user"}`,
		"wrong types":    `{"id":1,"name":["x"],"email":"x@y.com","role":"user"}`,
		"invalid expiry": `{"id":"1","name":"x","email":"x@y.com","role":"user","expires_at":"soon"}`,
		"binary":         "\x00\x01\x02",
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			storage := mocks.NewFaultyStorage()
			storage.Seed(DefaultSessionKey, []byte(payload))
			svc := newTestService(t, storage)

			var st domainauth.State
			require.NotPanics(t, func() { st = svc.Restore(context.Background()) })
			assert.Equal(t, domainauth.Unauthenticated, st.Kind)
			assert.False(t, storage.Has(DefaultSessionKey), "corrupted record must be discarded")
		})
	}
}

func TestSessionService_RestoreLegacyRecord(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	storage.Seed(DefaultSessionKey, []byte(`{"id":"2","name":"x","email":"x@y.com","role":"user","department":"User Department"}`))
	svc := newTestService(t, storage)

	st := svc.Restore(context.Background())
	require.True(t, st.IsAuthenticated())
	assert.Equal(t, "x", st.Principal.Name)
}

func TestSessionService_RestoreReadFailure(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	storage.Seed(DefaultSessionKey, []byte(`{"id":"2","name":"x","email":"x@y.com","role":"user"}`))
	storage.ReadErr = apperrors.MapStorageError(errors.New("redis down"))
	svc := newTestService(t, storage)

	st := svc.Restore(context.Background())
	assert.Equal(t, domainauth.Unauthenticated, st.Kind)
	// An unreadable backend is not evidence of corruption.
	assert.True(t, storage.Has(DefaultSessionKey))
}

func TestSessionService_SessionTTL(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	ctx := context.Background()
	start := testutil.TestTime()

	svc, err := NewSessionService(SessionServiceOptions{
		Provider:   newDemoProvider(t),
		Storage:    storage,
		SessionTTL: time.Hour,
		Now:        testutil.FixedTimeFunc(start),
	})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "x@y.com", "abcdef")
	require.NoError(t, err)

	soon, err := NewSessionService(SessionServiceOptions{
		Provider: newDemoProvider(t),
		Storage:  storage,
		Now:      testutil.FixedTimeFunc(start.Add(30 * time.Minute)),
	})
	require.NoError(t, err)
	assert.True(t, soon.Restore(ctx).IsAuthenticated())

	late, err := NewSessionService(SessionServiceOptions{
		Provider: newDemoProvider(t),
		Storage:  storage,
		Now:      testutil.FixedTimeFunc(start.Add(2 * time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.Unauthenticated, late.Restore(ctx).Kind)
	assert.False(t, storage.Has(DefaultSessionKey))
}

func TestSessionService_ConcurrentLoginRejected(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.Gate = make(chan struct{})
	provider.Entered = make(chan struct{}, 1)
	svc, err := NewSessionService(SessionServiceOptions{Provider: provider, Storage: mocks.NewFaultyStorage()})
	require.NoError(t, err)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := svc.Login(ctx, "x@y.com", "abcdef")
		first <- err
	}()
	<-provider.Entered
	assert.Equal(t, domainauth.Authenticating, svc.State().Kind)

	_, err = svc.Login(ctx, "z@y.com", "abcdef")
	require.Error(t, err)
	assert.True(t, apperrors.IsOperationInProgress(err), "got %v", err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@x.com", Password: "abcdef", Role: domainauth.RoleUser})
	assert.True(t, apperrors.IsOperationInProgress(err), "got %v", err)

	provider.Gate <- struct{}{}
	require.NoError(t, <-first)
	assert.Equal(t, domainauth.Authenticated, svc.State().Kind)

	// The guard is released once the first attempt resolves.
	go func() { provider.Gate <- struct{}{} }()
	go func() { <-provider.Entered }()
	_, err = svc.Login(ctx, "z@y.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.Calls())
}

func TestSessionService_RestoreDuringLoginKeepsState(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.Gate = make(chan struct{})
	provider.Entered = make(chan struct{}, 1)
	storage := mocks.NewFaultyStorage()
	svc, err := NewSessionService(SessionServiceOptions{Provider: provider, Storage: storage})
	require.NoError(t, err)
	ctx := context.Background()

	// A record written by another process must not replace the attempt.
	other, err := domainauth.EncodeRecord(domainauth.NewRecord(domainauth.Principal{
		ID: "other", Name: "Admin User", Email: "admin@booking.com", Role: domainauth.RoleAdmin,
	}, time.Now(), 0))
	require.NoError(t, err)
	storage.Seed(DefaultSessionKey, other)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Login(ctx, "x@y.com", "abcdef")
		done <- err
	}()
	<-provider.Entered

	st := svc.Restore(ctx)
	assert.Equal(t, domainauth.Authenticating, st.Kind)
	assert.Nil(t, st.Principal)
	assert.Equal(t, 0, storage.Reads())

	close(provider.Gate)
	require.NoError(t, <-done)

	p, ok := svc.CurrentPrincipal()
	require.True(t, ok)
	assert.Equal(t, "x@y.com", p.Email)
	assert.Equal(t, domainauth.RoleUser, p.Role)
}

func TestSessionService_ManyConcurrentLogins(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.Gate = make(chan struct{})
	provider.Entered = make(chan struct{}, 1)
	svc, err := NewSessionService(SessionServiceOptions{Provider: provider, Storage: mocks.NewFaultyStorage()})
	require.NoError(t, err)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := svc.Login(ctx, "x@y.com", "abcdef")
		first <- err
	}()
	<-provider.Entered

	var g errgroup.Group
	for range 16 {
		g.Go(func() error {
			_, err := svc.Login(ctx, "x@y.com", "abcdef")
			if !apperrors.IsOperationInProgress(err) {
				return errors.New("expected operation_in_progress")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	close(provider.Gate)
	require.NoError(t, <-first)
	assert.Equal(t, 1, provider.Calls())
}

func TestSessionService_LogoutIsIdempotent(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	svc := newTestService(t, storage)
	rec := &recorder{}
	svc.Subscribe(rec.observe)

	require.NoError(t, svc.Logout(context.Background()))
	require.NoError(t, svc.Logout(context.Background()))
	assert.Empty(t, rec.kinds())
	assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
}

func TestSessionService_LogoutIgnoresStorageErrorWhenSignedOut(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	storage.DeleteErr = errors.New("disk gone")
	svc := newTestService(t, storage)

	require.NoError(t, svc.Logout(context.Background()))
}

func TestSessionService_LogoutStorageFailureStillClearsState(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	svc := newTestService(t, storage)
	ctx := context.Background()

	_, err := svc.Login(ctx, "x@y.com", "abcdef")
	require.NoError(t, err)

	storage.DeleteErr = errors.New("disk gone")
	err = svc.Logout(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
	assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
}

func TestSessionService_LogoutAbandonsInFlightLogin(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.Gate = make(chan struct{})
	provider.Entered = make(chan struct{}, 1)
	storage := mocks.NewFaultyStorage()
	svc, err := NewSessionService(SessionServiceOptions{Provider: provider, Storage: storage})
	require.NoError(t, err)
	ctx := context.Background()

	result := make(chan error, 1)
	go func() {
		_, err := svc.Login(ctx, "x@y.com", "abcdef")
		result <- err
	}()
	<-provider.Entered

	require.NoError(t, svc.Logout(ctx))
	assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)

	close(provider.Gate)
	err = <-result
	require.Error(t, err)
	assert.True(t, apperrors.IsCanceled(err), "got %v", err)
	assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
	assert.False(t, storage.Has(DefaultSessionKey))
}

func TestSessionService_PersistFailure(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	storage.WriteErr = errors.New("read-only filesystem")
	svc := newTestService(t, storage)

	_, err := svc.Login(context.Background(), "x@y.com", "abcdef")
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
	assert.Contains(t, err.Error(), "persist session")
	assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
}

func TestSessionService_InvalidPrincipalFromProvider(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.AuthenticateFunc = func(context.Context, string, string) (domainauth.Principal, error) {
		return domainauth.Principal{ID: "1", Name: "x", Email: "x@y.com", Role: "owner"}, nil
	}
	storage := mocks.NewFaultyStorage()
	svc, err := NewSessionService(SessionServiceOptions{Provider: provider, Storage: storage})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "x@y.com", "abcdef")
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
	assert.Zero(t, storage.Writes())
}

func TestSessionService_LoginTimeout(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	provider.Gate = make(chan struct{})
	svc, err := NewSessionService(SessionServiceOptions{
		Provider:     provider,
		Storage:      mocks.NewFaultyStorage(),
		LoginTimeout: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "x@y.com", "abcdef")
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err), "got %v", err)
	assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
}

func TestSessionService_CanceledContext(t *testing.T) {
	svc := newTestService(t, mocks.NewFaultyStorage())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Login(ctx, "x@y.com", "abcdef")
	require.Error(t, err)
	assert.True(t, apperrors.IsCanceled(err), "got %v", err)
	assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
}

func TestSessionService_FailedReloginKeepsSession(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	svc := newTestService(t, storage)
	ctx := context.Background()

	first, err := svc.Login(ctx, "x@y.com", "abcdef")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "x@y.com", "ab")
	assert.True(t, apperrors.IsInvalidCredentials(err))

	current, ok := svc.CurrentPrincipal()
	require.True(t, ok)
	assert.Equal(t, first, current)
}

func TestSessionService_ReloginReplacesRole(t *testing.T) {
	svc := newTestService(t, mocks.NewFaultyStorage())
	ctx := context.Background()

	_, err := svc.Login(ctx, "x@y.com", "abcdef")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "admin@booking.com", "admin123")
	require.NoError(t, err)

	current, ok := svc.CurrentPrincipal()
	require.True(t, ok)
	assert.Equal(t, domainauth.RoleAdmin, current.Role)
}

func TestSessionService_Notifications(t *testing.T) {
	svc := newTestService(t, mocks.NewFaultyStorage())
	ctx := context.Background()
	rec := &recorder{}
	unsubscribe := svc.Subscribe(rec.observe)

	_, err := svc.Login(ctx, "x@y.com", "ab")
	require.Error(t, err)
	_, err = svc.Login(ctx, "x@y.com", "abcdef")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	assert.Equal(t, []domainauth.StateKind{
		domainauth.Authenticating, domainauth.Unauthenticated,
		domainauth.Authenticating, domainauth.Authenticated,
		domainauth.Unauthenticated,
	}, rec.kinds())

	unsubscribe()
	unsubscribe()
	_, err = svc.Login(ctx, "x@y.com", "abcdef")
	require.NoError(t, err)
	assert.Len(t, rec.kinds(), 5)
}

func TestSessionService_ValidationFailureDoesNotNotify(t *testing.T) {
	svc := newTestService(t, mocks.NewFaultyStorage())
	rec := &recorder{}
	svc.Subscribe(rec.observe)

	_, err := svc.Login(context.Background(), "", "")
	require.Error(t, err)
	_, err = svc.Register(context.Background(), RegisterInput{Name: "Jane"})
	require.Error(t, err)
	assert.Empty(t, rec.kinds())
}

func TestSessionService_RestoreNotifiesOnChange(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	storage.Seed(DefaultSessionKey, []byte(`{"id":"2","name":"x","email":"x@y.com","role":"user"}`))
	svc := newTestService(t, storage)
	rec := &recorder{}
	svc.Subscribe(rec.observe)

	svc.Restore(context.Background())
	svc.Restore(context.Background())
	assert.Equal(t, []domainauth.StateKind{domainauth.Authenticated}, rec.kinds())
}

func TestSessionService_ObserverMayReenter(t *testing.T) {
	svc := newTestService(t, mocks.NewFaultyStorage())
	ctx := context.Background()
	rec := &recorder{}

	svc.Subscribe(func(st domainauth.State) {
		// Reading from inside an observer must not deadlock.
		_ = svc.State()
		if st.Kind == domainauth.Authenticated {
			require.NoError(t, svc.Logout(ctx))
		}
	})
	svc.Subscribe(rec.observe)

	_, err := svc.Login(ctx, "x@y.com", "abcdef")
	require.NoError(t, err)

	assert.Equal(t, []domainauth.StateKind{
		domainauth.Authenticating, domainauth.Authenticated, domainauth.Unauthenticated,
	}, rec.kinds())
	assert.Equal(t, domainauth.Unauthenticated, svc.State().Kind)
}

func TestSessionService_ObserverPanicIsContained(t *testing.T) {
	svc := newTestService(t, mocks.NewFaultyStorage())
	rec := &recorder{}
	svc.Subscribe(func(domainauth.State) { panic("render failed") })
	svc.Subscribe(rec.observe)

	_, err := svc.Login(context.Background(), "x@y.com", "abcdef")
	require.NoError(t, err)
	assert.Len(t, rec.kinds(), 2)
}

func TestSessionService_ReturnsCopies(t *testing.T) {
	svc := newTestService(t, mocks.NewFaultyStorage())
	_, err := svc.Login(context.Background(), "x@y.com", "abcdef")
	require.NoError(t, err)

	st := svc.State()
	st.Principal.Role = domainauth.RoleAdmin

	current, ok := svc.CurrentPrincipal()
	require.True(t, ok)
	assert.Equal(t, domainauth.RoleUser, current.Role)
}

func TestSessionService_CustomKey(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	svc, err := NewSessionService(SessionServiceOptions{
		Provider: newDemoProvider(t),
		Storage:  storage,
		Key:      "siperu-session",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "x@y.com", "abcdef")
	require.NoError(t, err)
	assert.True(t, storage.Has("siperu-session"))
	assert.False(t, storage.Has(DefaultSessionKey))
}

func TestSessionService_RestoreUnreadableSealedRecord(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	storage.Seed(DefaultSessionKey, []byte("v1:tampered"))
	sealer, err := sealedstore.NewAESGCMSealer(make([]byte, 32))
	require.NoError(t, err)

	svc, err := NewSessionService(SessionServiceOptions{
		Provider: newDemoProvider(t),
		Storage:  sealedstore.New(storage, sealer),
	})
	require.NoError(t, err)

	st := svc.Restore(context.Background())
	assert.Equal(t, domainauth.Unauthenticated, st.Kind)
	assert.False(t, storage.Has(DefaultSessionKey))
}

func TestSessionService_SealedRoundTrip(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	sealer, err := sealedstore.NewAESGCMSealer(make([]byte, 32))
	require.NoError(t, err)
	newSvc := func() *SessionService {
		svc, err := NewSessionService(SessionServiceOptions{
			Provider: newDemoProvider(t),
			Storage:  sealedstore.New(storage, sealer),
		})
		require.NoError(t, err)
		return svc
	}

	p, err := newSvc().Login(context.Background(), "admin@booking.com", "admin123")
	require.NoError(t, err)

	st := newSvc().Restore(context.Background())
	require.True(t, st.IsAuthenticated())
	assert.Equal(t, p, *st.Principal)
}

func TestSessionService_RestoreRejectsUnsealedRecordWhenKeyed(t *testing.T) {
	storage := mocks.NewFaultyStorage()
	forged, err := domainauth.EncodeRecord(domainauth.NewRecord(domainauth.Principal{
		ID: "evil", Name: "Mallory", Email: "m@x.com", Role: domainauth.RoleAdmin,
	}, time.Now(), 0))
	require.NoError(t, err)
	unsealed, err := sealedstore.NoopSealer{}.Seal(DefaultSessionKey, forged)
	require.NoError(t, err)
	storage.Seed(DefaultSessionKey, unsealed)

	sealer, err := sealedstore.NewAESGCMSealer(make([]byte, 32))
	require.NoError(t, err)
	svc, err := NewSessionService(SessionServiceOptions{
		Provider: newDemoProvider(t),
		Storage:  sealedstore.New(storage, sealer),
	})
	require.NoError(t, err)

	st := svc.Restore(context.Background())
	assert.Equal(t, domainauth.Unauthenticated, st.Kind)
	assert.Nil(t, st.Principal)
	assert.False(t, storage.Has(DefaultSessionKey))
}
