package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/ewaste/internal/client/client"
	"github.com/dmitrijs2005/ewaste/internal/client/models"
	"github.com/dmitrijs2005/ewaste/internal/client/session"
	"github.com/dmitrijs2005/ewaste/internal/client/storage"
	"github.com/dmitrijs2005/ewaste/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupStore(t *testing.T) (*session.Store, *sql.DB) {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return session.NewStore(db, "ewaste", logging.Nop()), db
}

func countKeys(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	return n
}

// ---- fake notifier ----

type note struct{ kind, msg string }

type recNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (r *recNotifier) add(kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{kind, msg})
}

func (r *recNotifier) Success(msg string) { r.add("success", msg) }
func (r *recNotifier) Info(msg string)    { r.add("info", msg) }
func (r *recNotifier) Error(msg string)   { r.add("error", msg) }

func (r *recNotifier) last() note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return note{}
	}
	return r.notes[len(r.notes)-1]
}

func (r *recNotifier) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notes {
		if x.kind == kind {
			n++
		}
	}
	return n
}

// ---- fake auth API ----

type fakeAuthAPI struct {
	mu    sync.Mutex
	calls []string

	loginFn    func(email, password string) (*client.AuthResult, error)
	registerFn func(name, email, password string) (*client.AuthResult, error)
	verifyFn   func(email, otp string) (*client.AuthResult, error)
	resendErr  error
	profileFn  func(userID string, in models.ProfileInput) (*client.AuthResult, error)
	resetErr   error
	passwdErr  error

	lastPasswdUser string
}

func (f *fakeAuthAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAuthAPI) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*client.AuthResult, error) {
	f.record("login")
	return f.loginFn(email, password)
}

func (f *fakeAuthAPI) Register(ctx context.Context, name, email, password string) (*client.AuthResult, error) {
	f.record("register")
	return f.registerFn(name, email, password)
}

func (f *fakeAuthAPI) VerifyOTP(ctx context.Context, email, otp string) (*client.AuthResult, error) {
	f.record("verify")
	return f.verifyFn(email, otp)
}

func (f *fakeAuthAPI) ResendOTP(ctx context.Context, email string) error {
	f.record("resend")
	return f.resendErr
}

func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, userID string, in models.ProfileInput) (*client.AuthResult, error) {
	f.record("profile")
	return f.profileFn(userID, in)
}

func (f *fakeAuthAPI) ResetPassword(ctx context.Context, email string) error {
	f.record("reset")
	return f.resetErr
}

func (f *fakeAuthAPI) ChangePassword(ctx context.Context, userID string, in models.PasswordChange) error {
	f.record("passwd")
	f.lastPasswdUser = userID
	return f.passwdErr
}

func boolPtr(b bool) *bool { return &b }
