package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/ewaste/internal/client/client"
	"github.com/dmitrijs2005/ewaste/internal/client/models"
	"github.com/dmitrijs2005/ewaste/internal/client/validation"
	"github.com/dmitrijs2005/ewaste/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, api *fakeAuthAPI) (*AuthController, *recNotifier, SessionStore) {
	t.Helper()
	store, _ := setupStore(t)
	n := &recNotifier{}
	return NewAuthController(context.Background(), api, store, n, time.Minute, logging.Nop()), n, store
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestLogin_Success(t *testing.T) {
	api := &fakeAuthAPI{loginFn: func(email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{Token: "T1", UserID: "u1", Name: "Ann"}, nil
	}}
	c, n, store := newController(t, api)
	ctx := context.Background()

	identity, err := c.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	want := models.Identity{ID: "u1", Name: "Ann", Email: "a@b.com", Role: "user"}
	assert.Equal(t, want, identity)
	assert.Equal(t, Authenticated, c.State())
	assert.Equal(t, "a@b.com", c.CurrentEmail())

	got, ok := store.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, "T1", store.Token(ctx))
	assert.Equal(t, "success", n.last().kind)
}

func TestLogin_InvalidCredentialsLeaveStorageUntouched(t *testing.T) {
	api := &fakeAuthAPI{loginFn: func(email, password string) (*client.AuthResult, error) {
		return nil, &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}}
	c, n, store := newController(t, api)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.com", "wrong-pass")
	require.ErrorIs(t, err, client.ErrUnauthorized)

	assert.Equal(t, Anonymous, c.State())
	_, ok := store.Current(ctx)
	assert.False(t, ok)
	assert.Empty(t, store.Token(ctx))
	assert.Equal(t, note{"error", "Invalid credentials"}, n.last())
}

func TestLogin_MissingTokenIsInvalidServerResponse(t *testing.T) {
	api := &fakeAuthAPI{loginFn: func(email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{UserID: "u1"}, nil
	}}
	c, _, store := newController(t, api)

	_, err := c.Login(context.Background(), "a@b.com", "secret1")
	require.ErrorIs(t, err, client.ErrInvalidServerResponse)
	assert.NotErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, Anonymous, c.State())
	assert.Empty(t, store.Token(context.Background()))
}

func TestLogin_ValidationHappensBeforeNetwork(t *testing.T) {
	api := &fakeAuthAPI{}
	c, n, _ := newController(t, api)

	_, err := c.Login(context.Background(), "", "")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Field("email"))
	assert.NotEmpty(t, verr.Field("password"))
	assert.Zero(t, api.called("login"))
	assert.Zero(t, n.count("error"))
}

func TestLogin_IdentityFallbacks(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "u9"})
	api := &fakeAuthAPI{loginFn: func(email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{Token: token}, nil
	}}
	c, _, _ := newController(t, api)

	identity, err := c.Login(context.Background(), " bob.smith@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.Identity{ID: "u9", Name: "bob.smith", Email: "bob.smith@example.com", Role: "user"}, identity)
}

func TestLogin_UnknownIDForOpaqueToken(t *testing.T) {
	api := &fakeAuthAPI{loginFn: func(email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{Token: "opaque", Role: "admin"}, nil
	}}
	c, _, _ := newController(t, api)

	identity, err := c.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "unknown", identity.ID)
	assert.Equal(t, "admin", identity.Role)
}

func TestLogin_RejectedWhenAuthenticated(t *testing.T) {
	api := &fakeAuthAPI{loginFn: func(email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{Token: "T1", UserID: "u1"}, nil
	}}
	c, _, _ := newController(t, api)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	_, err = c.Login(ctx, "a@b.com", "secret1")
	require.ErrorIs(t, err, ErrAlreadyAuthenticated)
	require.ErrorIs(t, c.Register(ctx, "Ann", "a@b.com", "secret1"), ErrAlreadyAuthenticated)
	assert.Equal(t, 1, api.called("login"))
}

func TestLogin_BusyFlagRejectsConcurrentCall(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	api := &fakeAuthAPI{loginFn: func(email, password string) (*client.AuthResult, error) {
		close(started)
		<-unblock
		return &client.AuthResult{Token: "T1", UserID: "u1"}, nil
	}}
	c, _, _ := newController(t, api)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.Login(ctx, "a@b.com", "secret1")
		done <- err
	}()
	<-started

	_, err := c.Login(ctx, "a@b.com", "secret1")
	require.ErrorIs(t, err, ErrBusy)

	// other operations have their own flag
	require.NoError(t, c.ResetPassword(ctx, "a@b.com"))

	close(unblock)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.called("login"))
}

func TestRegisterVerify_WrongCodeThenRightCode(t *testing.T) {
	api := &fakeAuthAPI{
		registerFn: func(name, email, password string) (*client.AuthResult, error) {
			return &client.AuthResult{Message: "OTP sent", UserID: "u2", Name: "Ann"}, nil
		},
		verifyFn: func(email, otp string) (*client.AuthResult, error) {
			if otp != "123456" {
				return nil, &client.APIError{StatusCode: http.StatusBadRequest, Message: "Invalid OTP"}
			}
			return &client.AuthResult{Success: boolPtr(true), Token: "T2"}, nil
		},
	}
	c, n, store := newController(t, api)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ann", "a@b.com", "secret1"))
	assert.Equal(t, AwaitingOTP, c.State())
	assert.Equal(t, "a@b.com", c.CurrentEmail())
	_, ok := store.Current(ctx)
	assert.False(t, ok, "registration alone never authenticates")

	_, err := c.VerifyOTP(ctx, "000000")
	require.Error(t, err)
	assert.Equal(t, AwaitingOTP, c.State())
	assert.Equal(t, "a@b.com", c.CurrentEmail())
	assert.Equal(t, note{"error", "Invalid OTP"}, n.last())
	pending, ok := c.Pending()
	require.True(t, ok)
	assert.Equal(t, "OTP sent", pending.Response.Message)

	identity, err := c.VerifyOTP(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, Authenticated, c.State())
	assert.Equal(t, models.Identity{ID: "u2", Name: "Ann", Email: "a@b.com", Role: "user"}, identity)
	assert.Equal(t, "T2", store.Token(ctx))
	_, ok = c.Pending()
	assert.False(t, ok)
	assert.Zero(t, api.called("login"))
}

func TestVerifyOTP_SuccessFalseKeepsPending(t *testing.T) {
	api := &fakeAuthAPI{
		registerFn: func(name, email, password string) (*client.AuthResult, error) {
			return &client.AuthResult{}, nil
		},
		verifyFn: func(email, otp string) (*client.AuthResult, error) {
			return &client.AuthResult{Success: boolPtr(false), Message: "Code expired"}, nil
		},
	}
	c, n, _ := newController(t, api)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ann", "a@b.com", "secret1"))
	_, err := c.VerifyOTP(ctx, "123456")
	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "Code expired", err.Error())
	assert.Equal(t, note{"error", "Code expired"}, n.last())
	assert.Equal(t, AwaitingOTP, c.State())
}

func TestVerifyOTP_TokenFromPendingResponse(t *testing.T) {
	api := &fakeAuthAPI{
		registerFn: func(name, email, password string) (*client.AuthResult, error) {
			return &client.AuthResult{Token: "provisional", UserID: "u3", Role: "recycler"}, nil
		},
		verifyFn: func(email, otp string) (*client.AuthResult, error) {
			assert.Equal(t, "c@d.io", email)
			return &client.AuthResult{Name: "Cid"}, nil
		},
	}
	c, _, store := newController(t, api)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Cid", "c@d.io", "secret1"))
	identity, err := c.VerifyOTP(ctx, "654321")
	require.NoError(t, err)
	assert.Equal(t, models.Identity{ID: "u3", Name: "Cid", Email: "c@d.io", Role: "recycler"}, identity)
	assert.Equal(t, "provisional", store.Token(ctx))
}

func TestVerifyOTP_NoTokenAnywhere(t *testing.T) {
	api := &fakeAuthAPI{
		registerFn: func(name, email, password string) (*client.AuthResult, error) {
			return &client.AuthResult{}, nil
		},
		verifyFn: func(email, otp string) (*client.AuthResult, error) {
			return &client.AuthResult{Success: boolPtr(true)}, nil
		},
	}
	c, _, _ := newController(t, api)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ann", "a@b.com", "secret1"))
	_, err := c.VerifyOTP(ctx, "123456")
	require.ErrorIs(t, err, client.ErrInvalidServerResponse)
	assert.Equal(t, AwaitingOTP, c.State())
}

func TestVerifyOTP_RequiresPendingAndValidCode(t *testing.T) {
	api := &fakeAuthAPI{registerFn: func(name, email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{}, nil
	}}
	c, _, _ := newController(t, api)
	ctx := context.Background()

	_, err := c.VerifyOTP(ctx, "123456")
	require.ErrorIs(t, err, ErrNoPendingVerification)

	require.NoError(t, c.Register(ctx, "Ann", "a@b.com", "secret1"))
	_, err = c.VerifyOTP(ctx, "12345")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, api.called("verify"))
}

func TestRegister_FailureStaysAnonymous(t *testing.T) {
	api := &fakeAuthAPI{registerFn: func(name, email, password string) (*client.AuthResult, error) {
		return nil, &client.APIError{StatusCode: http.StatusConflict, Message: "User already exists"}
	}}
	c, n, _ := newController(t, api)

	err := c.Register(context.Background(), "Ann", "a@b.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, Anonymous, c.State())
	assert.Equal(t, note{"error", "User already exists"}, n.last())
	_, ok := c.Pending()
	assert.False(t, ok)
}

func TestRegister_AgainRestartsVerification(t *testing.T) {
	api := &fakeAuthAPI{registerFn: func(name, email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{}, nil
	}}
	c, _, _ := newController(t, api)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ann", "a@b.com", "secret1"))
	require.NoError(t, c.Register(ctx, "Ann", "ann@b.com", "secret1"))
	assert.Equal(t, "ann@b.com", c.CurrentEmail())
}

func TestAbandon(t *testing.T) {
	api := &fakeAuthAPI{registerFn: func(name, email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{}, nil
	}}
	c, _, _ := newController(t, api)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ann", "a@b.com", "secret1"))
	c.Abandon()
	assert.Equal(t, Anonymous, c.State())
	assert.Empty(t, c.CurrentEmail())
	_, ok := c.Pending()
	assert.False(t, ok)

	_, err := c.VerifyOTP(ctx, "123456")
	require.ErrorIs(t, err, ErrNoPendingVerification)
}

func TestResendOTP_Cooldown(t *testing.T) {
	api := &fakeAuthAPI{registerFn: func(name, email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{}, nil
	}}
	c, n, _ := newController(t, api)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.ErrorIs(t, c.ResendOTP(ctx), ErrNoPendingVerification)

	require.NoError(t, c.Register(ctx, "Ann", "a@b.com", "secret1"))
	assert.Equal(t, time.Minute, c.ResendAvailableIn())

	now = now.Add(20 * time.Second)
	require.ErrorIs(t, c.ResendOTP(ctx), ErrResendCooldown)
	assert.Equal(t, 40*time.Second, c.ResendAvailableIn())
	assert.Zero(t, api.called("resend"))

	now = now.Add(40 * time.Second)
	assert.Zero(t, c.ResendAvailableIn())
	require.NoError(t, c.ResendOTP(ctx))
	assert.Equal(t, 1, api.called("resend"))
	assert.Equal(t, note{"info", "A new verification code was sent to a@b.com"}, n.last())
	assert.Equal(t, time.Minute, c.ResendAvailableIn())
}

func TestResendOTP_ServerError(t *testing.T) {
	api := &fakeAuthAPI{
		registerFn: func(name, email, password string) (*client.AuthResult, error) {
			return &client.AuthResult{}, nil
		},
		resendErr: &client.APIError{StatusCode: http.StatusTooManyRequests, Message: "Slow down"},
	}
	c, _, _ := newController(t, api)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Register(ctx, "Ann", "a@b.com", "secret1"))

	now = now.Add(2 * time.Minute)
	require.Error(t, c.ResendOTP(ctx))
	assert.Zero(t, c.ResendAvailableIn())
	assert.Equal(t, AwaitingOTP, c.State())
}

func TestLogout_Idempotent(t *testing.T) {
	api := &fakeAuthAPI{loginFn: func(email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{Token: "T1", UserID: "u1"}, nil
	}}
	store, db := setupStore(t)
	c := NewAuthController(context.Background(), api, store, &recNotifier{}, 0, logging.Nop())
	ctx := context.Background()

	require.NoError(t, c.Logout(ctx))

	_, err := c.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, 2, countKeys(t, db))

	require.NoError(t, c.Logout(ctx))
	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, Anonymous, c.State())
	assert.Zero(t, countKeys(t, db))
	_, ok := c.Identity()
	assert.False(t, ok)
}

func TestNewAuthController_RestoresSession(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	ann := models.Identity{ID: "u1", Name: "Ann", Email: "a@b.com", Role: "user"}
	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, store.Set(ctx, token, ann))

	c := NewAuthController(ctx, &fakeAuthAPI{}, store, &recNotifier{}, 0, logging.Nop())
	assert.Equal(t, Authenticated, c.State())
	got, ok := c.Identity()
	require.True(t, ok)
	assert.Equal(t, ann, got)
	assert.Equal(t, DefaultResendCooldown, c.resendCooldown)
}

func TestNewAuthController_DropsExpiredSession(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
	require.NoError(t, store.Set(ctx, token, models.Identity{ID: "u1", Email: "a@b.com"}))

	c := NewAuthController(ctx, &fakeAuthAPI{}, store, &recNotifier{}, 0, logging.Nop())
	assert.Equal(t, Anonymous, c.State())
	assert.Zero(t, countKeys(t, db))
}

func TestHandleUnauthorized_ClearsSessionThroughAPIBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			_, _ = io.WriteString(w, `{"token":"T1","userId":"u1","name":"Ann"}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Token expired"}`)
	}))
	t.Cleanup(srv.Close)

	store, db := setupStore(t)
	api := client.NewHTTPClient(srv.URL, 2*time.Second, logging.Nop())
	api.SetTokenSource(store.Token)

	n := &recNotifier{}
	c := NewAuthController(context.Background(), api, store, n, 0, logging.Nop())
	api.OnUnauthorized(c.HandleUnauthorized)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, Authenticated, c.State())

	_, err = api.UserStats(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized)

	assert.Equal(t, Anonymous, c.State())
	_, ok := store.Current(ctx)
	assert.False(t, ok)
	assert.Zero(t, countKeys(t, db))
	assert.Equal(t, note{"error", "Your session has expired. Please log in again"}, n.last())
}

func TestHandleUnauthorized_AnonymousIsQuiet(t *testing.T) {
	c, n, _ := newController(t, &fakeAuthAPI{})
	c.HandleUnauthorized(context.Background())
	assert.Equal(t, Anonymous, c.State())
	assert.Zero(t, n.count("error"))
}

func loggedIn(t *testing.T, api *fakeAuthAPI) (*AuthController, *recNotifier, SessionStore) {
	t.Helper()
	api.loginFn = func(email, password string) (*client.AuthResult, error) {
		return &client.AuthResult{Token: "T1", UserID: "u1", Name: "Ann"}, nil
	}
	c, n, store := newController(t, api)
	_, err := c.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	return c, n, store
}

func TestUpdateProfile_RecommitsIdentity(t *testing.T) {
	api := &fakeAuthAPI{profileFn: func(userID string, in models.ProfileInput) (*client.AuthResult, error) {
		assert.Equal(t, "u1", userID)
		return &client.AuthResult{Name: in.Name}, nil
	}}
	c, _, store := loggedIn(t, api)
	ctx := context.Background()

	updated, err := c.UpdateProfile(ctx, models.ProfileInput{Name: "Ann B", Email: "annb@b.com"})
	require.NoError(t, err)

	want := models.Identity{ID: "u1", Name: "Ann B", Email: "annb@b.com", Role: "user"}
	assert.Equal(t, want, updated)
	got, ok := store.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, "T1", store.Token(ctx))
	current, _ := c.Identity()
	assert.Equal(t, want, current)
}

func TestUpdateProfile_RequiresLogin(t *testing.T) {
	c, _, _ := newController(t, &fakeAuthAPI{})
	_, err := c.UpdateProfile(context.Background(), models.ProfileInput{Name: "Ann", Email: "a@b.com"})
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestChangePassword(t *testing.T) {
	api := &fakeAuthAPI{}
	c, n, _ := loggedIn(t, api)
	ctx := context.Background()

	err := c.ChangePassword(ctx, models.PasswordChange{CurrentPassword: "secret1", NewPassword: "secret1"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, api.called("passwd"))

	require.NoError(t, c.ChangePassword(ctx, models.PasswordChange{CurrentPassword: "secret1", NewPassword: "secret2"}))
	assert.Equal(t, "u1", api.lastPasswdUser)
	assert.Equal(t, note{"success", "Password changed successfully"}, n.last())

	api.passwdErr = &client.APIError{StatusCode: http.StatusBadRequest, Message: "Current password is incorrect"}
	err = c.ChangePassword(ctx, models.PasswordChange{CurrentPassword: "nope12", NewPassword: "secret3"})
	require.Error(t, err)
	assert.Equal(t, note{"error", "Current password is incorrect"}, n.last())
}

func TestResetPassword(t *testing.T) {
	api := &fakeAuthAPI{}
	c, n, _ := newController(t, api)
	ctx := context.Background()

	var verr *validation.Error
	require.ErrorAs(t, c.ResetPassword(ctx, "bad"), &verr)

	require.NoError(t, c.ResetPassword(ctx, "a@b.com"))
	assert.Equal(t, "success", n.last().kind)

	api.resetErr = errors.Join(client.ErrUnavailable, errors.New("dial tcp: refused"))
	require.ErrorIs(t, c.ResetPassword(ctx, "a@b.com"), client.ErrUnavailable)
	assert.Equal(t, note{"error", client.UnavailableMessage}, n.last())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "awaiting-otp", AwaitingOTP.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "state(9)", State(9).String())
}
