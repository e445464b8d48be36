// Package services contains the application services of the e-waste client.
// This file defines the authentication flow controller: login, registration
// with OTP verification, logout and forced logout on server-side session
// expiry.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/ewaste/internal/client/client"
	"github.com/dmitrijs2005/ewaste/internal/client/models"
	"github.com/dmitrijs2005/ewaste/internal/client/validation"
	"github.com/dmitrijs2005/ewaste/internal/common"
	"github.com/dmitrijs2005/ewaste/internal/logging"
)

// State is a position in the authentication flow.
type State int

const (
	Anonymous State = iota
	AwaitingOTP
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case AwaitingOTP:
		return "awaiting-otp"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrBusy                  = errors.New("operation already in progress")
	ErrAlreadyAuthenticated  = errors.New("already logged in")
	ErrNotAuthenticated      = errors.New("not logged in")
	ErrNoPendingVerification = errors.New("no registration awaiting verification")
	ErrResendCooldown        = errors.New("verification code was sent recently")
	ErrRejected              = errors.New("request rejected by server")
)

// DefaultResendCooldown is the wait between verification code requests.
const DefaultResendCooldown = 60 * time.Second

const unknownUserID = "unknown"

// Notifier shows transient user-facing messages.
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// SessionStore persists the current session. session.Store implements it.
type SessionStore interface {
	Current(ctx context.Context) (models.Identity, bool)
	Token(ctx context.Context) string
	Set(ctx context.Context, token string, identity models.Identity) error
	Clear(ctx context.Context) error
}

// PendingVerification bridges registration and OTP confirmation. It lives
// in memory only and is lost when the process exits.
type PendingVerification struct {
	Email     string
	Response  *client.AuthResult
	StartedAt time.Time
}

// AuthController drives the authentication state machine:
//
//	Anonymous     --Login-->           Authenticated
//	Anonymous     --Register-->        AwaitingOTP
//	AwaitingOTP   --VerifyOTP ok-->    Authenticated
//	AwaitingOTP   --VerifyOTP fail-->  AwaitingOTP
//	AwaitingOTP   --Abandon-->         Anonymous
//	Authenticated --Logout or 401-->   Anonymous
//
// Only the controller writes to the session store.
type AuthController struct {
	api            client.AuthAPI
	store          SessionStore
	notify         Notifier
	log            logging.Logger
	resendCooldown time.Duration
	now            func() time.Time

	mu          sync.RWMutex
	state       State
	identity    models.Identity
	pending     *PendingVerification
	lastOTPSent time.Time

	loginBusy    atomic.Bool
	registerBusy atomic.Bool
	verifyBusy   atomic.Bool
	resendBusy   atomic.Bool
	profileBusy  atomic.Bool
	passwordBusy atomic.Bool
	resetBusy    atomic.Bool
}

// NewAuthController restores the persisted session, if any, and returns a
// controller in Authenticated or Anonymous state. A session whose token is
// an expired JWT is cleared instead of restored.
func NewAuthController(ctx context.Context, api client.AuthAPI, store SessionStore, notify Notifier, resendCooldown time.Duration, log logging.Logger) *AuthController {
	if resendCooldown <= 0 {
		resendCooldown = DefaultResendCooldown
	}
	c := &AuthController{
		api:            api,
		store:          store,
		notify:         notify,
		log:            log,
		resendCooldown: resendCooldown,
		now:            time.Now,
	}
	c.restore(ctx)
	return c
}

func (c *AuthController) restore(ctx context.Context) {
	identity, ok := c.store.Current(ctx)
	if !ok {
		return
	}

	if err := checkTokenExpiry(c.store.Token(ctx), c.now()); err != nil {
		c.log.Info(ctx, "discarding stored session", "reason", err)
		if err := c.store.Clear(ctx); err != nil {
			c.log.Error(ctx, "clear stale session", "error", err)
		}
		return
	}

	c.state = Authenticated
	c.identity = identity
	c.log.Debug(ctx, "session restored", "user_id", identity.ID)
}

func acquire(flag *atomic.Bool) (release func(), err error) {
	if !flag.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	return func() { flag.Store(false) }, nil
}

// State returns the current flow state.
func (c *AuthController) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Identity returns the logged-in identity.
func (c *AuthController) Identity() (models.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity, c.state == Authenticated
}

// CurrentEmail is the address a verification code was sent to, or the
// logged-in user's address.
func (c *AuthController) CurrentEmail() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.state {
	case AwaitingOTP:
		return c.pending.Email
	case Authenticated:
		return c.identity.Email
	default:
		return ""
	}
}

// Pending returns a copy of the pending verification, if any.
func (c *AuthController) Pending() (PendingVerification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.pending == nil {
		return PendingVerification{}, false
	}
	return *c.pending, true
}

// ResendAvailableIn is the time left before ResendOTP is allowed again.
func (c *AuthController) ResendAvailableIn() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != AwaitingOTP {
		return 0
	}
	left := c.resendCooldown - c.now().Sub(c.lastOTPSent)
	if left < 0 {
		return 0
	}
	return left
}

// fail reports a remote failure to the user and returns it unchanged.
func (c *AuthController) fail(ctx context.Context, op string, err error) error {
	c.log.Warn(ctx, op+" failed", "error", err)
	c.notify.Error(client.Message(err))
	return err
}

// Login authenticates with email and password.
func (c *AuthController) Login(ctx context.Context, email, password string) (models.Identity, error) {
	release, err := acquire(&c.loginBusy)
	if err != nil {
		return models.Identity{}, err
	}
	defer release()

	if c.State() == Authenticated {
		return models.Identity{}, ErrAlreadyAuthenticated
	}

	email = strings.TrimSpace(email)
	if err := validation.Struct(validation.LoginForm{Email: email, Password: password}); err != nil {
		return models.Identity{}, err
	}

	res, err := c.api.Login(ctx, email, password)
	if err != nil {
		return models.Identity{}, c.fail(ctx, "login", err)
	}
	if res.Token == "" {
		return models.Identity{}, c.fail(ctx, "login", fmt.Errorf("%w: no token in login response", client.ErrInvalidServerResponse))
	}

	identity := buildIdentity(email, res.Token, res)
	if err := c.store.Set(ctx, res.Token, identity); err != nil {
		return models.Identity{}, c.fail(ctx, "login", fmt.Errorf("save session: %w", err))
	}

	c.mu.Lock()
	c.state = Authenticated
	c.identity = identity
	c.pending = nil
	c.mu.Unlock()

	c.log.Info(ctx, "login succeeded", "user_id", identity.ID)
	c.notify.Success("Login successful")
	return identity, nil
}

// Register creates an account and waits for OTP confirmation. It never
// creates a session. Registering again while awaiting a code restarts the
// verification for the new address.
func (c *AuthController) Register(ctx context.Context, name, email, password string) error {
	release, err := acquire(&c.registerBusy)
	if err != nil {
		return err
	}
	defer release()

	if c.State() == Authenticated {
		return ErrAlreadyAuthenticated
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	form := validation.RegisterForm{Name: name, Email: email, Password: password}
	if err := validation.Struct(form); err != nil {
		return err
	}

	res, err := c.api.Register(ctx, name, email, password)
	if err != nil {
		return c.fail(ctx, "register", err)
	}
	if res.Failed() {
		return c.fail(ctx, "register", rejection(res))
	}

	now := c.now()
	c.mu.Lock()
	c.state = AwaitingOTP
	c.pending = &PendingVerification{Email: email, Response: res, StartedAt: now}
	c.lastOTPSent = now
	c.mu.Unlock()

	c.log.Info(ctx, "registration accepted, awaiting OTP")
	c.notify.Success("Registration successful! Please check your email for the verification code")
	return nil
}

// VerifyOTP confirms the pending registration with code. On failure the
// pending registration is kept so the user can try again.
func (c *AuthController) VerifyOTP(ctx context.Context, code string) (models.Identity, error) {
	release, err := acquire(&c.verifyBusy)
	if err != nil {
		return models.Identity{}, err
	}
	defer release()

	pending, ok := c.Pending()
	if !ok || c.State() != AwaitingOTP {
		return models.Identity{}, ErrNoPendingVerification
	}

	code = strings.TrimSpace(code)
	if err := validation.Struct(validation.OTPForm{Code: code}); err != nil {
		return models.Identity{}, err
	}

	res, err := c.api.VerifyOTP(ctx, pending.Email, code)
	if err != nil {
		return models.Identity{}, c.fail(ctx, "verify otp", err)
	}
	if res.Failed() {
		return models.Identity{}, c.fail(ctx, "verify otp", rejection(res))
	}

	sources := []*client.AuthResult{res}
	if pending.Response != nil {
		sources = append(sources, pending.Response)
	}

	token := ""
	for _, r := range sources {
		if r.Token != "" {
			token = r.Token
			break
		}
	}
	if token == "" {
		return models.Identity{}, c.fail(ctx, "verify otp", fmt.Errorf("%w: no token after verification", client.ErrInvalidServerResponse))
	}

	identity := buildIdentity(pending.Email, token, sources...)
	if err := c.store.Set(ctx, token, identity); err != nil {
		return models.Identity{}, c.fail(ctx, "verify otp", fmt.Errorf("save session: %w", err))
	}

	c.mu.Lock()
	c.state = Authenticated
	c.identity = identity
	c.pending = nil
	c.mu.Unlock()

	c.log.Info(ctx, "email verified", "user_id", identity.ID)
	c.notify.Success("Email verified successfully! Welcome aboard")
	return identity, nil
}

// ResendOTP asks the server for a new code once the cooldown has passed.
func (c *AuthController) ResendOTP(ctx context.Context) error {
	release, err := acquire(&c.resendBusy)
	if err != nil {
		return err
	}
	defer release()

	pending, ok := c.Pending()
	if !ok || c.State() != AwaitingOTP {
		return ErrNoPendingVerification
	}
	if left := c.ResendAvailableIn(); left > 0 {
		return fmt.Errorf("%w: retry in %s", ErrResendCooldown, left.Round(time.Second))
	}

	if err := c.api.ResendOTP(ctx, pending.Email); err != nil {
		return c.fail(ctx, "resend otp", err)
	}

	c.mu.Lock()
	c.lastOTPSent = c.now()
	c.mu.Unlock()

	c.notify.Info("A new verification code was sent to " + pending.Email)
	return nil
}

// Abandon discards a pending verification.
func (c *AuthController) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == AwaitingOTP {
		c.state = Anonymous
	}
	c.pending = nil
}

// Logout ends the session locally. It makes no network call and is safe
// to call in any state. The state becomes Anonymous even if clearing
// storage fails.
func (c *AuthController) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.state = Anonymous
	c.identity = models.Identity{}
	c.pending = nil
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.log.Error(ctx, "clear session on logout", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}
	c.notify.Info("You have been logged out")
	return nil
}

// HandleUnauthorized reacts to a 401 on a request that carried the bearer
// token: the server no longer accepts the session.
func (c *AuthController) HandleUnauthorized(ctx context.Context) {
	c.mu.Lock()
	wasAuthenticated := c.state == Authenticated
	if wasAuthenticated {
		c.state = Anonymous
		c.identity = models.Identity{}
	}
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.log.Error(ctx, "clear expired session", "error", err)
	}
	if wasAuthenticated {
		c.log.Info(ctx, "session expired")
		c.notify.Error("Your session has expired. Please log in again")
	}
}

// UpdateProfile changes name and email and re-commits the session identity.
func (c *AuthController) UpdateProfile(ctx context.Context, in models.ProfileInput) (models.Identity, error) {
	release, err := acquire(&c.profileBusy)
	if err != nil {
		return models.Identity{}, err
	}
	defer release()

	current, ok := c.Identity()
	if !ok {
		return models.Identity{}, ErrNotAuthenticated
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return models.Identity{}, err
	}

	res, err := c.api.UpdateProfile(ctx, current.ID, in)
	if err != nil {
		return models.Identity{}, c.fail(ctx, "update profile", err)
	}

	updated := current
	updated.Name = firstNonEmpty(res.Name, in.Name)
	updated.Email = firstNonEmpty(res.Email, in.Email)
	updated.Role = firstNonEmpty(res.Role, current.Role)

	token := firstNonEmpty(res.Token, c.store.Token(ctx))
	if token == "" {
		return models.Identity{}, ErrNotAuthenticated
	}
	if err := c.store.Set(ctx, token, updated); err != nil {
		return models.Identity{}, c.fail(ctx, "update profile", fmt.Errorf("save session: %w", err))
	}

	c.mu.Lock()
	if c.state == Authenticated {
		c.identity = updated
	}
	c.mu.Unlock()

	c.notify.Success("Profile updated successfully")
	return updated, nil
}

// ChangePassword changes the logged-in user's password.
func (c *AuthController) ChangePassword(ctx context.Context, in models.PasswordChange) error {
	release, err := acquire(&c.passwordBusy)
	if err != nil {
		return err
	}
	defer release()

	current, ok := c.Identity()
	if !ok {
		return ErrNotAuthenticated
	}
	if err := validation.Struct(in); err != nil {
		return err
	}

	if err := c.api.ChangePassword(ctx, current.ID, in); err != nil {
		return c.fail(ctx, "change password", err)
	}
	c.notify.Success("Password changed successfully")
	return nil
}

// ResetPassword requests password reset instructions for email.
func (c *AuthController) ResetPassword(ctx context.Context, email string) error {
	release, err := acquire(&c.resetBusy)
	if err != nil {
		return err
	}
	defer release()

	email = strings.TrimSpace(email)
	if err := validation.Struct(validation.ResetForm{Email: email}); err != nil {
		return err
	}

	if err := c.api.ResetPassword(ctx, email); err != nil {
		return c.fail(ctx, "reset password", err)
	}
	c.notify.Success("Password reset instructions sent to your email")
	return nil
}

// rejectedError is a 2xx response carrying "success": false. Its text is
// the server's message.
type rejectedError struct {
	msg string
}

func (e *rejectedError) Error() string { return e.msg }

func (e *rejectedError) Unwrap() error { return ErrRejected }

func rejection(res *client.AuthResult) error {
	if res.Message == "" {
		return ErrRejected
	}
	return &rejectedError{msg: res.Message}
}

// buildIdentity merges identity fields from results in order, then falls
// back to token claims and the email address.
func buildIdentity(email, token string, results ...*client.AuthResult) models.Identity {
	var id, name, role string
	for _, r := range results {
		id = firstNonEmpty(id, r.UserID)
		name = firstNonEmpty(name, r.Name)
		role = firstNonEmpty(role, r.Role)
	}

	identity := models.Identity{
		ID:    firstNonEmpty(id, userIDFromToken(token), unknownUserID),
		Name:  firstNonEmpty(name, common.EmailLocalPart(email)),
		Email: email,
		Role:  role,
	}
	return identity.WithDefaults()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
