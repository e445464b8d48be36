package cli

import (
	"context"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
	"github.com/dmitrijs2005/ewaste/internal/client/services"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
	getList       = GetList
)

// readSecret reads a password without echo.
func (a *App) readSecret(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return a.report(err)
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return a.report(err)
	}

	identity, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return a.report(err)
	}
	a.printf("Logged in as %s <%s>\n", identity.Name, identity.Email)
	return nil
}

// Register prompts for account details, creates the account and shows the
// verification screen.
func (a *App) Register(ctx context.Context) error {
	name, err := a.prompt("Enter your name")
	if err != nil {
		return a.report(err)
	}
	email, err := a.prompt("Enter email")
	if err != nil {
		return a.report(err)
	}
	password, err := a.readSecret("Choose a password")
	if err != nil {
		return a.report(err)
	}

	if err := a.auth.Register(ctx, name, email, password); err != nil {
		return a.report(err)
	}
	a.showVerification()
	return nil
}

func (a *App) showVerification() {
	a.printf("We sent a 6-digit verification code to %s\n", maskEmail(a.auth.CurrentEmail()))
	a.printf("Type 'verify' to enter it, 'resend' for a new code or 'cancel' to go back.\n")
	a.printResendCountdown()
}

func (a *App) printResendCountdown() {
	if left := a.auth.ResendAvailableIn(); left > 0 {
		a.printf("You can request a new code in %s\n", formatCountdown(left))
		return
	}
	a.printf("Didn't receive a code? Type 'resend'.\n")
}

// Verify prompts for the emailed code and completes the registration.
func (a *App) Verify(ctx context.Context) error {
	a.printf("Verifying %s\n", maskEmail(a.auth.CurrentEmail()))
	code, err := a.prompt("Enter the 6-digit code")
	if err != nil {
		return a.report(err)
	}

	identity, err := a.auth.VerifyOTP(ctx, code)
	if err != nil {
		a.report(err)
		a.printResendCountdown()
		return err
	}
	a.printf("Welcome, %s!\n", identity.Name)
	return nil
}

// Resend requests a new verification code.
func (a *App) Resend(ctx context.Context) error {
	if err := a.auth.ResendOTP(ctx); err != nil {
		return a.report(err)
	}
	a.printResendCountdown()
	return nil
}

// Cancel abandons the pending registration.
func (a *App) Cancel(ctx context.Context) error {
	a.auth.Abandon()
	a.printf("Registration cancelled\n")
	return nil
}

// ResetPassword asks the server to email reset instructions.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := a.prompt("Enter your account email")
	if err != nil {
		return a.report(err)
	}
	return a.report(a.auth.ResetPassword(ctx, email))
}

// Logout ends the local session.
func (a *App) Logout(ctx context.Context) error {
	return a.report(a.auth.Logout(ctx))
}

// WhoAmI prints the logged-in identity.
func (a *App) WhoAmI(ctx context.Context) error {
	id, ok := a.auth.Identity()
	if !ok {
		a.printf("Not logged in\n")
		return nil
	}
	a.printf("ID:    %s\nName:  %s\nEmail: %s\nRole:  %s\n", id.ID, id.Name, id.Email, id.Role)
	return nil
}

// Profile edits name and email. Empty input keeps the current value.
func (a *App) Profile(ctx context.Context) error {
	id, ok := a.auth.Identity()
	if !ok {
		return a.report(services.ErrNotAuthenticated)
	}

	name, err := a.promptDefault("Name", id.Name)
	if err != nil {
		return a.report(err)
	}
	email, err := a.promptDefault("Email", id.Email)
	if err != nil {
		return a.report(err)
	}

	updated, err := a.auth.UpdateProfile(ctx, models.ProfileInput{Name: name, Email: email})
	if err != nil {
		return a.report(err)
	}
	a.printf("Profile: %s <%s>\n", updated.Name, updated.Email)
	return nil
}

// ChangePassword prompts for the current and a new password.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := a.readSecret("Current password")
	if err != nil {
		return a.report(err)
	}
	next, err := a.readSecret("New password")
	if err != nil {
		return a.report(err)
	}
	confirm, err := a.readSecret("Confirm new password")
	if err != nil {
		return a.report(err)
	}
	if next != confirm {
		return a.report(errPasswordMismatch)
	}

	return a.report(a.auth.ChangePassword(ctx, models.PasswordChange{CurrentPassword: current, NewPassword: next}))
}

// promptDefault shows current in brackets and returns it on empty input.
func (a *App) promptDefault(label, current string) (string, error) {
	if current != "" {
		label += " [" + current + "]"
	}
	v, err := a.prompt(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}
