package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/ewaste/internal/client/services"
	"github.com/dmitrijs2005/ewaste/internal/client/validation"
)

// localErrors are failures the services return without notifying the user.
var localErrors = []error{
	services.ErrBusy,
	services.ErrAlreadyAuthenticated,
	services.ErrNotAuthenticated,
	services.ErrNoPendingVerification,
	services.ErrResendCooldown,
	io.EOF,
}

// report prints err unless a notification already showed it. Validation
// errors are listed per field, like inline form errors.
func (a *App) report(err error) error {
	if err == nil {
		return nil
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		keys := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		a.printf("Please correct the following:\n")
		for _, k := range keys {
			a.printf("  - %s\n", verr.Fields[k])
		}
		return err
	}

	if isLocal(err) {
		a.printf("✖ %v\n", err)
	}
	return err
}

func isLocal(err error) bool {
	for _, target := range localErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	var inErr *inputError
	return errors.As(err, &inErr)
}

var errPasswordMismatch = badInput(errors.New("passwords don't match"))

// inputError is a value the CLI could not parse.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func badInput(err error) error {
	if err == nil {
		return nil
	}
	return &inputError{err: err}
}

// maskEmail hides most of the local part: "abcdefgh@x.io" becomes
// "ab●●●●●h@x.io". At most five characters are masked.
func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return email
	}

	r := []rune(local)
	if len(r) < 3 {
		return string(r[:1]) + "●@" + domain
	}
	hidden := min(len(r)-3, 5)
	return string(r[:2]) + strings.Repeat("●", hidden) + string(r[len(r)-1]) + "@" + domain
}

func formatCountdown(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateOnly)
}
