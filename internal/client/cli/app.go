package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
	"github.com/dmitrijs2005/ewaste/internal/client/services"
	"github.com/dmitrijs2005/ewaste/internal/logging"
)

// AuthFlow is the part of services.AuthController the CLI drives.
type AuthFlow interface {
	State() services.State
	Identity() (models.Identity, bool)
	CurrentEmail() string
	ResendAvailableIn() time.Duration

	Login(ctx context.Context, email, password string) (models.Identity, error)
	Register(ctx context.Context, name, email, password string) error
	VerifyOTP(ctx context.Context, code string) (models.Identity, error)
	ResendOTP(ctx context.Context) error
	Abandon()
	Logout(ctx context.Context) error

	UpdateProfile(ctx context.Context, in models.ProfileInput) (models.Identity, error)
	ChangePassword(ctx context.Context, in models.PasswordChange) error
	ResetPassword(ctx context.Context, email string) error
}

// Marketplace is the part of services.MarketplaceService the CLI drives.
type Marketplace interface {
	ListListings(ctx context.Context) ([]models.Listing, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	CreateListing(ctx context.Context, in models.ListingInput, imagePaths []string) (*models.Listing, error)
	UpdateListing(ctx context.Context, id string, in models.ListingInput) (*models.Listing, error)
	DeleteListing(ctx context.Context, id string) error

	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error)

	ListReviews(ctx context.Context) ([]models.Review, error)
	CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error)

	Dashboard(ctx context.Context) *models.Dashboard
}

var (
	_ AuthFlow    = (*services.AuthController)(nil)
	_ Marketplace = (*services.MarketplaceService)(nil)
)

// App is the interactive e-waste client.
type App struct {
	auth   AuthFlow
	market Marketplace
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

// NewApp returns an App reading commands from in and printing to out.
func NewApp(auth AuthFlow, market Marketplace, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		auth:   auth,
		market: market,
		reader: bufio.NewReader(in),
		out:    out,
		log:    log,
	}
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	a.printf("Welcome to the e-waste marketplace CLI (type 'help' for commands)\n")
	if id, ok := a.auth.Identity(); ok {
		a.printf("Welcome back, %s\n", id.Name)
	}
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) state() services.State {
	return a.auth.State()
}

// status renders the prompt suffix, e.g. "(Ann authenticated)".
func (a *App) status() string {
	state := a.auth.State()
	if id, ok := a.auth.Identity(); ok && state == services.Authenticated {
		return fmt.Sprintf("(%s %s)", id.Name, state)
	}
	return fmt.Sprintf("(%s)", state)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) prompt(label string) (string, error) {
	return getSimpleText(a.reader, label, a.out)
}

// argOrPrompt returns args[0] or asks for it.
func (a *App) argOrPrompt(args []string, label string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return a.prompt(label)
}
