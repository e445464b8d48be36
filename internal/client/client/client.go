package client

import (
	"context"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
)

// AuthAPI is the authentication half of the marketplace API.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	VerifyOTP(ctx context.Context, email, otp string) (*AuthResult, error)
	ResendOTP(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, userID string, in models.ProfileInput) (*AuthResult, error)
	ResetPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, userID string, in models.PasswordChange) error
}

// MarketplaceAPI covers listings, transactions, reviews and dashboard data.
type MarketplaceAPI interface {
	ListListings(ctx context.Context) ([]models.Listing, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	CreateListing(ctx context.Context, in models.ListingInput) (*models.Listing, error)
	UpdateListing(ctx context.Context, id string, in models.ListingInput) (*models.Listing, error)
	DeleteListing(ctx context.Context, id string) error

	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error)

	ListReviews(ctx context.Context) ([]models.Review, error)
	CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error)

	UserStats(ctx context.Context) (*models.UserStats, error)
	ImpactMetrics(ctx context.Context) (*models.ImpactMetrics, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
	WasteTypes(ctx context.Context) ([]models.WasteType, error)
}

// Client is the full marketplace API.
type Client interface {
	AuthAPI
	MarketplaceAPI
}

// Routes of the marketplace API.
const (
	pathLogin          = "/api/auth/login"
	pathSignup         = "/api/auth/signup"
	pathVerifyOTP      = "/api/auth/verify-otp"
	pathResendOTP      = "/api/auth/resend-otp"
	pathUpdateProfile  = "/api/auth/update/"
	pathResetPassword  = "/api/auth/reset-password"
	pathChangePassword = "/api/auth/change-password"
	pathListings       = "/api/eWasteListing"
	pathTransactions   = "/api/transaction"
	pathReviews        = "/api/review"
	pathWasteStats     = "/api/waste/stats"
	pathWasteTypes     = "/api/waste/types"
	pathImpactMetrics  = "/api/impact/metrics"
	pathLeaderboard    = "/api/leaderboard"
)
