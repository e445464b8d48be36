package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/ewaste/internal/client/client"
	"github.com/dmitrijs2005/ewaste/internal/client/models"
	"github.com/dmitrijs2005/ewaste/internal/client/validation"
	"github.com/dmitrijs2005/ewaste/internal/logging"
)

// Dashboard section names, used as keys of models.Dashboard.Errors.
const (
	SectionStats       = "stats"
	SectionImpact      = "impact"
	SectionLeaderboard = "leaderboard"
	SectionWasteTypes  = "wasteTypes"
)

var ErrNoUploader = errors.New("image uploads are not configured")

// IdentitySource reports who is logged in. AuthController implements it.
type IdentitySource interface {
	Identity() (models.Identity, bool)
}

// ImageUploader stores a local image and returns its URL.
type ImageUploader interface {
	UploadFile(ctx context.Context, path string) (string, error)
}

// MarketplaceService validates marketplace forms, stamps them with the
// current user and forwards them to the API.
type MarketplaceService struct {
	api      client.MarketplaceAPI
	auth     IdentitySource
	uploader ImageUploader
	notify   Notifier
	log      logging.Logger
	now      func() time.Time
}

// NewMarketplaceService returns a MarketplaceService. uploader may be nil
// when image uploads are not configured.
func NewMarketplaceService(api client.MarketplaceAPI, auth IdentitySource, uploader ImageUploader, notify Notifier, log logging.Logger) *MarketplaceService {
	return &MarketplaceService{
		api:      api,
		auth:     auth,
		uploader: uploader,
		notify:   notify,
		log:      log,
		now:      time.Now,
	}
}

func (s *MarketplaceService) identity() (models.Identity, error) {
	id, ok := s.auth.Identity()
	if !ok {
		return models.Identity{}, ErrNotAuthenticated
	}
	return id, nil
}

func (s *MarketplaceService) fail(ctx context.Context, op string, err error) error {
	s.log.Warn(ctx, op+" failed", "error", err)
	s.notify.Error(client.Message(err))
	return err
}

func (s *MarketplaceService) ListListings(ctx context.Context) ([]models.Listing, error) {
	items, err := s.api.ListListings(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list listings", err)
	}
	return items, nil
}

func (s *MarketplaceService) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	item, err := s.api.GetListing(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, s.fail(ctx, "get listing", err)
	}
	return item, nil
}

// CreateListing uploads images first, then creates the listing referencing
// their URLs. Nothing is uploaded if the form is invalid.
func (s *MarketplaceService) CreateListing(ctx context.Context, in models.ListingInput, imagePaths []string) (*models.Listing, error) {
	user, err := s.identity()
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if len(imagePaths) > 0 && s.uploader == nil {
		return nil, s.fail(ctx, "upload image", ErrNoUploader)
	}
	for _, p := range imagePaths {
		url, err := s.uploader.UploadFile(ctx, p)
		if err != nil {
			return nil, s.fail(ctx, "upload image", err)
		}
		in.Images = append(in.Images, url)
	}

	in.UserID = user.ID
	item, err := s.api.CreateListing(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, "create listing", err)
	}
	s.notify.Success("E-waste listing created successfully")
	return item, nil
}

func (s *MarketplaceService) UpdateListing(ctx context.Context, id string, in models.ListingInput) (*models.Listing, error) {
	user, err := s.identity()
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	in.UserID = user.ID
	item, err := s.api.UpdateListing(ctx, strings.TrimSpace(id), in)
	if err != nil {
		return nil, s.fail(ctx, "update listing", err)
	}
	s.notify.Success("E-waste listing updated successfully")
	return item, nil
}

func (s *MarketplaceService) DeleteListing(ctx context.Context, id string) error {
	if _, err := s.identity(); err != nil {
		return err
	}
	if err := s.api.DeleteListing(ctx, strings.TrimSpace(id)); err != nil {
		return s.fail(ctx, "delete listing", err)
	}
	s.notify.Success("E-waste listing deleted successfully")
	return nil
}

func (s *MarketplaceService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	items, err := s.api.ListTransactions(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list transactions", err)
	}
	return items, nil
}

func (s *MarketplaceService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	item, err := s.api.GetTransaction(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, s.fail(ctx, "get transaction", err)
	}
	return item, nil
}

// CreateTransaction records a transaction. An empty date means today and an
// empty status means pending.
func (s *MarketplaceService) CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error) {
	user, err := s.identity()
	if err != nil {
		return nil, err
	}
	if in.Date == "" {
		in.Date = s.now().Format(time.DateOnly)
	}
	if in.Status == "" {
		in.Status = string(models.TransactionPending)
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	in.UserID = user.ID
	item, err := s.api.CreateTransaction(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, "create transaction", err)
	}
	s.notify.Success("Transaction recorded successfully")
	return item, nil
}

func (s *MarketplaceService) ListReviews(ctx context.Context) ([]models.Review, error) {
	items, err := s.api.ListReviews(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list reviews", err)
	}
	return items, nil
}

func (s *MarketplaceService) CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	user, err := s.identity()
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	in.UserID = user.ID
	in.UserName = user.Name
	item, err := s.api.CreateReview(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, "create review", err)
	}
	s.notify.Success("Review submitted successfully")
	return item, nil
}

// Dashboard fetches all dashboard sections in parallel. A failed section is
// left empty and its error recorded; the dashboard itself never fails.
func (s *MarketplaceService) Dashboard(ctx context.Context) *models.Dashboard {
	d := &models.Dashboard{Errors: map[string]error{}}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	record := func(section string, err error) {
		if err == nil {
			return
		}
		s.log.Warn(ctx, "dashboard section failed", "section", section, "error", err)
		mu.Lock()
		d.Errors[section] = err
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		var err error
		d.Stats, err = s.api.UserStats(ctx)
		record(SectionStats, err)
	}()
	go func() {
		defer wg.Done()
		var err error
		d.Impact, err = s.api.ImpactMetrics(ctx)
		record(SectionImpact, err)
	}()
	go func() {
		defer wg.Done()
		var err error
		d.Leaderboard, err = s.api.Leaderboard(ctx)
		record(SectionLeaderboard, err)
	}()
	go func() {
		defer wg.Done()
		var err error
		d.WasteTypes, err = s.api.WasteTypes(ctx)
		record(SectionWasteTypes, err)
	}()
	wg.Wait()

	return d
}
