package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
)

// Reviews prints the review feed.
func (a *App) Reviews(ctx context.Context) error {
	items, err := a.market.ListReviews(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(items) == 0 {
		a.printf("No reviews yet\n")
		return nil
	}

	for _, r := range items {
		a.printf("%s %s  %s\n", stars(r.Rating), orDash(r.Title), orDash(r.UserName))
		a.printf("  %s\n", r.Comment)
		a.printf("  %s\n\n", formatTime(r.CreatedAt))
	}
	return nil
}

// AddReview rates a listing or a transaction.
func (a *App) AddReview(ctx context.Context) error {
	var in models.ReviewInput
	var err error

	if in.ListingID, err = a.prompt("Listing ID (optional)"); err != nil {
		return a.report(err)
	}
	if in.ListingID == "" {
		if in.TransactionID, err = a.prompt("Transaction ID (optional)"); err != nil {
			return a.report(err)
		}
	}
	if in.Title, err = a.prompt("Title"); err != nil {
		return a.report(err)
	}
	rating, err := a.prompt("Rating 1-5")
	if err != nil {
		return a.report(err)
	}
	if in.Rating, err = parseInt(rating); err != nil {
		return a.report(badInput(err))
	}
	if in.Comment, err = getMultiline(a.reader, "Comment", a.out); err != nil {
		return a.report(err)
	}

	if _, err := a.market.CreateReview(ctx, in); err != nil {
		return a.report(err)
	}
	return nil
}

func stars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
