package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
)

// decodeList accepts a bare array, {"data": [...]} or {<key>: [...]}.
func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}
	for _, k := range []string{"data", key} {
		if inner, ok := envelope[k]; ok {
			return decodeList[T](inner, key)
		}
	}
	return nil, fmt.Errorf("%w: no %q array in response", ErrInvalidServerResponse, key)
}

// decodeItem accepts a bare object, {"data": {...}} or {<key>: {...}}.
func decodeItem[T any](raw json.RawMessage, key string) (*T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrInvalidServerResponse)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}
	for _, k := range []string{"data", key} {
		if inner, ok := envelope[k]; ok && len(bytes.TrimSpace(inner)) > 0 && bytes.TrimSpace(inner)[0] == '{' {
			return decodeItem[T](inner, key)
		}
	}

	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}
	return &item, nil
}

func getList[T any](ctx context.Context, c *HTTPClient, path, key string) ([]T, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw, key)
}

func getItem[T any](ctx context.Context, c *HTTPClient, path, key string) (*T, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeItem[T](raw, key)
}

func sendItem[T any](ctx context.Context, c *HTTPClient, method, path, key string, body any) (*T, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, method, path, body, &raw); err != nil {
		return nil, err
	}
	return decodeItem[T](raw, key)
}

func (c *HTTPClient) ListListings(ctx context.Context) ([]models.Listing, error) {
	return getList[models.Listing](ctx, c, pathListings, "listings")
}

func (c *HTTPClient) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	return getItem[models.Listing](ctx, c, pathListings+"/"+id, "listing")
}

func (c *HTTPClient) CreateListing(ctx context.Context, in models.ListingInput) (*models.Listing, error) {
	return sendItem[models.Listing](ctx, c, http.MethodPost, pathListings, "listing", in)
}

func (c *HTTPClient) UpdateListing(ctx context.Context, id string, in models.ListingInput) (*models.Listing, error) {
	return sendItem[models.Listing](ctx, c, http.MethodPut, pathListings+"/"+id, "listing", in)
}

func (c *HTTPClient) DeleteListing(ctx context.Context, id string) error {
	return c.delete(ctx, pathListings+"/"+id)
}

func (c *HTTPClient) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return getList[models.Transaction](ctx, c, pathTransactions, "transactions")
}

func (c *HTTPClient) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return getItem[models.Transaction](ctx, c, pathTransactions+"/"+id, "transaction")
}

func (c *HTTPClient) CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error) {
	return sendItem[models.Transaction](ctx, c, http.MethodPost, pathTransactions, "transaction", in)
}

func (c *HTTPClient) ListReviews(ctx context.Context) ([]models.Review, error) {
	return getList[models.Review](ctx, c, pathReviews, "reviews")
}

func (c *HTTPClient) CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	return sendItem[models.Review](ctx, c, http.MethodPost, pathReviews, "review", in)
}

func (c *HTTPClient) UserStats(ctx context.Context) (*models.UserStats, error) {
	return getItem[models.UserStats](ctx, c, pathWasteStats, "stats")
}

func (c *HTTPClient) ImpactMetrics(ctx context.Context) (*models.ImpactMetrics, error) {
	return getItem[models.ImpactMetrics](ctx, c, pathImpactMetrics, "metrics")
}

func (c *HTTPClient) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return getList[models.LeaderboardEntry](ctx, c, pathLeaderboard, "leaderboard")
}

func (c *HTTPClient) WasteTypes(ctx context.Context) ([]models.WasteType, error) {
	return getList[models.WasteType](ctx, c, pathWasteTypes, "types")
}
