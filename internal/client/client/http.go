package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/ewaste/internal/buildinfo"
	"github.com/dmitrijs2005/ewaste/internal/common"
	"github.com/dmitrijs2005/ewaste/internal/logging"
	"github.com/google/uuid"
)

const (
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
	contentTypeJSON   = "application/json"
)

// TokenSource returns the bearer token to attach, or "" for none.
type TokenSource func(ctx context.Context) string

// UnauthorizedHandler is called when a request that carried a bearer token
// is answered with 401.
type UnauthorizedHandler func(ctx context.Context)

// HTTPClient talks JSON to the marketplace API.
//
// SetTokenSource and OnUnauthorized are expected to be called during wiring,
// before the first request.
type HTTPClient struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    TokenSource
	onUnauthorized UnauthorizedHandler
	newRequestID   func() string
	log            logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API at baseURL. A zero timeout
// leaves the transport default in place.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		tokenSource:  func(context.Context) string { return "" },
		newRequestID: uuid.NewString,
		log:          log,
	}
}

func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.tokenSource = ts
}

func (c *HTTPClient) OnUnauthorized(h UnauthorizedHandler) {
	c.onUnauthorized = h
}

// doRequest sends body as JSON to path and decodes the response into result
// (when non-nil). Request and response hooks live here so every call site
// shares them.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body any, result any) error {
	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("build URL for %s: %w", path, err)
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := c.newRequestID()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set(headerUserAgent, "ewaste-cli/"+buildinfo.Version)
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}

	token := c.tokenSource(ctx)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	log := c.log.With("method", method, "path", path, "request_id", requestID)
	log.Debug(ctx, "api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn(ctx, "api transport error", "error", err)
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(ErrUnavailable, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, errors.Join(ErrUnavailable, err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := parseError(resp.StatusCode, respBody)
		log.Warn(ctx, "api error", "status", resp.StatusCode, "message", apiErr.Message)

		if resp.StatusCode == http.StatusUnauthorized && token != "" && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return apiErr
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrInvalidServerResponse, method, path, err)
		}
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, result any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result)
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, result any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, result)
}

func (c *HTTPClient) put(ctx context.Context, path string, body any, result any) error {
	return c.doRequest(ctx, http.MethodPut, path, body, result)
}

func (c *HTTPClient) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}
