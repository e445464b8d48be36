// Package common contains shared constants and sentinel errors used across
// the e-waste client components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token in the Authorization header value.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName tags every outbound request with a unique id.
	RequestIDHeaderName = "X-Request-ID"

	// DefaultKeyPrefix namespaces persisted session keys.
	DefaultKeyPrefix = "ewaste"
)
