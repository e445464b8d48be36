// Package client is the REST boundary of the e-waste marketplace client.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic API contracts: AuthAPI (login, signup, OTP
//     verification, profile and password operations) and MarketplaceAPI
//     (listings, transactions, reviews, dashboard data).
//  2. HTTPClient, a JSON-over-HTTP implementation that attaches the bearer
//     token from a TokenSource to every request and reports any 401 received
//     on an authenticated request to a single UnauthorizedHandler. That hook
//     is the one place a server-side session expiry is detected.
//  3. Normalization of loosely-typed auth responses (alternate field names,
//     nested user objects, numeric ids) into AuthResult.
//
// # Error Handling
//
// Failed responses are returned as *APIError, which unwraps to the sentinel
// errors ErrUnauthorized, ErrNotFound or ErrUnavailable where the status code
// calls for it. Transport failures wrap ErrUnavailable. Malformed success
// bodies wrap ErrInvalidServerResponse.
//
// Nothing is retried automatically.
package client
