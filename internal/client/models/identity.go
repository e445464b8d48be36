// Package models defines the client-side data types exchanged with the
// marketplace API and kept in local storage.
package models

import "errors"

// DefaultRole is assigned when the server does not report a role.
const DefaultRole = "user"

var ErrIncompleteIdentity = errors.New("identity requires id and email")

// Identity is the authenticated user as known to the client.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Validate checks the minimum an identity needs to be persisted.
func (i Identity) Validate() error {
	if i.ID == "" || i.Email == "" {
		return ErrIncompleteIdentity
	}
	return nil
}

// WithDefaults fills in the role when it is empty.
func (i Identity) WithDefaults() Identity {
	if i.Role == "" {
		i.Role = DefaultRole
	}
	return i
}
