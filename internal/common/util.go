package common

import "strings"

// EmailLocalPart returns the part of an address before '@'. Addresses without
// '@' are returned unchanged.
func EmailLocalPart(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return email
	}
	return local
}
