// Package utils contains small helper functions used across the project.
//
// These are generic helpers that don't belong to a specific layer.
package utils

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrNoEmail is returned by Gravatar for a missing or blank address.
var ErrNoEmail = errors.New("no email address")

// Gravatar returns the avatar key for an email address: the hex md5 of
// the trimmed, lowercased address.
func Gravatar(email *string) (string, error) {
	if email == nil {
		return "", ErrNoEmail
	}

	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return "", ErrNoEmail
	}

	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:]), nil
}
