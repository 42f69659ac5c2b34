// Package ident derives stable numeric identifiers from document references.
package ident

import (
	"fmt"
	"strings"

	"github.com/lunalabs/intakeflow/internal/domain"
)

const (
	// hashMod keeps derived identifiers within nine decimal digits.
	hashMod = 1_000_000_000

	linkMarker = "id="
)

// Derive computes a deterministic identifier for a document reference using a
// rolling polynomial hash. The result is zero-padded to eight digits; values
// at or above 10^8 print nine digits, which callers treat as equally valid.
// Collisions are possible and accepted, not detected.
func Derive(reference string) (string, error) {
	if reference == "" {
		return "", fmt.Errorf("empty reference: %w", domain.ErrInvalidReference)
	}

	var n uint64
	for _, c := range reference {
		n = (n*37 + uint64(c)) % hashMod
	}
	return fmt.Sprintf("%08d", n), nil
}

// ParseLink extracts the opaque file handle from a share link of the form
// "...?id=<handle>&...". It returns ErrInvalidReference when the id marker
// is absent or carries no value.
func ParseLink(link string) (string, error) {
	_, rest, found := strings.Cut(link, linkMarker)
	if !found {
		return "", fmt.Errorf("link %q has no %s marker: %w", link, linkMarker, domain.ErrInvalidReference)
	}

	handle, _, _ := strings.Cut(rest, "&")
	if handle == "" {
		return "", fmt.Errorf("link %q has an empty handle: %w", link, domain.ErrInvalidReference)
	}
	return handle, nil
}
