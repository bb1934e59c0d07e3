// Package bookingcode generates and validates the customer-facing booking
// reference codes (format AC-XXXXXX).
//
// The alphabet deliberately excludes the visually ambiguous glyphs I, O, 1
// and 0, leaving 32 symbols and a code space of 32^6 (~1.07e9) values.
package bookingcode

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"

	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

const (
	// Prefix is the fixed public-code prefix.
	Prefix = "AC-"
	// Length is the number of random symbols after the prefix.
	Length = 6
	// Alphabet is the 32-symbol set codes are drawn from.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxAttempts = 10
)

var codePattern = regexp.MustCompile(fmt.Sprintf(`^%s[%s]{%d}$`, Prefix, Alphabet, Length))

// UniquenessCheck reports whether a candidate code is free to use.
type UniquenessCheck func(ctx context.Context, code string) (bool, error)

// Generate draws a random code without checking uniqueness.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.NewInternalError("failed to read random bytes for booking code", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return Prefix + string(buf), nil
}

// GenerateUnique draws candidates until isUnique accepts one, retrying up to
// ten times. Exhaustion is an internal error, not a business outcome: it
// signals the code space or the uniqueness check is misbehaving.
func GenerateUnique(ctx context.Context, isUnique UniquenessCheck) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		code, err := Generate()
		if err != nil {
			return "", err
		}

		unique, err := isUnique(ctx, code)
		if err != nil {
			return "", apperrors.NewInternalError("booking code uniqueness check failed", err)
		}
		if unique {
			return code, nil
		}
	}

	return "", apperrors.NewInternalError(
		fmt.Sprintf("failed to generate a unique booking code after %d attempts", maxAttempts), nil)
}

// IsValid reports whether code matches the fixed prefix+length format.
// Used to reject malformed lookups before touching storage.
func IsValid(code string) bool {
	return codePattern.MatchString(code)
}
