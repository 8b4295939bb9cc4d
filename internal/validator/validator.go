// Package validator provides input validation and sanitization functions
// for the Sjaj&Red API.
package validator

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInputTooLong     = errors.New("input exceeds maximum length")
	ErrEmptyInput       = errors.New("input cannot be empty")
	ErrOutOfRange       = errors.New("value out of range")
	ErrInvalidCharacter = errors.New("input contains invalid characters")
)

// Length limits for free text
const (
	MaxNameLength    = 120
	MaxMessageLength = 5000
	MaxBioLength     = 2000
	MaxCommentLength = 1000
)

// ValidateEmail validates email address format according to RFC 5322.
// Returns nil if valid, or an appropriate error.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(email) > 254 {
		return ErrInputTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}

	return nil
}

// NormalizeEmail trims and lowercases an address for storage
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// LocalPart returns the part of an email address before the @
func LocalPart(email string) string {
	email = strings.TrimSpace(email)
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}

// RequireText rejects blank or overlong text. The text itself is not altered.
func RequireText(text string, maxLength int) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	if maxLength > 0 && utf8.RuneCountInString(text) > maxLength {
		return ErrInputTooLong
	}
	if strings.ContainsRune(text, 0) {
		return ErrInvalidCharacter
	}
	return nil
}

// ValidateRange checks min <= v <= max
func ValidateRange(v, min, max int) error {
	if v < min || v > max {
		return ErrOutOfRange
	}
	return nil
}

// Pagination constants
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidatePagination validates and sanitizes pagination parameters.
// Returns sanitized limit and offset values.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// SanitizeString removes potentially dangerous characters and enforces length limits.
// Removes control characters and trims whitespace.
func SanitizeString(input string, maxLength int) string {
	// Remove control characters (ASCII 0-31 and 127)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	// Trim whitespace
	input = strings.TrimSpace(input)

	// Enforce maximum length if specified
	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}

	return input
}
