package utils

import (
	"regexp"
	"strings"

	"github.com/treysonbrown/planner-api/internal/constants"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^a-z0-9_-]`)
)

// NormalizeUsername lowercases and trims the input, replaces whitespace runs
// with underscores, strips everything outside [a-z0-9_-] and caps the length.
// The result may be empty or shorter than the minimum; callers decide what
// that means.
func NormalizeUsername(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = whitespaceRe.ReplaceAllString(s, "_")
	s = disallowedRe.ReplaceAllString(s, "")
	if len(s) > constants.MaxUsernameLength {
		s = s[:constants.MaxUsernameLength]
	}
	return s
}

// DeriveUsername picks a base handle from identity claims, preferring
// nickname, then name, then the local part of the email, and falls back to
// "user" when nothing usable remains after normalization.
func DeriveUsername(nickname, name, email string) string {
	raw := nickname
	if raw == "" {
		raw = name
	}
	if raw == "" && email != "" {
		raw = strings.SplitN(email, "@", 2)[0]
	}
	if raw == "" {
		raw = "user"
	}

	normalized := NormalizeUsername(raw)
	if normalized == "" {
		return "user"
	}
	return normalized
}
