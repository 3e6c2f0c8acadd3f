// internal/app/system/normalize/normalize.go

// Package normalize centralizes input normalization so every caller agrees on
// what "the same name" means. Reservation keys in particular must be folded
// identically at reserve time and at probe time or the uniqueness lock leaks.
package normalize

import (
	"html"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/microcosm-cc/bluemonday"
)

// strict strips every HTML element from user-supplied display text.
var strict = bluemonday.StrictPolicy()

// DisplayName returns s with HTML stripped and surrounding whitespace
// removed, preserving case. Used for first/last names.
func DisplayName(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Key folds s into a reservation key: HTML stripped, trimmed, lowercased,
// diacritics removed. Team names and usernames are stored in this form.
func Key(s string) string {
	return text.Fold(strings.TrimSpace(html.UnescapeString(strict.Sanitize(s))))
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Code lowercases and trims an invite or QR code.
func Code(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Answer canonicalizes a submitted or stored bonus answer for comparison:
// whitespace-trimmed and case-insensitive.
func Answer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
