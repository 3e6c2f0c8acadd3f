// internal/app/system/invite/invite.go

// Package invite generates team invite codes. Codes are random strings over a
// fixed lowercase alphabet; uniqueness is NOT guaranteed here — the team
// create transaction checks for collisions against existing teams and fails
// retryably, which is acceptable because collision odds at the default
// length are negligible.
package invite

import (
	"crypto/rand"
	"strings"
)

// Alphabet is the fixed code alphabet. Lowercase so codes survive the same
// normalization as every other inbound code.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the code length used when none is configured.
const DefaultLength = 8

// New returns a random code of the given length. Lengths below 1 fall back
// to DefaultLength.
func New(length int) string {
	if length < 1 {
		length = DefaultLength
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// nothing sensible can be served in that state.
		panic("invite: crypto/rand unavailable: " + err.Error())
	}
	var sb strings.Builder
	sb.Grow(length)
	for _, b := range buf {
		sb.WriteByte(Alphabet[int(b)%len(Alphabet)])
	}
	return sb.String()
}
