package harness

import "github.com/google/uuid"

// RunTokenGenerator generates unique run tokens for trace correlation.
// Implemented by UUIDv7Generator (production) and testutil.FixedGenerator
// (tests).
type RunTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens
// sort by creation time, which keeps trace listings chronological.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
