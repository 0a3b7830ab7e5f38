// Package idgen generates opaque, time-sortable IDs for every entity in
// the data model (spec.md §3: "opaque string IDs (ULID-like, sortable by
// creation time)"). Sortability comes from a millisecond timestamp
// prefix; uniqueness comes from a random suffix via google/uuid.
package idgen

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns a new sortable ID: a 12-hex-digit millisecond timestamp
// followed by 10 hex digits of randomness, e.g. "018f3a2b9c10-4e1a9c2b01".
func New() string {
	ms := time.Now().UnixMilli()
	u := uuid.New()
	rnd := hex.EncodeToString(u[:5])
	return fmt.Sprintf("%012x-%s", ms, rnd)
}

// NewWithPrefix prefixes the ID with a short entity tag, e.g. "sess",
// "msg", "ctr", "cls", "log", "doc" — purely cosmetic, never parsed.
func NewWithPrefix(prefix string) string {
	return prefix + "_" + New()
}
