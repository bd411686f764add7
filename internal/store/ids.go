package store

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateID creates a store-assigned record id: 12 hex chars of
// cryptographic randomness. Callers that need well-known ids (seed data)
// supply their own instead.
func GenerateID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand read failure means the platform RNG is broken;
		// nothing sensible to return.
		panic("store: generate id: " + err.Error())
	}
	return hex.EncodeToString(b)
}
