package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewProjectID generates a locally-assigned project ID: millisecond
// timestamp prefix plus a random hex suffix. The prefix keeps IDs roughly
// sortable; the suffix makes collisions negligible.
func NewProjectID() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d%s", time.Now().UnixMilli(), hex.EncodeToString(b)), nil
}
