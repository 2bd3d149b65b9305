package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSnapshotID computes a deterministic snapshot_id using SHA256.
// Formula: SHA256(user_id|computed_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputeSnapshotID(userID string, computedAtMs int64) string {
	data := fmt.Sprintf("%s|%d", userID, computedAtMs)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
