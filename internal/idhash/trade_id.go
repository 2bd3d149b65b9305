package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeTradeID computes a deterministic trade_id for a broker-imported trade.
// Formula: SHA256(user_id|account_id|PLATFORM|ticket)
// Re-importing the same broker ticket yields the same ID, so the store's
// duplicate-key check makes imports idempotent.
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(
	userID string,
	accountID string,
	platform string,
	ticket string,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		userID,
		accountID,
		strings.ToUpper(platform),
		ticket,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
