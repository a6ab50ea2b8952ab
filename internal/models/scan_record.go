package models

import "time"

// ScanRecord marks that an account was rewarded for a token at a point
// in time. It exists to enforce the cooldown window.
type ScanRecord struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	TokenID   string    `json:"token_id"`
	ScannedAt time.Time `json:"scanned_at"`
}
