package models

import "time"

type EntryKind string

const (
	KindEarn  EntryKind = "earn"
	KindSpend EntryKind = "spend"
)

// LedgerEntry is an immutable fact: a single signed point delta against
// one account. Entries are only ever inserted, never updated or deleted,
// and the account balance must equal the sum of its deltas at all times.
type LedgerEntry struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Delta       int64     `json:"delta"`
	Kind        EntryKind `json:"kind"`
	TokenID     *string   `json:"token_id,omitempty"`
	PrizeID     *string   `json:"prize_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// LedgerEntryDetail is an entry joined with the display names of its
// reference entities, for history views.
type LedgerEntryDetail struct {
	LedgerEntry
	TokenLabel *string `json:"token_label,omitempty"`
	PrizeName  *string `json:"prize_name,omitempty"`
}
