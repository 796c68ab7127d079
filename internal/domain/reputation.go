package domain

import "time"

// ReputationEntry is one append-only ledger row recording a trust-score delta.
// Entries are never mutated or deleted; the cached User.TrustScore is a
// denormalized projection of the entry sums.
type ReputationEntry struct {
	ID            int32     `json:"id"`
	UserID        int32     `json:"user_id"`
	Change        int32     `json:"change"`
	Reason        string    `json:"reason"`
	PreviousScore int32     `json:"previous_score"`
	NewScore      int32     `json:"new_score"`
	CreatedOn     time.Time `json:"created_on"`
}

// ReputationSummary aggregates a user's ledger for the read path.
type ReputationSummary struct {
	UserID       int32            `json:"user_id"`
	CurrentScore int32            `json:"current_score"`
	TotalPenalty int32            `json:"total_penalty"`
	TotalCredit  int32            `json:"total_credit"`
	EntryCount   int32            `json:"entry_count"`
	ByReason     map[string]int32 `json:"by_reason"`
}
