package models

import "time"

type RecordType string

const (
	RecordTypeEarn  RecordType = "earn"
	RecordTypeSpend RecordType = "spend"
)

// MaxPointsHistory caps the in-memory points history; the oldest records
// are dropped past this.
const MaxPointsHistory = 1000

// PointsRecord is an append-only entry written on every balance mutation.
type PointsRecord struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Timestamp time.Time      `json:"timestamp"`
	Reason    string         `json:"reason"`
	Amount    int64          `json:"amount"`
	OldPoints int64          `json:"oldPoints"`
	NewPoints int64          `json:"newPoints"`
	Type      RecordType     `json:"type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PointsUpdate is the result of a ledger mutation.
type PointsUpdate struct {
	OldPoints int64 `json:"oldPoints"`
	NewPoints int64 `json:"newPoints"`
}
