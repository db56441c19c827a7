package domain

import "time"

// HistoryEntry is an immutable audit record of one mutating action.
type HistoryEntry struct {
	ID        string
	Username  string
	Action    string
	TableName string
	RecordKey string
	Details   *string
	CreatedAt time.Time
}
