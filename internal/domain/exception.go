package domain

import "time"

// Exception is a TCID excluded from all coverage accounting: reads filter it
// out and writes referencing it are rejected.
type Exception struct {
	ID        int64
	TCID      string
	Reason    *string
	IsDeleted bool
	CreatedAt time.Time
}

// SupportedEngine is one entry of the recognized search-engine reference
// list, used for validation, autocomplete, and to parametrize extraction.
type SupportedEngine struct {
	Name      string
	CreatedAt time.Time
}
