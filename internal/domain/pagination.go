package domain

import (
	"encoding/base64"
	"strconv"
)

// DefaultMaxResults is the page size used when the caller does not ask
// for one. MaxMaxResults caps what a caller may ask for.
const (
	DefaultMaxResults = 50
	MaxMaxResults     = 500
)

// PageRequest holds pagination parameters for list operations. PageToken
// is opaque to callers; internally it is a base64-encoded row offset.
type PageRequest struct {
	MaxResults int
	PageToken  string
}

// Offset decodes the page token. An empty or malformed token means the
// first page.
func (p PageRequest) Offset() int {
	if p.PageToken == "" {
		return 0
	}
	raw, err := base64.StdEncoding.DecodeString(p.PageToken)
	if err != nil {
		return 0
	}
	off, err := strconv.Atoi(string(raw))
	if err != nil || off < 0 {
		return 0
	}
	return off
}

// Limit returns the effective page size, clamped to [1, MaxMaxResults].
func (p PageRequest) Limit() int {
	switch {
	case p.MaxResults <= 0:
		return DefaultMaxResults
	case p.MaxResults > MaxMaxResults:
		return MaxMaxResults
	default:
		return p.MaxResults
	}
}

// NextPageToken returns the token for the page after the one described by
// offset and limit, or "" when total rows are exhausted.
func NextPageToken(offset, limit int, total int64) string {
	next := offset + limit
	if int64(next) >= total {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(next)))
}
