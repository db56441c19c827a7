// Package histutil records best-effort edit history entries from services.
package histutil

import (
	"context"

	"covtrack/internal/domain"
)

// Log writes one edit history entry. Failures are swallowed so a history
// write can never fail the mutation it describes. The username comes from
// the request principal, "system" when absent.
func Log(ctx context.Context, history domain.HistoryRepository, action, table, key string, details *string) {
	if history == nil {
		return
	}
	username := "system"
	if p, ok := domain.PrincipalFromContext(ctx); ok {
		username = p.Name
	}
	_ = history.Insert(ctx, &domain.HistoryEntry{
		Username:  username,
		Action:    action,
		TableName: table,
		RecordKey: key,
		Details:   details,
	})
}
