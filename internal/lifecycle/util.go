package lifecycle

import (
	"context"
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
)

func normalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// RefusePending fails with code when a PENDING request matches q.
func RefusePending(ctx context.Context, tx store.Tx, q store.PendingQuery, code string) error {
	exists, err := tx.Requests().ExistsPending(ctx, q)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict(code)
	}
	return nil
}
