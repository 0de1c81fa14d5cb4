package postgres

import (
	"context"
	"strings"

	"purrr-love/internal/domain/catalog"
	"purrr-love/internal/domain/economy"
	"purrr-love/internal/domain/health"
)

// ActionLogs devuelve el historial de acciones del owner, más reciente primero.
func (s *Store) ActionLogs(ctx context.Context, ownerID string, limit int) ([]economy.ActionLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, pet_id, kind, action_key, coins_delta, coins_after, message, created_at
		FROM action_logs
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, strings.TrimSpace(ownerID), health.NormalizeLimit(limit))
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]economy.ActionLog, 0)
	for rows.Next() {
		var (
			l    economy.ActionLog
			kind string
		)
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.PetID, &kind, &l.ActionKey, &l.CoinsDelta, &l.CoinsAfter, &l.Message, &l.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		l.Kind = catalog.Kind(kind)
		l.CreatedAt = l.CreatedAt.UTC()
		out = append(out, l)
	}
	return out, mapErr(rows.Err())
}
