package rooms

import (
	"context"
	"database/sql"

	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"

	"github.com/eskrenkovic/tql"
)

// Ledger holds the standing ban records for (room, user) pairs. It is
// the single authority consulted at token-issuance time - reads go
// straight to the store so a freshly written ban is always observed.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db}
}

type banCheck struct {
	Banned bool `db:"banned"`
}

// Ban records the refusal. Banning an already-banned user is a no-op
// success.
func (l *Ledger) Ban(ctx context.Context, ban domain.Ban) error {
	const stmt = `
		INSERT INTO
			room_ban (room_name, user_id, banned_by, reason, created_at)
		VALUES
			(:room_name, :user_id, :banned_by, :reason, now())
		ON CONFLICT (room_name, user_id)
		DO NOTHING;`
	_, err := tql.Exec(ctx, l.db, stmt, ban)
	return err
}

// Unban deletes the record. Absence is not an error.
func (l *Ledger) Unban(ctx context.Context, roomName, userID string) error {
	const stmt = `
		DELETE FROM
			room_ban
		WHERE
			room_name = $1 AND user_id = $2;`
	_, err := tql.Exec(ctx, l.db, stmt, roomName, userID)
	return err
}

func (l *Ledger) IsBanned(ctx context.Context, roomName, userID string) (bool, error) {
	const query = `
		SELECT
			EXISTS (
				SELECT 1 FROM room_ban WHERE room_name = $1 AND user_id = $2
			) AS banned;`

	result, err := tql.QuerySingle[banCheck](ctx, l.db, query, roomName, userID)
	return result.Banned, err
}

func (l *Ledger) ListForRoom(ctx context.Context, roomName string) ([]domain.Ban, error) {
	const query = `
		SELECT
			*
		FROM
			room_ban
		WHERE
			room_name = $1
		ORDER BY
			created_at DESC;`
	return tql.Query[domain.Ban](ctx, l.db, query, roomName)
}
