package rooms

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"

	"github.com/eskrenkovic/tql"
)

var ErrRoomNotFound = errors.New("room not found")

// Registry is the durable record of named rooms. Creation is an
// idempotent upsert - a room name maps to at most one live record and
// the host identity is sticky once assigned.
type Registry struct {
	db *sql.DB
}

func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db}
}

// Ensure creates the room record if absent, assigning host privileges
// to the creator. If the record already exists only the activity
// timestamp is refreshed - the current host is never overwritten here.
func (r *Registry) Ensure(ctx context.Context, name, creatorID, creatorRole string) (domain.Room, error) {
	const stmt = `
		INSERT INTO
			room (name, creator_id, creator_role, current_host_id, created_at, last_activity_at)
		VALUES
			($1, $2, $3, $2, now(), now())
		ON CONFLICT (name)
		DO UPDATE
		SET last_activity_at = now()
		RETURNING *;`
	return tql.QuerySingle[domain.Room](ctx, r.db, stmt, name, creatorID, creatorRole)
}

func (r *Registry) Get(ctx context.Context, name string) (domain.Room, error) {
	const query = `
		SELECT
			*
		FROM
			room
		WHERE
			name = $1 AND deleted_at IS NULL;`

	room, err := tql.QuerySingle[domain.Room](ctx, r.db, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, ErrRoomNotFound
	}

	return room, err
}

func (r *Registry) TouchActivity(ctx context.Context, name string) error {
	const stmt = `
		UPDATE
			room
		SET
			last_activity_at = now()
		WHERE
			name = $1;`
	_, err := tql.Exec(ctx, r.db, stmt, name)
	return err
}

// ReassignHost hands the room's host token to another identity. Not
// wired to presence - handoff on disconnect is a policy layered on top.
func (r *Registry) ReassignHost(ctx context.Context, name, newHostID string) error {
	const stmt = `
		UPDATE
			room
		SET
			current_host_id = $2
		WHERE
			name = $1 AND deleted_at IS NULL;`

	result, err := tql.Exec(ctx, r.db, stmt, name, newHostID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrRoomNotFound
	}

	return nil
}
