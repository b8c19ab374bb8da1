package rooms

import (
	"context"
	"database/sql"

	"github.com/Nhu-Hau/study-rooms/internal/modules/media"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"
	"github.com/Nhu-Hau/study-rooms/internal/modules/storage"

	"github.com/eskrenkovic/tql"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Reaper cascades room deletion across every store a room touches: the
// upstream media room, backing objects in the document store, and the
// local record tables. The stores are heterogeneous so no transaction
// spans them - each step is idempotent and failures are logged and
// skipped. The room is tombstoned first, which stops the session
// tracker from inserting new rows mid-cascade. The authoritative room
// record goes last, and only its removal decides the outcome.
type Reaper struct {
	db     *sql.DB
	rooms  media.RoomService
	store  storage.ObjectStore
	logger *zap.Logger
}

func NewReaper(db *sql.DB, rooms media.RoomService, store storage.ObjectStore, logger *zap.Logger) *Reaper {
	return &Reaper{db, rooms, store, logger}
}

func (r *Reaper) Purge(ctx context.Context, roomName string) error {
	log := r.logger.With(zap.String("room", roomName))

	// Tombstone before anything else. Reads exclude the room from here
	// on and the tracker's inserts are gated on deleted_at IS NULL, so
	// everything the cascade deletes below is already final.
	const tombstone = `
		UPDATE
			room
		SET
			deleted_at = now()
		WHERE
			name = $1 AND deleted_at IS NULL;`
	if _, err := tql.Exec(ctx, r.db, tombstone, roomName); err != nil {
		return errors.Wrap(err, "failed to mark room deleted")
	}

	if err := r.rooms.DeleteRoom(ctx, roomName); err != nil && !errors.Is(err, media.ErrNotFound) {
		log.Warn("failed to delete upstream media room", zap.Error(err))
	}

	r.purgeObjects(ctx, roomName, log)

	deletions := []struct {
		name string
		stmt string
	}{
		{"documents", `DELETE FROM room_document WHERE room_name = $1;`},
		{"bans", `DELETE FROM room_ban WHERE room_name = $1;`},
		{"comments", `DELETE FROM room_comment WHERE room_name = $1;`},
		{"participants", `
			DELETE FROM session_participant
			WHERE session_id IN (SELECT id FROM room_session WHERE room_name = $1);`},
		{"sessions", `DELETE FROM room_session WHERE room_name = $1;`},
	}

	for _, d := range deletions {
		if _, err := tql.Exec(ctx, r.db, d.stmt, roomName); err != nil {
			log.Warn("cascade deletion step failed", zap.String("step", d.name), zap.Error(err))
		}
	}

	// The room record is authoritative - its removal is the one step
	// that must succeed.
	if _, err := tql.Exec(ctx, r.db, `DELETE FROM room WHERE name = $1;`, roomName); err != nil {
		return errors.Wrap(err, "failed to delete room record")
	}

	return nil
}

func (r *Reaper) purgeObjects(ctx context.Context, roomName string, log *zap.Logger) {
	const query = `
		SELECT
			*
		FROM
			room_document
		WHERE
			room_name = $1;`

	documents, err := tql.Query[domain.Document](ctx, r.db, query, roomName)
	if err != nil {
		log.Warn("failed to enumerate room documents", zap.Error(err))
		return
	}

	for _, document := range documents {
		if err := r.store.Delete(ctx, document.ObjectKey); err != nil {
			log.Warn(
				"failed to delete backing object",
				zap.String("key", document.ObjectKey),
				zap.Error(err),
			)
		}
	}
}
