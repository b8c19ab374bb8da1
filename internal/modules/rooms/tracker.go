package rooms

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Nhu-Hau/study-rooms/internal/modules/media"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
)

// Tracker folds the webhook event stream from the media service into
// the session timeline. Delivery is at-least-once and unordered, so
// every transition is a single conditional statement against the store
// - concurrent duplicate deliveries converge on the same final state
// with no duplicate rows. Partial unique indexes back the "at most one
// open row" invariants, and every insert is gated on the room record
// still being live, so events racing a purge insert nothing once the
// room is marked deleted.
type Tracker struct {
	db *sql.DB
}

func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db}
}

func (t *Tracker) Apply(ctx context.Context, event media.WebhookEvent) error {
	switch event.Event {
	case media.EventRoomStarted:
		return t.openSession(ctx, event.RoomName(), event.Time())
	case media.EventParticipantJoined:
		return t.recordJoin(ctx, event)
	case media.EventParticipantLeft:
		return t.recordLeave(ctx, event.RoomName(), event.Participant.Identity, event.Time())
	default:
		return fmt.Errorf("unsupported webhook event %q", event.Event)
	}
}

// openSession opens a session for the room unless one is already open.
// Duplicate room_started deliveries land on the partial unique index
// and do nothing; events for rooms that were never registered or are
// mid-purge select no room row and also do nothing.
func (t *Tracker) openSession(ctx context.Context, roomName string, startedAt time.Time) error {
	const stmt = `
		INSERT INTO
			room_session (id, room_name, started_at)
		SELECT
			$1, r.name, $3
		FROM
			room r
		WHERE
			r.name = $2 AND r.deleted_at IS NULL
		ON CONFLICT (room_name) WHERE ended_at IS NULL
		DO NOTHING;`
	_, err := tql.Exec(ctx, t.db, stmt, uuid.New(), roomName, startedAt)
	return err
}

// recordJoin inserts the participant into the room's open session. A
// join arriving before its room_started synthesizes the session rather
// than dropping the event. The insert resolves the open session and
// checks the room tombstone in the same statement, so a duplicate join
// leaves the open row as-is and a join racing a purge lands nowhere.
func (t *Tracker) recordJoin(ctx context.Context, event media.WebhookEvent) error {
	roomName := event.RoomName()

	if err := t.openSession(ctx, roomName, event.Time()); err != nil {
		return err
	}

	const stmt = `
		INSERT INTO
			session_participant (id, session_id, identity, display_name, role, joined_at)
		SELECT
			$1, rs.id, $2, $3, $4, $5
		FROM
			room_session rs
			JOIN room r ON r.name = rs.room_name
		WHERE
			rs.room_name = $6
			AND rs.ended_at IS NULL
			AND r.deleted_at IS NULL
		ON CONFLICT (session_id, identity) WHERE left_at IS NULL
		DO NOTHING;`
	_, err := tql.Exec(
		ctx,
		t.db,
		stmt,
		uuid.New(),
		event.Participant.Identity,
		event.Participant.Name,
		event.ParticipantRole(),
		event.Time(),
		roomName,
	)
	if err != nil {
		return err
	}

	return t.markOccupied(ctx, roomName)
}

// recordLeave closes the participant's open row in the room's open
// session. With no open row to close the statement matches nothing -
// a duplicate or orphaned leave is a no-op.
func (t *Tracker) recordLeave(ctx context.Context, roomName, identity string, leftAt time.Time) error {
	const stmt = `
		UPDATE
			session_participant sp
		SET
			left_at = $3
		FROM
			room_session rs
		WHERE
			sp.session_id = rs.id
			AND rs.room_name = $1
			AND rs.ended_at IS NULL
			AND sp.identity = $2
			AND sp.left_at IS NULL;`
	if _, err := tql.Exec(ctx, t.db, stmt, roomName, identity, leftAt); err != nil {
		return err
	}

	return t.markEmptyIfVacant(ctx, roomName, leftAt)
}

// markOccupied clears the vacancy marker on join.
func (t *Tracker) markOccupied(ctx context.Context, roomName string) error {
	const stmt = `
		UPDATE
			room
		SET
			empty_since = NULL, last_activity_at = now()
		WHERE
			name = $1 AND deleted_at IS NULL;`
	_, err := tql.Exec(ctx, t.db, stmt, roomName)
	return err
}

// markEmptyIfVacant stamps empty_since once the room's last open
// participant row is gone. The existence check and the write are one
// statement, and an already-stamped room keeps its original timestamp.
func (t *Tracker) markEmptyIfVacant(ctx context.Context, roomName string, at time.Time) error {
	const stmt = `
		UPDATE
			room r
		SET
			empty_since = $2
		WHERE
			r.name = $1
			AND r.empty_since IS NULL
			AND r.deleted_at IS NULL
			AND NOT EXISTS (
				SELECT
					1
				FROM
					session_participant sp
					JOIN room_session rs ON rs.id = sp.session_id
				WHERE
					rs.room_name = r.name
					AND rs.ended_at IS NULL
					AND sp.left_at IS NULL
			);`
	_, err := tql.Exec(ctx, t.db, stmt, roomName, at)
	return err
}

// CloseOpenSession is the administrative close - the webhook contract
// has no room_finished event, so ended_at is otherwise set only by
// room deletion. Open participant rows are closed along with the
// session so the timeline has no dangling intervals.
func (t *Tracker) CloseOpenSession(ctx context.Context, roomName string, endedAt time.Time) error {
	const closeParticipants = `
		UPDATE
			session_participant sp
		SET
			left_at = $2
		FROM
			room_session rs
		WHERE
			sp.session_id = rs.id
			AND rs.room_name = $1
			AND rs.ended_at IS NULL
			AND sp.left_at IS NULL;`
	if _, err := tql.Exec(ctx, t.db, closeParticipants, roomName, endedAt); err != nil {
		return err
	}

	const closeSession = `
		UPDATE
			room_session
		SET
			ended_at = $2
		WHERE
			room_name = $1 AND ended_at IS NULL;`
	if _, err := tql.Exec(ctx, t.db, closeSession, roomName, endedAt); err != nil {
		return err
	}

	return t.markEmptyIfVacant(ctx, roomName, endedAt)
}
