package queries

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
)

type ListRoomsQuery struct{}

type RoomSummary struct {
	Name           string    `db:"name" json:"name"`
	CreatorID      string    `db:"creator_id" json:"creatorId"`
	CurrentHostID  string    `db:"current_host_id" json:"currentHostId"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	LastActivityAt time.Time `db:"last_activity_at" json:"lastActivityAt"`
	OccupantCount  int       `db:"occupant_count" json:"occupantCount"`
}

func HandleListRooms(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[ListRoomsQuery, []RoomSummary](r.Context(), ListRoomsQuery{})
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ListRoomsQueryHandler struct {
	db *sql.DB
}

func NewListRoomsQueryHandler(db *sql.DB) *ListRoomsQueryHandler {
	return &ListRoomsQueryHandler{db}
}

func (h *ListRoomsQueryHandler) Handle(ctx context.Context, request ListRoomsQuery) ([]RoomSummary, error) {
	const query = `
		SELECT
			r.name,
			r.creator_id,
			r.current_host_id,
			r.created_at,
			r.last_activity_at,
			COALESCE(occ.occupant_count, 0) AS occupant_count
		FROM
			room r
			LEFT JOIN (
				SELECT
					rs.room_name,
					COUNT(*) AS occupant_count
				FROM
					room_session rs
					JOIN session_participant sp ON sp.session_id = rs.id
				WHERE
					rs.ended_at IS NULL AND sp.left_at IS NULL
				GROUP BY
					rs.room_name
			) occ ON occ.room_name = r.name
		WHERE
			r.deleted_at IS NULL
		ORDER BY
			r.last_activity_at DESC;`
	return tql.Query[RoomSummary](ctx, h.db, query)
}
