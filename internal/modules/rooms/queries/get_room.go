package queries

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

type GetRoomQuery struct {
	Name string
}

func (q GetRoomQuery) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("invalid Name - '%s'", q.Name)
	}

	return nil
}

type RoomDetails struct {
	domain.Room
	Occupants []domain.Participant `json:"occupants"`
}

func HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetRoomQuery, RoomDetails](
		r.Context(),
		GetRoomQuery{Name: chi.URLParam(r, "name")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetRoomQueryHandler struct {
	db *sql.DB
}

func NewGetRoomQueryHandler(db *sql.DB) *GetRoomQueryHandler {
	return &GetRoomQueryHandler{db}
}

func (h *GetRoomQueryHandler) Handle(ctx context.Context, request GetRoomQuery) (RoomDetails, error) {
	const roomQuery = `
		SELECT
			*
		FROM
			room
		WHERE
			name = $1 AND deleted_at IS NULL;`

	room, err := tql.QuerySingle[domain.Room](ctx, h.db, roomQuery, request.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return RoomDetails{}, core.NewCommandError(404, fmt.Errorf("room %q not found", request.Name))
	case err != nil:
		return RoomDetails{}, core.NewCommandError(500, err)
	}

	const occupantsQuery = `
		SELECT
			sp.*
		FROM
			session_participant sp
			JOIN room_session rs ON rs.id = sp.session_id
		WHERE
			rs.room_name = $1
			AND rs.ended_at IS NULL
			AND sp.left_at IS NULL
		ORDER BY
			sp.joined_at;`

	occupants, err := tql.Query[domain.Participant](ctx, h.db, occupantsQuery, request.Name)
	if err != nil {
		return RoomDetails{}, core.NewCommandError(500, err)
	}

	return RoomDetails{Room: room, Occupants: occupants}, nil
}
