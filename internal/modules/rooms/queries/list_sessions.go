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
	"github.com/google/uuid"
)

type ListSessionsQuery struct {
	RoomName string
}

func (q ListSessionsQuery) Validate() error {
	if q.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", q.RoomName)
	}

	return nil
}

type SessionWithParticipants struct {
	domain.Session
	Participants []domain.Participant `json:"participants"`
}

func HandleListSessions(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[ListSessionsQuery, []SessionWithParticipants](
		r.Context(),
		ListSessionsQuery{RoomName: chi.URLParam(r, "name")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ListSessionsQueryHandler struct {
	db *sql.DB
}

func NewListSessionsQueryHandler(db *sql.DB) *ListSessionsQueryHandler {
	return &ListSessionsQueryHandler{db}
}

func (h *ListSessionsQueryHandler) Handle(
	ctx context.Context,
	request ListSessionsQuery,
) ([]SessionWithParticipants, error) {
	const sessionsQuery = `
		SELECT
			*
		FROM
			room_session
		WHERE
			room_name = $1
		ORDER BY
			started_at DESC;`

	sessions, err := tql.Query[domain.Session](ctx, h.db, sessionsQuery, request.RoomName)
	if err != nil {
		return nil, core.NewCommandError(500, err)
	}

	const participantsQuery = `
		SELECT
			sp.*
		FROM
			session_participant sp
			JOIN room_session rs ON rs.id = sp.session_id
		WHERE
			rs.room_name = $1
		ORDER BY
			sp.joined_at;`

	participants, err := tql.Query[domain.Participant](ctx, h.db, participantsQuery, request.RoomName)
	if err != nil {
		return nil, core.NewCommandError(500, err)
	}

	bySession := make(map[uuid.UUID][]domain.Participant, len(sessions))
	for _, participant := range participants {
		bySession[participant.SessionID] = append(bySession[participant.SessionID], participant)
	}

	response := make([]SessionWithParticipants, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, SessionWithParticipants{
			Session:      session,
			Participants: bySession[session.ID],
		})
	}

	return response, nil
}
