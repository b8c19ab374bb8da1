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
)

type ListCommentsQuery struct {
	RoomName string
}

func (q ListCommentsQuery) Validate() error {
	if q.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", q.RoomName)
	}

	return nil
}

func HandleListComments(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[ListCommentsQuery, []domain.Comment](
		r.Context(),
		ListCommentsQuery{RoomName: chi.URLParam(r, "name")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ListCommentsQueryHandler struct {
	db *sql.DB
}

func NewListCommentsQueryHandler(db *sql.DB) *ListCommentsQueryHandler {
	return &ListCommentsQueryHandler{db}
}

func (h *ListCommentsQueryHandler) Handle(
	ctx context.Context,
	request ListCommentsQuery,
) ([]domain.Comment, error) {
	const query = `
		SELECT
			*
		FROM
			room_comment
		WHERE
			room_name = $1
		ORDER BY
			created_at;`
	return tql.Query[domain.Comment](ctx, h.db, query, request.RoomName)
}
