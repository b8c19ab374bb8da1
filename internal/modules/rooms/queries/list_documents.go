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

type ListDocumentsQuery struct {
	RoomName string
}

func (q ListDocumentsQuery) Validate() error {
	if q.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", q.RoomName)
	}

	return nil
}

func HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[ListDocumentsQuery, []domain.Document](
		r.Context(),
		ListDocumentsQuery{RoomName: chi.URLParam(r, "name")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ListDocumentsQueryHandler struct {
	db *sql.DB
}

func NewListDocumentsQueryHandler(db *sql.DB) *ListDocumentsQueryHandler {
	return &ListDocumentsQueryHandler{db}
}

func (h *ListDocumentsQueryHandler) Handle(
	ctx context.Context,
	request ListDocumentsQuery,
) ([]domain.Document, error) {
	const query = `
		SELECT
			*
		FROM
			room_document
		WHERE
			room_name = $1
		ORDER BY
			created_at DESC;`
	return tql.Query[domain.Document](ctx, h.db, query, request.RoomName)
}
