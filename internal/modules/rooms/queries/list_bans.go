package queries

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type ListBansQuery struct {
	RoomName string
}

func (q ListBansQuery) Validate() error {
	if q.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", q.RoomName)
	}

	return nil
}

func HandleListBans(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[ListBansQuery, []domain.Ban](
		r.Context(),
		ListBansQuery{RoomName: chi.URLParam(r, "name")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ListBansQueryHandler struct {
	ledger *rooms.Ledger
}

func NewListBansQueryHandler(ledger *rooms.Ledger) *ListBansQueryHandler {
	return &ListBansQueryHandler{ledger}
}

func (h *ListBansQueryHandler) Handle(ctx context.Context, request ListBansQuery) ([]domain.Ban, error) {
	bans, err := h.ledger.ListForRoom(ctx, request.RoomName)
	if err != nil {
		return nil, core.NewCommandError(500, err)
	}

	return bans, nil
}
