package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

type UnbanUserCommand struct {
	RoomName      string
	UserID        string
	ModeratorID   string
	ModeratorRole string
}

func (c UnbanUserCommand) Validate() error {
	if c.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", c.RoomName)
	}

	if c.UserID == "" {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

func HandleUnbanUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := core.Session(ctx)

	command := UnbanUserCommand{
		RoomName:      chi.URLParam(r, "name"),
		UserID:        chi.URLParam(r, "userId"),
		ModeratorID:   session.UserID,
		ModeratorRole: session.Role,
	}

	if _, err := mediator.Send[UnbanUserCommand, core.Unit](ctx, command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]bool{"ok": true})
}

type UnbanUserCommandHandler struct {
	registry *rooms.Registry
	ledger   *rooms.Ledger
}

func NewUnbanUserCommandHandler(registry *rooms.Registry, ledger *rooms.Ledger) *UnbanUserCommandHandler {
	return &UnbanUserCommandHandler{registry, ledger}
}

func (h *UnbanUserCommandHandler) Handle(ctx context.Context, request UnbanUserCommand) (core.Unit, error) {
	room, err := h.registry.Get(ctx, request.RoomName)
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return core.Unit{}, core.NewCommandError(404, err)
	case err != nil:
		return core.Unit{}, core.NewCommandError(500, err)
	}

	if err := requireModerator(room, request.ModeratorID, request.ModeratorRole); err != nil {
		return core.Unit{}, err
	}

	// Deleting an absent ban is a no-op success.
	if err := h.ledger.Unban(ctx, request.RoomName, request.UserID); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
