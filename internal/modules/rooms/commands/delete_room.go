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

type DeleteRoomCommand struct {
	RoomName      string
	RequesterID   string
	RequesterRole string
}

func (c DeleteRoomCommand) Validate() error {
	if c.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", c.RoomName)
	}

	return nil
}

func HandleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := core.Session(ctx)

	command := DeleteRoomCommand{
		RoomName:      chi.URLParam(r, "name"),
		RequesterID:   session.UserID,
		RequesterRole: session.Role,
	}

	if _, err := mediator.Send[DeleteRoomCommand, core.Unit](ctx, command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]bool{"ok": true})
}

type DeleteRoomCommandHandler struct {
	registry *rooms.Registry
	reaper   *rooms.Reaper
}

func NewDeleteRoomCommandHandler(registry *rooms.Registry, reaper *rooms.Reaper) *DeleteRoomCommandHandler {
	return &DeleteRoomCommandHandler{registry, reaper}
}

func (h *DeleteRoomCommandHandler) Handle(ctx context.Context, request DeleteRoomCommand) (core.Unit, error) {
	room, err := h.registry.Get(ctx, request.RoomName)
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		// Re-deleting an already-deleted room is a no-op success.
		return core.Unit{}, nil
	case err != nil:
		return core.Unit{}, core.NewCommandError(500, err)
	}

	if err := requireModerator(room, request.RequesterID, request.RequesterRole); err != nil {
		return core.Unit{}, err
	}

	if err := h.reaper.Purge(ctx, request.RoomName); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
