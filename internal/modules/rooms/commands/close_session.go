package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

// CloseSessionCommand ends the room's open session without deleting
// the room. The media service emits no room_finished event, so this is
// the only way to close a session while keeping the room's history.
type CloseSessionCommand struct {
	RoomName      string
	RequesterID   string
	RequesterRole string
}

func (c CloseSessionCommand) Validate() error {
	if c.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", c.RoomName)
	}

	return nil
}

func HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := core.Session(ctx)

	command := CloseSessionCommand{
		RoomName:      chi.URLParam(r, "name"),
		RequesterID:   session.UserID,
		RequesterRole: session.Role,
	}

	if _, err := mediator.Send[CloseSessionCommand, core.Unit](ctx, command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]bool{"ok": true})
}

type CloseSessionCommandHandler struct {
	registry *rooms.Registry
	tracker  *rooms.Tracker
}

func NewCloseSessionCommandHandler(registry *rooms.Registry, tracker *rooms.Tracker) *CloseSessionCommandHandler {
	return &CloseSessionCommandHandler{registry, tracker}
}

func (h *CloseSessionCommandHandler) Handle(
	ctx context.Context,
	request CloseSessionCommand,
) (core.Unit, error) {
	room, err := h.registry.Get(ctx, request.RoomName)
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return core.Unit{}, core.NewCommandError(404, err)
	case err != nil:
		return core.Unit{}, core.NewCommandError(500, err)
	}

	if err := requireModerator(room, request.RequesterID, request.RequesterRole); err != nil {
		return core.Unit{}, err
	}

	// Closing with no open session is a no-op success - the state the
	// caller asked for already holds.
	if err := h.tracker.CloseOpenSession(ctx, request.RoomName, time.Now().UTC()); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
