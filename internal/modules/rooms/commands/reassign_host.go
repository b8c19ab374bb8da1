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

type ReassignHostCommand struct {
	RoomName      string `json:"-"`
	NewHostID     string `json:"newHostId"`
	ModeratorID   string `json:"-"`
	ModeratorRole string `json:"-"`
}

func (c ReassignHostCommand) Validate() error {
	if c.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", c.RoomName)
	}

	if c.NewHostID == "" {
		return fmt.Errorf("invalid NewHostID - '%s'", c.NewHostID)
	}

	return nil
}

func HandleReassignHost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command, err := core.RequestBody[ReassignHostCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	session := core.Session(ctx)
	command.RoomName = chi.URLParam(r, "name")
	command.ModeratorID = session.UserID
	command.ModeratorRole = session.Role

	if _, err := mediator.Send[ReassignHostCommand, core.Unit](ctx, command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]bool{"ok": true})
}

type ReassignHostCommandHandler struct {
	registry *rooms.Registry
}

func NewReassignHostCommandHandler(registry *rooms.Registry) *ReassignHostCommandHandler {
	return &ReassignHostCommandHandler{registry}
}

func (h *ReassignHostCommandHandler) Handle(ctx context.Context, request ReassignHostCommand) (core.Unit, error) {
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

	if err := h.registry.ReassignHost(ctx, request.RoomName, request.NewHostID); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
