package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/media"
	"github.com/Nhu-Hau/study-rooms/internal/modules/notify"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type BanUserCommand struct {
	RoomName      string `json:"-"`
	UserID        string `json:"userId"`
	Reason        string `json:"reason"`
	ModeratorID   string `json:"-"`
	ModeratorRole string `json:"-"`
}

func (c BanUserCommand) Validate() error {
	if c.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", c.RoomName)
	}

	if c.UserID == "" {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

// RemovalNotice is pushed at the banned user so an open client learns
// it was kicked without waiting for the media service to drop it.
type RemovalNotice struct {
	Type     string `json:"type"`
	RoomName string `json:"roomName"`
	Reason   string `json:"reason,omitempty"`
}

func HandleBanUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command, err := core.RequestBody[BanUserCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	session := core.Session(ctx)
	command.RoomName = chi.URLParam(r, "name")
	command.ModeratorID = session.UserID
	command.ModeratorRole = session.Role

	if _, err := mediator.Send[BanUserCommand, core.Unit](ctx, command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]bool{"ok": true})
}

type BanUserCommandHandler struct {
	registry  *rooms.Registry
	ledger    *rooms.Ledger
	upstream  media.RoomService
	publisher notify.Publisher
	logger    *zap.Logger
}

func NewBanUserCommandHandler(
	registry *rooms.Registry,
	ledger *rooms.Ledger,
	upstream media.RoomService,
	publisher notify.Publisher,
	logger *zap.Logger,
) *BanUserCommandHandler {
	return &BanUserCommandHandler{registry, ledger, upstream, publisher, logger}
}

func (h *BanUserCommandHandler) Handle(ctx context.Context, request BanUserCommand) (core.Unit, error) {
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

	ban := domain.Ban{
		RoomName: request.RoomName,
		UserID:   request.UserID,
		BannedBy: request.ModeratorID,
		Reason:   request.Reason,
	}
	if err := h.ledger.Ban(ctx, ban); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	// The ban record is authoritative. Dropping the live connection
	// and notifying the user are best-effort.
	if err := h.upstream.RemoveParticipant(ctx, request.RoomName, request.UserID); err != nil &&
		!errors.Is(err, media.ErrNotFound) {
		h.logger.Warn(
			"failed to remove banned participant from live room",
			zap.String("room", request.RoomName),
			zap.String("user", request.UserID),
			zap.Error(err),
		)
	}

	notice := RemovalNotice{Type: "room.banned", RoomName: request.RoomName, Reason: request.Reason}
	if err := h.publisher.PublishToUser(ctx, request.UserID, notice); err != nil {
		h.logger.Warn(
			"failed to publish removal notice",
			zap.String("user", request.UserID),
			zap.Error(err),
		)
	}

	return core.Unit{}, nil
}

// requireModerator limits moderation to the current host and the
// privileged platform roles.
func requireModerator(room domain.Room, moderatorID, moderatorRole string) error {
	if domain.IsPrivilegedRole(moderatorRole) || moderatorID == room.CurrentHostID {
		return nil
	}

	return core.NewCommandError(
		403,
		map[string]string{"message": "host privileges required"},
		core.WithReason("requester is not the room host"),
	)
}
