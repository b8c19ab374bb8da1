package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/media"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

type IssueJoinTokenCommand struct {
	RoomName    string
	Identity    string
	DisplayName string
	Role        string
}

func (c IssueJoinTokenCommand) Validate() error {
	if c.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", c.RoomName)
	}

	if c.Identity == "" {
		return fmt.Errorf("invalid Identity - '%s'", c.Identity)
	}

	return nil
}

type IssueJoinTokenResponse struct {
	Endpoint     string `json:"endpoint"`
	Token        string `json:"token"`
	Identity     string `json:"identity"`
	DisplayName  string `json:"displayName"`
	Role         string `json:"role"`
	IsHost       bool   `json:"isHost"`
	HostIdentity string `json:"hostIdentity"`
}

func HandleIssueJoinToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := core.Session(ctx)

	command := IssueJoinTokenCommand{
		RoomName:    chi.URLParam(r, "name"),
		Identity:    session.UserID,
		DisplayName: session.DisplayName,
		Role:        session.Role,
	}

	response, err := mediator.Send[IssueJoinTokenCommand, IssueJoinTokenResponse](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type IssueJoinTokenCommandHandler struct {
	registry   *rooms.Registry
	ledger     *rooms.Ledger
	upstream   media.RoomService
	wsEndpoint string
	apiKey     string
	apiSecret  string
}

func NewIssueJoinTokenCommandHandler(
	registry *rooms.Registry,
	ledger *rooms.Ledger,
	upstream media.RoomService,
	wsEndpoint, apiKey, apiSecret string,
) *IssueJoinTokenCommandHandler {
	return &IssueJoinTokenCommandHandler{registry, ledger, upstream, wsEndpoint, apiKey, apiSecret}
}

func (h *IssueJoinTokenCommandHandler) Handle(
	ctx context.Context,
	request IssueJoinTokenCommand,
) (IssueJoinTokenResponse, error) {
	// The ban check is unconditional and runs before any side effect.
	banned, err := h.ledger.IsBanned(ctx, request.RoomName, request.Identity)
	if err != nil {
		return IssueJoinTokenResponse{}, core.NewCommandError(500, err)
	}

	if banned {
		return IssueJoinTokenResponse{}, core.NewCommandError(
			403,
			map[string]string{"message": "banned"},
			core.WithReason("requester is banned from the room"),
		)
	}

	// Lazily (re-)create the room upstream. "Already exists" is the
	// normal case and is swallowed.
	if _, err := h.upstream.CreateRoom(ctx, request.RoomName); err != nil &&
		!errors.Is(err, media.ErrRoomAlreadyExists) {
		return IssueJoinTokenResponse{}, core.NewCommandError(
			502,
			fmt.Errorf("failed to issue token"),
			core.WithReason(err.Error()),
		)
	}

	room, err := h.registry.Ensure(ctx, request.RoomName, request.Identity, request.Role)
	if err != nil {
		return IssueJoinTokenResponse{}, core.NewCommandError(500, err)
	}

	roomRole := domain.ResolveRoomRole(room, request.Identity, request.Role)
	isHost := roomRole == domain.RoomRoleHost

	token, err := media.NewAccessToken(
		h.apiKey,
		h.apiSecret,
		request.Identity,
		request.DisplayName,
		media.VideoGrant{
			RoomJoin:     true,
			Room:         request.RoomName,
			RoomAdmin:    isHost,
			CanPublish:   true,
			CanSubscribe: true,
		},
		media.DefaultTokenTTL,
	)
	if err != nil {
		return IssueJoinTokenResponse{}, core.NewCommandError(500, err)
	}

	if err := h.registry.TouchActivity(ctx, request.RoomName); err != nil {
		return IssueJoinTokenResponse{}, core.NewCommandError(500, err)
	}

	return IssueJoinTokenResponse{
		Endpoint:     h.wsEndpoint,
		Token:        token,
		Identity:     request.Identity,
		DisplayName:  request.DisplayName,
		Role:         roomRole,
		IsHost:       isHost,
		HostIdentity: room.CurrentHostID,
	}, nil
}
