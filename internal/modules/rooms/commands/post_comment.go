package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type PostCommentCommand struct {
	RoomName   string `json:"-"`
	AuthorID   string `json:"-"`
	AuthorName string `json:"-"`
	Body       string `json:"body"`
}

func (c PostCommentCommand) Validate() error {
	if c.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", c.RoomName)
	}

	if c.Body == "" {
		return fmt.Errorf("empty comment body")
	}

	return nil
}

func HandlePostComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command, err := core.RequestBody[PostCommentCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	session := core.Session(ctx)
	command.RoomName = chi.URLParam(r, "name")
	command.AuthorID = session.UserID
	command.AuthorName = session.DisplayName

	comment, err := mediator.Send[PostCommentCommand, domain.Comment](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	location := path.Join(r.Host, "rooms", command.RoomName, "comments", comment.ID.String())
	core.WriteCreated(w, r, location, comment)
}

type PostCommentCommandHandler struct {
	db       *sql.DB
	registry *rooms.Registry
}

func NewPostCommentCommandHandler(db *sql.DB, registry *rooms.Registry) *PostCommentCommandHandler {
	return &PostCommentCommandHandler{db, registry}
}

func (h *PostCommentCommandHandler) Handle(
	ctx context.Context,
	request PostCommentCommand,
) (domain.Comment, error) {
	if _, err := h.registry.Get(ctx, request.RoomName); err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			return domain.Comment{}, core.NewCommandError(404, err)
		}
		return domain.Comment{}, core.NewCommandError(500, err)
	}

	comment := domain.Comment{
		ID:         uuid.New(),
		RoomName:   request.RoomName,
		AuthorID:   request.AuthorID,
		AuthorName: request.AuthorName,
		Body:       request.Body,
	}

	const stmt = `
		INSERT INTO
			room_comment (id, room_name, author_id, author_name, body, created_at)
		VALUES
			(:id, :room_name, :author_id, :author_name, :body, now());`
	if _, err := tql.Exec(ctx, h.db, stmt, comment); err != nil {
		return domain.Comment{}, core.NewCommandError(500, err)
	}

	return comment, nil
}
