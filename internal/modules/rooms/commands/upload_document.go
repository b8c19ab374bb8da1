package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"
	"github.com/Nhu-Hau/study-rooms/internal/modules/storage"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const maxDocumentSize = 32 << 20

type UploadDocumentCommand struct {
	RoomName    string
	UploaderID  string
	FileName    string
	ContentType string
	Data        []byte
}

func (c UploadDocumentCommand) Validate() error {
	if c.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", c.RoomName)
	}

	if c.FileName == "" {
		return fmt.Errorf("invalid FileName - '%s'", c.FileName)
	}

	if len(c.Data) == 0 {
		return fmt.Errorf("empty document")
	}

	return nil
}

func HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	command := UploadDocumentCommand{
		RoomName:    chi.URLParam(r, "name"),
		UploaderID:  core.Session(ctx).UserID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	document, err := mediator.Send[UploadDocumentCommand, domain.Document](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	location := path.Join(r.Host, "rooms", command.RoomName, "documents", document.ID.String())
	core.WriteCreated(w, r, location, document)
}

type UploadDocumentCommandHandler struct {
	db       *sql.DB
	registry *rooms.Registry
	store    storage.ObjectStore
}

func NewUploadDocumentCommandHandler(
	db *sql.DB,
	registry *rooms.Registry,
	store storage.ObjectStore,
) *UploadDocumentCommandHandler {
	return &UploadDocumentCommandHandler{db, registry, store}
}

func (h *UploadDocumentCommandHandler) Handle(
	ctx context.Context,
	request UploadDocumentCommand,
) (domain.Document, error) {
	if _, err := h.registry.Get(ctx, request.RoomName); err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			return domain.Document{}, core.NewCommandError(404, err)
		}
		return domain.Document{}, core.NewCommandError(500, err)
	}

	object, err := h.store.Put(ctx, request.Data, request.ContentType, request.FileName)
	if err != nil {
		return domain.Document{}, core.NewCommandError(502, err, core.WithReason("document store unavailable"))
	}

	document := domain.Document{
		ID:          uuid.New(),
		RoomName:    request.RoomName,
		UploaderID:  request.UploaderID,
		FileName:    request.FileName,
		ContentType: request.ContentType,
		URL:         object.URL,
		ObjectKey:   object.Key,
	}

	const stmt = `
		INSERT INTO
			room_document (id, room_name, uploader_id, file_name, content_type, url, object_key, created_at)
		VALUES
			(:id, :room_name, :uploader_id, :file_name, :content_type, :url, :object_key, now());`
	if _, err := tql.Exec(ctx, h.db, stmt, document); err != nil {
		return domain.Document{}, core.NewCommandError(500, err)
	}

	return document, nil
}
