package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms/domain"
	"github.com/Nhu-Hau/study-rooms/internal/modules/storage"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type DeleteDocumentCommand struct {
	RoomName   string
	DocumentID uuid.UUID
}

func (c DeleteDocumentCommand) Validate() error {
	if c.RoomName == "" {
		return fmt.Errorf("invalid RoomName - '%s'", c.RoomName)
	}

	if c.DocumentID == uuid.Nil {
		return fmt.Errorf("invalid DocumentID - '%s'", c.DocumentID)
	}

	return nil
}

func HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	documentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteBadRequest(w, r, fmt.Errorf("invalid document id"))
		return
	}

	command := DeleteDocumentCommand{
		RoomName:   chi.URLParam(r, "name"),
		DocumentID: documentID,
	}

	if _, err := mediator.Send[DeleteDocumentCommand, core.Unit](ctx, command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]bool{"ok": true})
}

type DeleteDocumentCommandHandler struct {
	db     *sql.DB
	store  storage.ObjectStore
	logger *zap.Logger
}

func NewDeleteDocumentCommandHandler(db *sql.DB, store storage.ObjectStore, logger *zap.Logger) *DeleteDocumentCommandHandler {
	return &DeleteDocumentCommandHandler{db, store, logger}
}

func (h *DeleteDocumentCommandHandler) Handle(
	ctx context.Context,
	request DeleteDocumentCommand,
) (core.Unit, error) {
	var (
		document domain.Document
		found    bool
	)

	// The lookup and the delete share a transaction so two concurrent
	// deletes cannot both claim the row and race for the backing object.
	txErr := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		const query = `
			SELECT
				*
			FROM
				room_document
			WHERE
				id = $1 AND room_name = $2
			FOR UPDATE;`

		row, err := tql.QuerySingle[domain.Document](ctx, tx, query, request.DocumentID, request.RoomName)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Already gone.
			return nil
		case err != nil:
			return err
		}

		const stmt = `
			DELETE FROM
				room_document
			WHERE
				id = $1;`
		if _, err := tql.Exec(ctx, tx, stmt, request.DocumentID); err != nil {
			return err
		}

		document = row
		found = true
		return nil
	})
	if txErr != nil {
		return core.Unit{}, core.NewCommandError(500, txErr)
	}

	if !found {
		return core.Unit{}, nil
	}

	// Backing-object deletion is best-effort; the record decides.
	if err := h.store.Delete(ctx, document.ObjectKey); err != nil {
		h.logger.Warn(
			"failed to delete backing object",
			zap.String("key", document.ObjectKey),
			zap.Error(err),
		)
	}

	return core.Unit{}, nil
}
