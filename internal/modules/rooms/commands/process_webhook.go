package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/media"
	"github.com/Nhu-Hau/study-rooms/internal/modules/rooms"

	"github.com/eskrenkovic/mediator-go"
)

type ProcessMediaWebhookCommand struct {
	Authorization string
	Body          []byte
}

func (c ProcessMediaWebhookCommand) Validate() error {
	if len(c.Body) == 0 {
		return fmt.Errorf("empty webhook body")
	}

	return nil
}

type WebhookAck struct {
	OK bool `json:"ok"`
}

func HandleMediaWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	command := ProcessMediaWebhookCommand{
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	}

	ack, err := mediator.Send[ProcessMediaWebhookCommand, WebhookAck](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, ack)
}

type ProcessMediaWebhookCommandHandler struct {
	tracker   *rooms.Tracker
	apiKey    string
	apiSecret string
}

func NewProcessMediaWebhookCommandHandler(
	tracker *rooms.Tracker,
	apiKey, apiSecret string,
) *ProcessMediaWebhookCommandHandler {
	return &ProcessMediaWebhookCommandHandler{tracker, apiKey, apiSecret}
}

// Handle verifies and applies one webhook delivery. Only a bad
// signature or a malformed payload produce a non-2xx - a legitimate
// no-op event must still acknowledge so the sender stops redelivering.
// Store failures return 5xx on purpose: at-least-once delivery will
// retry them.
func (h *ProcessMediaWebhookCommandHandler) Handle(
	ctx context.Context,
	request ProcessMediaWebhookCommand,
) (WebhookAck, error) {
	err := media.VerifyWebhookSignature(request.Authorization, request.Body, h.apiKey, h.apiSecret)
	if err != nil {
		return WebhookAck{}, core.NewCommandError(401, err, core.WithReason("webhook signature rejected"))
	}

	event, err := media.ParseWebhookEvent(request.Body)
	if err != nil {
		return WebhookAck{}, core.NewCommandError(400, err, core.WithReason("malformed webhook payload"))
	}

	if err := h.tracker.Apply(ctx, event); err != nil {
		return WebhookAck{}, core.NewCommandError(500, err)
	}

	return WebhookAck{OK: true}, nil
}
