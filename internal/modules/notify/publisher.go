package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher pushes an event at a single user, wherever that user is
// connected. It is injected into handlers rather than reached through
// process-global state so a multi-instance deployment can back it with
// a shared broker.
type Publisher interface {
	PublishToUser(ctx context.Context, userID string, event interface{}) error
}

// NatsPublisher fans events out over a NATS subject per user. Every
// instance of the client-facing gateway subscribes to the subjects of
// the users it holds connections for.
type NatsPublisher struct {
	conn *nats.Conn
}

var _ Publisher = (*NatsPublisher)(nil)

func NewNatsPublisher(url string) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("study-rooms"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: conn}, nil
}

func (p *NatsPublisher) PublishToUser(ctx context.Context, userID string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.Publish(fmt.Sprintf("user.%s", userID), payload)
}

func (p *NatsPublisher) Close() {
	p.conn.Close()
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) PublishToUser(context.Context, string, interface{}) error {
	return nil
}
