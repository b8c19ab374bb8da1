package media

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// Webhook event kinds delivered by the media service. Delivery is
// at-least-once with no ordering guarantee.
const (
	EventRoomStarted       = "room_started"
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
)

type WebhookRoom struct {
	Name string `json:"name"`
}

type WebhookParticipant struct {
	Identity   string            `json:"identity"`
	Name       string            `json:"name,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type WebhookEvent struct {
	Event       string              `json:"event"`
	Room        *WebhookRoom        `json:"room,omitempty"`
	Participant *WebhookParticipant `json:"participant,omitempty"`
	CreatedAt   int64               `json:"createdAt,omitempty"`
}

// Time is the instant the event occurred upstream. Events without a
// timestamp fall back to arrival time.
func (e WebhookEvent) Time() time.Time {
	if e.CreatedAt == 0 {
		return time.Now().UTC()
	}

	return time.Unix(e.CreatedAt, 0).UTC()
}

func (e WebhookEvent) RoomName() string {
	if e.Room == nil {
		return ""
	}

	return e.Room.Name
}

func (e WebhookEvent) ParticipantRole() string {
	if e.Participant == nil || e.Participant.Attributes == nil {
		return ""
	}

	return e.Participant.Attributes["role"]
}

// ParseWebhookEvent decodes and validates a webhook payload. A payload
// that fails here is malformed and should be rejected with a non-2xx so
// the sender does not treat it as delivered.
func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return WebhookEvent{}, err
	}

	switch event.Event {
	case EventRoomStarted, EventParticipantJoined, EventParticipantLeft:
	default:
		return WebhookEvent{}, fmt.Errorf("unknown webhook event %q", event.Event)
	}

	if event.RoomName() == "" {
		return WebhookEvent{}, fmt.Errorf("webhook event %q missing room name", event.Event)
	}

	if event.Event != EventRoomStarted {
		if event.Participant == nil || event.Participant.Identity == "" {
			return WebhookEvent{}, fmt.Errorf("webhook event %q missing participant identity", event.Event)
		}
	}

	return event, nil
}

// VerifyWebhookSignature checks the Authorization token the media
// service attaches to each delivery: a JWT signed with the shared API
// secret whose sha256 claim is the digest of the raw body.
func VerifyWebhookSignature(authHeader string, body []byte, apiKey, apiSecret string) error {
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return fmt.Errorf("missing webhook authorization token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(apiSecret), nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return fmt.Errorf("invalid webhook token")
	}

	if iss, _ := claims["iss"].(string); iss != apiKey {
		return fmt.Errorf("webhook token issued by unknown key %q", iss)
	}

	digest, _ := claims["sha256"].(string)
	if digest != bodyDigest(body) {
		return fmt.Errorf("webhook body digest mismatch")
	}

	return nil
}

// SignWebhookPayload produces the Authorization value for a payload.
// The media service is the normal signer - exported for test doubles.
func SignWebhookPayload(body []byte, apiKey, apiSecret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":    apiKey,
		"nbf":    time.Now().Unix(),
		"exp":    time.Now().Add(5 * time.Minute).Unix(),
		"sha256": bodyDigest(body),
	})

	signed, err := token.SignedString([]byte(apiSecret))
	if err != nil {
		return "", err
	}

	return "Bearer " + signed, nil
}

func bodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}
