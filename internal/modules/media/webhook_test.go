package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_ParseWebhookEvent_Decodes_Room_Started(t *testing.T) {
	// Arrange
	body := []byte(`{"event":"room_started","room":{"name":"english-club"},"createdAt":1700000000}`)

	// Act
	event, err := ParseWebhookEvent(body)

	// Assert
	require.NoError(t, err)
	require.Equal(t, EventRoomStarted, event.Event)
	require.Equal(t, "english-club", event.RoomName())
	require.Equal(t, time.Unix(1700000000, 0).UTC(), event.Time())
}

func Test_ParseWebhookEvent_Decodes_Participant_Attributes(t *testing.T) {
	// Arrange
	body := []byte(`{
		"event": "participant_joined",
		"room": {"name": "english-club"},
		"participant": {"identity": "user-b", "name": "B", "attributes": {"role": "student"}}
	}`)

	// Act
	event, err := ParseWebhookEvent(body)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "user-b", event.Participant.Identity)
	require.Equal(t, "student", event.ParticipantRole())
}

func Test_ParseWebhookEvent_Rejects_Unknown_Event(t *testing.T) {
	// Arrange
	body := []byte(`{"event":"room_exploded","room":{"name":"english-club"}}`)

	// Act
	_, err := ParseWebhookEvent(body)

	// Assert
	require.Error(t, err)
}

func Test_ParseWebhookEvent_Rejects_Missing_Room_Name(t *testing.T) {
	// Arrange
	body := []byte(`{"event":"room_started"}`)

	// Act
	_, err := ParseWebhookEvent(body)

	// Assert
	require.Error(t, err)
}

func Test_ParseWebhookEvent_Rejects_Participant_Event_Without_Identity(t *testing.T) {
	// Arrange
	body := []byte(`{"event":"participant_left","room":{"name":"english-club"}}`)

	// Act
	_, err := ParseWebhookEvent(body)

	// Assert
	require.Error(t, err)
}

func Test_ParseWebhookEvent_Falls_Back_To_Arrival_Time(t *testing.T) {
	// Arrange
	body := []byte(`{"event":"room_started","room":{"name":"english-club"}}`)

	// Act
	event, err := ParseWebhookEvent(body)

	// Assert
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), event.Time(), time.Minute)
}

func Test_VerifyWebhookSignature_Accepts_Signed_Payload(t *testing.T) {
	// Arrange
	body := []byte(`{"event":"room_started","room":{"name":"english-club"}}`)
	authHeader, err := SignWebhookPayload(body, testAPIKey, testAPISecret)
	require.NoError(t, err)

	// Act
	err = VerifyWebhookSignature(authHeader, body, testAPIKey, testAPISecret)

	// Assert
	require.NoError(t, err)
}

func Test_VerifyWebhookSignature_Rejects_Tampered_Body(t *testing.T) {
	// Arrange
	body := []byte(`{"event":"room_started","room":{"name":"english-club"}}`)
	authHeader, err := SignWebhookPayload(body, testAPIKey, testAPISecret)
	require.NoError(t, err)

	// Act
	err = VerifyWebhookSignature(authHeader, []byte(`{"event":"room_started","room":{"name":"other"}}`), testAPIKey, testAPISecret)

	// Assert
	require.Error(t, err)
}

func Test_VerifyWebhookSignature_Rejects_Unknown_Issuer(t *testing.T) {
	// Arrange
	body := []byte(`{"event":"room_started","room":{"name":"english-club"}}`)
	authHeader, err := SignWebhookPayload(body, "other-key", testAPISecret)
	require.NoError(t, err)

	// Act
	err = VerifyWebhookSignature(authHeader, body, testAPIKey, testAPISecret)

	// Assert
	require.Error(t, err)
}

func Test_VerifyWebhookSignature_Rejects_Missing_Token(t *testing.T) {
	// Act
	err := VerifyWebhookSignature("", []byte(`{}`), testAPIKey, testAPISecret)

	// Assert
	require.Error(t, err)
}
