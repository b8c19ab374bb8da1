package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_CreateRoom_Posts_Signed_Admin_Request(t *testing.T) {
	// Arrange
	var gotPath, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		_ = json.NewEncoder(w).Encode(Room{Name: "english-club"})
	}))
	defer server.Close()

	client := NewClient(server.URL, testAPIKey, testAPISecret)

	// Act
	room, err := client.CreateRoom(context.Background(), "english-club")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "english-club", room.Name)
	require.Equal(t, "/twirp/RoomService/CreateRoom", gotPath)
	require.True(t, strings.HasPrefix(gotAuth, "Bearer "))
}

func Test_CreateRoom_Classifies_Already_Exists(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"msg":"room already exists"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testAPIKey, testAPISecret)

	// Act
	_, err := client.CreateRoom(context.Background(), "english-club")

	// Assert
	require.ErrorIs(t, err, ErrRoomAlreadyExists)
}

func Test_DeleteRoom_Classifies_Missing_Room(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, testAPIKey, testAPISecret)

	// Act
	err := client.DeleteRoom(context.Background(), "english-club")

	// Assert
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_RemoveParticipant_Sends_Room_And_Identity(t *testing.T) {
	// Arrange
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testAPIKey, testAPISecret)

	// Act
	err := client.RemoveParticipant(context.Background(), "english-club", "user-c")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "english-club", gotBody["room"])
	require.Equal(t, "user-c", gotBody["identity"])
}

func Test_ListParticipants_Decodes_Response(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"participants":[{"identity":"user-b","name":"B"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, testAPIKey, testAPISecret)

	// Act
	participants, err := client.ListParticipants(context.Background(), "english-club")

	// Assert
	require.NoError(t, err)
	require.Len(t, participants, 1)
	require.Equal(t, "user-b", participants[0].Identity)
}

func Test_Client_Surfaces_Unexpected_Status(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, testAPIKey, testAPISecret)

	// Act
	_, err := client.ListRooms(context.Background())

	// Assert
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrRoomAlreadyExists)
}
