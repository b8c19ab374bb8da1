package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Nhu-Hau/study-rooms/internal/modules/auth"
	"github.com/Nhu-Hau/study-rooms/internal/modules/core"
	"github.com/Nhu-Hau/study-rooms/internal/modules/media"

	"github.com/stretchr/testify/require"

	_ "github.com/lib/pq"
)

// mediaStub fakes the media service admin API. DeleteRoom failures can
// be toggled to exercise the cascade's fault tolerance.
type mediaStub struct {
	server *httptest.Server

	mu             sync.Mutex
	failDeleteRoom bool
	removed        [][2]string
	deletedRooms   []string
}

func newMediaStub() *mediaStub {
	stub := &mediaStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(stub.handle))
	return stub
}

func (s *mediaStub) handle(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/CreateRoom"):
		_ = json.NewEncoder(w).Encode(map[string]string{"name": body["name"]})
	case strings.HasSuffix(r.URL.Path, "/DeleteRoom"):
		if s.failDeleteRoom {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.deletedRooms = append(s.deletedRooms, body["room"])
		_, _ = w.Write([]byte(`{}`))
	case strings.HasSuffix(r.URL.Path, "/RemoveParticipant"):
		s.removed = append(s.removed, [2]string{body["room"], body["identity"]})
		_, _ = w.Write([]byte(`{}`))
	case strings.HasSuffix(r.URL.Path, "/ListRooms"):
		_, _ = w.Write([]byte(`{"rooms":[]}`))
	case strings.HasSuffix(r.URL.Path, "/ListParticipants"):
		_, _ = w.Write([]byte(`{"participants":[]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *mediaStub) URL() string { return s.server.URL }
func (s *mediaStub) Close()      { s.server.Close() }

func (s *mediaStub) SetFailDeleteRoom(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDeleteRoom = fail
}

func (s *mediaStub) RemovedParticipants() [][2]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][2]string(nil), s.removed...)
}

// storageStub fakes the object store.
type storageStub struct {
	server *httptest.Server

	mu      sync.Mutex
	deleted []string
}

func newStorageStub() *storageStub {
	stub := &storageStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(stub.handle))
	return stub
}

func (s *storageStub) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		s.deleted = append(s.deleted, strings.TrimPrefix(r.URL.Path, "/"))
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *storageStub) URL() string { return s.server.URL }
func (s *storageStub) Close()      { s.server.Close() }

func (s *storageStub) DeletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func sessionCookie(t *testing.T, session core.ContextSession) *http.Cookie {
	t.Helper()

	token, err := auth.SignSessionToken(fixture.conf.AuthSecret, session, time.Hour)
	require.NoError(t, err)

	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func doRequest(
	t *testing.T,
	method, path string,
	session core.ContextSession,
	body interface{},
) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequest(method, fixture.baseURL+path, reader)
	require.NoError(t, err)

	request.Header.Set("Content-Type", "application/json")
	request.AddCookie(sessionCookie(t, session))

	response, err := fixture.client.Do(request)
	require.NoError(t, err)

	return response
}

func decodeBody[T any](t *testing.T, response *http.Response) T {
	t.Helper()
	defer response.Body.Close()

	var value T
	require.NoError(t, json.NewDecoder(response.Body).Decode(&value))
	return value
}

// deliverWebhook signs the payload the way the media service does and
// posts it to the webhook endpoint.
func deliverWebhook(t *testing.T, event map[string]interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	authHeader, err := media.SignWebhookPayload(payload, fixture.conf.Media.APIKey, fixture.conf.Media.APISecret)
	require.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, fixture.baseURL+"/webhooks/media", bytes.NewReader(payload))
	require.NoError(t, err)

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", authHeader)

	response, err := fixture.client.Do(request)
	require.NoError(t, err)

	return response
}

func roomStartedEvent(room string, at int64) map[string]interface{} {
	return map[string]interface{}{
		"event":     "room_started",
		"room":      map[string]string{"name": room},
		"createdAt": at,
	}
}

func participantEvent(kind, room, identity, name string, at int64) map[string]interface{} {
	return map[string]interface{}{
		"event":     kind,
		"room":      map[string]string{"name": room},
		"createdAt": at,
		"participant": map[string]interface{}{
			"identity":   identity,
			"name":       name,
			"attributes": map[string]string{"role": "student"},
		},
	}
}

func uploadDocument(
	t *testing.T,
	room string,
	session core.ContextSession,
	fileName, contents string,
) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)

	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	url := fmt.Sprintf("%s/rooms/%s/documents", fixture.baseURL, room)
	request, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)

	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.AddCookie(sessionCookie(t, session))

	response, err := fixture.client.Do(request)
	require.NoError(t, err)

	return response
}

func countRows(t *testing.T, query string, args ...interface{}) int {
	t.Helper()

	var count int
	require.NoError(t, fixture.db.QueryRow(query, args...).Scan(&count))
	return count
}
