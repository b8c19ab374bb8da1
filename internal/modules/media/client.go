package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrRoomAlreadyExists is returned by CreateRoom when the room is
	// already present upstream. Callers ensuring existence swallow it.
	ErrRoomAlreadyExists = errors.New("media: room already exists")

	// ErrNotFound is returned when the upstream room or participant is
	// gone. Deletion paths treat it as success.
	ErrNotFound = errors.New("media: not found")
)

type Room struct {
	Name            string `json:"name"`
	NumParticipants int    `json:"num_participants"`
	CreationTime    int64  `json:"creation_time"`
}

type ParticipantInfo struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joined_at"`
}

// RoomService is the admin API surface of the external real-time media
// service consumed by this system. Every call is a bounded remote call
// - retry policy belongs to the caller.
type RoomService interface {
	CreateRoom(ctx context.Context, name string) (Room, error)
	DeleteRoom(ctx context.Context, name string) error
	ListRooms(ctx context.Context) ([]Room, error)
	ListParticipants(ctx context.Context, roomName string) ([]ParticipantInfo, error)
	RemoveParticipant(ctx context.Context, roomName, identity string) error
}

type Client struct {
	host      string
	apiKey    string
	apiSecret string
	http      *http.Client
}

var _ RoomService = (*Client)(nil)

func NewClient(host, apiKey, apiSecret string) *Client {
	return &Client{
		host:      strings.TrimSuffix(host, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) CreateRoom(ctx context.Context, name string) (Room, error) {
	var room Room
	err := c.post(ctx, "CreateRoom", map[string]string{"name": name}, &room)
	return room, err
}

func (c *Client) DeleteRoom(ctx context.Context, name string) error {
	return c.post(ctx, "DeleteRoom", map[string]string{"room": name}, nil)
}

func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var response struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.post(ctx, "ListRooms", map[string]string{}, &response); err != nil {
		return nil, err
	}

	return response.Rooms, nil
}

func (c *Client) ListParticipants(ctx context.Context, roomName string) ([]ParticipantInfo, error) {
	var response struct {
		Participants []ParticipantInfo `json:"participants"`
	}
	if err := c.post(ctx, "ListParticipants", map[string]string{"room": roomName}, &response); err != nil {
		return nil, err
	}

	return response.Participants, nil
}

func (c *Client) RemoveParticipant(ctx context.Context, roomName, identity string) error {
	body := map[string]string{"room": roomName, "identity": identity}
	return c.post(ctx, "RemoveParticipant", body, nil)
}

func (c *Client) post(ctx context.Context, method string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/twirp/RoomService/%s", c.host, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	token, err := newAdminToken(c.apiKey, c.apiSecret)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "media: %s request failed", method)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := classifyStatus(resp.StatusCode, responseBody, method); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(responseBody, out)
}

func classifyStatus(statusCode int, body []byte, method string) error {
	switch {
	case statusCode < 300:
		return nil
	case statusCode == http.StatusNotFound:
		return ErrNotFound
	case statusCode == http.StatusConflict,
		strings.Contains(strings.ToLower(string(body)), "already exists"):
		return ErrRoomAlreadyExists
	default:
		return fmt.Errorf("media: %s returned status %d: %s", method, statusCode, body)
	}
}
