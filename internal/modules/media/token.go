package media

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// DefaultTokenTTL bounds how long an issued join token stays valid.
const DefaultTokenTTL = time.Hour

// VideoGrant is the capability set embedded in a join token. The media
// service enforces it - the token is scoped to exactly one room and one
// identity.
type VideoGrant struct {
	RoomJoin     bool   `json:"roomJoin,omitempty"`
	RoomAdmin    bool   `json:"roomAdmin,omitempty"`
	RoomCreate   bool   `json:"roomCreate,omitempty"`
	RoomList     bool   `json:"roomList,omitempty"`
	Room         string `json:"room,omitempty"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// NewAccessToken mints a signed capability token for one identity in
// one room.
func NewAccessToken(
	apiKey, apiSecret string,
	identity, displayName string,
	grant VideoGrant,
	ttl time.Duration,
) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   apiKey,
		"sub":   identity,
		"name":  displayName,
		"nbf":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"video": grant,
	})

	return token.SignedString([]byte(apiSecret))
}

// newAdminToken signs a short-lived token for admin API requests.
func newAdminToken(apiKey, apiSecret string) (string, error) {
	grant := VideoGrant{
		RoomCreate:   true,
		RoomList:     true,
		RoomAdmin:    true,
		CanSubscribe: true,
	}

	return NewAccessToken(apiKey, apiSecret, apiKey, "", grant, 10*time.Minute)
}
