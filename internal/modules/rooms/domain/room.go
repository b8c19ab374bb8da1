package domain

import (
	"time"

	"github.com/google/uuid"
)

// Room is the durable record of a named study room. The name is the
// identity and the foreign key everywhere else - it maps 1:1 to a room
// on the external media service.
type Room struct {
	Name           string     `db:"name" json:"name"`
	CreatorID      string     `db:"creator_id" json:"creatorId"`
	CreatorRole    string     `db:"creator_role" json:"creatorRole"`
	CurrentHostID  string     `db:"current_host_id" json:"currentHostId"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	LastActivityAt time.Time  `db:"last_activity_at" json:"lastActivityAt"`
	EmptySince     *time.Time `db:"empty_since" json:"emptySince,omitempty"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// Ban is a standing refusal for a (room, user) pair. Its existence
// blocks token issuance before any other side effect.
type Ban struct {
	RoomName  string    `db:"room_name" json:"roomName"`
	UserID    string    `db:"user_id" json:"userId"`
	BannedBy  string    `db:"banned_by" json:"bannedBy"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Session is one continuous occupied interval of a room, reconstructed
// from webhook events. At most one session per room has a nil EndedAt.
type Session struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	RoomName  string     `db:"room_name" json:"roomName"`
	StartedAt time.Time  `db:"started_at" json:"startedAt"`
	EndedAt   *time.Time `db:"ended_at" json:"endedAt,omitempty"`
}

// Participant is one user's presence interval inside a session. A
// (session, identity) pair has at most one row with a nil LeftAt.
type Participant struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	SessionID       uuid.UUID  `db:"session_id" json:"sessionId"`
	Identity        string     `db:"identity" json:"identity"`
	DisplayName     string     `db:"display_name" json:"displayName"`
	Role            string     `db:"role" json:"role"`
	JoinedAt        time.Time  `db:"joined_at" json:"joinedAt"`
	LeftAt          *time.Time `db:"left_at" json:"leftAt,omitempty"`
	SpeakingSeconds int        `db:"speaking_seconds" json:"speakingSeconds"`
}

// Document is a file shared into a room, backed by an object in the
// document store.
type Document struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RoomName    string    `db:"room_name" json:"roomName"`
	UploaderID  string    `db:"uploader_id" json:"uploaderId"`
	FileName    string    `db:"file_name" json:"fileName"`
	ContentType string    `db:"content_type" json:"contentType"`
	URL         string    `db:"url" json:"url"`
	ObjectKey   string    `db:"object_key" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type Comment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RoomName   string    `db:"room_name" json:"roomName"`
	AuthorID   string    `db:"author_id" json:"authorId"`
	AuthorName string    `db:"author_name" json:"authorName"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
