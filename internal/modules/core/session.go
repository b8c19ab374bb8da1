package core

import (
	"context"
)

type ContextKey string

const SessionContextKey ContextKey = "session"

// ContextSession is the authenticated requester attached to the request
// context by the auth middleware: the platform user identity, the name
// shown to other participants, and the platform role (student, teacher,
// admin).
type ContextSession struct {
	UserID      string
	DisplayName string
	Role        string
}

func Session(ctx context.Context) ContextSession {
	rawVal := ctx.Value(SessionContextKey)
	if rawVal == nil {
		return ContextSession{}
	}

	session, ok := rawVal.(ContextSession)
	if !ok {
		return ContextSession{}
	}

	return session
}

func WithSession(ctx context.Context, session ContextSession) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}
