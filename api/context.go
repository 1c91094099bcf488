package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type keyType string

const userIDKey keyType = "userID"

// ctxWithUserID adds a user ID to the context
func ctxWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// ctxGetUserID returns the authenticated user, if the request carried a token.
func ctxGetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
