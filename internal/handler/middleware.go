package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nestegg/backend/internal/apperror"
	"github.com/nestegg/backend/internal/logger"
	"github.com/nestegg/backend/internal/service"
)

type contextKey string

// UserIDKey is the request-context key holding the authenticated user's ID.
const UserIDKey contextKey = "user_id"

// AuthMiddleware requires a valid Bearer token and stores the authenticated
// user ID in the request context, for the handlers and for log correlation.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respondAppError(w, apperror.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondAppError(w, apperror.Unauthorized("invalid authorization header"))
			return
		}

		userID, err := service.ValidateToken(parts[1])
		if err != nil {
			respondAppError(w, apperror.Unauthorized("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = logger.WithUserID(ctx, userID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the authenticated user's ID from the request context, or
// uuid.Nil outside an authenticated request.
func GetUserID(ctx context.Context) uuid.UUID {
	if userID, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return userID
	}
	return uuid.Nil
}
