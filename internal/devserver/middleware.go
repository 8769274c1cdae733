package devserver

import (
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/common/security"
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	userIDCtxKey   contextKey = "userID"
	userRoleCtxKey contextKey = "userRole"
)

// Authenticator rejects requests whose bearer token did not verify and puts
// the token's identity claims on the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		userRole, err := security.GetUserRoleFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), userIDCtxKey, userID)
		ctx = context.WithValue(ctx, userRoleCtxKey, userRole)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(userIDCtxKey).(uint)
	return userID, ok
}

func userRoleFromContext(ctx context.Context) (string, bool) {
	userRole, ok := ctx.Value(userRoleCtxKey).(string)
	return userRole, ok
}
