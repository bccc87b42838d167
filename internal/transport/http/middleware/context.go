package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"shiftdesk/internal/domain/auth"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyActor     ctxKey = "actor"
)

// RequestID propagates a caller supplied X-Request-ID or assigns a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return value
	}
	return ""
}

func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

func GetActor(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(ctxKeyActor).(auth.Actor)
	return actor, ok && actor.EmployeeID != ""
}
