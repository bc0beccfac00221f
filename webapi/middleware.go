package webapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const callerIDKey contextKey = "callerID"

// loggingMiddleware tags each request with an ID and logs its outcome
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"requestID": requestID,
			"method":    r.Method,
			"path":      r.URL.Path,
			"duration":  time.Since(start),
		}).Debug("Handled request")
	})
}

// callerMiddleware resolves the caller's Telegram identity from the
// X-Telegram-ID header set by the portal's auth proxy
func callerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Telegram-ID")
		if raw == "" {
			respondError(w, http.StatusUnauthorized, "missing caller identity")
			return
		}

		telegramID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || telegramID <= 0 {
			respondError(w, http.StatusUnauthorized, "invalid caller identity")
			return
		}

		ctx := context.WithValue(r.Context(), callerIDKey, telegramID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID extracts the caller's Telegram ID set by callerMiddleware
func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(callerIDKey).(int64)
	return id
}

// adminMiddleware guards administrative routes with a static API key
func adminMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || r.Header.Get("X-API-Key") != apiKey {
				respondError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
