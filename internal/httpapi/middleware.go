package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/formatting"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const staffHeader = "X-Staff-ID"

type sessionKey struct{}

func withSession(ctx context.Context, sess service.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

func sessionFrom(ctx context.Context) service.Session {
	sess, _ := ctx.Value(sessionKey{}).(service.Session)
	return sess
}

// accessLog пишет строку лога на каждый запрос
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(started)),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}

// identify превращает X-Staff-ID в сессию сотрудника
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staffID, err := strconv.ParseInt(r.Header.Get(staffHeader), 10, 64)
		if err != nil || staffID <= 0 {
			writeError(w, http.StatusUnauthorized, "missing or invalid "+staffHeader)
			return
		}

		locale := formatting.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
		sess, err := s.staff.SessionFor(r.Context(), staffID, locale)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unknown staff")
				return
			}
			s.writeServiceError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r.Context()).IsAdmin() {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
