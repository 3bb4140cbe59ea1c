package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/spektr-org/gccdash/auth"
)

type contextKey int

const (
	loggerKey contextKey = iota
	sessionKey
)

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	if !w.statusWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the HTTP status code
func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *responseCaptureWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseCaptureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("underlying ResponseWriter does not implement http.Hijacker")
}

func (s *Server) realIP(r *http.Request) string {
	if ip := r.Header.Get(s.conf.RealIPHeader); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func (s *Server) requestID(r *http.Request) string {
	if id := r.Header.Get(s.conf.RequestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

// withLogger attaches a request-scoped logger, logs start and completion, and
// turns panics into a JSON 500.
func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := s.requestID(r)

		fieldsLogger := s.log.WithFields(logrus.Fields{
			"request-id": requestID,
			"path":       r.URL.Path,
			"method":     r.Method,
		})
		fieldsLogger.WithFields(logrus.Fields{
			"ip":         s.realIP(r),
			"user-agent": r.UserAgent(),
		}).Debug("request started")

		w.Header().Set("X-Request-Id", requestID)
		wrapped := &responseCaptureWriter{ResponseWriter: w}

		defer func() {
			if recovered := recover(); recovered != nil {
				fieldsLogger.WithFields(logrus.Fields{
					"panic":    recovered,
					"stack":    string(debug.Stack()),
					"duration": time.Since(start),
				}).Error("panic recovered in request handler")
				if !wrapped.statusWritten {
					writeError(wrapped, http.StatusInternalServerError, "internal", "internal server error")
				}
			}
		}()

		ctx := context.WithValue(r.Context(), loggerKey, fieldsLogger)
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		status := wrapped.Status()
		fieldsLogger.WithFields(logrus.Fields{
			"duration":     time.Since(start),
			"status-code":  status,
			"status-class": status / 100,
		}).Info("request completed")
	})
}

// withMetrics counts requests by route template, method and status.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped, ok := w.(*responseCaptureWriter)
		if !ok {
			wrapped = &responseCaptureWriter{ResponseWriter: w}
		}
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.requests.WithLabelValues(r.Method, route, fmt.Sprint(wrapped.Status())).Inc()
	})
}

// requireAuth rejects requests without a live session.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "Please log in.")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) session(r *http.Request) (*auth.Session, bool) {
	c, err := r.Cookie(s.conf.SidCookieKey)
	if err != nil {
		return nil, false
	}
	return s.sessions.Get(c.Value)
}

func sessionFrom(ctx context.Context) *auth.Session {
	sess, _ := ctx.Value(sessionKey).(*auth.Session)
	return sess
}

func loggerFrom(ctx context.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if l, ok := ctx.Value(loggerKey).(logrus.FieldLogger); ok {
		return l
	}
	return fallback
}
