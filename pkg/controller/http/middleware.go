package http

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/utils/errutil"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"golang.org/x/time/rate"
)

type ctxKey string

const actorKey ctxKey = "actor"

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

// staffAuth requires "Authorization: Bearer <secret>". An empty secret
// disables the staff API entirely.
func staffAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if secret == "" {
				errutil.HandleHTTP(ctx, w, goerr.New("staff access is not configured"), http.StatusForbidden)
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="staff"`)
				errutil.HandleHTTP(ctx, w, goerr.New("invalid staff credentials"), http.StatusUnauthorized)
				return
			}

			actor := r.Header.Get("X-Staff-Name")
			if actor == "" {
				actor = "staff"
			}
			ctx = logging.With(ctx, logging.From(ctx).With("actor", actor))
			next.ServeHTTP(w, r.WithContext(withActor(ctx, actor)))
		})
	}
}

// clientLimiter keeps one token bucket per client address
type clientLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// maxTrackedClients caps memory; the table restarts when it is reached
const maxTrackedClients = 10000

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (c *clientLimiter) allow(client string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[client]
	if !ok {
		if len(c.limiters) >= maxTrackedClients {
			clear(c.limiters)
		}
		l = rate.NewLimiter(c.limit, c.burst)
		c.limiters[client] = l
	}
	return l.Allow()
}

func rateLimit(c *clientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !c.allow(clientAddr(r)) {
				w.Header().Set("Retry-After", "10")
				errutil.HandleHTTP(r.Context(), w, goerr.New("too many ticket submissions"), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
