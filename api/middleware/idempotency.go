package middleware

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tuanvle/dacsan-backend/api/responses"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	pkgredis "github.com/tuanvle/dacsan-backend/pkg/redis"
)

const (
	replayTTL = 24 * time.Hour
	// Checkout and status transitions create money-bearing rows, so
	// their replay window outlives any plausible client retry loop.
	criticalReplayTTL = 7 * 24 * time.Hour
)

type replayRule struct {
	method string
	match  func(string) bool
	ttl    time.Duration
}

// Mutating endpoints guarded against duplicate submission. Matched
// requests must carry an Idempotency-Key header.
var replayRules = []replayRule{
	{method: http.MethodPost, match: exactRoute("/api/v1/auth/register"), ttl: replayTTL},
	{method: http.MethodPost, match: exactRoute("/api/v1/cart/items"), ttl: replayTTL},
	{method: http.MethodPost, match: exactRoute("/api/v1/vendor/products"), ttl: replayTTL},
	{method: http.MethodPost, match: exactRoute("/api/v1/checkout"), ttl: criticalReplayTTL},
	{method: http.MethodPatch, match: routeWithin("/api/v1/vendor/orders/", "/status"), ttl: criticalReplayTTL},
}

// replayRecord is the cached outcome of the first submission, stored
// verbatim so retries observe the original response.
type replayRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency caches the response of guarded mutations under the
// caller's Idempotency-Key and serves that cache on replay. Reusing a
// key with a different body is a conflict, not a replay.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ttl, guarded := replayTTLFor(r.Method, r.URL.Path)
			if !guarded || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if idempotencyKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashValue(string(body))
			key := store.IdempotencyKey(replayScope(r), idempotencyKey)

			stored, err := store.Get(ctx, key)
			if err != nil && !errors.Is(err, redis.Nil) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if stored != "" {
				var record replayRecord
				if err := json.Unmarshal([]byte(stored), &record); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if record.RequestHash != requestHash {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				writeReplay(w, record)
				return
			}

			capture := &replayCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			record := replayRecord{
				Status:      capture.statusOrOK(),
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
				ContentType: capture.Header().Get("Content-Type"),
				RequestHash: requestHash,
			}
			payload, err := json.Marshal(record)
			if err != nil {
				logReplayError(ctx, logg, "marshal idempotency record", err)
				return
			}
			if _, err := store.SetNX(ctx, key, string(payload), ttl); err != nil {
				logReplayError(ctx, logg, "persist idempotency record", err)
			}
		})
	}
}

// replayScope ties the cache entry to the caller and route so one
// customer's key can never surface another's response.
func replayScope(r *http.Request) string {
	ctx := r.Context()
	return strings.Join([]string{
		UserIDFromContext(ctx),
		VendorIDFromContext(ctx),
		r.Method,
		r.URL.Path,
	}, "|")
}

// replayTTLFor matches the concrete request path, not the chi route
// pattern: inside a sub-router's middleware the pattern is still the
// parent's wildcard.
func replayTTLFor(method, path string) (time.Duration, bool) {
	if path == "" {
		return 0, false
	}
	for _, rule := range replayRules {
		if rule.method == method && rule.match(path) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func exactRoute(path string) func(string) bool {
	return func(requested string) bool { return requested == path }
}

func routeWithin(prefix, suffix string) func(string) bool {
	return func(requested string) bool {
		return strings.HasPrefix(requested, prefix) && strings.HasSuffix(requested, suffix)
	}
}

func writeReplay(w http.ResponseWriter, record replayRecord) {
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

type replayCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *replayCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *replayCapture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *replayCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func logReplayError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
