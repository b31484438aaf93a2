package middleware

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// Lifetime of the in-progress lock; the handler must finish and store
	// its result before this expires.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew on Ax-Request-At.
	maxClockSkew = 10 * time.Minute
)

// HeaderCallerID carries the session-authenticated identity, injected by the
// gateway in front of the engine. Handlers trust it for the caller-equality
// checks; it is never read from the request body.
const HeaderCallerID = "Ax-Caller-Id"

// idemRecord is what lives under the idempotency key: first as an
// in-progress lock, then as the stored final response.
type idemRecord struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// checkHeaders validates the Ax-* headers every mutating request must send.
// Returns a non-empty message on failure.
func checkHeaders(req *http.Request) (reqID, caller string, reqAt time.Time, msg string) {
	reqID = strings.TrimSpace(req.Header.Get("Ax-Request-Id"))
	if reqID == "" {
		return "", "", time.Time{}, "missing Ax-Request-Id"
	}
	if !validReqID(reqID) {
		return "", "", time.Time{}, "invalid Ax-Request-Id format"
	}

	reqAt, err := parseRequestAt(req.Header.Get("Ax-Request-At"))
	if err != nil {
		return "", "", time.Time{}, err.Error()
	}
	now := nowUTC()
	if reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
		return "", "", time.Time{}, "Ax-Request-At too skewed"
	}

	caller = strings.TrimSpace(req.Header.Get(HeaderCallerID))
	if caller == "" {
		return "", "", time.Time{}, "missing Ax-Caller-Id"
	}
	if !reHex32.MatchString(caller) {
		return "", "", time.Time{}, "invalid Ax-Caller-Id"
	}
	return reqID, caller, reqAt, ""
}

// IdempotencyMiddleware keys every mutating request on method, route, caller
// and Ax-Request-Id. A retry with the same key replays the stored response
// instead of re-running the handler, so a retried fund, repay or claim call
// cannot move money twice. A retry that reuses the request id with a
// different body is rejected outright.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			method := req.Method

			// Reads are naturally idempotent.
			switch method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID, caller, reqAt, msg := checkHeaders(req)
			if msg != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
			}

			// Buffer the body; the hash detects request-id reuse.
			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := idemKey(method, c.Path(), caller, reqID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			ok, err := acquireLock(ctx, rdb, key, idemRecord{
				InProgress:  true,
				BodySHA256:  bhash,
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			})
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !ok {
				cur, errLoad := fetchRecord(ctx, rdb, key)
				if errLoad != nil {
					log.Printf("idempotency: fetch %s failed: %v", key, errLoad)
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": "Ax-Request-Id reused with different body"})
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// Store with a background context: the result must land even
			// when the client has already gone away.
			_ = storeResult(context.Background(), rdb, key, idemRecord{
				InProgress:  false,
				Code:        rec.code,
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}, ttl)
			return nil
		}
	}
}
