package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// idemKey scopes the stored response to method, route, caller and request
// id. Two callers retrying the same request id therefore never collide.
func idemKey(method, route, caller, requestID string) string {
	return "idem:settle:" + strings.ToLower(method) + ":" + route + ":" + caller + ":" + requestID
}

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// validReqID accepts lowercase UUIDs or 32-char lowercase hex.
func validReqID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseRequestAt reads Ax-Request-At as epoch seconds, epoch milliseconds,
// or RFC3339/RFC3339Nano with an explicit zone. Naive local timestamps are
// rejected because skew checking needs an unambiguous instant.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing Ax-Request-At")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 { // milliseconds
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("Ax-Request-At must be epoch (s/ms) or RFC3339 with timezone")
}

// acquireLock plants the in-progress record iff the key is free.
func acquireLock(ctx context.Context, rdb *redis.Client, key string, rec idemRecord) (bool, error) {
	payload, _ := json.Marshal(rec)
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func fetchRecord(ctx context.Context, rdb *redis.Client, key string) (idemRecord, error) {
	var rec idemRecord
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return rec, err
	}
	_ = json.Unmarshal(v, &rec)
	return rec, nil
}

// storeResult overwrites the lock with the final response and the replay TTL.
func storeResult(ctx context.Context, rdb *redis.Client, key string, rec idemRecord, ttl time.Duration) error {
	payload, _ := json.Marshal(rec)
	return rdb.Set(ctx, key, payload, ttl).Err()
}
