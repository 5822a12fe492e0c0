package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	prommetrics "github.com/Ramouth/BiomeQuest-sub000/internal/metrics"
)

// Cached summaries are keyed by a per-user version. Invalidate replaces the
// version with a fresh random token so every stale entry becomes unreachable
// at once and expires on its own TTL. Tokens never repeat, so the version key
// itself can expire: once it is gone, every entry written under an older
// version has expired too.
func versionKey(userID uint) string {
	return fmt.Sprintf("summary:version:%d", userID)
}

func entryKey(userID uint, version, kind, arg string) string {
	return fmt.Sprintf("summary:%d:v%s:%s:%s", userID, version, kind, arg)
}

// versionTTL keeps the version key alive longer than any entry written
// under it. Zero (no entry TTL) keeps it forever.
func (s *Service) versionTTL() time.Duration {
	return 2 * s.ttl
}

// Invalidate drops every cached summary of a user. Errors are logged and
// swallowed; a failed bump only means entries live until their TTL.
func (s *Service) Invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, versionKey(userID), uuid.NewString(), s.versionTTL()); err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to invalidate summary cache")
	}
}

// cachedLoad serves kind/arg for userID from the cache, falling back to load.
// Any cache failure degrades to calling load directly.
func cachedLoad[T any](ctx context.Context, s *Service, userID uint, kind, arg string, load func() (T, error)) (T, error) {
	if s.cache == nil {
		return load()
	}

	version, err := s.cache.Get(ctx, versionKey(userID))
	if err != nil {
		prommetrics.RecordSummaryCache(prommetrics.CacheError)
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Summary cache unavailable")
		return load()
	}
	if version == "" {
		version = "0"
	}
	key := entryKey(userID, version, kind, arg)

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		prommetrics.RecordSummaryCache(prommetrics.CacheError)
		s.log.Warn().Err(err).Str("key", key).Msg("Summary cache unavailable")
		return load()
	}
	if raw != "" {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			prommetrics.RecordSummaryCache(prommetrics.CacheHit)
			return cached, nil
		}
		s.log.Warn().Str("key", key).Msg("Discarding undecodable summary cache entry")
	}
	prommetrics.RecordSummaryCache(prommetrics.CacheMiss)

	value, err := load()
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to encode summary for cache")
		return value, nil
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to store summary in cache")
	}
	return value, nil
}
