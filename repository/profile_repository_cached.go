package repository

import (
	"context"
	"encoding/json"
	"time"

	"loan-assistant/domain"
	"loan-assistant/logger"
)

const profileKeyPrefix = "profile:"

// CachedProfileStore is a read-through cache in front of another store.
// Cache failures are logged and never fail the lookup.
type CachedProfileStore struct {
	next  ProfileStore
	cache CacheRepository
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedProfileStore(next ProfileStore, cache CacheRepository, ttl time.Duration, log *logger.Logger) *CachedProfileStore {
	return &CachedProfileStore{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log.With("component", "CachedProfileStore"),
	}
}

func (s *CachedProfileStore) FetchProfile(ctx context.Context, phone string) (domain.CreditProfile, error) {
	key := profileKeyPrefix + domain.NormalizePhone(phone)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var p domain.CreditProfile
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return p, nil
		}
		s.log.Warn("discarding undecodable cached profile", "phone", phone)
	}

	p, err := s.next.FetchProfile(ctx, phone)
	if err != nil {
		return domain.CreditProfile{}, err
	}

	if raw, err := json.Marshal(p); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
			s.log.Warn("failed to cache profile", "phone", phone, "error", err)
		}
	}
	return p, nil
}
