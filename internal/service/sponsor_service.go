package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/keris/scholar-backend/internal/config"
	"github.com/keris/scholar-backend/internal/model"
	"github.com/keris/scholar-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SponsorService serves the read-only sponsor collection, optionally through
// a Redis read-through cache.
type SponsorService struct {
	sponsorRepo repository.SponsorRepository
	rdb         *redis.Client
	ttl         time.Duration
	log         zerolog.Logger
}

// NewSponsorService creates a new SponsorService. A nil rdb disables caching.
func NewSponsorService(sponsorRepo repository.SponsorRepository, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *SponsorService {
	return &SponsorService{
		sponsorRepo: sponsorRepo,
		rdb:         rdb,
		ttl:         ttl,
		log:         log.With().Str("component", "sponsor_service").Logger(),
	}
}

// GetAll returns every sponsor.
func (s *SponsorService) GetAll(ctx context.Context) ([]model.Sponsor, error) {
	key := config.CacheKey.SponsorListKey()

	var cached []model.Sponsor
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	sponsors, err := s.sponsorRepo.FindAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list sponsors")
		return nil, err
	}

	s.writeCache(ctx, key, sponsors)
	return sponsors, nil
}

// GetByID returns one sponsor.
func (s *SponsorService) GetByID(ctx context.Context, id string) (*model.Sponsor, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	key := config.CacheKey.SponsorKey(oid.Hex())

	var cached model.Sponsor
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	sponsor, err := s.sponsorRepo.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error().Err(err).Str("sponsor_id", id).Msg("failed to get sponsor")
		return nil, err
	}

	s.writeCache(ctx, key, sponsor)
	return sponsor, nil
}

// readCache reports whether key was found and decoded into dst.
// Cache errors are logged and treated as a miss.
func (s *SponsorService) readCache(ctx context.Context, key string, dst interface{}) bool {
	if s.rdb == nil {
		return false
	}

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("sponsor cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("sponsor cache entry corrupt")
		return false
	}
	return true
}

func (s *SponsorService) writeCache(ctx context.Context, key string, v interface{}) {
	if s.rdb == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("sponsor cache encode failed")
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("sponsor cache write failed")
	}
}
