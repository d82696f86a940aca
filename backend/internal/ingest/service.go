// Package ingest projects profile records into the interest graph.
package ingest

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/etoland/my-circle/backend/internal/profile"
	"github.com/etoland/my-circle/backend/pkg/logger"
)

// GraphWriter is the slice of the graph repository ingestion needs.
type GraphWriter interface {
	UpsertUser(ctx context.Context, userID, displayName, city, country string) error
	UpsertInterest(ctx context.Context, userID, label string) error
	UpsertSchool(ctx context.Context, userID, name string) error
}

// ProfileGetter fetches profile records by user id.
type ProfileGetter interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

// Service projects one profile record into graph vertices and edges.
// Every step is an idempotent upsert, so re-ingesting a profile only
// refreshes attributes and a failed run heals on retry.
type Service struct {
	graph    GraphWriter
	profiles ProfileGetter
	logger   *zap.Logger

	// Per-user locks serialize concurrent ingestions of the same
	// userId within this process. The MERGE steps are check-then-act
	// across two stores; without serialization two simultaneous
	// re-ingestions could interleave.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates an ingestion service.
func NewService(graph GraphWriter, profiles ProfileGetter) *Service {
	return &Service{
		graph:    graph,
		profiles: profiles,
		logger:   logger.Get(),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Ingest reads the profile for userID and upserts its User vertex,
// one Interest vertex + HAS_INTEREST edge per interest label, and the
// School vertex + ATTENDED edge when the profile names a school. It
// returns the profile that was projected.
//
// Returns ErrProfileNotFound when no profile exists upstream. A
// failure mid-sequence leaves the graph partially updated; retrying
// is safe because each step is individually idempotent.
func (s *Service) Ingest(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	city, country := "", ""
	if p.Location != nil {
		city = p.Location.City
		country = p.Location.Country
	}

	if err := s.graph.UpsertUser(ctx, userID, p.DisplayName, city, country); err != nil {
		return nil, err
	}

	for _, label := range p.Interests {
		if err := s.graph.UpsertInterest(ctx, userID, label); err != nil {
			return nil, err
		}
	}

	if p.School != "" {
		if err := s.graph.UpsertSchool(ctx, userID, p.School); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Profile ingested into graph",
		zap.String("user_id", userID),
		zap.Int("interests", len(p.Interests)),
		zap.Bool("school", p.School != ""),
	)
	return p, nil
}

// lockFor returns the mutex for userID, creating it on first use.
// Entries are never evicted, so the map retains one mutex per userId
// ever ingested in this process.
func (s *Service) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
