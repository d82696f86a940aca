// Package match implements the interest-similarity matching engine:
// graph discovery, bounded scoring, and concurrent profile enrichment.
package match

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/etoland/my-circle/backend/internal/constants"
	"github.com/etoland/my-circle/backend/internal/graph"
	"github.com/etoland/my-circle/backend/internal/profile"
	apperrors "github.com/etoland/my-circle/backend/pkg/errors"
	"github.com/etoland/my-circle/backend/pkg/logger"
)

// GraphReader is the slice of the graph repository matching needs.
type GraphReader interface {
	FindCandidates(ctx context.Context, userID string, minShared, limit int) ([]graph.Candidate, error)
	CountSharedInterests(ctx context.Context, userID, otherID string) (int, error)
}

// ProfileGetter fetches profile records by user id.
type ProfileGetter interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

// Match is one enriched result entry.
type Match struct {
	UserID      string            `json:"userId"`
	DisplayName string            `json:"displayName"`
	Location    *profile.Location `json:"location"`
	School      string            `json:"school,omitempty"`
	Interests   []string          `json:"interests"`
	Vibe        string            `json:"vibe,omitempty"`
	MatchScore  int               `json:"matchScore"`
	// Voucher is reserved for a future introduction flow; always
	// empty today.
	Voucher *string `json:"voucher"`
}

// Result is a ranked match list plus the number of candidates that
// were discovered but dropped during enrichment, so silent drops stay
// visible to callers and tests.
type Result struct {
	Matches []Match `json:"matches"`
	Dropped int     `json:"-"`
}

// Service produces ranked, bounded, enriched match lists.
type Service struct {
	graph    GraphReader
	profiles ProfileGetter
	logger   *zap.Logger
}

// NewService creates a matching service.
func NewService(graph GraphReader, profiles ProfileGetter) *Service {
	return &Service{
		graph:    graph,
		profiles: profiles,
		logger:   logger.Get(),
	}
}

// FindMatches returns up to limit users sharing at least minShared
// interests with userID, ordered by match score descending.
//
// Discovery is a single traversal and fatal on failure. Enrichment
// fans out one goroutine per candidate; any per-candidate failure
// (missing profile, recount error, recount below threshold) drops
// that candidate only and never fails the request. A user unknown to
// the graph gets an empty list, not an error.
func (s *Service) FindMatches(ctx context.Context, userID string, minShared, limit int) (*Result, error) {
	if minShared < 1 {
		minShared = constants.DefaultMinSharedInterests
	}
	if limit < 1 {
		limit = constants.DefaultMatchLimit
	}

	candidates, err := s.graph.FindCandidates(ctx, userID, minShared, limit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Result{Matches: []Match{}}, nil
	}

	// Enrichment barrier: every candidate resolves to a match or a
	// drop before anything is sorted. Slots are index-owned, so no
	// lock is needed across goroutines.
	enriched := make([]*Match, len(candidates))
	g, gctx := errgroup.WithContext(ctx)

	for i, cand := range candidates {
		g.Go(func() error {
			m, err := s.enrich(gctx, userID, cand.UserID, minShared)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("Dropping candidate from match results",
					zap.String("user_id", userID),
					zap.String("candidate_id", cand.UserID),
					zap.Error(err),
				)
				return nil
			}
			enriched[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, apperrors.NewContextCancelled("match enrichment", err)
	}

	matches := make([]Match, 0, len(candidates))
	dropped := 0
	for _, m := range enriched {
		if m == nil {
			dropped++
			continue
		}
		matches = append(matches, *m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	if dropped > 0 {
		s.logger.Warn("Candidates dropped during enrichment",
			zap.String("user_id", userID),
			zap.Int("dropped", dropped),
			zap.Int("returned", len(matches)),
		)
	}

	return &Result{Matches: matches, Dropped: dropped}, nil
}

// enrich resolves one candidate: profile fetch, shared-interest
// recount against the live graph, and score computation. The recount
// is a second independent read; if the graph moved since discovery
// and the candidate no longer clears minShared, the candidate is
// dropped rather than returned with a stale count.
func (s *Service) enrich(ctx context.Context, userID, candidateID string, minShared int) (*Match, error) {
	p, err := s.profiles.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	shared, err := s.graph.CountSharedInterests(ctx, userID, candidateID)
	if err != nil {
		return nil, err
	}
	if shared < minShared {
		return nil, fmt.Errorf("recounted shared interests %d below threshold %d", shared, minShared)
	}

	return &Match{
		UserID:      candidateID,
		DisplayName: p.DisplayName,
		Location:    p.Location,
		School:      p.School,
		Interests:   p.Interests,
		Vibe:        p.Vibe(),
		MatchScore:  Score(shared),
		Voucher:     nil,
	}, nil
}

// Score maps a shared-interest count onto the bounded [50, 99] range:
// 50 + 15 per shared interest, saturating at 99 so no result ever
// claims a perfect 100.
func Score(shared int) int {
	score := constants.MatchScoreBase + shared*constants.MatchScorePerInterest
	if score > constants.MatchScoreMax {
		score = constants.MatchScoreMax
	}
	return score
}
