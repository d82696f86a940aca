package match

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etoland/my-circle/backend/internal/graph"
	"github.com/etoland/my-circle/backend/internal/profile"
	apperrors "github.com/etoland/my-circle/backend/pkg/errors"
)

// Mock implementations for testing

type mockGraph struct {
	candidates []graph.Candidate
	findErr    error
	counts     map[string]int
	countErrs  map[string]error
}

func (m *mockGraph) FindCandidates(ctx context.Context, userID string, minShared, limit int) ([]graph.Candidate, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if limit < len(m.candidates) {
		return m.candidates[:limit], nil
	}
	return m.candidates, nil
}

func (m *mockGraph) CountSharedInterests(ctx context.Context, userID, otherID string) (int, error) {
	if err, ok := m.countErrs[otherID]; ok {
		return 0, err
	}
	return m.counts[otherID], nil
}

type mockProfiles struct {
	profiles map[string]*profile.Profile
	errs     map[string]error
}

func (m *mockProfiles) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	if err, ok := m.errs[userID]; ok {
		return nil, err
	}
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, apperrors.NewProfileNotFound(userID)
}

func testProfile(userID, displayName string, interests ...string) *profile.Profile {
	return &profile.Profile{
		UserID:      userID,
		DisplayName: displayName,
		Location:    &profile.Location{City: "Stockholm", Country: "Sweden"},
		Interests:   interests,
	}
}

func TestFindMatches_SharedInterestScenario(t *testing.T) {
	// User A shares Chess+Hiking with B; C shares only Chess and is
	// already filtered out by the discovery traversal.
	g := &mockGraph{
		candidates: []graph.Candidate{{UserID: "user-b", Shared: 2}},
		counts:     map[string]int{"user-b": 2},
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{
		"user-b": testProfile("user-b", "Benny", "Chess", "Hiking"),
	}}

	svc := NewService(g, p)
	result, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	m := result.Matches[0]
	assert.Equal(t, "user-b", m.UserID)
	assert.Equal(t, "Benny", m.DisplayName)
	assert.Equal(t, 80, m.MatchScore)
	assert.Equal(t, []string{"Chess", "Hiking"}, m.Interests)
	assert.Nil(t, m.Voucher)
	assert.Equal(t, 0, result.Dropped)
}

func TestFindMatches_ScoreClampedAt99(t *testing.T) {
	g := &mockGraph{
		candidates: []graph.Candidate{{UserID: "user-d", Shared: 4}},
		counts:     map[string]int{"user-d": 4},
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{
		"user-d": testProfile("user-d", "Dana", "Chess", "Hiking", "Jazz", "Sailing"),
	}}

	svc := NewService(g, p)
	result, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, 99, result.Matches[0].MatchScore)
}

func TestFindMatches_NoCandidates(t *testing.T) {
	svc := NewService(&mockGraph{}, &mockProfiles{})

	result, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.NoError(t, err)
	assert.NotNil(t, result.Matches)
	assert.Empty(t, result.Matches)
}

func TestFindMatches_DiscoveryFailureIsFatal(t *testing.T) {
	g := &mockGraph{findErr: apperrors.NewGraphUnavailable("find candidates", assert.AnError)}
	svc := NewService(g, &mockProfiles{})

	_, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeGraph))
}

func TestFindMatches_MissingProfileDropsCandidate(t *testing.T) {
	// user-gone was ingested into the graph but its profile record
	// has since been deleted; the request still succeeds with the
	// remaining candidate.
	g := &mockGraph{
		candidates: []graph.Candidate{
			{UserID: "user-b", Shared: 2},
			{UserID: "user-gone", Shared: 3},
		},
		counts: map[string]int{"user-b": 2, "user-gone": 3},
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{
		"user-b": testProfile("user-b", "Benny", "Chess", "Hiking"),
	}}

	svc := NewService(g, p)
	result, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "user-b", result.Matches[0].UserID)
	assert.Equal(t, 1, result.Dropped)
}

func TestFindMatches_RecountFailureDropsCandidate(t *testing.T) {
	g := &mockGraph{
		candidates: []graph.Candidate{
			{UserID: "user-b", Shared: 2},
			{UserID: "user-c", Shared: 2},
		},
		counts:    map[string]int{"user-b": 2},
		countErrs: map[string]error{"user-c": apperrors.NewGraphQueryFailed("count shared interests", assert.AnError)},
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{
		"user-b": testProfile("user-b", "Benny", "Chess", "Hiking"),
		"user-c": testProfile("user-c", "Cleo", "Chess", "Hiking"),
	}}

	svc := NewService(g, p)
	result, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "user-b", result.Matches[0].UserID)
	assert.Equal(t, 1, result.Dropped)
}

func TestFindMatches_RecountBelowThresholdDropsCandidate(t *testing.T) {
	// The graph moved between discovery and enrichment: the recount
	// no longer clears the threshold, so the candidate is dropped
	// instead of returned with a stale count.
	g := &mockGraph{
		candidates: []graph.Candidate{{UserID: "user-b", Shared: 2}},
		counts:     map[string]int{"user-b": 1},
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{
		"user-b": testProfile("user-b", "Benny", "Chess"),
	}}

	svc := NewService(g, p)
	result, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.NoError(t, err)

	assert.Empty(t, result.Matches)
	assert.Equal(t, 1, result.Dropped)
}

func TestFindMatches_SortedByScoreDescending(t *testing.T) {
	g := &mockGraph{
		candidates: []graph.Candidate{
			{UserID: "user-b", Shared: 2},
			{UserID: "user-d", Shared: 4},
			{UserID: "user-e", Shared: 3},
		},
		counts: map[string]int{"user-b": 2, "user-d": 4, "user-e": 3},
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{
		"user-b": testProfile("user-b", "Benny", "Chess", "Hiking"),
		"user-d": testProfile("user-d", "Dana", "Chess", "Hiking", "Jazz", "Sailing"),
		"user-e": testProfile("user-e", "Elin", "Chess", "Hiking", "Jazz"),
	}}

	svc := NewService(g, p)
	result, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.NoError(t, err)

	require.Len(t, result.Matches, 3)
	for i := 1; i < len(result.Matches); i++ {
		assert.GreaterOrEqual(t, result.Matches[i-1].MatchScore, result.Matches[i].MatchScore)
	}
	assert.Equal(t, "user-d", result.Matches[0].UserID)
}

func TestFindMatches_RespectsLimit(t *testing.T) {
	g := &mockGraph{
		candidates: []graph.Candidate{
			{UserID: "user-b", Shared: 2},
			{UserID: "user-d", Shared: 4},
			{UserID: "user-e", Shared: 3},
		},
		counts: map[string]int{"user-b": 2, "user-d": 4, "user-e": 3},
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{
		"user-b": testProfile("user-b", "Benny", "Chess", "Hiking"),
		"user-d": testProfile("user-d", "Dana", "Chess", "Hiking", "Jazz", "Sailing"),
	}}

	svc := NewService(g, p)
	result, err := svc.FindMatches(context.Background(), "user-a", 2, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Matches), 2)
}

func TestFindMatches_VibeFromFingerprint(t *testing.T) {
	withVibe := testProfile("user-b", "Benny", "Chess", "Hiking")
	withVibe.CommunicationFingerprint = &profile.CommunicationFingerprint{Vibe: "upbeat"}

	g := &mockGraph{
		candidates: []graph.Candidate{{UserID: "user-b", Shared: 2}},
		counts:     map[string]int{"user-b": 2},
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{"user-b": withVibe}}

	svc := NewService(g, p)
	result, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "upbeat", result.Matches[0].Vibe)
}

func TestFindMatches_CancelledContext(t *testing.T) {
	g := &mockGraph{
		candidates: []graph.Candidate{{UserID: "user-b", Shared: 2}},
		countErrs:  map[string]error{"user-b": context.Canceled},
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{
		"user-b": testProfile("user-b", "Benny", "Chess", "Hiking"),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(g, p)
	_, err := svc.FindMatches(ctx, "user-a", 2, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeContext))
}

func TestScore(t *testing.T) {
	tests := []struct {
		shared int
		want   int
	}{
		{0, 50},
		{1, 65},
		{2, 80},
		{3, 95},
		{4, 99},
		{10, 99},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.shared), "shared=%d", tt.shared)
	}
}

func TestScore_AlwaysInBounds(t *testing.T) {
	for shared := 0; shared <= 100; shared++ {
		score := Score(shared)
		assert.GreaterOrEqual(t, score, 50)
		assert.LessOrEqual(t, score, 99)
	}
}

// Guard against the join being a race-to-first instead of a barrier:
// slow enrichments must still land in the result.
func TestFindMatches_WaitsForAllEnrichments(t *testing.T) {
	g := &slowCountGraph{
		mockGraph: mockGraph{
			candidates: []graph.Candidate{
				{UserID: "user-b", Shared: 2},
				{UserID: "user-d", Shared: 4},
			},
			counts: map[string]int{"user-b": 2, "user-d": 4},
		},
		slowFor: "user-d",
	}
	p := &mockProfiles{profiles: map[string]*profile.Profile{
		"user-b": testProfile("user-b", "Benny", "Chess", "Hiking"),
		"user-d": testProfile("user-d", "Dana", "Chess", "Hiking", "Jazz", "Sailing"),
	}}

	svc := NewService(g, p)
	result, err := svc.FindMatches(context.Background(), "user-a", 2, 10)
	require.NoError(t, err)
	assert.Len(t, result.Matches, 2)
}

type slowCountGraph struct {
	mockGraph
	slowFor string
}

func (g *slowCountGraph) CountSharedInterests(ctx context.Context, userID, otherID string) (int, error) {
	if otherID == g.slowFor {
		time.Sleep(50 * time.Millisecond)
	}
	return g.mockGraph.CountSharedInterests(ctx, userID, otherID)
}
