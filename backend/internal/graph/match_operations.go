package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Matching Traversals
// ============================================================================

// FindCandidates runs the two-hop shared-interest traversal: out along
// HAS_INTEREST from the target user, back in along HAS_INTEREST to
// other users, grouped per candidate with the count of distinct shared
// interests. Candidates below minShared are filtered out, the rest
// ordered by count descending and truncated to limit.
//
// A userID with no vertex in the graph yields an empty slice, not an
// error. Ordering among equal counts is whatever the store returns;
// callers must not rely on it.
func (r *Repository) FindCandidates(ctx context.Context, userID string, minShared, limit int) ([]Candidate, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {userId: $userID})-[:HAS_INTEREST]->(i:Interest)<-[:HAS_INTEREST]-(c:User)
		WHERE c.userId <> $userID
		WITH c, count(DISTINCT i) as shared
		WHERE shared >= $minShared
		RETURN c.userId as user_id, shared
		ORDER BY shared DESC
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID":    userID,
		"minShared": minShared,
		"limit":     limit,
	})
	if err != nil {
		return nil, wrapGraphErr("find candidates", err)
	}

	var candidates []Candidate
	for result.Next(ctx) {
		record := result.Record()
		candidates = append(candidates, Candidate{
			UserID: getStringFromRecord(record, "user_id"),
			Shared: getIntFromRecord(record, "shared"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, wrapGraphErr("find candidates", err)
	}

	r.logger.Debug("Candidate discovery complete",
		zap.String("user_id", userID),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// CountSharedInterests returns the exact number of Interest vertices
// connected to both users. Used by enrichment to recount per candidate
// against the live graph rather than the discovery aggregate.
func (r *Repository) CountSharedInterests(ctx context.Context, userID, otherID string) (int, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {userId: $userID})-[:HAS_INTEREST]->(i:Interest)<-[:HAS_INTEREST]-(o:User {userId: $otherID})
		RETURN count(DISTINCT i) as shared
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID":  userID,
		"otherID": otherID,
	})
	if err != nil {
		return 0, wrapGraphErr("count shared interests", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return 0, wrapGraphErr("count shared interests", err)
	}

	return getIntFromRecord(record, "shared"), nil
}
