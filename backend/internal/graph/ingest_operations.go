package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Ingestion Operations (idempotent upserts)
// ============================================================================
//
// Each operation is a single MERGE-backed upsert: safe to replay, and
// backed by the uniqueness constraints from EnsureConstraints so two
// concurrent MERGEs of the same key cannot both create.

// UpsertUser creates the User vertex for userID if absent and
// refreshes its display attributes either way (last write wins).
func (r *Repository) UpsertUser(ctx context.Context, userID, displayName, city, country string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (u:User {userId: $userID})
		ON CREATE SET u.created_at = datetime()
		SET u.displayName = $displayName,
		    u.city = $city,
		    u.country = $country,
		    u.updated_at = datetime()
		RETURN u.userId as user_id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID":      userID,
		"displayName": displayName,
		"city":        city,
		"country":     country,
	})
	if err != nil {
		return wrapGraphErr("upsert user", err)
	}

	if _, err := result.Single(ctx); err != nil {
		return wrapGraphErr("upsert user", err)
	}

	r.logger.Debug("User vertex upserted", zap.String("user_id", userID))
	return nil
}

// UpsertInterest ensures the Interest vertex for label exists (the
// derived slug is set once, on create) and ensures exactly one
// HAS_INTEREST edge from the user to it. Lookup is by the raw label,
// never by the slug.
func (r *Repository) UpsertInterest(ctx context.Context, userID, label string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {userId: $userID})
		MERGE (i:Interest {label: $label})
		ON CREATE SET i.interestId = $interestID
		MERGE (u)-[:HAS_INTEREST]->(i)
		RETURN i.label as label
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID":     userID,
		"label":      label,
		"interestID": deriveSlug(label),
	})
	if err != nil {
		return wrapGraphErr("upsert interest", err)
	}

	// Single errors when the MATCH found no User vertex: the edge
	// cannot be created against a user that was never upserted.
	if _, err := result.Single(ctx); err != nil {
		return wrapGraphErr("upsert interest", err)
	}

	return nil
}

// UpsertSchool is the school analogue of UpsertInterest: one School
// vertex per name, one ATTENDED edge per (user, school) pair.
func (r *Repository) UpsertSchool(ctx context.Context, userID, name string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {userId: $userID})
		MERGE (s:School {name: $name})
		ON CREATE SET s.schoolId = $schoolID
		MERGE (u)-[:ATTENDED]->(s)
		RETURN s.name as name
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID":   userID,
		"name":     name,
		"schoolID": deriveSlug(name),
	})
	if err != nil {
		return wrapGraphErr("upsert school", err)
	}

	if _, err := result.Single(ctx); err != nil {
		return wrapGraphErr("upsert school", err)
	}

	return nil
}
