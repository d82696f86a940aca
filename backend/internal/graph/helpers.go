package graph

import (
	"regexp"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	apperrors "github.com/etoland/my-circle/backend/pkg/errors"
)

// ============================================================================
// Helper Functions
// ============================================================================

var whitespacePattern = regexp.MustCompile(`\s+`)

// wrapGraphErr classifies a driver error: connection-level failures
// become ErrGraphUnavailable, everything else ErrGraphQueryFailed.
func wrapGraphErr(operation string, err error) error {
	if neo4j.IsConnectivityError(err) {
		return apperrors.NewGraphUnavailable(operation, err)
	}
	return apperrors.NewGraphQueryFailed(operation, err)
}

// deriveSlug builds the stored id attribute for Interest and School
// vertices: lowercase with runs of whitespace replaced by underscores.
// The slug is display-only; lookups always go through the raw label.
func deriveSlug(label string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(label), "_")
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getIntFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}
