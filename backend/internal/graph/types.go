package graph

// ============================================================================
// Graph Types
// ============================================================================

// User represents a User vertex in the graph
type User struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Interest represents an Interest vertex. The human-readable label is
// the identity key; InterestID is a derived slug kept for display only.
type Interest struct {
	InterestID string `json:"interestId"`
	Label      string `json:"label"`
}

// School represents a School vertex. Name is the identity key,
// SchoolID the derived slug.
type School struct {
	SchoolID string `json:"schoolId"`
	Name     string `json:"name"`
}

// Candidate is one row of the shared-interest discovery traversal:
// a user reachable from the target via a common Interest vertex,
// with the aggregate count of interests they share.
type Candidate struct {
	UserID string `json:"userId"`
	Shared int    `json:"shared"`
}
