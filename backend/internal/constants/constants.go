package constants

// Matching constants
const (
	// DefaultMinSharedInterests is the minimum number of shared
	// interests a candidate needs to qualify as a match
	DefaultMinSharedInterests = 2

	// DefaultMatchLimit is the maximum number of matches returned
	// for a single request
	DefaultMatchLimit = 10
)

// Match score constants
const (
	// MatchScoreBase is the score assigned at zero shared interests
	MatchScoreBase = 50

	// MatchScorePerInterest is the score added per shared interest
	MatchScorePerInterest = 15

	// MatchScoreMax caps the score so no match ever claims a
	// perfect 100
	MatchScoreMax = 99
)
