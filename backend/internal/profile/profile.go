package profile

import "time"

// Location is the city/country pair attached to a profile.
type Location struct {
	City    string `json:"city" dynamodbav:"city"`
	Country string `json:"country" dynamodbav:"country"`
}

// CommunicationFingerprint is an opaque substructure written by a
// separate analysis service. Only the vibe field is read here.
type CommunicationFingerprint struct {
	Vibe string `json:"vibe,omitempty" dynamodbav:"vibe,omitempty"`
}

// Profile is one user record in the profile store, keyed by userId.
type Profile struct {
	UserID                   string                    `json:"userId" dynamodbav:"userId"`
	DisplayName              string                    `json:"displayName" dynamodbav:"displayName"`
	Location                 *Location                 `json:"location" dynamodbav:"location,omitempty"`
	School                   string                    `json:"school,omitempty" dynamodbav:"school,omitempty"`
	Interests                []string                  `json:"interests" dynamodbav:"interests"`
	CommunicationFingerprint *CommunicationFingerprint `json:"communicationFingerprint,omitempty" dynamodbav:"communicationFingerprint,omitempty"`
	CreatedAt                time.Time                 `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt                time.Time                 `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Vibe returns the fingerprint vibe, or empty when the fingerprint
// has not been populated yet.
func (p *Profile) Vibe() string {
	if p.CommunicationFingerprint == nil {
		return ""
	}
	return p.CommunicationFingerprint.Vibe
}
