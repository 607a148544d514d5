package event

import "time"

// Referral is the canonical record of an accepted referral edge.
type Referral struct {
	ID         string    `json:"id"`
	Referrer   string    `json:"referrer"`
	Candidate  string    `json:"candidate"`
	Position   int       `json:"position"` // index in the referrer's referral sequence
	RecordedAt time.Time `json:"recorded_at"`
}
