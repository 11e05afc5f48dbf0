package model

import "time"

// Outcome classifies where the negotiation stands.
type Outcome string

const (
	OutcomeBooked   Outcome = "booked"
	OutcomeDeclined Outcome = "declined"
	OutcomeStalled  Outcome = "stalled"
	OutcomeOpen     Outcome = "open"
)

// Terminal reports whether the outcome should stop the loop.
func (o Outcome) Terminal() bool {
	return o == OutcomeBooked || o == OutcomeDeclined || o == OutcomeStalled
}

// Reason maps a terminal outcome to a termination reason.
func (o Outcome) Reason() Reason {
	switch o {
	case OutcomeBooked:
		return ReasonBooked
	case OutcomeDeclined:
		return ReasonDeclined
	case OutcomeStalled:
		return ReasonStalled
	default:
		return ""
	}
}

// Verdict is one satisfaction-judge evaluation of a running transcript.
type Verdict struct {
	Outcome     Outcome   `json:"outcome" firestore:"outcome"`
	Satisfied   bool      `json:"satisfied" firestore:"satisfied"`
	Confidence  float64   `json:"confidence" firestore:"confidence"`
	Rationale   string    `json:"rationale,omitempty" firestore:"rationale,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at" firestore:"evaluated_at"`
}
