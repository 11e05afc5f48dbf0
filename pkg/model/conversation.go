package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type ConversationID string

// NewConversationID generates a new unique ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

// Persona is the behavioral profile of the simulated traveler.
type Persona string

const (
	PersonaMinimalist Persona = "minimalist"
	PersonaExplorer   Persona = "explorer"
)

// Variant selects which generation strategy answers for the concierge.
type Variant string

const (
	VariantPrompt    Variant = "prompt"
	VariantFineTuned Variant = "ft"
)

// Reason is the tagged cause a conversation stopped.
type Reason string

const (
	ReasonBooked            Reason = "booked"
	ReasonDeclined          Reason = "declined"
	ReasonStalled           Reason = "stalled"
	ReasonMaxTurns          Reason = "max-turns-exhausted"
	ReasonGenerationFailure Reason = "generation-failure"
)

// Conversation is a full traveler/concierge dialogue plus its run
// metadata. It is append-only while the loop runs and read-only once
// sealed.
type Conversation struct {
	ID            ConversationID `json:"session_id" firestore:"session_id"`
	Persona       Persona        `json:"persona" firestore:"persona"`
	Variant       Variant        `json:"assistant_variant" firestore:"assistant_variant"`
	MemoryEnabled bool           `json:"memory_enabled" firestore:"memory_enabled"`
	Location      string         `json:"location" firestore:"location"`
	SeedID        string         `json:"seed_id,omitempty" firestore:"seed_id,omitempty"`

	Turns    []Turn    `json:"turns" firestore:"turns"`
	Verdicts []Verdict `json:"verdicts,omitempty" firestore:"verdicts,omitempty"`

	Reason     Reason    `json:"reason,omitempty" firestore:"reason,omitempty"`
	Degenerate bool      `json:"degenerate,omitempty" firestore:"degenerate,omitempty"`
	StartedAt  time.Time `json:"started_at" firestore:"started_at"`
	EndedAt    time.Time `json:"ended_at,omitempty" firestore:"ended_at,omitempty"`

	sealed bool
}

// NewConversation initializes an empty conversation for one loop run.
func NewConversation(persona Persona, variant Variant, memoryEnabled bool, location string) *Conversation {
	return &Conversation{
		ID:            NewConversationID(),
		Persona:       persona,
		Variant:       variant,
		MemoryEnabled: memoryEnabled,
		Location:      location,
		StartedAt:     time.Now(),
	}
}

// Append adds a turn, enforcing strict speaker alternation starting
// with the user.
func (c *Conversation) Append(speaker Speaker, text string) (*Turn, error) {
	if c.sealed {
		return nil, goerr.New("conversation is sealed", goerr.V("session_id", c.ID))
	}

	if len(c.Turns) == 0 {
		if speaker != SpeakerUser {
			return nil, goerr.New("conversation must start with a user turn",
				goerr.V("speaker", speaker))
		}
	} else if last := c.Turns[len(c.Turns)-1].Speaker; last == speaker {
		return nil, goerr.New("speakers must alternate",
			goerr.V("speaker", speaker), goerr.V("index", len(c.Turns)))
	}

	turn := Turn{
		Speaker:   speaker,
		Text:      text,
		Index:     len(c.Turns),
		CreatedAt: time.Now(),
	}
	c.Turns = append(c.Turns, turn)
	return &c.Turns[len(c.Turns)-1], nil
}

// AddVerdict records a judge verdict for the current transcript.
func (c *Conversation) AddVerdict(v Verdict) error {
	if c.sealed {
		return goerr.New("conversation is sealed", goerr.V("session_id", c.ID))
	}
	c.Verdicts = append(c.Verdicts, v)
	return nil
}

// Seal marks the conversation as terminated. Further mutation fails.
func (c *Conversation) Seal(reason Reason) {
	if c.sealed {
		return
	}
	c.Reason = reason
	c.EndedAt = time.Now()
	c.sealed = true
}

// Sealed reports whether the conversation has been terminated.
func (c *Conversation) Sealed() bool {
	return c.sealed
}

// LastTurn returns the most recent turn, or nil for an empty transcript.
func (c *Conversation) LastTurn() *Turn {
	if len(c.Turns) == 0 {
		return nil
	}
	return &c.Turns[len(c.Turns)-1]
}

// LastVerdict returns the most recent judge verdict, or nil.
func (c *Conversation) LastVerdict() *Verdict {
	if len(c.Verdicts) == 0 {
		return nil
	}
	return &c.Verdicts[len(c.Verdicts)-1]
}

// TextsBySpeaker returns the utterance texts of one speaker in order.
func (c *Conversation) TextsBySpeaker(speaker Speaker) []string {
	var texts []string
	for _, t := range c.Turns {
		if t.Speaker == speaker {
			texts = append(texts, t.Text)
		}
	}
	return texts
}
