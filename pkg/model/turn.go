package model

import "time"

// Speaker identifies which side of the dialogue produced a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Other returns the opposite speaker.
func (s Speaker) Other() Speaker {
	if s == SpeakerUser {
		return SpeakerAssistant
	}
	return SpeakerUser
}

// Turn is a single utterance in a conversation. Immutable once appended.
type Turn struct {
	Speaker   Speaker   `json:"speaker" firestore:"speaker"`
	Text      string    `json:"text" firestore:"text"`
	Index     int       `json:"index" firestore:"index"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}
