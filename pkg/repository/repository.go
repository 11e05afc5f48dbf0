package repository

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = goerr.New("record not found")

// TagProfileCorrupt marks errors from profiles that exist but fail to
// parse. Callers fall back to the seed profile instead of aborting.
var TagProfileCorrupt = goerr.NewTag("profile_corrupt")

// Repository defines persistence for sealed conversations and
// long-term persona profiles.
type Repository interface {
	// PutConversation saves a sealed conversation record
	PutConversation(ctx context.Context, conv *model.Conversation) error

	// GetConversation retrieves a conversation by session ID
	GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error)

	// ListConversations retrieves all stored conversation records
	ListConversations(ctx context.Context) ([]*model.Conversation, error)

	// PutProfile saves a long-term profile keyed by persona ID
	PutProfile(ctx context.Context, profile *model.Profile) error

	// GetProfile retrieves a profile by persona ID
	GetProfile(ctx context.Context, personaID string) (*model.Profile, error)

	// ListProfiles retrieves all stored profiles
	ListProfiles(ctx context.Context) ([]*model.Profile, error)

	// DeleteProfile removes a stored profile
	DeleteProfile(ctx context.Context, personaID string) error
}
