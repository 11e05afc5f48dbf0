package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionConversations = "conversations"
	collectionProfiles      = "profiles"
)

// firestoreRepo implements Repository using Firestore
type firestoreRepo struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}
	return &firestoreRepo{client: client}, nil
}

func (r *firestoreRepo) PutConversation(ctx context.Context, conv *model.Conversation) error {
	doc := r.client.Collection(collectionConversations).Doc(string(conv.ID))
	if _, err := doc.Set(ctx, conv); err != nil {
		return goerr.Wrap(err, "failed to save conversation", goerr.V("session_id", conv.ID))
	}
	return nil
}

func (r *firestoreRepo) GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	snap, err := r.client.Collection(collectionConversations).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "conversation not stored", goerr.V("session_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("session_id", id))
	}

	var conv model.Conversation
	if err := snap.DataTo(&conv); err != nil {
		return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("session_id", id))
	}
	return &conv, nil
}

func (r *firestoreRepo) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	iter := r.client.Collection(collectionConversations).OrderBy("started_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var convs []*model.Conversation
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate conversations")
		}

		var conv model.Conversation
		if err := snap.DataTo(&conv); err != nil {
			return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("doc", snap.Ref.ID))
		}
		convs = append(convs, &conv)
	}
	return convs, nil
}

func (r *firestoreRepo) PutProfile(ctx context.Context, profile *model.Profile) error {
	if profile.PersonaID == "" {
		return goerr.New("profile has no persona ID")
	}
	doc := r.client.Collection(collectionProfiles).Doc(profile.PersonaID)
	if _, err := doc.Set(ctx, profile); err != nil {
		return goerr.Wrap(err, "failed to save profile", goerr.V("persona_id", profile.PersonaID))
	}
	return nil
}

func (r *firestoreRepo) GetProfile(ctx context.Context, personaID string) (*model.Profile, error) {
	snap, err := r.client.Collection(collectionProfiles).Doc(personaID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "profile not stored", goerr.V("persona_id", personaID))
		}
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V("persona_id", personaID))
	}

	var profile model.Profile
	if err := snap.DataTo(&profile); err != nil {
		return nil, goerr.Wrap(err, "failed to decode stored profile",
			goerr.T(TagProfileCorrupt), goerr.V("persona_id", personaID))
	}
	return &profile, nil
}

func (r *firestoreRepo) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	iter := r.client.Collection(collectionProfiles).Documents(ctx)
	defer iter.Stop()

	var profiles []*model.Profile
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate profiles")
		}

		var p model.Profile
		if err := snap.DataTo(&p); err != nil {
			return nil, goerr.Wrap(err, "failed to decode stored profile",
				goerr.T(TagProfileCorrupt), goerr.V("doc", snap.Ref.ID))
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

func (r *firestoreRepo) DeleteProfile(ctx context.Context, personaID string) error {
	if _, err := r.client.Collection(collectionProfiles).Doc(personaID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete profile", goerr.V("persona_id", personaID))
	}
	return nil
}
