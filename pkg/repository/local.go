package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/simforge/wander/pkg/model"
)

// localRepo implements Repository on a local data directory:
//
//	<dir>/conversations/<session-id>.json
//	<dir>/profiles/<persona-id>.json
type localRepo struct {
	dir string
}

// NewLocal creates a JSON-file repository rooted at dir, creating the
// subdirectories if needed.
func NewLocal(dir string) (Repository, error) {
	for _, sub := range []string{"conversations", "profiles"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dir))
		}
	}
	return &localRepo{dir: dir}, nil
}

func (r *localRepo) convPath(id model.ConversationID) string {
	return filepath.Join(r.dir, "conversations", string(id)+".json")
}

func (r *localRepo) profilePath(personaID string) string {
	return filepath.Join(r.dir, "profiles", personaID+".json")
}

func (r *localRepo) PutConversation(ctx context.Context, conv *model.Conversation) error {
	return writeJSON(r.convPath(conv.ID), conv)
}

func (r *localRepo) GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	var conv model.Conversation
	if err := readJSON(r.convPath(id), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *localRepo) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	files, err := listJSONFiles(filepath.Join(r.dir, "conversations"))
	if err != nil {
		return nil, err
	}

	convs := make([]*model.Conversation, 0, len(files))
	for _, path := range files {
		var conv model.Conversation
		if err := readJSON(path, &conv); err != nil {
			return nil, err
		}
		convs = append(convs, &conv)
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].StartedAt.Before(convs[j].StartedAt)
	})
	return convs, nil
}

func (r *localRepo) PutProfile(ctx context.Context, profile *model.Profile) error {
	if profile.PersonaID == "" {
		return goerr.New("profile has no persona ID")
	}
	return writeJSON(r.profilePath(profile.PersonaID), profile)
}

func (r *localRepo) GetProfile(ctx context.Context, personaID string) (*model.Profile, error) {
	path := r.profilePath(personaID)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrNotFound, "profile not stored", goerr.V("persona_id", personaID))
		}
		return nil, goerr.Wrap(err, "failed to read profile", goerr.V("path", path))
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, goerr.Wrap(err, "failed to parse stored profile",
			goerr.T(TagProfileCorrupt), goerr.V("path", path))
	}
	return &profile, nil
}

func (r *localRepo) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	files, err := listJSONFiles(filepath.Join(r.dir, "profiles"))
	if err != nil {
		return nil, err
	}

	profiles := make([]*model.Profile, 0, len(files))
	for _, path := range files {
		var p model.Profile
		if err := readJSON(path, &p); err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].PersonaID < profiles[j].PersonaID
	})
	return profiles, nil
}

func (r *localRepo) DeleteProfile(ctx context.Context, personaID string) error {
	if err := os.Remove(r.profilePath(personaID)); err != nil {
		if os.IsNotExist(err) {
			return goerr.Wrap(ErrNotFound, "profile not stored", goerr.V("persona_id", personaID))
		}
		return goerr.Wrap(err, "failed to delete profile", goerr.V("persona_id", personaID))
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal record", goerr.V("path", path))
	}

	// write-then-rename so a concurrent reader never sees a partial file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write record", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return goerr.Wrap(err, "failed to finalize record", goerr.V("path", path))
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return goerr.Wrap(ErrNotFound, "record not stored", goerr.V("path", path))
		}
		return goerr.Wrap(err, "failed to read record", goerr.V("path", path))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(err, "failed to parse record", goerr.V("path", path))
	}
	return nil
}

func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read data directory", goerr.V("dir", dir))
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
