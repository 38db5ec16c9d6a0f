package registry

import (
	"context"
	"math/rand/v2"
	"time"

	"ActivityStudio/models"
	"ActivityStudio/store"

	"github.com/google/uuid"
)

const collShareCodes = "shareCodes"

// DefaultShareTTL applies when a share code is issued without an explicit
// lifetime.
const DefaultShareTTL = 7 * 24 * time.Hour

// shareCodeCharset is URL-safe so codes can travel in query strings unescaped.
const shareCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const shareCodeLength = 8

// ShareResolver issues share codes and resolves them to a read-only public
// projection of an activity's entry scene.
type ShareResolver struct {
	shareCodes store.Collection
	activities store.Collection

	// now is swappable so expiry behavior is testable.
	now func() time.Time
}

// NewShareResolver builds the resolver over the given store.
func NewShareResolver(st store.Store) *ShareResolver {
	return &ShareResolver{
		shareCodes: st.Collection(collShareCodes),
		activities: st.Collection(collActivities),
		now:        time.Now,
	}
}

// SharedActivity is the public projection returned to unauthenticated
// clients: no identifiers, no organization, no scenes beyond the entry one.
type SharedActivity struct {
	Activity SharedActivityInfo `json:"activity"`
	Scene    SharedSceneInfo    `json:"scene"`
}

// SharedActivityInfo describes the shared activity.
type SharedActivityInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Format      string `json:"format"`
	Platform    string `json:"platform"`
}

// SharedSceneInfo describes the entry scene.
type SharedSceneInfo struct {
	Name          string             `json:"name"`
	Configuration models.SceneConfig `json:"configuration"`
}

// Resolve looks up an unexpired share code and returns the projection of its
// activity and entry scene. Expired and unknown codes fail identically.
func (r *ShareResolver) Resolve(ctx context.Context, code string) (*SharedActivity, error) {
	if code == "" {
		return nil, validationf("Share code is required")
	}

	var sc models.ShareCode
	err := r.shareCodes.FindOne(ctx, store.Filter{"shareCode": code}, &sc)
	if err == store.ErrNoDocuments {
		return nil, notFoundf("Invalid or expired share code")
	}
	if err != nil {
		return nil, upstream("Failed to look up share code", err)
	}
	if !r.now().Before(sc.ExpiresAt) {
		return nil, notFoundf("Invalid or expired share code")
	}

	var activity models.Activity
	err = r.activities.FindOne(ctx, store.Filter{"_id": sc.ActivityID}, &activity)
	if err == store.ErrNoDocuments {
		// Orphaned share code.
		return nil, notFoundf("Activity not found")
	}
	if err != nil {
		return nil, upstream("Failed to fetch activity", err)
	}

	entry, ok := entryScene(activity.Scenes)
	if !ok {
		return nil, notFoundf("No scenes found for this activity")
	}

	return &SharedActivity{
		Activity: SharedActivityInfo{
			Title:       activity.Title,
			Description: activity.Description,
			Format:      activity.Format,
			Platform:    activity.Platform,
		},
		Scene: SharedSceneInfo{
			Name:          entry.Name,
			Configuration: entry.Config,
		},
	}, nil
}

// entryScene picks the scene with the minimum order; ties break on the scene
// id so the choice is deterministic.
func entryScene(scenes []models.Scene) (models.Scene, bool) {
	if len(scenes) == 0 {
		return models.Scene{}, false
	}
	entry := scenes[0]
	for _, s := range scenes[1:] {
		if s.Order < entry.Order || (s.Order == entry.Order && s.ID < entry.ID) {
			entry = s
		}
	}
	return entry, true
}

// CreateShareCode mints a share code for an activity the organization owns.
// A non-positive ttl falls back to DefaultShareTTL.
func (r *ShareResolver) CreateShareCode(ctx context.Context, activityID, orgID string, ttl time.Duration) (*models.ShareCode, error) {
	if orgID == "" {
		return nil, errUnauthorized()
	}
	var activity models.Activity
	err := r.activities.FindOne(ctx, store.Filter{"_id": activityID, "orgId": orgID}, &activity)
	if err == store.ErrNoDocuments {
		return nil, notFoundf("Activity not found")
	}
	if err != nil {
		return nil, upstream("Failed to fetch activity", err)
	}
	if ttl <= 0 {
		ttl = DefaultShareTTL
	}

	code, err := r.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	sc := models.ShareCode{
		ID:         uuid.NewString(),
		ShareCode:  code,
		ActivityID: activityID,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
	if err := r.shareCodes.InsertOne(ctx, sc); err != nil {
		return nil, upstream("Failed to create share code", err)
	}
	return &sc, nil
}

// uniqueCode generates a random code and retries a bounded number of times if
// it collides with an existing one.
func (r *ShareResolver) uniqueCode(ctx context.Context) (string, error) {
	const maxAttempts = 10
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := randomShareCode()
		n, err := r.shareCodes.Count(ctx, store.Filter{"shareCode": code})
		if err != nil {
			return "", upstream("Failed to check share code uniqueness", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", upstream("Failed to generate unique share code after multiple attempts", nil)
}

func randomShareCode() string {
	buf := make([]byte, shareCodeLength)
	for i := range buf {
		buf[i] = shareCodeCharset[rand.IntN(len(shareCodeCharset))]
	}
	return string(buf)
}
