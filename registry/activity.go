// Package registry holds the organization-scoped business logic: activity and
// document CRUD, document/activity relations, share-code resolution, and RAG
// token issuance. Every component receives its store handle at construction.
package registry

import (
	"context"
	"strings"
	"time"

	"ActivityStudio/models"
	"ActivityStudio/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const collActivities = "activities"

// ActivityRegistry manages activity records.
type ActivityRegistry struct {
	activities store.Collection
	logger     *zap.Logger
}

// NewActivityRegistry builds a registry over the given store.
func NewActivityRegistry(st store.Store, logger *zap.Logger) *ActivityRegistry {
	return &ActivityRegistry{activities: st.Collection(collActivities), logger: logger}
}

// CreateActivityInput carries the caller-supplied fields for a new activity.
type CreateActivityInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BannerURL   string `json:"bannerUrl"`
	Platform    string `json:"platform"`
	Format      string `json:"format"`
}

// Create validates the input and inserts a new activity with a fresh id, a
// default "Main Scene", and RAG disabled.
func (r *ActivityRegistry) Create(ctx context.Context, orgID string, in CreateActivityInput) (*models.Activity, error) {
	if orgID == "" {
		return nil, errUnauthorized()
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, validationf("Title is required")
	}
	if !models.ValidFormat(in.Format) {
		return nil, validationf("Valid format (AR/VR) is required")
	}
	if !models.ValidPlatform(in.Platform) {
		return nil, validationf("Valid platform (headset/web) is required")
	}

	now := time.Now().UTC()
	activity := &models.Activity{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		BannerURL:   in.BannerURL,
		Platform:    in.Platform,
		Format:      in.Format,
		OrgID:       orgID,
		RagEnabled:  false,
		Scenes: []models.Scene{{
			ID:     uuid.NewString(),
			Name:   "Main Scene",
			Order:  1,
			Config: models.SceneConfig{Objects: []map[string]interface{}{}},
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.activities.InsertOne(ctx, activity); err != nil {
		return nil, upstream("Failed to create activity", err)
	}
	r.logger.Info("created activity",
		zap.String("activity_id", activity.ID),
		zap.String("org_id", orgID))
	return activity, nil
}

// Get returns the activity only when it belongs to orgID. A miss and a
// cross-organization hit are indistinguishable to the caller.
func (r *ActivityRegistry) Get(ctx context.Context, activityID, orgID string) (*models.Activity, error) {
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
	return &activity, nil
}

// List returns every activity owned by orgID.
func (r *ActivityRegistry) List(ctx context.Context, orgID string) ([]models.Activity, error) {
	if orgID == "" {
		return nil, errUnauthorized()
	}
	var activities []models.Activity
	if err := r.activities.Find(ctx, store.Filter{"orgId": orgID}, &activities); err != nil {
		return nil, upstream("Failed to list activities", err)
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return activities, nil
}

// UpdateActivityPatch carries a partial update. Nil fields were not present
// in the request and stay untouched.
type UpdateActivityPatch struct {
	Title       *string
	Description *string
	BannerURL   *string
	Platform    *string
	Format      *string
	RagEnabled  *bool
}

// Update merges the provided fields into the activity and bumps updatedAt.
func (r *ActivityRegistry) Update(ctx context.Context, activityID, orgID string, patch UpdateActivityPatch) (*models.Activity, error) {
	if orgID == "" {
		return nil, errUnauthorized()
	}

	set := map[string]interface{}{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, validationf("Title is required")
		}
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.BannerURL != nil {
		set["bannerUrl"] = *patch.BannerURL
	}
	if patch.Platform != nil {
		if !models.ValidPlatform(*patch.Platform) {
			return nil, validationf("Valid platform (headset/web) is required")
		}
		set["platform"] = *patch.Platform
	}
	if patch.Format != nil {
		if !models.ValidFormat(*patch.Format) {
			return nil, validationf("Valid format (AR/VR) is required")
		}
		set["format"] = *patch.Format
	}
	if patch.RagEnabled != nil {
		set["ragEnabled"] = *patch.RagEnabled
	}
	set["updatedAt"] = time.Now().UTC()

	matched, err := r.activities.UpdateOne(ctx, store.Filter{"_id": activityID, "orgId": orgID}, set)
	if err != nil {
		return nil, upstream("Failed to update activity", err)
	}
	if matched == 0 {
		return nil, notFoundf("Activity not found")
	}
	return r.Get(ctx, activityID, orgID)
}
