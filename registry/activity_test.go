package registry

import (
	"context"
	"testing"

	"ActivityStudio/models"
	"ActivityStudio/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newActivityRegistry(t *testing.T) (*ActivityRegistry, store.Store) {
	t.Helper()
	st := store.NewMemory()
	return NewActivityRegistry(st, zap.NewNop()), st
}

func validCreateInput() CreateActivityInput {
	return CreateActivityInput{
		Title:    "Tour",
		Platform: models.PlatformWeb,
		Format:   models.FormatAR,
	}
}

func TestCreateActivityDefaults(t *testing.T) {
	reg, _ := newActivityRegistry(t)
	ctx := context.Background()

	activity, err := reg.Create(ctx, "org-x", validCreateInput())
	require.NoError(t, err)

	require.NotEmpty(t, activity.ID)
	require.Equal(t, "org-x", activity.OrgID)
	require.False(t, activity.RagEnabled)
	require.Len(t, activity.Scenes, 1)
	require.Equal(t, "Main Scene", activity.Scenes[0].Name)
	require.Equal(t, 1, activity.Scenes[0].Order)
	require.Empty(t, activity.Scenes[0].Config.Objects)
	require.False(t, activity.CreatedAt.IsZero())
}

func TestCreateActivityValidation(t *testing.T) {
	reg, _ := newActivityRegistry(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateActivityInput)
	}{
		{"empty title", func(in *CreateActivityInput) { in.Title = "" }},
		{"blank title", func(in *CreateActivityInput) { in.Title = "   " }},
		{"bad platform", func(in *CreateActivityInput) { in.Platform = "desktop" }},
		{"bad format", func(in *CreateActivityInput) { in.Format = "XR" }},
		{"lowercase format", func(in *CreateActivityInput) { in.Format = "ar" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreateInput()
			tc.mutate(&in)
			_, err := reg.Create(ctx, "org-x", in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}

	_, err := reg.Create(ctx, "", validCreateInput())
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
}

func TestGetActivityCrossOrgIsolation(t *testing.T) {
	reg, _ := newActivityRegistry(t)
	ctx := context.Background()

	activity, err := reg.Create(ctx, "org-b", validCreateInput())
	require.NoError(t, err)

	// The activity exists but belongs to org-b, so org-a sees NotFound —
	// exactly as if it did not exist.
	_, err = reg.Get(ctx, activity.ID, "org-a")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = reg.Get(ctx, "no-such-id", "org-a")
	require.ErrorAs(t, err, &nf)

	got, err := reg.Get(ctx, activity.ID, "org-b")
	require.NoError(t, err)
	require.Equal(t, activity.ID, got.ID)
}

func TestListActivities(t *testing.T) {
	reg, _ := newActivityRegistry(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := reg.Create(ctx, "org-a", validCreateInput())
		require.NoError(t, err)
	}
	_, err := reg.Create(ctx, "org-b", validCreateInput())
	require.NoError(t, err)

	activities, err := reg.List(ctx, "org-a")
	require.NoError(t, err)
	require.Len(t, activities, 3)

	activities, err = reg.List(ctx, "org-empty")
	require.NoError(t, err)
	require.NotNil(t, activities)
	require.Empty(t, activities)
}

func TestUpdateActivityPartial(t *testing.T) {
	reg, _ := newActivityRegistry(t)
	ctx := context.Background()

	activity, err := reg.Create(ctx, "org-x", validCreateInput())
	require.NoError(t, err)

	newTitle := "Museum Tour"
	rag := true
	updated, err := reg.Update(ctx, activity.ID, "org-x", UpdateActivityPatch{
		Title:      &newTitle,
		RagEnabled: &rag,
	})
	require.NoError(t, err)
	require.Equal(t, "Museum Tour", updated.Title)
	require.True(t, updated.RagEnabled)
	// Untouched fields keep their values.
	require.Equal(t, models.PlatformWeb, updated.Platform)
	require.Equal(t, models.FormatAR, updated.Format)
	require.Len(t, updated.Scenes, 1)

	badFormat := "flat"
	_, err = reg.Update(ctx, activity.ID, "org-x", UpdateActivityPatch{Format: &badFormat})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = reg.Update(ctx, activity.ID, "org-other", UpdateActivityPatch{Title: &newTitle})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}
