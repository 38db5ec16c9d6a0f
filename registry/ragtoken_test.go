package registry

import (
	"context"
	"errors"
	"testing"

	"ActivityStudio/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMinter struct {
	minted []string
	err    error
}

func (m *fakeMinter) Mint(activityID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.minted = append(m.minted, activityID)
	return "token-for-" + activityID, nil
}

func TestIssueRagToken(t *testing.T) {
	st := store.NewMemory()
	activities := NewActivityRegistry(st, zap.NewNop())
	minter := &fakeMinter{}
	issuer := NewTokenIssuer(st, minter)
	ctx := context.Background()

	activity, err := activities.Create(ctx, "org-x", CreateActivityInput{
		Title:    "Docs",
		Platform: "web",
		Format:   "AR",
	})
	require.NoError(t, err)

	enabled := true
	_, err = activities.Update(ctx, activity.ID, "org-x", UpdateActivityPatch{RagEnabled: &enabled})
	require.NoError(t, err)

	token, err := issuer.Issue(ctx, activity.ID, "org-x")
	require.NoError(t, err)
	require.Equal(t, "token-for-"+activity.ID, token)
	require.Equal(t, []string{activity.ID}, minter.minted)
}

func TestIssueFailuresAreIndistinguishable(t *testing.T) {
	st := store.NewMemory()
	activities := NewActivityRegistry(st, zap.NewNop())
	issuer := NewTokenIssuer(st, &fakeMinter{})
	ctx := context.Background()

	// RAG disabled (the default).
	disabled, err := activities.Create(ctx, "org-x", CreateActivityInput{
		Title:    "Disabled",
		Platform: "web",
		Format:   "AR",
	})
	require.NoError(t, err)

	// Belongs to another organization, RAG on.
	foreign, err := activities.Create(ctx, "org-other", CreateActivityInput{
		Title:    "Foreign",
		Platform: "web",
		Format:   "AR",
	})
	require.NoError(t, err)
	on := true
	_, err = activities.Update(ctx, foreign.ID, "org-other", UpdateActivityPatch{RagEnabled: &on})
	require.NoError(t, err)

	var nf *NotFoundError
	_, missingErr := issuer.Issue(ctx, "no-such-activity", "org-x")
	require.ErrorAs(t, missingErr, &nf)

	_, disabledErr := issuer.Issue(ctx, disabled.ID, "org-x")
	require.ErrorAs(t, disabledErr, &nf)

	_, crossOrgErr := issuer.Issue(ctx, foreign.ID, "org-x")
	require.ErrorAs(t, crossOrgErr, &nf)

	require.Equal(t, missingErr.Error(), disabledErr.Error())
	require.Equal(t, missingErr.Error(), crossOrgErr.Error())
}

func TestIssueMinterFailure(t *testing.T) {
	st := store.NewMemory()
	activities := NewActivityRegistry(st, zap.NewNop())
	issuer := NewTokenIssuer(st, &fakeMinter{err: errors.New("kms down")})
	ctx := context.Background()

	activity, err := activities.Create(ctx, "org-x", CreateActivityInput{
		Title:    "Docs",
		Platform: "web",
		Format:   "AR",
	})
	require.NoError(t, err)
	on := true
	_, err = activities.Update(ctx, activity.ID, "org-x", UpdateActivityPatch{RagEnabled: &on})
	require.NoError(t, err)

	var ue *UpstreamError
	_, err = issuer.Issue(ctx, activity.ID, "org-x")
	require.ErrorAs(t, err, &ue)
}

func TestIssueRequiresOrg(t *testing.T) {
	issuer := NewTokenIssuer(store.NewMemory(), &fakeMinter{})

	var ae *AuthError
	_, err := issuer.Issue(context.Background(), "any", "")
	require.ErrorAs(t, err, &ae)
}
