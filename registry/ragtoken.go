package registry

import (
	"context"

	"ActivityStudio/models"
	"ActivityStudio/store"
)

// TokenMinter is the external token-minting collaborator. The issuer only
// sees opaque token strings.
type TokenMinter interface {
	Mint(activityID string) (string, error)
}

// TokenIssuer checks that an activity belongs to the caller's organization
// and has RAG enabled, then delegates to the minter. It keeps no state.
type TokenIssuer struct {
	activities store.Collection
	minter     TokenMinter
}

// NewTokenIssuer builds the issuer over the given store and minter.
func NewTokenIssuer(st store.Store, minter TokenMinter) *TokenIssuer {
	return &TokenIssuer{activities: st.Collection(collActivities), minter: minter}
}

// Issue returns a scoped token for the activity. A missing activity, a
// cross-organization activity, and an activity with RAG disabled all fail
// with the same NotFoundError so callers cannot tell them apart.
func (i *TokenIssuer) Issue(ctx context.Context, activityID, orgID string) (string, error) {
	if orgID == "" {
		return "", errUnauthorized()
	}
	var activity models.Activity
	err := i.activities.FindOne(ctx, store.Filter{
		"_id":        activityID,
		"orgId":      orgID,
		"ragEnabled": true,
	}, &activity)
	if err == store.ErrNoDocuments {
		return "", notFoundf("Activity not found or RAG not enabled")
	}
	if err != nil {
		return "", upstream("Failed to fetch activity", err)
	}

	token, err := i.minter.Mint(activityID)
	if err != nil {
		return "", upstream("Failed to mint RAG token", err)
	}
	return token, nil
}
