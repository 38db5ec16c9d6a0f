package registry

import (
	"context"
	"time"

	"ActivityStudio/models"
	"ActivityStudio/store"

	"github.com/google/uuid"
)

const collRelations = "documentActivities"

// RelationStore is the authoritative join table between documents and
// activities. It performs no organization checks itself; callers are expected
// to have verified ownership of both sides.
type RelationStore struct {
	relations store.Collection
}

// NewRelationStore builds the relation store over the given store.
func NewRelationStore(st store.Store) *RelationStore {
	return &RelationStore{relations: st.Collection(collRelations)}
}

// Link creates the (documentID, activityID) relation. Linking an already
// linked pair is a successful no-op. Uniqueness is check-then-insert, so two
// racing links can leave a duplicate row; reads deduplicate, which keeps the
// pair semantics convergent without a backend unique index.
func (r *RelationStore) Link(ctx context.Context, documentID, activityID string) error {
	filter := store.Filter{"documentId": documentID, "activityId": activityID}
	n, err := r.relations.Count(ctx, filter)
	if err != nil {
		return upstream("Failed to check document link", err)
	}
	if n > 0 {
		return nil
	}
	rel := models.Relation{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		ActivityID: activityID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.relations.InsertOne(ctx, rel); err != nil {
		return upstream("Failed to link document", err)
	}
	return nil
}

// Unlink removes the relation if present. Unlinking a pair that does not
// exist is a successful no-op. Document records are never touched here.
func (r *RelationStore) Unlink(ctx context.Context, documentID, activityID string) error {
	filter := store.Filter{"documentId": documentID, "activityId": activityID}
	for {
		deleted, err := r.relations.DeleteOne(ctx, filter)
		if err != nil {
			return upstream("Failed to unlink document", err)
		}
		// Loop in case a racing link left duplicate rows for the pair.
		if deleted == 0 {
			return nil
		}
	}
}

// DocumentsForActivity returns the ids of all documents linked to the
// activity, deduplicated.
func (r *RelationStore) DocumentsForActivity(ctx context.Context, activityID string) ([]string, error) {
	var rels []models.Relation
	if err := r.relations.Find(ctx, store.Filter{"activityId": activityID}, &rels); err != nil {
		return nil, upstream("Failed to list document links", err)
	}
	return dedupRelationIDs(rels, func(rel models.Relation) string { return rel.DocumentID }), nil
}

// ActivitiesForDocument returns the ids of all activities the document is
// linked to, deduplicated. Used to refresh the denormalized array on the
// document record.
func (r *RelationStore) ActivitiesForDocument(ctx context.Context, documentID string) ([]string, error) {
	var rels []models.Relation
	if err := r.relations.Find(ctx, store.Filter{"documentId": documentID}, &rels); err != nil {
		return nil, upstream("Failed to list activity links", err)
	}
	return dedupRelationIDs(rels, func(rel models.Relation) string { return rel.ActivityID }), nil
}

func dedupRelationIDs(rels []models.Relation, key func(models.Relation) string) []string {
	seen := map[string]bool{}
	ids := make([]string, 0, len(rels))
	for _, rel := range rels {
		id := key(rel)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
