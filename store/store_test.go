package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// noteDoc is a minimal document shape with the tag layout the models use:
// identical bson and json names, string _id.
type noteDoc struct {
	ID    string `bson:"_id" json:"_id"`
	OrgID string `bson:"orgId" json:"orgId"`
	Title string `bson:"title" json:"title"`
	Done  bool   `bson:"done" json:"done"`
	Count int    `bson:"count" json:"count"`
}

// openAdapters returns every adapter that can run without external services.
// The Mongo adapter shares its filter translation with these through the same
// Filter contract and is covered by integration environments.
func openAdapters(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(context.Background()) })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func seedNotes(t *testing.T, coll Collection) {
	t.Helper()
	ctx := context.Background()
	for _, doc := range []noteDoc{
		{ID: "n1", OrgID: "org-a", Title: "first", Done: false, Count: 1},
		{ID: "n2", OrgID: "org-a", Title: "second", Done: true, Count: 2},
		{ID: "n3", OrgID: "org-b", Title: "third", Done: true, Count: 3},
	} {
		require.NoError(t, coll.InsertOne(ctx, doc))
	}
}

func TestFindOne(t *testing.T) {
	for name, st := range openAdapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			coll := st.Collection("notes")
			seedNotes(t, coll)

			var got noteDoc
			require.NoError(t, coll.FindOne(ctx, Filter{"_id": "n2"}, &got))
			require.Equal(t, "second", got.Title)
			require.True(t, got.Done)
			require.Equal(t, 2, got.Count)

			err := coll.FindOne(ctx, Filter{"_id": "missing"}, &got)
			require.ErrorIs(t, err, ErrNoDocuments)

			// Multi-field filters AND together.
			err = coll.FindOne(ctx, Filter{"_id": "n2", "orgId": "org-b"}, &got)
			require.ErrorIs(t, err, ErrNoDocuments)
		})
	}
}

func TestFind(t *testing.T) {
	for name, st := range openAdapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			coll := st.Collection("notes")
			seedNotes(t, coll)

			var docs []noteDoc
			require.NoError(t, coll.Find(ctx, Filter{"orgId": "org-a"}, &docs))
			require.Len(t, docs, 2)

			require.NoError(t, coll.Find(ctx, Filter{"done": true}, &docs))
			require.Len(t, docs, 2)

			require.NoError(t, coll.Find(ctx, Filter{"orgId": "org-c"}, &docs))
			require.Empty(t, docs)
		})
	}
}

func TestCount(t *testing.T) {
	for name, st := range openAdapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			coll := st.Collection("notes")
			seedNotes(t, coll)

			n, err := coll.Count(ctx, Filter{"orgId": "org-a"})
			require.NoError(t, err)
			require.EqualValues(t, 2, n)

			n, err = coll.Count(ctx, Filter{"orgId": "org-a", "done": true})
			require.NoError(t, err)
			require.EqualValues(t, 1, n)

			n, err = coll.Count(ctx, Filter{"title": "nope"})
			require.NoError(t, err)
			require.EqualValues(t, 0, n)
		})
	}
}

func TestUpdateOne(t *testing.T) {
	for name, st := range openAdapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			coll := st.Collection("notes")
			seedNotes(t, coll)

			matched, err := coll.UpdateOne(ctx, Filter{"_id": "n1"}, map[string]interface{}{
				"title": "renamed",
				"done":  true,
			})
			require.NoError(t, err)
			require.EqualValues(t, 1, matched)

			var got noteDoc
			require.NoError(t, coll.FindOne(ctx, Filter{"_id": "n1"}, &got))
			require.Equal(t, "renamed", got.Title)
			require.True(t, got.Done)
			// Untouched fields survive the merge.
			require.Equal(t, "org-a", got.OrgID)
			require.Equal(t, 1, got.Count)

			matched, err = coll.UpdateOne(ctx, Filter{"_id": "missing"}, map[string]interface{}{"title": "x"})
			require.NoError(t, err)
			require.EqualValues(t, 0, matched)
		})
	}
}

func TestDeleteOne(t *testing.T) {
	for name, st := range openAdapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			coll := st.Collection("notes")
			seedNotes(t, coll)

			deleted, err := coll.DeleteOne(ctx, Filter{"_id": "n3"})
			require.NoError(t, err)
			require.EqualValues(t, 1, deleted)

			deleted, err = coll.DeleteOne(ctx, Filter{"_id": "n3"})
			require.NoError(t, err)
			require.EqualValues(t, 0, deleted)

			n, err := coll.Count(ctx, Filter{})
			require.NoError(t, err)
			require.EqualValues(t, 2, n)
		})
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	for name, st := range openAdapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.Collection("left").InsertOne(ctx, noteDoc{ID: "x", OrgID: "o"}))

			var got noteDoc
			err := st.Collection("right").FindOne(ctx, Filter{"_id": "x"}, &got)
			require.ErrorIs(t, err, ErrNoDocuments)
		})
	}
}
