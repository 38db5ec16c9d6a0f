package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"ActivityStudio/models"
	"ActivityStudio/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStorage struct {
	stored    map[string][]byte
	failStore bool
	failURL   bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{stored: map[string][]byte{}}
}

func (f *fakeStorage) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.failStore {
		return "", errors.New("object store unavailable")
	}
	f.stored[key] = data
	return key, nil
}

func (f *fakeStorage) AccessURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.failURL {
		return "", errors.New("presign failed")
	}
	return "https://cdn.example.com/" + key + "?sig=test", nil
}

type documentFixture struct {
	documents  *DocumentRegistry
	activities *ActivityRegistry
	relations  *RelationStore
	storage    *fakeStorage
	store      store.Store
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	st := store.NewMemory()
	logger := zap.NewNop()
	relations := NewRelationStore(st)
	fs := newFakeStorage()
	return &documentFixture{
		documents:  NewDocumentRegistry(st, relations, fs, logger),
		activities: NewActivityRegistry(st, logger),
		relations:  relations,
		storage:    fs,
		store:      st,
	}
}

func (fx *documentFixture) createActivity(t *testing.T, orgID string) *models.Activity {
	t.Helper()
	activity, err := fx.activities.Create(context.Background(), orgID, CreateActivityInput{
		Title:    "Tour",
		Platform: models.PlatformWeb,
		Format:   models.FormatAR,
	})
	require.NoError(t, err)
	return activity
}

func TestUploadCreatesDocument(t *testing.T) {
	fx := newDocumentFixture(t)
	ctx := context.Background()

	doc, err := fx.documents.Upload(ctx, "org-x", UploadInput{
		Data:     []byte("hello world"),
		Filename: "my notes (v2).txt",
		MimeType: "text/plain",
	})
	require.NoError(t, err)

	require.NotEmpty(t, doc.ID)
	require.Equal(t, "my notes (v2).txt", doc.Filename)
	require.Equal(t, "text/plain", doc.MimeType)
	require.EqualValues(t, 11, doc.Size)
	require.Equal(t, "org-x", doc.OrgID)
	require.Empty(t, doc.ActivityIDs)
	require.Equal(t, models.IngestStatusPending, doc.IngestStatus)

	// The storage key is timestamped and the filename sanitized.
	require.Regexp(t, `^\d+-my_notes__v2_.txt$`, doc.StorageKey)
	require.Equal(t, []byte("hello world"), fx.storage.stored[doc.StorageKey])
}

func TestUploadValidation(t *testing.T) {
	fx := newDocumentFixture(t)
	ctx := context.Background()

	_, err := fx.documents.Upload(ctx, "org-x", UploadInput{Filename: "empty.txt"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = fx.documents.Upload(ctx, "", UploadInput{Data: []byte("x")})
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
}

func TestUploadStorageFailure(t *testing.T) {
	fx := newDocumentFixture(t)
	fx.storage.failStore = true

	_, err := fx.documents.Upload(context.Background(), "org-x", UploadInput{Data: []byte("x"), Filename: "a.txt"})
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)

	// No orphaned registry row when the object never made it to storage.
	docs, listErr := fx.documents.ListForOrg(context.Background(), "org-x")
	require.NoError(t, listErr)
	require.Empty(t, docs)
}

func TestUploadWithActivityLinks(t *testing.T) {
	fx := newDocumentFixture(t)
	ctx := context.Background()
	activity := fx.createActivity(t, "org-x")

	doc, err := fx.documents.Upload(ctx, "org-x", UploadInput{
		Data:       []byte("notes"),
		Filename:   "notes.txt",
		ActivityID: activity.ID,
	})
	require.NoError(t, err)

	require.Equal(t, []string{activity.ID}, doc.ActivityIDs)

	ids, err := fx.relations.DocumentsForActivity(ctx, activity.ID)
	require.NoError(t, err)
	require.Equal(t, []string{doc.ID}, ids)
}

func TestUploadLinkFailureIsSwallowed(t *testing.T) {
	fx := newDocumentFixture(t)
	ctx := context.Background()
	foreign := fx.createActivity(t, "org-other")

	// The activity belongs to another org, so the link step fails; the
	// upload itself must still succeed, leaving an unlinked document.
	doc, err := fx.documents.Upload(ctx, "org-x", UploadInput{
		Data:       []byte("notes"),
		Filename:   "notes.txt",
		ActivityID: foreign.ID,
	})
	require.NoError(t, err)
	require.Empty(t, doc.ActivityIDs)

	ids, err := fx.relations.DocumentsForActivity(ctx, foreign.ID)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestLinkIdempotentAndUnlinkNoop(t *testing.T) {
	fx := newDocumentFixture(t)
	ctx := context.Background()
	activity := fx.createActivity(t, "org-x")

	doc, err := fx.documents.Upload(ctx, "org-x", UploadInput{Data: []byte("d"), Filename: "d.txt"})
	require.NoError(t, err)

	// link twice == link once
	_, err = fx.documents.Link(ctx, doc.ID, activity.ID, "org-x")
	require.NoError(t, err)
	linked, err := fx.documents.Link(ctx, doc.ID, activity.ID, "org-x")
	require.NoError(t, err)
	require.Equal(t, []string{activity.ID}, linked.ActivityIDs)

	ids, err := fx.relations.DocumentsForActivity(ctx, activity.ID)
	require.NoError(t, err)
	require.Equal(t, []string{doc.ID}, ids)

	// unlink removes the relation and prunes the cached array
	unlinked, err := fx.documents.Unlink(ctx, doc.ID, activity.ID, "org-x")
	require.NoError(t, err)
	require.Empty(t, unlinked.ActivityIDs)

	ids, err = fx.relations.DocumentsForActivity(ctx, activity.ID)
	require.NoError(t, err)
	require.Empty(t, ids)

	// unlink on a pair that no longer exists is a successful no-op
	again, err := fx.documents.Unlink(ctx, doc.ID, activity.ID, "org-x")
	require.NoError(t, err)
	require.Empty(t, again.ActivityIDs)

	// the document record itself survives every unlink
	docs, err := fx.documents.ListForOrg(ctx, "org-x")
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestLinkChecksOwnershipOfBothSides(t *testing.T) {
	fx := newDocumentFixture(t)
	ctx := context.Background()
	activity := fx.createActivity(t, "org-x")
	foreign := fx.createActivity(t, "org-other")

	doc, err := fx.documents.Upload(ctx, "org-x", UploadInput{Data: []byte("d"), Filename: "d.txt"})
	require.NoError(t, err)

	var nf *NotFoundError
	_, err = fx.documents.Link(ctx, doc.ID, foreign.ID, "org-x")
	require.ErrorAs(t, err, &nf)

	_, err = fx.documents.Link(ctx, doc.ID, activity.ID, "org-other")
	require.ErrorAs(t, err, &nf)
}

func TestListForActivityFiltersCrossOrgRelations(t *testing.T) {
	fx := newDocumentFixture(t)
	ctx := context.Background()
	activity := fx.createActivity(t, "org-x")

	mine, err := fx.documents.Upload(ctx, "org-x", UploadInput{Data: []byte("m"), Filename: "mine.txt"})
	require.NoError(t, err)
	_, err = fx.documents.Link(ctx, mine.ID, activity.ID, "org-x")
	require.NoError(t, err)

	theirs, err := fx.documents.Upload(ctx, "org-other", UploadInput{Data: []byte("t"), Filename: "theirs.txt"})
	require.NoError(t, err)

	// Simulate a corrupt relation row pointing at another org's document;
	// it must not leak through the org-filtered fetch.
	require.NoError(t, fx.relations.Link(ctx, theirs.ID, activity.ID))

	docs, err := fx.documents.ListForActivity(ctx, activity.ID, "org-x")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, mine.ID, docs[0].ID)
}

func TestGetAccessURL(t *testing.T) {
	fx := newDocumentFixture(t)
	ctx := context.Background()

	doc, err := fx.documents.Upload(ctx, "org-x", UploadInput{Data: []byte("d"), Filename: "d.txt"})
	require.NoError(t, err)

	url, err := fx.documents.GetAccessURL(ctx, doc.ID, "org-x")
	require.NoError(t, err)
	require.Contains(t, url, doc.StorageKey)

	var nf *NotFoundError
	_, err = fx.documents.GetAccessURL(ctx, doc.ID, "org-other")
	require.ErrorAs(t, err, &nf)

	fx.storage.failURL = true
	var ue *UpstreamError
	_, err = fx.documents.GetAccessURL(ctx, doc.ID, "org-x")
	require.ErrorAs(t, err, &ue)
}

func TestMarkIngest(t *testing.T) {
	fx := newDocumentFixture(t)
	ctx := context.Background()

	doc, err := fx.documents.Upload(ctx, "org-x", UploadInput{Data: []byte("d"), Filename: "d.txt"})
	require.NoError(t, err)

	require.NoError(t, fx.documents.MarkIngest(ctx, doc.ID, models.IngestStatusIndexed, 12, ""))

	docs, err := fx.documents.ListForOrg(ctx, "org-x")
	require.NoError(t, err)
	require.Equal(t, models.IngestStatusIndexed, docs[0].IngestStatus)
	require.Equal(t, 12, docs[0].ChunkCount)

	var nf *NotFoundError
	err = fx.documents.MarkIngest(ctx, "missing", models.IngestStatusFailed, 0, "boom")
	require.ErrorAs(t, err, &nf)
}
