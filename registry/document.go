package registry

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"ActivityStudio/models"
	"ActivityStudio/storage"
	"ActivityStudio/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const collDocuments = "documents"

// accessURLTTL bounds how long a retrieval URL stays valid.
const accessURLTTL = 15 * time.Minute

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// DocumentRegistry manages document metadata and the organization checks
// around linking documents to activities.
type DocumentRegistry struct {
	documents  store.Collection
	activities store.Collection
	relations  *RelationStore
	objects    storage.ObjectStorage
	logger     *zap.Logger
}

// NewDocumentRegistry builds the registry over the given store and object
// storage collaborator.
func NewDocumentRegistry(st store.Store, relations *RelationStore, objects storage.ObjectStorage, logger *zap.Logger) *DocumentRegistry {
	return &DocumentRegistry{
		documents:  st.Collection(collDocuments),
		activities: st.Collection(collActivities),
		relations:  relations,
		objects:    objects,
		logger:     logger,
	}
}

// UploadInput carries one uploaded file. ActivityID is optional; when set the
// document is linked to that activity after the record is created.
type UploadInput struct {
	Data       []byte
	Filename   string
	MimeType   string
	ActivityID string
}

// storageKey builds a collision-resistant object key from the upload time and
// a sanitized filename.
func storageKey(filename string, now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), unsafeKeyChars.ReplaceAllString(filename, "_"))
}

// Upload stores the file bytes, creates the document record, and, when an
// activity id is supplied, links the document to it. A failure in the link
// step is logged and swallowed: the upload itself still succeeds and the
// caller gets an unlinked document.
func (r *DocumentRegistry) Upload(ctx context.Context, orgID string, in UploadInput) (*models.Document, error) {
	if orgID == "" {
		return nil, errUnauthorized()
	}
	if len(in.Data) == 0 {
		return nil, validationf("File is required")
	}

	filename := in.Filename
	if filename == "" {
		filename = "unnamed-file"
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	now := time.Now().UTC()
	key, err := r.objects.Store(ctx, storageKey(filename, now), in.Data, mimeType)
	if err != nil {
		return nil, upstream("Failed to store document", err)
	}

	doc := models.Document{
		ID:           uuid.NewString(),
		Filename:     filename,
		OriginalName: filename,
		MimeType:     mimeType,
		Size:         int64(len(in.Data)),
		StorageKey:   key,
		OrgID:        orgID,
		ActivityIDs:  []string{},
		Metadata:     map[string]interface{}{},
		IngestStatus: models.IngestStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.documents.InsertOne(ctx, doc); err != nil {
		return nil, upstream("Failed to create document record", err)
	}
	r.logger.Info("uploaded document",
		zap.String("document_id", doc.ID),
		zap.String("storage_key", key),
		zap.String("org_id", orgID))

	if in.ActivityID != "" {
		linked, err := r.Link(ctx, doc.ID, in.ActivityID, orgID)
		if err != nil {
			r.logger.Warn("linking uploaded document failed",
				zap.String("document_id", doc.ID),
				zap.String("activity_id", in.ActivityID),
				zap.Error(err))
		} else {
			doc = *linked
		}
	}
	return &doc, nil
}

// Link verifies that both the document and the activity exist in orgID, then
// creates the relation and refreshes the document's denormalized activityIds
// array from the join table.
func (r *DocumentRegistry) Link(ctx context.Context, documentID, activityID, orgID string) (*models.Document, error) {
	if orgID == "" {
		return nil, errUnauthorized()
	}
	if _, err := r.getOwned(ctx, documentID, orgID); err != nil {
		return nil, err
	}
	var activity models.Activity
	err := r.activities.FindOne(ctx, store.Filter{"_id": activityID, "orgId": orgID}, &activity)
	if err == store.ErrNoDocuments {
		return nil, notFoundf("Activity not found")
	}
	if err != nil {
		return nil, upstream("Failed to fetch activity", err)
	}

	if err := r.relations.Link(ctx, documentID, activityID); err != nil {
		return nil, err
	}
	return r.refreshActivityIDs(ctx, documentID)
}

// Unlink removes the relation and prunes the document's denormalized array.
// The document record and the stored object are never deleted here.
func (r *DocumentRegistry) Unlink(ctx context.Context, documentID, activityID, orgID string) (*models.Document, error) {
	if orgID == "" {
		return nil, errUnauthorized()
	}
	if _, err := r.getOwned(ctx, documentID, orgID); err != nil {
		return nil, err
	}
	if err := r.relations.Unlink(ctx, documentID, activityID); err != nil {
		return nil, err
	}
	return r.refreshActivityIDs(ctx, documentID)
}

// refreshActivityIDs rewrites the cached array from the authoritative join
// table. There is no cross-structure transaction; a crash between the
// relation write and this update leaves the array stale until the next
// link/unlink touches the document.
func (r *DocumentRegistry) refreshActivityIDs(ctx context.Context, documentID string) (*models.Document, error) {
	ids, err := r.relations.ActivitiesForDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	_, err = r.documents.UpdateOne(ctx, store.Filter{"_id": documentID}, map[string]interface{}{
		"activityIds": ids,
		"updatedAt":   time.Now().UTC(),
	})
	if err != nil {
		return nil, upstream("Failed to update document links", err)
	}
	var doc models.Document
	if err := r.documents.FindOne(ctx, store.Filter{"_id": documentID}, &doc); err != nil {
		return nil, upstream("Failed to fetch document", err)
	}
	return &doc, nil
}

// ListForOrg returns the organization's whole document library.
func (r *DocumentRegistry) ListForOrg(ctx context.Context, orgID string) ([]models.Document, error) {
	if orgID == "" {
		return nil, errUnauthorized()
	}
	var docs []models.Document
	if err := r.documents.Find(ctx, store.Filter{"orgId": orgID}, &docs); err != nil {
		return nil, upstream("Failed to list documents", err)
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// ListForActivity resolves linked document ids through the relation store and
// fetches each record filtered by orgID as well, so a relation row pointing
// at another organization's document never leaks it.
func (r *DocumentRegistry) ListForActivity(ctx context.Context, activityID, orgID string) ([]models.Document, error) {
	if orgID == "" {
		return nil, errUnauthorized()
	}
	ids, err := r.relations.DocumentsForActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	docs := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		var doc models.Document
		err := r.documents.FindOne(ctx, store.Filter{"_id": id, "orgId": orgID}, &doc)
		if err == store.ErrNoDocuments {
			// Stale or cross-organization relation row; skip it.
			continue
		}
		if err != nil {
			return nil, upstream("Failed to fetch document", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// GetAccessURL returns a short-lived retrieval URL for a document the
// organization owns.
func (r *DocumentRegistry) GetAccessURL(ctx context.Context, documentID, orgID string) (string, error) {
	if orgID == "" {
		return "", errUnauthorized()
	}
	doc, err := r.getOwned(ctx, documentID, orgID)
	if err != nil {
		return "", err
	}
	url, err := r.objects.AccessURL(ctx, doc.StorageKey, accessURLTTL)
	if err != nil {
		return "", upstream("Failed to resolve document access URL", err)
	}
	return url, nil
}

// MarkIngest records the outcome reported by the RAG ingest pipeline.
func (r *DocumentRegistry) MarkIngest(ctx context.Context, documentID, status string, chunkCount int, ingestErr string) error {
	matched, err := r.documents.UpdateOne(ctx, store.Filter{"_id": documentID}, map[string]interface{}{
		"ingestStatus": status,
		"chunkCount":   chunkCount,
		"ingestError":  ingestErr,
		"updatedAt":    time.Now().UTC(),
	})
	if err != nil {
		return upstream("Failed to update ingest status", err)
	}
	if matched == 0 {
		return notFoundf("Document not found")
	}
	return nil
}

func (r *DocumentRegistry) getOwned(ctx context.Context, documentID, orgID string) (*models.Document, error) {
	var doc models.Document
	err := r.documents.FindOne(ctx, store.Filter{"_id": documentID, "orgId": orgID}, &doc)
	if err == store.ErrNoDocuments {
		return nil, notFoundf("Document not found")
	}
	if err != nil {
		return nil, upstream("Failed to fetch document", err)
	}
	return &doc, nil
}
