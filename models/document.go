package models

import "time"

// Ingest states for a document in the RAG pipeline.
const (
	IngestStatusPending = "pending"
	IngestStatusIndexed = "indexed"
	IngestStatusFailed  = "failed"
)

// Document stores metadata about an uploaded file. The bytes themselves live
// in external object storage under StorageKey. ActivityIDs is a denormalized
// cache of the join table; the join table is authoritative.
type Document struct {
	ID           string                 `bson:"_id" json:"_id"`
	Filename     string                 `bson:"filename" json:"filename"`
	OriginalName string                 `bson:"originalName" json:"originalName"`
	MimeType     string                 `bson:"mimeType" json:"mimeType"`
	Size         int64                  `bson:"size" json:"size"`
	StorageKey   string                 `bson:"storageKey" json:"storageKey"`
	OrgID        string                 `bson:"orgId" json:"orgId"`
	ActivityIDs  []string               `bson:"activityIds" json:"activityIds"`
	Metadata     map[string]interface{} `bson:"metadata" json:"metadata"`
	IngestStatus string                 `bson:"ingestStatus" json:"ingestStatus"`
	ChunkCount   int                    `bson:"chunkCount" json:"chunkCount"`
	IngestError  string                 `bson:"ingestError,omitempty" json:"ingestError,omitempty"`
	CreatedAt    time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time              `bson:"updatedAt" json:"updatedAt"`
}
