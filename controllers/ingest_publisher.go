package controllers

import (
	"encoding/json"

	"ActivityStudio/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATS subjects shared with the retrieval service. Requests go out on
// subjectIngestDocument; the indexer reports back on subjectIngestResult.
const (
	subjectIngestDocument = "ingestdocument"
	subjectIngestResult   = "result.ingestdocument"
)

// IngestRequest matches the structure expected by the retrieval service.
type IngestRequest struct {
	DocumentID     string `json:"document_id"`
	StorageKey     string `json:"storage_key"`
	MimeType       string `json:"mime_type"`
	OrganizationID string `json:"organization_id"`
	CallbackTopic  string `json:"callback_topic,omitempty"`
}

// ConnectNATS dials the NATS server at url, falling back to the default local
// address when url is empty.
func ConnectNATS(url string, logger *zap.Logger) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
		logger.Info("NATS_URL not set, using default", zap.String("url", url))
	}
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to NATS", zap.String("url", url))
	return nc, nil
}

// IngestPublisher queues documents for the RAG ingest pipeline. A nil
// publisher or nil connection is a silent no-op so the API keeps working when
// NATS is down.
type IngestPublisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// NewIngestPublisher wires the publisher. nc may be nil.
func NewIngestPublisher(nc *nats.Conn, logger *zap.Logger) *IngestPublisher {
	return &IngestPublisher{nc: nc, logger: logger}
}

// PublishIngest asks the retrieval service to chunk and embed the document.
// Publish failures are logged, never surfaced: ingestion is asynchronous and
// the upload has already succeeded.
func (p *IngestPublisher) PublishIngest(doc *models.Document) {
	if p == nil || p.nc == nil || doc == nil {
		return
	}
	req := IngestRequest{
		DocumentID:     doc.ID,
		StorageKey:     doc.StorageKey,
		MimeType:       doc.MimeType,
		OrganizationID: doc.OrgID,
		CallbackTopic:  subjectIngestResult,
	}
	data, err := json.Marshal(req)
	if err != nil {
		p.logger.Error("marshaling ingest request", zap.Error(err))
		return
	}
	if err := p.nc.Publish(subjectIngestDocument, data); err != nil {
		p.logger.Warn("publishing ingest request",
			zap.String("document_id", doc.ID),
			zap.Error(err))
		return
	}
	p.logger.Info("queued document for ingestion",
		zap.String("document_id", doc.ID),
		zap.String("storage_key", doc.StorageKey))
}
