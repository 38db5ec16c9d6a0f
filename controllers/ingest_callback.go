package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ActivityStudio/models"
	"ActivityStudio/registry"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// IngestResult is the outcome reported by the retrieval service after it
// processed one document. This structure must match the indexer's payload.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Success    bool   `json:"success"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	Error      string `json:"error,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// IngestCallbackController receives ingest results over both NATS and HTTP
// and records them on the document.
type IngestCallbackController struct {
	registry *registry.DocumentRegistry
	logger   *zap.Logger
}

// NewIngestCallbackController wires the controller.
func NewIngestCallbackController(reg *registry.DocumentRegistry, logger *zap.Logger) *IngestCallbackController {
	return &IngestCallbackController{registry: reg, logger: logger}
}

// Register mounts the HTTP callback endpoint and, when a NATS connection is
// available, subscribes to the result subject.
func (ctrl *IngestCallbackController) Register(app *fiber.App, nc *nats.Conn) error {
	app.Post("/api/ingest/callback", ctrl.HandleCallback)

	if nc == nil {
		ctrl.logger.Warn("NATS connection not provided, skipping ingest result subscriber")
		return nil
	}
	_, err := nc.Subscribe(subjectIngestResult, func(msg *nats.Msg) {
		var result IngestResult
		if err := json.Unmarshal(msg.Data, &result); err != nil {
			ctrl.logger.Error("unmarshaling ingest result", zap.Error(err))
			return
		}
		if err := ctrl.process(result); err != nil {
			ctrl.logger.Error("processing ingest result",
				zap.String("document_id", result.DocumentID),
				zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", subjectIngestResult, err)
	}
	ctrl.logger.Info("subscribed to ingest results", zap.String("subject", subjectIngestResult))
	return nil
}

// HandleCallback processes HTTP callbacks from the retrieval service.
func (ctrl *IngestCallbackController) HandleCallback(c *fiber.Ctx) error {
	var result IngestResult
	if err := c.BodyParser(&result); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if err := ctrl.process(result); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (ctrl *IngestCallbackController) process(result IngestResult) error {
	if result.DocumentID == "" {
		return fmt.Errorf("missing required field: document_id")
	}
	status := models.IngestStatusIndexed
	if !result.Success {
		status = models.IngestStatusFailed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return ctrl.registry.MarkIngest(ctx, result.DocumentID, status, result.ChunkCount, result.Error)
}
