package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"ActivityStudio/registry"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DocumentController exposes the document library over HTTP: multipart
// upload, listing, linking, and access-URL resolution.
type DocumentController struct {
	registry  *registry.DocumentRegistry
	publisher *IngestPublisher
	audit     AuditFunc
	logger    *zap.Logger
}

// NewDocumentController wires the controller. publisher may be nil when NATS
// is unavailable.
func NewDocumentController(reg *registry.DocumentRegistry, publisher *IngestPublisher, audit AuditFunc, logger *zap.Logger) *DocumentController {
	return &DocumentController{registry: reg, publisher: publisher, audit: audit, logger: logger}
}

// Upload handles POST /documents (multipart form, field "file", optional
// field "activityId").
func (ctrl *DocumentController) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "File is required"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "File is required"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read file"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doc, err := ctrl.registry.Upload(ctx, orgID(c), registry.UploadInput{
		Data:       data,
		Filename:   fileHeader.Filename,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		ActivityID: c.FormValue("activityId"),
	})
	if err != nil {
		return err
	}

	ctrl.publisher.PublishIngest(doc)
	ctrl.audit.log(userID(c), "Uploaded document", doc.ID)
	return c.Status(http.StatusCreated).JSON(doc)
}

// List handles GET /documents. Without a query parameter it returns the
// organization's library; with ?activityId= it returns the documents linked
// to that activity.
func (ctrl *DocumentController) List(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if activityID := c.Query("activityId"); activityID != "" {
		docs, err := ctrl.registry.ListForActivity(ctx, activityID, orgID(c))
		if err != nil {
			return err
		}
		return c.JSON(docs)
	}

	docs, err := ctrl.registry.ListForOrg(ctx, orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(docs)
}

type linkBody struct {
	ActivityID string `json:"activityId"`
}

// Link handles POST /documents/:id/link.
func (ctrl *DocumentController) Link(c *fiber.Ctx) error {
	documentID := c.Params("id")
	var body linkBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if body.ActivityID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "activityId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc, err := ctrl.registry.Link(ctx, documentID, body.ActivityID, orgID(c))
	if err != nil {
		return err
	}

	ctrl.publisher.PublishIngest(doc)
	ctrl.audit.log(userID(c), "Linked document", documentID)
	return c.JSON(doc)
}

// Unlink handles POST /documents/:id/unlink. Only the relation goes away;
// the document record and the stored object remain.
func (ctrl *DocumentController) Unlink(c *fiber.Ctx) error {
	documentID := c.Params("id")
	var body linkBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if body.ActivityID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "activityId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc, err := ctrl.registry.Unlink(ctx, documentID, body.ActivityID, orgID(c))
	if err != nil {
		return err
	}

	ctrl.audit.log(userID(c), "Unlinked document", documentID)
	return c.JSON(doc)
}

// Access handles GET /documents/:id/access and returns a short-lived
// retrieval URL for the stored object.
func (ctrl *DocumentController) Access(c *fiber.Ctx) error {
	documentID := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url, err := ctrl.registry.GetAccessURL(ctx, documentID, orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": url})
}
