package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ActivityStudio/registry"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ActivityController exposes the activity registry, share-code issuance, and
// RAG token issuance over HTTP.
type ActivityController struct {
	registry *registry.ActivityRegistry
	resolver *registry.ShareResolver
	issuer   *registry.TokenIssuer
	shareTTL time.Duration
	audit    AuditFunc
	logger   *zap.Logger
}

// NewActivityController wires the controller.
func NewActivityController(reg *registry.ActivityRegistry, resolver *registry.ShareResolver, issuer *registry.TokenIssuer, shareTTL time.Duration, audit AuditFunc, logger *zap.Logger) *ActivityController {
	return &ActivityController{
		registry: reg,
		resolver: resolver,
		issuer:   issuer,
		shareTTL: shareTTL,
		audit:    audit,
		logger:   logger,
	}
}

// Create handles POST /activities.
func (ctrl *ActivityController) Create(c *fiber.Ctx) error {
	var input registry.CreateActivityInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	activity, err := ctrl.registry.Create(ctx, orgID(c), input)
	if err != nil {
		return err
	}

	ctrl.audit.log(userID(c), "Created activity", activity.ID)
	return c.Status(http.StatusCreated).JSON(activity)
}

// List handles GET /activities. The organization may come from the query
// string (headset clients pass it explicitly) with the auth context as
// fallback.
func (ctrl *ActivityController) List(c *fiber.Ctx) error {
	org := c.Query("orgId")
	if org == "" {
		org = orgID(c)
	}
	if org == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "orgId is required either as a query parameter or through authentication",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	activities, err := ctrl.registry.List(ctx, org)
	if err != nil {
		return err
	}
	return c.JSON(activities)
}

// Get handles GET /activities/:id.
func (ctrl *ActivityController) Get(c *fiber.Ctx) error {
	activityID := c.Params("id")
	if activityID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Activity ID is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	activity, err := ctrl.registry.Get(ctx, activityID, orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(activity)
}

// updateActivityBody mirrors the updatable fields for decoding.
type updateActivityBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BannerURL   string `json:"bannerUrl"`
	Platform    string `json:"platform"`
	Format      string `json:"format"`
	RagEnabled  bool   `json:"ragEnabled"`
}

// Update handles PATCH /activities/:id. Only fields present in the request
// body are merged; presence is detected from the raw body so explicit zero
// values (ragEnabled=false, bannerUrl="") still apply.
func (ctrl *ActivityController) Update(c *fiber.Ctx) error {
	activityID := c.Params("id")
	if activityID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Activity ID is required"})
	}

	var body updateActivityBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Failed to parse request body"})
	}

	var patch registry.UpdateActivityPatch
	if _, ok := raw["title"]; ok {
		patch.Title = &body.Title
	}
	if _, ok := raw["description"]; ok {
		patch.Description = &body.Description
	}
	if _, ok := raw["bannerUrl"]; ok {
		patch.BannerURL = &body.BannerURL
	}
	if _, ok := raw["platform"]; ok {
		patch.Platform = &body.Platform
	}
	if _, ok := raw["format"]; ok {
		patch.Format = &body.Format
	}
	if _, ok := raw["ragEnabled"]; ok {
		patch.RagEnabled = &body.RagEnabled
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	activity, err := ctrl.registry.Update(ctx, activityID, orgID(c), patch)
	if err != nil {
		return err
	}

	ctrl.audit.log(userID(c), "Updated activity", activityID)
	return c.JSON(activity)
}

// RagToken handles POST /activities/:id/rag-token.
func (ctrl *ActivityController) RagToken(c *fiber.Ctx) error {
	activityID := c.Params("id")
	if activityID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Activity ID is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := ctrl.issuer.Issue(ctx, activityID, orgID(c))
	if err != nil {
		return err
	}

	ctrl.audit.log(userID(c), "Issued RAG token", activityID)
	return c.JSON(fiber.Map{"token": token})
}

// Share handles POST /activities/:id/share and mints a time-limited share
// code for the activity.
func (ctrl *ActivityController) Share(c *fiber.Ctx) error {
	activityID := c.Params("id")
	if activityID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Activity ID is required"})
	}

	var body struct {
		ExpiresInHours int `json:"expiresInHours"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	ttl := ctrl.shareTTL
	if body.ExpiresInHours > 0 {
		ttl = time.Duration(body.ExpiresInHours) * time.Hour
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sc, err := ctrl.resolver.CreateShareCode(ctx, activityID, orgID(c), ttl)
	if err != nil {
		return err
	}

	ctrl.audit.log(userID(c), "Created share code", activityID)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"shareCode": sc.ShareCode,
		"expiresAt": sc.ExpiresAt,
	})
}
