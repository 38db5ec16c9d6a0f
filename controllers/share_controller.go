package controllers

import (
	"context"
	"time"

	"ActivityStudio/registry"

	"github.com/gofiber/fiber/v2"
)

// ShareController exposes the unauthenticated share-code resolution endpoint.
// The share code itself is the capability; no auth middleware runs here.
type ShareController struct {
	resolver *registry.ShareResolver
}

// NewShareController wires the controller.
func NewShareController(resolver *registry.ShareResolver) *ShareController {
	return &ShareController{resolver: resolver}
}

// Resolve handles GET /public/activity-share?shareCode=...
func (ctrl *ShareController) Resolve(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	shared, err := ctrl.resolver.Resolve(ctx, c.Query("shareCode"))
	if err != nil {
		return err
	}
	return c.JSON(shared)
}
