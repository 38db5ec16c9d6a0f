package routes

import (
	"ActivityStudio/controllers"

	"github.com/gofiber/fiber/v2"
)

// Controllers bundles the HTTP controllers SetupRoutes mounts.
type Controllers struct {
	Activities *controllers.ActivityController
	Documents  *controllers.DocumentController
	Share      *controllers.ShareController
}

// SetupRoutes mounts every route. authMW guards the organization-scoped
// groups; the public share resolution and health endpoints stay open.
func SetupRoutes(app *fiber.App, ctrls Controllers, authMW fiber.Handler) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// The share code itself is the capability; no auth here.
	app.Get("/public/activity-share", ctrls.Share.Resolve)

	ActivityRoutes(app, ctrls.Activities, authMW)
	DocumentRoutes(app, ctrls.Documents, authMW)
}
