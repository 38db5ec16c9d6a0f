package routes

import (
	"ActivityStudio/controllers"

	"github.com/gofiber/fiber/v2"
)

// DocumentRoutes mounts the organization-scoped document library endpoints
// behind the auth middleware.
func DocumentRoutes(app *fiber.App, ctrl *controllers.DocumentController, authMW fiber.Handler) {
	documents := app.Group("/documents", authMW)

	documents.Get("/", ctrl.List)
	documents.Post("/", ctrl.Upload)
	documents.Post("/:id/link", ctrl.Link)
	documents.Post("/:id/unlink", ctrl.Unlink)
	documents.Get("/:id/access", ctrl.Access)
}
