package routes

import (
	"ActivityStudio/controllers"

	"github.com/gofiber/fiber/v2"
)

// ActivityRoutes mounts the organization-scoped activity endpoints behind the
// auth middleware.
func ActivityRoutes(app *fiber.App, ctrl *controllers.ActivityController, authMW fiber.Handler) {
	activities := app.Group("/activities", authMW)

	activities.Get("/", ctrl.List)
	activities.Post("/", ctrl.Create)
	activities.Get("/:id", ctrl.Get)
	activities.Patch("/:id", ctrl.Update)
	activities.Post("/:id/rag-token", ctrl.RagToken)
	activities.Post("/:id/share", ctrl.Share)
}
