package controllers

import "github.com/gofiber/fiber/v2"

// AuditFunc records an audit trail entry for a mutating operation. main wires
// the shared-libs audit logger; tests leave it nil.
type AuditFunc func(userID, action, objectID string)

func (fn AuditFunc) log(userID, action, objectID string) {
	if fn != nil {
		fn(userID, action, objectID)
	}
}

// orgID returns the organization id placed in locals by the auth middleware,
// or "" when the request is unauthenticated.
func orgID(c *fiber.Ctx) string {
	if v, ok := c.Locals("organization_id").(string); ok {
		return v
	}
	return ""
}

// userID returns the authenticated user id, or "" when absent.
func userID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}
