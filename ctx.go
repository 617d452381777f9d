package rbac

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Fiber locals keys the authorizer populates on success.
const (
	localUserID       = "rbac:userID"
	localSessionToken = "rbac:sessionToken"
)

// UserIDFromCtx returns the authenticated caller's id, resolved by the
// authorizer earlier in the chain.
func UserIDFromCtx(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(localUserID).(uuid.UUID)
	return id, ok
}

// MustUserID is for handlers that only run behind the authorizer; a
// missing id there is a programmer error, not a request error.
func MustUserID(c *fiber.Ctx) uuid.UUID {
	id, ok := UserIDFromCtx(c)
	if !ok {
		panic("rbac: handler reached without authenticated user in context")
	}
	return id
}

// SessionTokenFromCtx returns the raw signed token for session
// authenticated requests. API token requests leave it unset.
func SessionTokenFromCtx(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(localSessionToken).(string)
	return token, ok
}
