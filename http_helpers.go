package rbac

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type validatable interface {
	Validate() error
}

// parseBody binds the JSON body into payload and runs its validation
// rules. Parse failures and rule failures both end up as 400s.
func parseBody(c *fiber.Ctx, payload validatable) error {
	if err := c.BodyParser(payload); err != nil {
		return BadRequest("Invalid request body")
	}
	return payload.Validate()
}

func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, BadRequest("Invalid id")
	}
	return id, nil
}
