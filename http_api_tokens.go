package rbac

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateApiTokenPayload is the token issue body. A nil ExpiresAt mints a
// token that never expires.
type CreateApiTokenPayload struct {
	Name        string      `json:"name"`
	FullAccess  bool        `json:"fullAccess"`
	Permissions []uuid.UUID `json:"permissions"`
	ExpiresAt   *time.Time  `json:"expiresAt"`
}

// Validate will run validation rules
func (r CreateApiTokenPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}

func registerApiTokenRoutes(r fiber.Router, auth *Authorizer, svc *ApiTokensService) {
	r.Get("/", auth.Protected("apiTokens.getAllApiTokens", "List the caller's api tokens",
		func(c *fiber.Ctx) error {
			tokens, err := svc.ListForUser(c.UserContext(), MustUserID(c))
			if err != nil {
				return err
			}
			return c.JSON(tokens)
		})...)

	r.Get("/:id", auth.Protected("apiTokens.getApiToken", "Read one api token",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			token, err := svc.Get(c.UserContext(), MustUserID(c), id)
			if err != nil {
				return err
			}
			return c.JSON(token)
		})...)

	r.Post("/", auth.Protected("apiTokens.createApiToken", "Issue a new api token",
		func(c *fiber.Ctx) error {
			payload := new(CreateApiTokenPayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			token, err := svc.Issue(c.UserContext(), MustUserID(c), IssueApiTokenInput{
				Name:        payload.Name,
				FullAccess:  payload.FullAccess,
				Permissions: payload.Permissions,
				ExpiresAt:   payload.ExpiresAt,
			})
			if err != nil {
				return err
			}
			return c.Status(fiber.StatusCreated).JSON(token)
		})...)

	r.Delete("/:id", auth.Protected("apiTokens.deleteApiToken", "Revoke an api token",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			token, err := svc.Revoke(c.UserContext(), MustUserID(c), id)
			if err != nil {
				return err
			}
			return c.JSON(token)
		})...)
}
