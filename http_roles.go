package rbac

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateRolePayload is the role creation body
type CreateRolePayload struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Permissions []uuid.UUID `json:"permissions"`
}

// Validate will run validation rules
func (r CreateRolePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}

// UpdateRolePayload carries optional updates; a nil Permissions slice
// keeps the current set.
type UpdateRolePayload struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Permissions []uuid.UUID `json:"permissions"`
}

func (r UpdateRolePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 100)),
	)
}

func registerRoleRoutes(r fiber.Router, auth *Authorizer, svc *RolesService) {
	r.Get("/", auth.Protected("roles.getAllRoles", "List every role",
		func(c *fiber.Ctx) error {
			roles, err := svc.List(c.UserContext())
			if err != nil {
				return err
			}
			return c.JSON(roles)
		})...)

	r.Get("/:id", auth.Protected("roles.getRole", "Read one role with its permissions",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			role, err := svc.Get(c.UserContext(), id)
			if err != nil {
				return err
			}
			return c.JSON(role)
		})...)

	r.Post("/", auth.Protected("roles.createRole", "Create a role",
		func(c *fiber.Ctx) error {
			payload := new(CreateRolePayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			role, err := svc.Create(c.UserContext(), CreateRoleInput{
				Name:        payload.Name,
				Description: payload.Description,
				Permissions: payload.Permissions,
			})
			if err != nil {
				return err
			}
			return c.Status(fiber.StatusCreated).JSON(role)
		})...)

	r.Put("/:id", auth.Protected("roles.updateRole", "Update a role",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			payload := new(UpdateRolePayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			role, err := svc.Update(c.UserContext(), id, UpdateRoleInput{
				Name:        payload.Name,
				Description: payload.Description,
				Permissions: payload.Permissions,
			})
			if err != nil {
				return err
			}
			return c.JSON(role)
		})...)

	r.Delete("/:id", auth.Protected("roles.deleteRole", "Delete a role",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			role, err := svc.Delete(c.UserContext(), id)
			if err != nil {
				return err
			}
			return c.JSON(role)
		})...)
}
