package rbac

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateUserPayload is the admin user-creation body
type CreateUserPayload struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Roles    []uuid.UUID `json:"roles"`
}

// Validate will run validation rules
func (r CreateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// UpdateUserPayload carries optional updates; absent fields stay put.
type UpdateUserPayload struct {
	Email     *string     `json:"email"`
	Password  *string     `json:"password"`
	Confirmed *bool       `json:"confirmed"`
	Blocked   *bool       `json:"blocked"`
	Roles     []uuid.UUID `json:"roles"`
}

func (r UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Length(8, 100)),
	)
}

func registerUserRoutes(r fiber.Router, auth *Authorizer, svc *UsersService) {
	r.Get("/", auth.Protected("users.getAllUsers", "List every user",
		func(c *fiber.Ctx) error {
			users, err := svc.List(c.UserContext())
			if err != nil {
				return err
			}
			return c.JSON(users)
		})...)

	r.Get("/:id", auth.Protected("users.getUser", "Read one user",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			user, err := svc.Get(c.UserContext(), id)
			if err != nil {
				return err
			}
			return c.JSON(user)
		})...)

	r.Post("/", auth.Protected("users.createUser", "Create a user",
		func(c *fiber.Ctx) error {
			payload := new(CreateUserPayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			user, err := svc.Create(c.UserContext(), CreateUserInput{
				Email:    payload.Email,
				Password: payload.Password,
				Roles:    payload.Roles,
			})
			if err != nil {
				return err
			}
			return c.Status(fiber.StatusCreated).JSON(user)
		})...)

	r.Put("/:id", auth.Protected("users.updateUser", "Update a user",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			payload := new(UpdateUserPayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			user, err := svc.Update(c.UserContext(), id, UpdateUserInput{
				Email:     payload.Email,
				Password:  payload.Password,
				Confirmed: payload.Confirmed,
				Blocked:   payload.Blocked,
				Roles:     payload.Roles,
			})
			if err != nil {
				return err
			}
			return c.JSON(user)
		})...)

	r.Delete("/:id", auth.Protected("users.deleteUser", "Delete a user",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			user, err := svc.Delete(c.UserContext(), id)
			if err != nil {
				return err
			}
			return c.JSON(user)
		})...)
}
