package rbac

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// RegisterPayload is the signup body
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// ForgotPasswordPayload asks for a reset token by email
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResetPasswordPayload consumes a reset token
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func registerAuthRoutes(r fiber.Router, auth *Authorizer, svc *AuthService, resets *PasswordResetService) {
	r.Post("/register", auth.Public("auth.register", "Create an account",
		func(c *fiber.Ctx) error {
			payload := new(RegisterPayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			res, err := svc.Register(c.UserContext(), payload.Email, payload.Password)
			if err != nil {
				return err
			}
			return c.Status(fiber.StatusCreated).JSON(res)
		})...)

	r.Post("/login", auth.Public("auth.login", "Exchange credentials for a session",
		func(c *fiber.Ctx) error {
			payload := new(LoginPayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			res, err := svc.Login(c.UserContext(), payload.Email, payload.Password)
			if err != nil {
				return err
			}
			return c.JSON(res)
		})...)

	// refresh reads the token itself: the refresh token is signed with a
	// different secret, so it can't go through the session middleware.
	r.Get("/refresh", auth.Public("auth.refreshToken", "Exchange a refresh token for a new access token",
		func(c *fiber.Ctx) error {
			token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
			if err != nil {
				return err
			}

			res, err := svc.Refresh(c.UserContext(), token)
			if err != nil {
				return err
			}
			return c.JSON(res)
		})...)

	r.Get("/me", auth.Authenticated(
		func(c *fiber.Ctx) error {
			user, err := svc.Me(c.UserContext(), MustUserID(c))
			if err != nil {
				return err
			}
			return c.JSON(user)
		})...)

	r.Post("/forgot-password", auth.Public("auth.forgotPassword", "Request a password reset token",
		func(c *fiber.Ctx) error {
			payload := new(ForgotPasswordPayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			if err := resets.Forgot(c.UserContext(), payload.Email); err != nil {
				return err
			}
			return c.JSON(fiber.Map{"message": "If the account exists, a reset link has been sent"})
		})...)

	r.Post("/reset-password", auth.Public("auth.resetPassword", "Consume a password reset token",
		func(c *fiber.Ctx) error {
			payload := new(ResetPasswordPayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			if err := resets.Reset(c.UserContext(), payload.Token, payload.Password); err != nil {
				return err
			}
			return c.JSON(fiber.Map{"message": "Password updated"})
		})...)
}
