package rbac

import (
	"errors"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

type apiError struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Errors []apiError `json:"errors"`
}

// NewApp builds the fiber application with the shared error handler and
// request logging. Routes are attached separately via RegisterRoutes.
func NewApp(logger Logger) *fiber.App {
	if logger == nil {
		logger = defLogger{}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(logger),
	})

	app.Use(requestLogger(logger))

	return app
}

// errorHandler renders every error as {"errors":[{message, field}]}.
// Validation errors fan out one entry per offending field; rich errors
// carry their own status; internals are logged and masked.
func errorHandler(logger Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return c.Status(fiber.StatusBadRequest).JSON(validationResponse(verrs))
		}

		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			status := rich.Code
			if status < fiber.StatusBadRequest || status > 599 {
				status = fiber.StatusInternalServerError
			}

			if rich.Category == goerrors.CategoryInternal {
				logger.Error("%s %s: %v", c.Method(), c.Path(), err)
				return c.Status(status).JSON(errorResponse{
					Errors: []apiError{{Message: "Internal Server Error"}},
				})
			}

			return c.Status(status).JSON(errorResponse{
				Errors: []apiError{{Message: rich.Message}},
			})
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return c.Status(ferr.Code).JSON(errorResponse{
				Errors: []apiError{{Message: ferr.Message}},
			})
		}

		logger.Error("%s %s: unhandled error: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Errors: []apiError{{Message: "Internal Server Error"}},
		})
	}
}

func validationResponse(verrs validation.Errors) errorResponse {
	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := errorResponse{Errors: make([]apiError, 0, len(fields))}
	for _, field := range fields {
		out.Errors = append(out.Errors, apiError{
			Message: verrs[field].Error(),
			Field:   field,
		})
	}
	return out
}

func requestLogger(logger Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}

// Services bundles everything the HTTP layer needs. NewServices wires the
// full graph from a repository manager and configuration.
type Services struct {
	Tokens         *TokenService
	Registry       *PermissionRegistry
	Authorizer     *Authorizer
	Auth           *AuthService
	Users          *UsersService
	Roles          *RolesService
	Permissions    *PermissionsService
	ApiTokens      *ApiTokensService
	PasswordResets *PasswordResetService
	Products       *ProductsService
}

func NewServices(repo RepositoryManager, cfg *Config, logger Logger) *Services {
	if logger == nil {
		logger = defLogger{}
	}

	tokens := NewTokenService(cfg, logger)
	registry := NewPermissionRegistry(repo.Permissions(), logger)
	users := NewUsersService(repo, cfg.SuperAdminEmail, logger)

	return &Services{
		Tokens:         tokens,
		Registry:       registry,
		Authorizer:     NewAuthorizer(repo, tokens, registry, logger),
		Auth:           NewAuthService(repo, users, tokens, logger),
		Users:          users,
		Roles:          NewRolesService(repo, logger),
		Permissions:    NewPermissionsService(repo, logger),
		ApiTokens:      NewApiTokensService(repo, logger),
		PasswordResets: NewPasswordResetService(repo, nil, cfg.ResetTokenTTL, logger),
		Products:       NewProductsService(repo, logger),
	}
}

// RegisterRoutes declares the full HTTP surface. Each protected route
// names its action here, which is also what creates the permission rows.
func RegisterRoutes(app *fiber.App, s *Services) {
	authGroup := app.Group("/auth")
	registerAuthRoutes(authGroup, s.Authorizer, s.Auth, s.PasswordResets)
	registerUserRoutes(authGroup.Group("/users"), s.Authorizer, s.Users)
	registerRoleRoutes(authGroup.Group("/roles"), s.Authorizer, s.Roles)
	registerPermissionRoutes(authGroup.Group("/permissions"), s.Authorizer, s.Permissions)
	registerApiTokenRoutes(authGroup.Group("/api-tokens"), s.Authorizer, s.ApiTokens)

	registerProductRoutes(app.Group("/api/products"), s.Authorizer, s.Products)
}
