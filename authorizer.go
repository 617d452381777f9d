package rbac

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Authorizer builds the per-route authorization middleware. A request is
// authenticated either by a signed session token or an opaque API token
// sharing the same Authorization header slot; the shape of the credential
// decides the path, once, at the top, and the two branches never mix.
type Authorizer struct {
	repo     RepositoryManager
	tokens   *TokenService
	registry *PermissionRegistry
	logger   Logger
}

func NewAuthorizer(repo RepositoryManager, tokens *TokenService, registry *PermissionRegistry, logger Logger) *Authorizer {
	if logger == nil {
		logger = defLogger{}
	}
	return &Authorizer{
		repo:     repo,
		tokens:   tokens,
		registry: registry,
		logger:   logger,
	}
}

// Middleware returns the interceptor for one route. With an empty
// requiredAction it checks authentication only. The returned handler is
// built once at route declaration and reused across requests.
func (a *Authorizer) Middleware(requiredAction string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		if LooksLikeJWT(token) {
			return a.authorizeSession(c, token, requiredAction)
		}
		return a.authorizeApiToken(c, token, requiredAction)
	}
}

// bearerToken enforces a strict two part "Bearer <token>" shape. A bare
// "Bearer" or any other arity is rejected as unauthenticated.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrUnauthenticated
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrUnauthenticated
	}

	return parts[1], nil
}

func (a *Authorizer) authorizeSession(c *fiber.Ctx, token, requiredAction string) error {
	claims, ok := a.tokens.VerifyAccessToken(token)
	if !ok || claims.Subject == "" {
		return ErrUnauthenticated
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrUnauthenticated
	}

	user, err := a.repo.Users().GetWithPermissions(c.UserContext(), userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUnauthenticated
		}
		return Internal(err, "failed to load user for authorization")
	}

	c.Locals(localUserID, user.ID)
	c.Locals(localSessionToken, token)

	if requiredAction != "" && !user.HasAction(requiredAction) {
		return ErrForbidden
	}

	return c.Next()
}

func (a *Authorizer) authorizeApiToken(c *fiber.Ctx, token, requiredAction string) error {
	apiToken, err := a.repo.ApiTokens().GetActiveByToken(c.UserContext(), token, time.Now())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUnauthenticated
		}
		return Internal(err, "failed to load api token for authorization")
	}

	c.Locals(localUserID, apiToken.UserID)

	// fullAccess tokens skip the per-action check entirely; without an
	// action, authentication alone is enough.
	if requiredAction != "" && !apiToken.FullAccess && !apiToken.HasAction(requiredAction) {
		return ErrForbidden
	}

	return c.Next()
}

// Protected prepends the authorization interceptor to the handler chain
// and registers the action. Registration failures must not take route
// declaration down: they are logged and swallowed, the permission row can
// be created on a later boot.
func (a *Authorizer) Protected(action, description string, handlers ...fiber.Handler) []fiber.Handler {
	a.declareAction(action, description)

	chain := make([]fiber.Handler, 0, len(handlers)+1)
	chain = append(chain, a.Middleware(action))
	return append(chain, handlers...)
}

// Authenticated builds a chain that only requires a valid credential,
// with no action check.
func (a *Authorizer) Authenticated(handlers ...fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(handlers)+1)
	chain = append(chain, a.Middleware(""))
	return append(chain, handlers...)
}

// Public registers the route's action so it exists for role assignment,
// but leaves the chain untouched; login and register work this way.
func (a *Authorizer) Public(action, description string, handlers ...fiber.Handler) []fiber.Handler {
	a.declareAction(action, description)
	return handlers
}

func (a *Authorizer) declareAction(action, description string) {
	if action == "" {
		return
	}
	if _, err := a.registry.RegisterAction(context.Background(), action, description); err != nil {
		a.logger.Error("failed to register action %s: %v", action, err)
	}
}
