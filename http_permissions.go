package rbac

import (
	"github.com/gofiber/fiber/v2"
)

func registerPermissionRoutes(r fiber.Router, auth *Authorizer, svc *PermissionsService) {
	r.Get("/", auth.Protected("permissions.getAllPermissions", "List every registered permission",
		func(c *fiber.Ctx) error {
			permissions, err := svc.List(c.UserContext())
			if err != nil {
				return err
			}
			return c.JSON(permissions)
		})...)

	r.Get("/:id", auth.Protected("permissions.getPermission", "Read one permission",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			permission, err := svc.Get(c.UserContext(), id)
			if err != nil {
				return err
			}
			return c.JSON(permission)
		})...)
}
