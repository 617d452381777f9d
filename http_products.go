package rbac

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// CreateProductPayload is the product creation body
type CreateProductPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Validate will run validation rules
func (r CreateProductPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.Min(0.0)),
	)
}

// UpdateProductPayload carries optional updates; absent fields stay put.
type UpdateProductPayload struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

func (r UpdateProductPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.Min(0.0)),
	)
}

func registerProductRoutes(r fiber.Router, auth *Authorizer, svc *ProductsService) {
	r.Get("/", auth.Protected("products.getAllProducts", "List every product",
		func(c *fiber.Ctx) error {
			products, err := svc.List(c.UserContext())
			if err != nil {
				return err
			}
			return c.JSON(products)
		})...)

	r.Get("/:id", auth.Protected("products.getProduct", "Read one product",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			product, err := svc.Get(c.UserContext(), id)
			if err != nil {
				return err
			}
			return c.JSON(product)
		})...)

	r.Post("/", auth.Protected("products.createProduct", "Create a product",
		func(c *fiber.Ctx) error {
			payload := new(CreateProductPayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			product, err := svc.Create(c.UserContext(), MustUserID(c), CreateProductInput{
				Name:        payload.Name,
				Description: payload.Description,
				Price:       payload.Price,
			})
			if err != nil {
				return err
			}
			return c.Status(fiber.StatusCreated).JSON(product)
		})...)

	r.Put("/:id", auth.Protected("products.updateProduct", "Update an owned product",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			payload := new(UpdateProductPayload)
			if err := parseBody(c, payload); err != nil {
				return err
			}

			product, err := svc.Update(c.UserContext(), MustUserID(c), id, UpdateProductInput{
				Name:        payload.Name,
				Description: payload.Description,
				Price:       payload.Price,
			})
			if err != nil {
				return err
			}
			return c.JSON(product)
		})...)

	r.Delete("/:id", auth.Protected("products.deleteProduct", "Delete an owned product",
		func(c *fiber.Ctx) error {
			id, err := parseIDParam(c)
			if err != nil {
				return err
			}

			product, err := svc.Delete(c.UserContext(), MustUserID(c), id)
			if err != nil {
				return err
			}
			return c.JSON(product)
		})...)
}
