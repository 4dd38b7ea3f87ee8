package walletValidator

import (
	"readiq/middleware"
	"readiq/utils"

	"github.com/gofiber/fiber/v2"
)

func Purchase() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID uint `json:"courseId" validate:"required"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := utils.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, utils.FormatValidationErrors(err))
		}

		c.Locals("validatedPurchase", reqData)
		return c.Next()
	}
}

func AdminAdjust() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID uint    `json:"userId" validate:"required"`
			Amount float64 `json:"amount" validate:"required,gt=0"`
			Reason string  `json:"reason" validate:"required,min=3"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := utils.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, utils.FormatValidationErrors(err))
		}

		c.Locals("validatedAdjust", reqData)
		return c.Next()
	}
}
