package paymentValidator

import (
	"readiq/middleware"
	"readiq/utils"

	"github.com/gofiber/fiber/v2"
)

func InitiatePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID uint `json:"courseId" validate:"required"`
			Amount   uint `json:"amount" validate:"required,gt=0"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := utils.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, utils.FormatValidationErrors(err))
		}

		c.Locals("validatedPaymentInit", reqData)
		return c.Next()
	}
}
