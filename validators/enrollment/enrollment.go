package enrollmentValidator

import (
	"readiq/middleware"
	"readiq/utils"

	"github.com/gofiber/fiber/v2"
)

func CheckEnrollments() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseIDs []uint `json:"courseIds" validate:"required,min=1,max=100"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := utils.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, utils.FormatValidationErrors(err))
		}

		c.Locals("validatedCheck", reqData)
		return c.Next()
	}
}
