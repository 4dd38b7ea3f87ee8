package courseValidator

import (
	"strconv"

	"readiq/middleware"
	"readiq/utils"

	"github.com/gofiber/fiber/v2"
)

// CourseID parses and validates the :id route parameter.
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
		}

		c.Locals("courseID", id)
		return c.Next()
	}
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string `json:"title" validate:"required,min=3"`
			Description  string `json:"description" validate:"required,min=5"`
			Category     string `json:"category" validate:"required"`
			Level        string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
			Language     string `json:"language"`
			Price        uint   `json:"price"`
			ThumbnailURL string `json:"thumbnailUrl"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := utils.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, utils.FormatValidationErrors(err))
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string `json:"title" validate:"omitempty,min=3"`
			Description  string `json:"description" validate:"omitempty,min=5"`
			Category     string `json:"category"`
			Level        string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
			Language     string `json:"language"`
			Price        *uint  `json:"price"`
			ThumbnailURL string `json:"thumbnailUrl"`
			Status       string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := utils.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, utils.FormatValidationErrors(err))
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

func RejectCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Reason string `json:"reason" validate:"required,min=3"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := utils.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, utils.FormatValidationErrors(err))
		}

		c.Locals("validatedRejection", reqData)
		return c.Next()
	}
}
