package courseController

import (
	"readiq/middleware"
	"readiq/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ApproveCourse marks a course approved and published. Admin-gated at the route.
func (ctrl *Controller) ApproveCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	updates := map[string]interface{}{
		"is_approved":      true,
		"is_rejected":      false,
		"rejection_reason": "",
		"status":           models.CourseStatusPublished,
	}
	if err := ctrl.DB.Model(&course).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course approved successfully!", nil)
}

// RejectCourse marks a course rejected with a reason and pulls it back to draft.
func (ctrl *Controller) RejectCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData, ok := c.Locals("validatedRejection").(*struct {
		Reason string `json:"reason" validate:"required,min=3"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	updates := map[string]interface{}{
		"is_approved":      false,
		"is_rejected":      true,
		"rejection_reason": reqData.Reason,
		"status":           models.CourseStatusDraft,
	}
	if err := ctrl.DB.Model(&course).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course rejected!", nil)
}

// SyncEnrollmentCounts recounts access-granting enrollments for every course
// in one transaction, so a partial failure never leaves mixed counts.
func (ctrl *Controller) SyncEnrollmentCounts(c *fiber.Ctx) error {
	var synced int64

	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var courses []models.Course
		if err := tx.Where("is_deleted = false").Find(&courses).Error; err != nil {
			return err
		}

		for i := range courses {
			var count int64
			if err := tx.Model(&models.Enrollment{}).
				Where("course_id = ? AND is_deleted = false", courses[i].ID).
				Where("enrollment_type = ? OR status = ?", models.EnrollmentTypeFree, models.EnrollmentStatusCompleted).
				Count(&count).Error; err != nil {
				return err
			}

			if courses[i].EnrollmentCount != count {
				if err := tx.Model(&courses[i]).Update("enrollment_count", count).Error; err != nil {
					return err
				}
				synced++
			}
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to sync enrollment counts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment counts synced successfully!", fiber.Map{
		"updatedCourses": synced,
	})
}
