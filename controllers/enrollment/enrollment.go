package enrollmentController

import (
	"errors"

	"readiq/middleware"
	"readiq/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Controller handles free enrollment, access checks and enrollment listings.
type Controller struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Controller {
	return &Controller{DB: db}
}

// EnrollFree enrolls the caller in a free course. Idempotent: an enrollment
// that already grants access is a success no-op, and a duplicate-key error
// from a concurrent insert is treated the same way, so two racing calls end
// with exactly one access-granting row.
func (ctrl *Controller) EnrollFree(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "الدورة غير موجودة", nil)
	}

	if !course.IsFree() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "هذه الدورة ليست مجانية", nil)
	}

	var existing models.Enrollment
	err := ctrl.DB.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, course.ID).
		First(&existing).Error
	if err == nil {
		if existing.GrantsAccess() {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "أنت مسجل بالفعل في هذه الدورة", existing)
		}
		// A stale pending/abandoned payment attempt for a now-free course:
		// promote it instead of inserting a second row.
		updates := map[string]interface{}{
			"enrollment_type": models.EnrollmentTypeFree,
			"status":          models.EnrollmentStatusCompleted,
		}
		if err := ctrl.DB.Model(&existing).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "فشل التسجيل في الدورة", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "تم التسجيل في الدورة بنجاح", existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "فشل التسجيل في الدورة", nil)
	}

	enrollment := models.Enrollment{
		UserID:         userID,
		CourseID:       course.ID,
		EnrollmentType: models.EnrollmentTypeFree,
		Status:         models.EnrollmentStatusCompleted,
	}

	txErr := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Course{}).Where("id = ?", course.ID).
			UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + 1")).Error
	})
	if txErr != nil {
		// The unique (user_id, course_id) index caught a concurrent enroll;
		// the end state is identical either way.
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "أنت مسجل بالفعل في هذه الدورة", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "فشل التسجيل في الدورة", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "تم التسجيل في الدورة بنجاح", enrollment)
}

// CheckEnrollments maps each requested course id to whether the caller's
// enrollment grants access. Missing rows map to false; a database failure
// fails the whole batch with a generic message.
func (ctrl *Controller) CheckEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCheck").(*struct {
		CourseIDs []uint `json:"courseIds" validate:"required,min=1,max=100"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result := make(map[uint]bool, len(reqData.CourseIDs))
	for _, id := range reqData.CourseIDs {
		result[id] = false
	}

	var enrollments []models.Enrollment
	err := ctrl.DB.
		Where("user_id = ? AND course_id IN ? AND is_deleted = false", userID, reqData.CourseIDs).
		Find(&enrollments).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check enrollments!", nil)
	}

	for i := range enrollments {
		if enrollments[i].GrantsAccess() {
			result[enrollments[i].CourseID] = true
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments checked successfully!", fiber.Map{
		"enrollments": result,
	})
}

// GetMyEnrollments lists the caller's enrollments with their courses.
func (ctrl *Controller) GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := ctrl.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND is_deleted = false", userID)

	var total int64
	query.Count(&total)

	var enrollments []models.Enrollment
	if err := query.Preload("Course").Offset(offset).Limit(limit).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
