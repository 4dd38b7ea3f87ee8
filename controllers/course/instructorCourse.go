package courseController

import (
	"readiq/middleware"
	"readiq/models"
	"readiq/storage"

	"github.com/gofiber/fiber/v2"
)

// loadActor fetches the authenticated user or writes the 401 response.
func (ctrl *Controller) loadActor(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	return &user, nil
}

// CreateCourse creates a draft course owned by the caller. New courses start
// unapproved; an admin must approve before they become publicly visible.
func (ctrl *Controller) CreateCourse(c *fiber.Ctx) error {
	user, err := ctrl.loadActor(c)
	if err != nil {
		return err
	}

	if user.Role != models.RoleInstructor && user.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructor only.", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title        string `json:"title" validate:"required,min=3"`
		Description  string `json:"description" validate:"required,min=5"`
		Category     string `json:"category" validate:"required"`
		Level        string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
		Language     string `json:"language"`
		Price        uint   `json:"price"`
		ThumbnailURL string `json:"thumbnailUrl"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := models.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Category:     reqData.Category,
		Level:        reqData.Level,
		Language:     reqData.Language,
		Price:        reqData.Price,
		ThumbnailURL: reqData.ThumbnailURL,
		Status:       models.CourseStatusDraft,
		CreatedBy:    user.ID,
	}
	if course.Language == "" {
		course.Language = "ar"
	}

	if err := ctrl.DB.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", ctrl.toCourseResponse(&course))
}

// UpdateCourse updates fields the owner (or an admin) provides.
func (ctrl *Controller) UpdateCourse(c *fiber.Ctx) error {
	user, err := ctrl.loadActor(c)
	if err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.CreatedBy != user.ID && !user.IsAdmin() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title        string `json:"title" validate:"omitempty,min=3"`
		Description  string `json:"description" validate:"omitempty,min=5"`
		Category     string `json:"category"`
		Level        string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
		Language     string `json:"language"`
		Price        *uint  `json:"price"`
		ThumbnailURL string `json:"thumbnailUrl"`
		Status       string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.Category != "" {
		course.Category = reqData.Category
	}
	if reqData.Level != "" {
		course.Level = reqData.Level
	}
	if reqData.Language != "" {
		course.Language = reqData.Language
	}
	if reqData.Price != nil {
		course.Price = *reqData.Price
	}
	if reqData.ThumbnailURL != "" {
		course.ThumbnailURL = reqData.ThumbnailURL
	}
	if reqData.Status != "" {
		course.Status = reqData.Status
	}

	if err := ctrl.DB.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", ctrl.toCourseResponse(&course))
}

// DeleteCourse soft-deletes a course. The row stays for enrollment history.
func (ctrl *Controller) DeleteCourse(c *fiber.Ctx) error {
	user, err := ctrl.loadActor(c)
	if err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.CreatedBy != user.ID && !user.IsAdmin() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	if err := ctrl.DB.Model(&course).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// UploadCourseFile stores a multipart file in object storage and records its
// metadata. File rows are immutable after creation.
func (ctrl *Controller) UploadCourseFile(c *fiber.Ctx) error {
	user, err := ctrl.loadActor(c)
	if err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.CreatedBy != user.ID && !user.IsAdmin() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File is required!", nil)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read uploaded file!", nil)
	}
	defer src.Close()

	objectKey := storage.BuildObjectKey(course.ID, fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	if err := ctrl.Storage.Upload(c.Context(), objectKey, src, fileHeader.Size, contentType); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store file!", nil)
	}

	var fileCount int64
	ctrl.DB.Model(&models.CourseFile{}).Where("course_id = ?", course.ID).Count(&fileCount)

	courseFile := models.CourseFile{
		CourseID:    course.ID,
		Filename:    fileHeader.Filename,
		ObjectKey:   objectKey,
		Size:        fileHeader.Size,
		ContentType: contentType,
		SortOrder:   int(fileCount) + 1,
	}
	if err := ctrl.DB.Create(&courseFile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save file record!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "File uploaded successfully!", fiber.Map{
		"id":        courseFile.ID,
		"filename":  courseFile.Filename,
		"size":      courseFile.Size,
		"sortOrder": courseFile.SortOrder,
		"url":       ctrl.Storage.ObjectURL(objectKey),
	})
}
