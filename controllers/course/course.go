package courseController

import (
	"context"
	"io"
	"time"

	"readiq/middleware"
	"readiq/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Uploader is the slice of the storage client the course controller needs.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	ObjectURL(key string) string
}

// Controller serves public course reads plus instructor and admin writes.
type Controller struct {
	DB      *gorm.DB
	Storage Uploader
	BaseURL string
}

func New(db *gorm.DB, storage Uploader, baseURL string) *Controller {
	return &Controller{DB: db, Storage: storage, BaseURL: baseURL}
}

// CourseResponse is the single serialization boundary for course documents:
// every read path goes through it, so timestamps leave the API in exactly one
// format (RFC3339).
type CourseResponse struct {
	ID              uint                 `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Category        string               `json:"category"`
	Level           string               `json:"level"`
	Language        string               `json:"language"`
	Price           uint                 `json:"price"`
	Status          string               `json:"status"`
	IsApproved      bool                 `json:"isApproved"`
	IsRejected      bool                 `json:"isRejected"`
	EnrollmentCount int64                `json:"enrollmentCount"`
	ThumbnailURL    string               `json:"thumbnailUrl"`
	CreatedBy       uint                 `json:"createdBy"`
	CreatedAt       string               `json:"createdAt"`
	UpdatedAt       string               `json:"updatedAt"`
	Files           []CourseFileResponse `json:"files,omitempty"`
}

type CourseFileResponse struct {
	ID          uint   `json:"id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	SortOrder   int    `json:"sortOrder"`
	URL         string `json:"url,omitempty"`
	UploadedAt  string `json:"uploadedAt"`
}

func (ctrl *Controller) toCourseResponse(course *models.Course) CourseResponse {
	resp := CourseResponse{
		ID:              course.ID,
		Title:           course.Title,
		Description:     course.Description,
		Category:        course.Category,
		Level:           course.Level,
		Language:        course.Language,
		Price:           course.Price,
		Status:          course.Status,
		IsApproved:      course.IsApproved,
		IsRejected:      course.IsRejected,
		EnrollmentCount: course.EnrollmentCount,
		ThumbnailURL:    course.ThumbnailURL,
		CreatedBy:       course.CreatedBy,
		CreatedAt:       course.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       course.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, f := range course.Files {
		fileResp := CourseFileResponse{
			ID:          f.ID,
			Filename:    f.Filename,
			Size:        f.Size,
			ContentType: f.ContentType,
			SortOrder:   f.SortOrder,
			UploadedAt:  f.CreatedAt.UTC().Format(time.RFC3339),
		}
		if ctrl.Storage != nil {
			fileResp.URL = ctrl.Storage.ObjectURL(f.ObjectKey)
		}
		resp.Files = append(resp.Files, fileResp)
	}
	return resp
}

// ListCourses returns published, approved, not-deleted courses with optional
// category/level/language filters and pagination. Public, no auth required.
func (ctrl *Controller) ListCourses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := ctrl.DB.Model(&models.Course{}).
		Where("status = ? AND is_approved = true AND is_deleted = false", models.CourseStatusPublished)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("language = ?", language)
	}
	if c.Query("free") == "true" {
		query = query.Where("price = 0")
	}

	var total int64
	query.Count(&total)

	var courses []models.Course
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	responses := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		responses = append(responses, ctrl.toCourseResponse(&courses[i]))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": responses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseDetails returns one publicly visible course with its files.
func (ctrl *Controller) GetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := ctrl.DB.Preload("Files", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order asc")
	}).Where("id = ? AND status = ? AND is_approved = true AND is_deleted = false",
		courseID, models.CourseStatusPublished).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", ctrl.toCourseResponse(&course))
}
