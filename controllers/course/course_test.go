package courseController

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"readiq/database"
	"readiq/middleware"
	"readiq/models"
	courseValidator "readiq/validators/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTKey = "test-secret"

type stubUploader struct {
	uploads []string
}

func (s *stubUploader) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	s.uploads = append(s.uploads, key)
	return nil
}

func (s *stubUploader) ObjectURL(key string) string {
	return "https://cdn.example.com/" + key
}

func setupTest(t *testing.T) (*fiber.App, *gorm.DB, *stubUploader) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())),
		&gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	uploader := &stubUploader{}
	ctrl := New(db, uploader, "https://readiq.example.com")
	protected := middleware.Protected(testJWTKey)
	adminOnly := middleware.AdminOnly(db)

	app := fiber.New()
	app.Get("/courses/list", ctrl.ListCourses)
	app.Get("/courses/:id", courseValidator.CourseID(), ctrl.GetCourseDetails)
	app.Get("/sitemap.xml", ctrl.Sitemap)

	app.Post("/courses/", courseValidator.CreateCourse(), protected, ctrl.CreateCourse)
	app.Put("/courses/:id", courseValidator.CourseID(), courseValidator.UpdateCourse(), protected, ctrl.UpdateCourse)
	app.Delete("/courses/:id", courseValidator.CourseID(), protected, ctrl.DeleteCourse)
	app.Post("/courses/:id/files", courseValidator.CourseID(), protected, ctrl.UploadCourseFile)

	adminGroup := app.Group("/api/admin", protected, adminOnly)
	adminGroup.Post("/courses/:id/approve", courseValidator.CourseID(), ctrl.ApproveCourse)
	adminGroup.Post("/courses/:id/reject", courseValidator.CourseID(), courseValidator.RejectCourse(), ctrl.RejectCourse)
	adminGroup.Post("/sync-enrollments", ctrl.SyncEnrollmentCounts)

	return app, db, uploader
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) (*models.User, string) {
	t.Helper()

	user := models.User{Name: "Test User", Email: email, Password: "hashed", Role: role}
	require.NoError(t, db.Create(&user).Error)

	token, err := middleware.GenerateAccessToken(testJWTKey, &user)
	require.NoError(t, err)
	return &user, token
}

func createCourse(t *testing.T, db *gorm.DB, course models.Course) *models.Course {
	t.Helper()
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func publishedCourse(owner uint, price uint) models.Course {
	return models.Course{
		Title:       "Web Security",
		Description: "OWASP for practitioners",
		Category:    "security",
		Price:       price,
		Status:      models.CourseStatusPublished,
		IsApproved:  true,
		CreatedBy:   owner,
	}
}

func jsonRequest(method, target string, payload interface{}, token string) *http.Request {
	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestListCoursesOnlyPubliclyVisible(t *testing.T) {
	app, db, _ := setupTest(t)

	createCourse(t, db, publishedCourse(1, 0))
	createCourse(t, db, models.Course{Title: "Draft Course", Description: "wip", Category: "misc",
		Status: models.CourseStatusDraft, CreatedBy: 1})
	createCourse(t, db, models.Course{Title: "Unapproved", Description: "pending review", Category: "misc",
		Status: models.CourseStatusPublished, IsApproved: false, CreatedBy: 1})
	createCourse(t, db, models.Course{Title: "Deleted", Description: "gone", Category: "misc",
		Status: models.CourseStatusPublished, IsApproved: true, IsDeleted: true, CreatedBy: 1})

	resp, err := app.Test(httptest.NewRequest("GET", "/courses/list", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Len(t, data["courses"], 1)
	assert.EqualValues(t, 1, data["pagination"].(map[string]interface{})["total"])
}

func TestListCoursesFilters(t *testing.T) {
	app, db, _ := setupTest(t)

	free := publishedCourse(1, 0)
	free.Category = "programming"
	createCourse(t, db, free)

	paid := publishedCourse(1, 25000)
	paid.Category = "design"
	createCourse(t, db, paid)

	resp, err := app.Test(httptest.NewRequest("GET", "/courses/list?free=true", nil), -1)
	require.NoError(t, err)
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Len(t, data["courses"], 1)

	resp, err = app.Test(httptest.NewRequest("GET", "/courses/list?category=design", nil), -1)
	require.NoError(t, err)
	data = decodeBody(t, resp)["data"].(map[string]interface{})
	courses := data["courses"].([]interface{})
	require.Len(t, courses, 1)
	assert.Equal(t, "design", courses[0].(map[string]interface{})["category"])
}

func TestCourseTimestampsAreRFC3339(t *testing.T) {
	app, db, _ := setupTest(t)
	course := createCourse(t, db, publishedCourse(1, 0))

	resp, err := app.Test(httptest.NewRequest("GET", fmt.Sprintf("/courses/%d", course.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	for _, field := range []string{"createdAt", "updatedAt"} {
		value, ok := data[field].(string)
		require.True(t, ok, field)
		_, err := time.Parse(time.RFC3339, value)
		assert.NoError(t, err, field)
	}
}

func TestGetCourseDetailsHidesDrafts(t *testing.T) {
	app, db, _ := setupTest(t)
	course := createCourse(t, db, models.Course{Title: "Draft", Description: "wip", Category: "misc",
		Status: models.CourseStatusDraft, CreatedBy: 1})

	resp, err := app.Test(httptest.NewRequest("GET", fmt.Sprintf("/courses/%d", course.ID), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateCourseRequiresInstructorRole(t *testing.T) {
	app, db, _ := setupTest(t)
	_, token := createTestUser(t, db, "student@example.com", models.RoleUser)

	payload := fiber.Map{"title": "New Course", "description": "some description", "category": "misc"}
	resp, err := app.Test(jsonRequest("POST", "/courses/", payload, token), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCreateCourseStartsAsUnapprovedDraft(t *testing.T) {
	app, db, _ := setupTest(t)
	instructor, token := createTestUser(t, db, "teacher@example.com", models.RoleInstructor)

	payload := fiber.Map{"title": "New Course", "description": "some description", "category": "misc", "price": 10000}
	resp, err := app.Test(jsonRequest("POST", "/courses/", payload, token), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var course models.Course
	require.NoError(t, db.Where("created_by = ?", instructor.ID).First(&course).Error)
	assert.Equal(t, models.CourseStatusDraft, course.Status)
	assert.False(t, course.IsApproved)
	assert.Equal(t, "ar", course.Language)
}

func TestUpdateCourseOwnershipCheck(t *testing.T) {
	app, db, _ := setupTest(t)
	owner, _ := createTestUser(t, db, "owner@example.com", models.RoleInstructor)
	_, otherToken := createTestUser(t, db, "other@example.com", models.RoleInstructor)

	course := createCourse(t, db, publishedCourse(owner.ID, 0))

	payload := fiber.Map{"title": "Hijacked Title"}
	resp, err := app.Test(jsonRequest("PUT", fmt.Sprintf("/courses/%d", course.ID), payload, otherToken), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDeleteCourseIsSoft(t *testing.T) {
	app, db, _ := setupTest(t)
	owner, token := createTestUser(t, db, "owner@example.com", models.RoleInstructor)
	course := createCourse(t, db, publishedCourse(owner.ID, 0))

	resp, err := app.Test(jsonRequest("DELETE", fmt.Sprintf("/courses/%d", course.ID), nil, token), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The row survives but is gone from public listings.
	var stored models.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.True(t, stored.IsDeleted)

	resp, err = app.Test(httptest.NewRequest("GET", fmt.Sprintf("/courses/%d", course.ID), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestApproveCoursePublishes(t *testing.T) {
	app, db, _ := setupTest(t)
	_, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	course := createCourse(t, db, models.Course{Title: "Pending", Description: "awaiting review", Category: "misc",
		Status: models.CourseStatusDraft, IsRejected: true, RejectionReason: "needs work", CreatedBy: 1})

	resp, err := app.Test(jsonRequest("POST", fmt.Sprintf("/api/admin/courses/%d/approve", course.ID), nil, adminToken), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.True(t, stored.IsApproved)
	assert.False(t, stored.IsRejected)
	assert.Empty(t, stored.RejectionReason)
	assert.Equal(t, models.CourseStatusPublished, stored.Status)
}

func TestRejectCourseRecordsReason(t *testing.T) {
	app, db, _ := setupTest(t)
	_, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	course := createCourse(t, db, publishedCourse(1, 0))

	payload := fiber.Map{"reason": "thumbnail violates guidelines"}
	resp, err := app.Test(jsonRequest("POST", fmt.Sprintf("/api/admin/courses/%d/reject", course.ID), payload, adminToken), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.False(t, stored.IsApproved)
	assert.True(t, stored.IsRejected)
	assert.Equal(t, "thumbnail violates guidelines", stored.RejectionReason)
	assert.Equal(t, models.CourseStatusDraft, stored.Status)
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	app, db, _ := setupTest(t)
	_, token := createTestUser(t, db, "teacher@example.com", models.RoleInstructor)
	course := createCourse(t, db, publishedCourse(1, 0))

	resp, err := app.Test(jsonRequest("POST", fmt.Sprintf("/api/admin/courses/%d/approve", course.ID), nil, token), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSyncEnrollmentCounts(t *testing.T) {
	app, db, _ := setupTest(t)
	_, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	course := createCourse(t, db, publishedCourse(1, 0))
	require.NoError(t, db.Model(course).Update("enrollment_count", 99).Error)

	require.NoError(t, db.Create(&models.Enrollment{UserID: 10, CourseID: course.ID,
		EnrollmentType: models.EnrollmentTypeFree, Status: models.EnrollmentStatusCompleted}).Error)
	require.NoError(t, db.Create(&models.Enrollment{UserID: 11, CourseID: course.ID,
		EnrollmentType: models.EnrollmentTypePaid, Status: models.EnrollmentStatusCompleted}).Error)
	// Pending paid attempts do not count.
	require.NoError(t, db.Create(&models.Enrollment{UserID: 12, CourseID: course.ID,
		EnrollmentType: models.EnrollmentTypePaid, Status: models.EnrollmentStatusPending}).Error)

	resp, err := app.Test(jsonRequest("POST", "/api/admin/sync-enrollments", nil, adminToken), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["updatedCourses"])

	var stored models.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.EqualValues(t, 2, stored.EnrollmentCount)
}

func TestUploadCourseFile(t *testing.T) {
	app, db, uploader := setupTest(t)
	owner, token := createTestUser(t, db, "owner@example.com", models.RoleInstructor)
	course := createCourse(t, db, publishedCourse(owner.ID, 0))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "lesson-01.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("video bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", fmt.Sprintf("/courses/%d/files", course.ID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.Len(t, uploader.uploads, 1)
	assert.True(t, strings.HasPrefix(uploader.uploads[0], fmt.Sprintf("courses/%d/", course.ID)))
	assert.True(t, strings.HasSuffix(uploader.uploads[0], ".mp4"))

	var file models.CourseFile
	require.NoError(t, db.Where("course_id = ?", course.ID).First(&file).Error)
	assert.Equal(t, "lesson-01.mp4", file.Filename)
	assert.Equal(t, 1, file.SortOrder)
}

func TestSitemapListsStaticAndCoursePages(t *testing.T) {
	app, db, _ := setupTest(t)
	course := createCourse(t, db, publishedCourse(1, 0))
	createCourse(t, db, models.Course{Title: "Draft", Description: "hidden", Category: "misc",
		Status: models.CourseStatusDraft, CreatedBy: 1})

	resp, err := app.Test(httptest.NewRequest("GET", "/sitemap.xml", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)

	assert.Contains(t, body, "<loc>https://readiq.example.com/</loc>")
	assert.Contains(t, body, "<loc>https://readiq.example.com/courses</loc>")
	assert.Contains(t, body, fmt.Sprintf("<loc>https://readiq.example.com/courses/%d</loc>", course.ID))
	assert.Equal(t, 4, strings.Count(body, "<url>"))
}

func TestSitemapDegradesWhenQueryFails(t *testing.T) {
	app, db, _ := setupTest(t)
	require.NoError(t, db.Exec("DROP TABLE courses").Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/sitemap.xml", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(raw), "<url>"))
}
