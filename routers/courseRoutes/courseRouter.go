package courseRoutes

import (
	courseController "readiq/controllers/course"
	courseValidator "readiq/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(app *fiber.App, ctrl *courseController.Controller, protected, adminOnly fiber.Handler) {
	courseGroup := app.Group("/courses")

	// Public routes
	courseGroup.Get("/list", ctrl.ListCourses)
	courseGroup.Get("/:id", courseValidator.CourseID(), ctrl.GetCourseDetails)
	app.Get("/sitemap.xml", ctrl.Sitemap)

	// Instructor routes
	courseGroup.Post("/", courseValidator.CreateCourse(), protected, ctrl.CreateCourse)
	courseGroup.Put("/:id", courseValidator.CourseID(), courseValidator.UpdateCourse(), protected, ctrl.UpdateCourse)
	courseGroup.Delete("/:id", courseValidator.CourseID(), protected, ctrl.DeleteCourse)
	courseGroup.Post("/:id/files", courseValidator.CourseID(), protected, ctrl.UploadCourseFile)

	// Admin routes
	adminGroup := app.Group("/api/admin", protected, adminOnly)
	adminGroup.Post("/courses/:id/approve", courseValidator.CourseID(), ctrl.ApproveCourse)
	adminGroup.Post("/courses/:id/reject", courseValidator.CourseID(), courseValidator.RejectCourse(), ctrl.RejectCourse)
	adminGroup.Post("/sync-enrollments", ctrl.SyncEnrollmentCounts)
}
