package enrollmentRoutes

import (
	enrollmentController "readiq/controllers/enrollment"
	courseValidator "readiq/validators/course"
	enrollmentValidator "readiq/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(app *fiber.App, ctrl *enrollmentController.Controller, protected fiber.Handler) {
	app.Post("/courses/:id/enroll-free", courseValidator.CourseID(), protected, ctrl.EnrollFree)
	app.Post("/enrollments/check", enrollmentValidator.CheckEnrollments(), protected, ctrl.CheckEnrollments)
	app.Get("/user/enrollments", protected, ctrl.GetMyEnrollments)
}
