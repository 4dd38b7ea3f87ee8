package authRoutes

import (
	authController "readiq/controllers/auth"
	authValidator "readiq/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ctrl *authController.Controller) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidator.Signup(), ctrl.Signup)
	authGroup.Post("/login", authValidator.Login(), ctrl.Login)

	app.Get("/api/refresh-token", ctrl.RefreshToken)
}
