package paymentRoutes

import (
	paymentController "readiq/controllers/payment"
	paymentValidator "readiq/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, ctrl *paymentController.Controller, protected fiber.Handler) {
	paymentGroup := app.Group("/api/payments")

	paymentGroup.Post("/areeba/init", paymentValidator.InitiatePayment(), protected, ctrl.AreebaInit)
	paymentGroup.Post("/zaincash/init", paymentValidator.InitiatePayment(), protected, ctrl.ZainCashInit)

	// Gateway callbacks, authenticated by signature / signed token instead of a session.
	paymentGroup.Post("/areeba/webhook", ctrl.AreebaWebhook)
	paymentGroup.Get("/zaincash/redirect", ctrl.ZainCashRedirect)
}
