package walletRoutes

import (
	walletController "readiq/controllers/wallet"
	walletValidator "readiq/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App, ctrl *walletController.Controller, protected, adminOnly fiber.Handler) {
	walletGroup := app.Group("/wallet")

	// User routes
	walletGroup.Get("/balance", protected, ctrl.GetBalance)
	walletGroup.Get("/history", protected, ctrl.GetHistory)
	walletGroup.Post("/purchase", walletValidator.Purchase(), protected, ctrl.Purchase)

	// Admin routes
	adminGroup := walletGroup.Group("/admin", protected, adminOnly)
	adminGroup.Post("/credit", walletValidator.AdminAdjust(), ctrl.AdminCredit)
	adminGroup.Post("/debit", walletValidator.AdminAdjust(), ctrl.AdminDebit)
	adminGroup.Get("/user-balance", ctrl.GetUserBalance)
}
