package paymentController

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"readiq/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ZainCashInit starts a ZainCash payment for a course.
func (ctrl *Controller) ZainCashInit(c *fiber.Ctx) error {
	return ctrl.initiate(c, models.PaymentMethodZainCash, "zc", ctrl.ZainCash.CreateTransaction)
}

// ZainCashRedirect is where ZainCash sends the customer back after payment.
// The result is a JWT signed with the merchant secret; nothing in the query
// string is trusted until that token verifies. The browser ends up on the
// course page either way, with the outcome in the query string.
func (ctrl *Controller) ZainCashRedirect(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		return c.Redirect(ctrl.BaseURL+"/courses?payment=failed", fiber.StatusFound)
	}

	result, err := ctrl.ZainCash.ParseCallbackToken(tokenString)
	if err != nil {
		log.Printf("ZainCash redirect: invalid callback token: %v", err)
		return c.Redirect(ctrl.BaseURL+"/courses?payment=failed", fiber.StatusFound)
	}

	coursePath := ctrl.coursePathFromOrder(result.OrderID)

	if !strings.EqualFold(result.Status, "success") && !strings.EqualFold(result.Status, "completed") {
		if err := ctrl.abandonByOrderID(result.OrderID); err != nil {
			log.Printf("ZainCash redirect: failed to abandon order %s: %v", result.OrderID, err)
		}
		return c.Redirect(ctrl.BaseURL+coursePath+"?payment=failed", fiber.StatusFound)
	}

	if err := ctrl.completeByOrderID(result.OrderID, result.TransactionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect(ctrl.BaseURL+"/courses?payment=failed", fiber.StatusFound)
		}
		log.Printf("ZainCash redirect: failed to complete order %s: %v", result.OrderID, err)
		return c.Redirect(ctrl.BaseURL+coursePath+"?payment=failed", fiber.StatusFound)
	}

	return c.Redirect(ctrl.BaseURL+coursePath+"?payment=success", fiber.StatusFound)
}

// coursePathFromOrder resolves the course page for a known order id,
// defaulting to the course listing.
func (ctrl *Controller) coursePathFromOrder(orderID string) string {
	var enrollment models.Enrollment
	if err := ctrl.DB.Where("order_id = ?", orderID).First(&enrollment).Error; err != nil {
		return "/courses"
	}
	return "/courses/" + strconv.FormatUint(uint64(enrollment.CourseID), 10)
}
