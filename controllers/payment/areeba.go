package paymentController

import (
	"encoding/json"
	"errors"
	"log"

	"readiq/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AreebaInit starts an Areeba hosted-checkout payment for a course.
func (ctrl *Controller) AreebaInit(c *fiber.Ctx) error {
	return ctrl.initiate(c, models.PaymentMethodAreeba, "areeba", ctrl.Areeba.CreateSession)
}

// AreebaWebhook handles the asynchronous completion notification. The raw
// body is authenticated with an HMAC signature header before anything is
// parsed from it. Idempotent per order id.
func (ctrl *Controller) AreebaWebhook(c *fiber.Ctx) error {
	body := c.Body()

	signature := c.Get("X-Notification-Signature")
	if signature == "" || !ctrl.Areeba.VerifySignature(body, signature) {
		return fiberError(c, fiber.StatusUnauthorized, "invalid signature")
	}

	var payload struct {
		Order struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"order"`
		Transaction struct {
			ID string `json:"id"`
		} `json:"transaction"`
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Order.ID == "" {
		return fiberError(c, fiber.StatusBadRequest, "malformed notification")
	}

	if payload.Result != "SUCCESS" {
		if err := ctrl.abandonByOrderID(payload.Order.ID); err != nil {
			log.Printf("Areeba webhook: failed to abandon order %s: %v", payload.Order.ID, err)
			return fiberError(c, fiber.StatusInternalServerError, "processing failed")
		}
		return c.JSON(fiber.Map{"success": true})
	}

	if err := ctrl.completeByOrderID(payload.Order.ID, payload.Transaction.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiberError(c, fiber.StatusNotFound, "unknown order")
		}
		log.Printf("Areeba webhook: failed to complete order %s: %v", payload.Order.ID, err)
		return fiberError(c, fiber.StatusInternalServerError, "processing failed")
	}

	return c.JSON(fiber.Map{"success": true})
}
