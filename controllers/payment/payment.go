package paymentController

import (
	"errors"
	"log"

	"readiq/gateways"
	"readiq/models"
	"readiq/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AreebaGateway is the slice of the Areeba client the controller needs;
// tests substitute a stub.
type AreebaGateway interface {
	CreateSession(orderID string, amount uint, description string) (*gateways.CheckoutSession, error)
	VerifySignature(body []byte, signature string) bool
}

// ZainCashGateway is the slice of the ZainCash client the controller needs.
type ZainCashGateway interface {
	CreateTransaction(orderID string, amount uint, serviceType string) (*gateways.CheckoutSession, error)
	ParseCallbackToken(token string) (*gateways.ZainCashResult, error)
}

// Controller runs the paid-enrollment flow for both gateways.
type Controller struct {
	DB       *gorm.DB
	Areeba   AreebaGateway
	ZainCash ZainCashGateway
	Mailer   *utils.Mailer
	BaseURL  string
}

func New(db *gorm.DB, areeba AreebaGateway, zaincash ZainCashGateway, mailer *utils.Mailer, baseURL string) *Controller {
	return &Controller{DB: db, Areeba: areeba, ZainCash: zaincash, Mailer: mailer, BaseURL: baseURL}
}

// initRequest is the validated body shared by both init endpoints.
type initRequest = struct {
	CourseID uint `json:"courseId" validate:"required"`
	Amount   uint `json:"amount" validate:"required,gt=0"`
}

type sessionFunc func(orderID string, amount uint, description string) (*gateways.CheckoutSession, error)

// initiate runs the gateway-independent part of payment initiation. Both
// gateways apply the same duplicate rule: an enrollment that already grants
// access blocks, a stale pending or abandoned row is reused in place, so a
// (user, course) pair can never accumulate duplicate rows.
func (ctrl *Controller) initiate(c *fiber.Ctx, method, orderPrefix string, createSession sessionFunc) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return fiberError(c, fiber.StatusUnauthorized, "الرجاء تسجيل الدخول أولاً")
	}

	reqData, ok := c.Locals("validatedPaymentInit").(*initRequest)
	if !ok {
		return fiberError(c, fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
	}

	var course models.Course
	err := ctrl.DB.Where("id = ? AND status = ? AND is_approved = true AND is_deleted = false",
		reqData.CourseID, models.CourseStatusPublished).First(&course).Error
	if err != nil {
		return fiberError(c, fiber.StatusNotFound, "الدورة غير موجودة")
	}

	if course.IsFree() {
		return fiberError(c, fiber.StatusBadRequest, "هذه الدورة مجانية ولا تتطلب دفعاً")
	}
	// Never trust the client-submitted amount.
	if reqData.Amount != course.Price {
		return fiberError(c, fiber.StatusBadRequest, "المبلغ غير مطابق لسعر الدورة")
	}

	var existing models.Enrollment
	err = ctrl.DB.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, course.ID).
		First(&existing).Error
	if err == nil && existing.GrantsAccess() {
		return fiberError(c, fiber.StatusBadRequest, "أنت مسجل بالفعل في هذه الدورة")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fiberError(c, fiber.StatusInternalServerError, "حدث خطأ، حاول مرة أخرى")
	}

	orderID := utils.BuildOrderID(orderPrefix, course.ID, userID)

	session, gwErr := createSession(orderID, course.Price, course.Title)
	if gwErr != nil {
		log.Printf("Payment init via %s failed for order %s: %v", method, orderID, gwErr)
		return fiberError(c, fiber.StatusBadGateway, "تعذر الاتصال ببوابة الدفع، حاول مرة أخرى")
	}

	if err == nil {
		// Supersede the stale attempt in place: new order, new session id.
		updates := map[string]interface{}{
			"enrollment_type": models.EnrollmentTypePaid,
			"status":          models.EnrollmentStatusPending,
			"payment_method":  method,
			"payment_id":      session.SessionID,
			"order_id":        orderID,
			"amount":          course.Price,
		}
		if err := ctrl.DB.Model(&existing).Updates(updates).Error; err != nil {
			return fiberError(c, fiber.StatusInternalServerError, "فشل إنشاء طلب الدفع")
		}
	} else {
		enrollment := models.Enrollment{
			UserID:         userID,
			CourseID:       course.ID,
			EnrollmentType: models.EnrollmentTypePaid,
			Status:         models.EnrollmentStatusPending,
			PaymentMethod:  method,
			PaymentID:      session.SessionID,
			OrderID:        orderID,
			Amount:         course.Price,
		}
		if err := ctrl.DB.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiberError(c, fiber.StatusConflict, "يوجد طلب دفع قيد المعالجة، حاول مرة أخرى")
			}
			return fiberError(c, fiber.StatusInternalServerError, "فشل إنشاء طلب الدفع")
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"redirectUrl": session.RedirectURL,
	})
}

// completeByOrderID promotes a pending enrollment to completed inside one
// transaction, bumping the course enrollment count. Idempotent on the order
// id: a repeated delivery for a completed row is a no-op.
func (ctrl *Controller) completeByOrderID(orderID, transactionID string) error {
	return ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := tx.Where("order_id = ? AND is_deleted = false", orderID).First(&enrollment).Error; err != nil {
			return err
		}

		if enrollment.Status == models.EnrollmentStatusCompleted {
			return nil
		}

		updates := map[string]interface{}{
			"status": models.EnrollmentStatusCompleted,
		}
		if transactionID != "" {
			updates["payment_id"] = transactionID
		}
		if err := tx.Model(&enrollment).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Course{}).Where("id = ?", enrollment.CourseID).
			UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + 1")).Error; err != nil {
			return err
		}

		ctrl.notifyEnrollment(&enrollment)
		return nil
	})
}

// abandonByOrderID marks a pending enrollment abandoned after a failed or
// cancelled payment. Completed rows are never downgraded.
func (ctrl *Controller) abandonByOrderID(orderID string) error {
	return ctrl.DB.Model(&models.Enrollment{}).
		Where("order_id = ? AND status = ? AND is_deleted = false", orderID, models.EnrollmentStatusPending).
		Update("status", models.EnrollmentStatusAbandoned).Error
}

func (ctrl *Controller) notifyEnrollment(enrollment *models.Enrollment) {
	if ctrl.Mailer == nil {
		return
	}

	var user models.User
	if err := ctrl.DB.Where("id = ?", enrollment.UserID).First(&user).Error; err != nil {
		return
	}
	var course models.Course
	if err := ctrl.DB.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
		return
	}
	ctrl.Mailer.SendEnrollmentConfirmation(user.Email, user.Name, course.Title)
}

func fiberError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
