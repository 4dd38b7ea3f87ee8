package walletController

import (
	"errors"
	"time"

	"readiq/middleware"
	"readiq/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// Controller handles wallet balance reads, purchases and the admin ledger.
type Controller struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Controller {
	return &Controller{DB: db}
}

// GetBalance returns the caller's wallet balance. A user without a wallet row
// simply has a zero balance; that is not an error.
func (ctrl *Controller) GetBalance(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var wallet models.Wallet
	err := ctrl.DB.Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet balance fetched!", fiber.Map{
				"balance":  0,
				"currency": "IQD",
			})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch balance!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet balance fetched!", fiber.Map{
		"balance":  wallet.Balance,
		"currency": "IQD",
	})
}

// GetHistory returns the caller's wallet transaction history
func (ctrl *Controller) GetHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	txnType := c.Query("type")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := ctrl.DB.Model(&models.WalletTransaction{}).Where("user_id = ? AND is_deleted = false", userID)
	if txnType != "" {
		query = query.Where("transaction_type = ?", txnType)
	}

	var total int64
	query.Count(&total)

	var transactions []models.WalletTransaction
	if err := query.Order("transaction_date DESC").Offset(offset).Limit(limit).
		Find(&transactions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet history fetched!", fiber.Map{
		"transactions": transactions,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// Purchase pays for a course from the wallet balance. The enrollment, the
// ledger row and the balance/limit updates happen in one transaction so a
// failure cannot leave a charged wallet without an enrollment.
func (ctrl *Controller) Purchase(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedPurchase").(*struct {
		CourseID uint `json:"courseId" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	err := ctrl.DB.Where("id = ? AND status = ? AND is_approved = true AND is_deleted = false",
		reqData.CourseID, models.CourseStatusPublished).First(&course).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "الدورة غير موجودة", nil)
	}
	if course.IsFree() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "هذه الدورة مجانية ولا تتطلب دفعاً", nil)
	}

	var existing models.Enrollment
	err = ctrl.DB.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, course.ID).
		First(&existing).Error
	if err == nil && existing.GrantsAccess() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "أنت مسجل بالفعل في هذه الدورة", nil)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "حدث خطأ، حاول مرة أخرى", nil)
	}
	hadRow := err == nil

	amount := float64(course.Price)

	txErr := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errInsufficientBalance
			}
			return err
		}

		if wallet.Balance < amount {
			return errInsufficientBalance
		}

		// DailySpent is scoped to the current day.
		today := now.BeginningOfDay()
		if wallet.DailySpentDate.Before(today) {
			wallet.DailySpent = 0
			wallet.DailySpentDate = today
		}
		if wallet.DailyLimit > 0 && wallet.DailySpent+amount > wallet.DailyLimit {
			return errDailyLimitExceeded
		}

		balanceBefore := wallet.Balance
		balanceAfter := balanceBefore - amount

		var tail models.WalletTransaction
		prevKey := ""
		if err := tx.Where("user_id = ?", userID).Order("id DESC").First(&tail).Error; err == nil {
			prevKey = tail.ProtectionKey
		}

		transaction := models.WalletTransaction{
			UserID:          userID,
			WalletID:        wallet.ID,
			TransactionType: models.TransactionTypePurchase,
			Amount:          amount,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    balanceAfter,
			Status:          models.TransactionStatusCompleted,
			Description:     "Course purchase: " + course.Title,
			ReferenceType:   "course",
			ReferenceID:     course.ID,
			ReferenceName:   course.Title,
			TransactionDate: time.Now(),
		}
		transaction.ProtectionKey = transaction.ChainProtectionKey(prevKey)

		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		wallet.Balance = balanceAfter
		wallet.TotalSpent += amount
		wallet.DailySpent += amount
		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}

		if hadRow {
			updates := map[string]interface{}{
				"enrollment_type": models.EnrollmentTypePaid,
				"status":          models.EnrollmentStatusCompleted,
				"payment_method":  models.PaymentMethodWallet,
				"payment_id":      "",
				"order_id":        "",
				"amount":          course.Price,
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
		} else {
			enrollment := models.Enrollment{
				UserID:         userID,
				CourseID:       course.ID,
				EnrollmentType: models.EnrollmentTypePaid,
				Status:         models.EnrollmentStatusCompleted,
				PaymentMethod:  models.PaymentMethodWallet,
				Amount:         course.Price,
			}
			if err := tx.Create(&enrollment).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Course{}).Where("id = ?", course.ID).
			UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + 1")).Error
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, errInsufficientBalance):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "رصيد المحفظة غير كافٍ", nil)
		case errors.Is(txErr, errDailyLimitExceeded):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "تجاوزت حد الإنفاق اليومي", nil)
		case errors.Is(txErr, gorm.ErrDuplicatedKey):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "أنت مسجل بالفعل في هذه الدورة", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "فشلت عملية الشراء", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "تم شراء الدورة بنجاح", fiber.Map{
		"courseId": course.ID,
		"amount":   amount,
	})
}

var (
	errInsufficientBalance = errors.New("insufficient balance")
	errDailyLimitExceeded  = errors.New("daily limit exceeded")
)
