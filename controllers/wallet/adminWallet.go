package walletController

import (
	"errors"
	"time"

	"readiq/middleware"
	"readiq/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// adjustRequest is the validated body for admin credit/debit operations.
type adjustRequest = struct {
	UserID uint    `json:"userId" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Reason string  `json:"reason" validate:"required,min=3"`
}

// AdminCredit adds balance to a user's wallet, creating the wallet row on
// first use. Admin-gated at the route.
func (ctrl *Controller) AdminCredit(c *fiber.Ctx) error {
	return ctrl.adminAdjust(c, models.TransactionTypeAdminCredit)
}

// AdminDebit deducts balance from a user's wallet. Admin-gated at the route.
func (ctrl *Controller) AdminDebit(c *fiber.Ctx) error {
	return ctrl.adminAdjust(c, models.TransactionTypeAdminDebit)
}

func (ctrl *Controller) adminAdjust(c *fiber.Ctx, txnType models.TransactionType) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAdjust").(*adjustRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var targetUser models.User
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", reqData.UserID).First(&targetUser).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var balanceAfter float64
	txErr := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		err := tx.Where("user_id = ?", reqData.UserID).First(&wallet).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if txnType == models.TransactionTypeAdminDebit {
				return errInsufficientBalance
			}
			wallet = models.Wallet{UserID: reqData.UserID}
			if err := tx.Create(&wallet).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		balanceBefore := wallet.Balance
		if txnType == models.TransactionTypeAdminDebit {
			if wallet.Balance < reqData.Amount {
				return errInsufficientBalance
			}
			balanceAfter = balanceBefore - reqData.Amount
		} else {
			balanceAfter = balanceBefore + reqData.Amount
		}

		var tail models.WalletTransaction
		prevKey := ""
		if err := tx.Where("user_id = ?", reqData.UserID).Order("id DESC").First(&tail).Error; err == nil {
			prevKey = tail.ProtectionKey
		}

		description := "Admin credit: " + reqData.Reason
		if txnType == models.TransactionTypeAdminDebit {
			description = "Admin debit: " + reqData.Reason
		}

		transaction := models.WalletTransaction{
			UserID:          reqData.UserID,
			WalletID:        wallet.ID,
			TransactionType: txnType,
			Amount:          reqData.Amount,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    balanceAfter,
			Status:          models.TransactionStatusCompleted,
			Description:     description,
			AdminID:         adminID,
			Reason:          reqData.Reason,
			TransactionDate: time.Now(),
		}
		transaction.ProtectionKey = transaction.ChainProtectionKey(prevKey)

		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		wallet.Balance = balanceAfter
		if txnType == models.TransactionTypeAdminCredit {
			wallet.TotalTopups += reqData.Amount
		}
		return tx.Save(&wallet).Error
	})
	if txErr != nil {
		if errors.Is(txErr, errInsufficientBalance) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Insufficient balance to deduct!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to adjust balance!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance adjusted successfully!", fiber.Map{
		"userId":     reqData.UserID,
		"amount":     reqData.Amount,
		"newBalance": balanceAfter,
		"reason":     reqData.Reason,
	})
}

// GetUserBalance returns a specific user's balance. Admin-gated at the route.
func (ctrl *Controller) GetUserBalance(c *fiber.Ctx) error {
	targetUserID := c.QueryInt("userId", 0)
	if targetUserID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "userId is required!", nil)
	}

	var targetUser models.User
	if err := ctrl.DB.Where("id = ? AND is_deleted = false", targetUserID).First(&targetUser).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var wallet models.Wallet
	balance := 0.0
	if err := ctrl.DB.Where("user_id = ?", targetUserID).First(&wallet).Error; err == nil {
		balance = wallet.Balance
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User balance fetched!", fiber.Map{
		"userId":   targetUser.ID,
		"name":     targetUser.Name,
		"email":    targetUser.Email,
		"balance":  balance,
		"currency": "IQD",
	})
}
