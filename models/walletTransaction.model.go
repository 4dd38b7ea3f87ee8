package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TransactionType defines the type of wallet transaction
type TransactionType string

const (
	TransactionTypeTopup       TransactionType = "TOPUP"
	TransactionTypePurchase    TransactionType = "PURCHASE"
	TransactionTypeRefund      TransactionType = "REFUND"
	TransactionTypeAdminCredit TransactionType = "ADMIN_CREDIT"
	TransactionTypeAdminDebit  TransactionType = "ADMIN_DEBIT"
)

// TransactionStatus defines the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// WalletTransaction is an append-only ledger entry. Every row must satisfy
// BalanceAfter == BalanceBefore +/- Amount, and Wallet.Balance equals the
// BalanceAfter of the ledger tail. ProtectionKey chains each row to its
// predecessor so tampering with history is detectable.
type WalletTransaction struct {
	gorm.Model
	UserID          uint              `gorm:"not null;index" json:"userId"`
	WalletID        uint              `gorm:"not null;index" json:"walletId"`
	TransactionType TransactionType   `gorm:"type:varchar(50);not null" json:"transactionType"`
	Amount          float64           `gorm:"not null" json:"amount"`
	BalanceBefore   float64           `gorm:"not null" json:"balanceBefore"`
	BalanceAfter    float64           `gorm:"not null" json:"balanceAfter"`
	Status          TransactionStatus `gorm:"type:varchar(20);default:'COMPLETED'" json:"status"`
	Description     string            `gorm:"type:text" json:"description"`

	// Payment gateway details (for topups)
	PaymentGateway string `gorm:"type:varchar(50)" json:"paymentGateway,omitempty"`
	PaymentOrderID string `gorm:"type:varchar(100)" json:"paymentOrderId,omitempty"`
	PaymentID      string `gorm:"type:varchar(100);index" json:"paymentId,omitempty"`

	// Reference details (for course purchases)
	ReferenceType string `gorm:"type:varchar(50)" json:"referenceType,omitempty"`
	ReferenceID   uint   `gorm:"default:0" json:"referenceId,omitempty"`
	ReferenceName string `gorm:"type:varchar(255)" json:"referenceName,omitempty"`

	// Admin details (for manual credits/debits)
	AdminID uint   `gorm:"default:0" json:"adminId,omitempty"`
	Reason  string `gorm:"type:text" json:"reason,omitempty"`

	ProtectionKey   string    `gorm:"type:varchar(64)" json:"-"`
	TransactionDate time.Time `gorm:"not null" json:"transactionDate"`
	IsDeleted       bool      `gorm:"default:false" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// ChainProtectionKey derives this row's protection key from the previous
// ledger tail. An empty prev seeds the chain.
func (t *WalletTransaction) ChainProtectionKey(prev string) string {
	payload := fmt.Sprintf("%s|%d|%s|%.2f|%.2f|%.2f|%d",
		prev, t.UserID, t.TransactionType, t.Amount, t.BalanceBefore, t.BalanceAfter,
		t.TransactionDate.UnixMilli())
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
