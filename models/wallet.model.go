package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet is a per-user stored-value balance. A missing row means a zero
// balance, not an error; the row is created lazily on first use.
// DailySpent resets when DailySpentDate falls before the current day.
type Wallet struct {
	gorm.Model
	UserID         uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Balance        float64   `gorm:"default:0" json:"balance"`
	TotalTopups    float64   `gorm:"default:0" json:"totalTopups"`
	TotalSpent     float64   `gorm:"default:0" json:"totalSpent"`
	DailyLimit     float64   `gorm:"default:0" json:"dailyLimit"` // 0 means no limit
	DailySpent     float64   `gorm:"default:0" json:"dailySpent"`
	DailySpentDate time.Time `json:"dailySpentDate"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
