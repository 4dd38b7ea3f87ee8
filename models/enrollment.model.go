package models

import "gorm.io/gorm"

const (
	EnrollmentStatusPending   = "PENDING"
	EnrollmentStatusCompleted = "COMPLETED"
	EnrollmentStatusAbandoned = "ABANDONED"

	EnrollmentTypeFree = "FREE"
	EnrollmentTypePaid = "PAID"

	PaymentMethodAreeba   = "areeba"
	PaymentMethodZainCash = "zaincash"
	PaymentMethodWallet   = "wallet"
)

// Enrollment links a user to a course. The unique (user_id, course_id) index
// is the concurrency guard: a re-initiated payment reuses the existing row
// instead of minting a duplicate, and two racing free enrollments collapse
// into one. At most one row per pair can ever reach COMPLETED.
type Enrollment struct {
	gorm.Model
	UserID         uint   `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"userId"`
	CourseID       uint   `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"courseId"`
	EnrollmentType string `gorm:"not null" json:"enrollmentType"`   // FREE, PAID
	Status         string `gorm:"not null;index" json:"status"`     // PENDING, COMPLETED, ABANDONED
	PaymentMethod  string `json:"paymentMethod,omitempty"`          // areeba, zaincash, wallet
	PaymentID      string `gorm:"index" json:"paymentId,omitempty"` // gateway transaction/session id, webhook match key
	OrderID        string `gorm:"index" json:"orderId,omitempty"`
	Amount         uint   `gorm:"default:0" json:"amount"`
	IsDeleted      bool   `gorm:"default:false" json:"-"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// GrantsAccess reports whether this enrollment lets the user into the course:
// free enrollments and completed paid ones do, pending and abandoned do not.
func (e *Enrollment) GrantsAccess() bool {
	return e.EnrollmentType == EnrollmentTypeFree || e.Status == EnrollmentStatusCompleted
}
