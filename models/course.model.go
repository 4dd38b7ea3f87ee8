package models

import "gorm.io/gorm"

const (
	CourseStatusDraft     = "DRAFT"
	CourseStatusPublished = "PUBLISHED"
)

// Course represents a marketplace course. Price is in Iraqi dinar; a price of
// zero marks a free course. A course is publicly visible only when it is
// published, approved and not soft-deleted.
type Course struct {
	gorm.Model
	Title           string `gorm:"not null" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	Category        string `gorm:"index" json:"category"`
	Level           string `json:"level"` // BEGINNER, INTERMEDIATE, ADVANCED
	Language        string `gorm:"default:'ar'" json:"language"`
	Price           uint   `gorm:"default:0" json:"price"`
	Status          string `gorm:"default:'DRAFT'" json:"status"` // DRAFT, PUBLISHED
	IsApproved      bool   `gorm:"default:false" json:"isApproved"`
	IsRejected      bool   `gorm:"default:false" json:"isRejected"`
	RejectionReason string `gorm:"type:text" json:"rejectionReason,omitempty"`
	EnrollmentCount int64  `gorm:"default:0" json:"enrollmentCount"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	CreatedBy       uint   `gorm:"index;not null" json:"createdBy"`
	IsDeleted       bool   `gorm:"default:false" json:"-"`

	Files []CourseFile `gorm:"foreignKey:CourseID" json:"files,omitempty"`
}

// IsFree reports whether the course can be enrolled without payment.
func (c *Course) IsFree() bool {
	return c.Price == 0
}

// IsPubliclyVisible reports whether the course may appear in public listings.
func (c *Course) IsPubliclyVisible() bool {
	return c.Status == CourseStatusPublished && c.IsApproved && !c.IsDeleted
}
