package models

import "gorm.io/gorm"

// CourseFile is the metadata row for a file stored in object storage.
// Rows are immutable after upload.
type CourseFile struct {
	gorm.Model
	CourseID       uint   `gorm:"index;not null" json:"courseId"`
	Filename       string `gorm:"not null" json:"filename"`
	ObjectKey      string `gorm:"not null" json:"-"`
	Size           int64  `gorm:"default:0" json:"size"`
	ContentType    string `json:"contentType"`
	SortOrder      int    `gorm:"default:0" json:"sortOrder"`
	RelatedVideoID uint   `gorm:"default:0" json:"relatedVideoId,omitempty"`
}
