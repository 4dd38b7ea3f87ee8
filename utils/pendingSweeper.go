package utils

import (
	"log"
	"time"

	"readiq/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// PendingEnrollmentTTL is how long a payment-initiated enrollment may stay
// PENDING before the sweeper marks it abandoned.
const PendingEnrollmentTTL = 24 * time.Hour

// StartPendingSweeper schedules the hourly job that abandons stale pending
// enrollments. Abandoned rows are reused by the next payment initiation for
// the same (user, course) pair.
func StartPendingSweeper(db *gorm.DB) *cron.Cron {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		SweepPendingEnrollments(db)
	})

	c.Start()
	log.Println("[PENDING-SWEEPER] Pending enrollment sweeper started - runs hourly")
	return c
}

// SweepPendingEnrollments marks pending enrollments older than the TTL as abandoned.
func SweepPendingEnrollments(db *gorm.DB) {
	cutoff := time.Now().Add(-PendingEnrollmentTTL)

	result := db.Model(&models.Enrollment{}).
		Where("status = ? AND updated_at < ?", models.EnrollmentStatusPending, cutoff).
		Update("status", models.EnrollmentStatusAbandoned)

	if result.Error != nil {
		log.Printf("[PENDING-SWEEPER] Error abandoning stale pending enrollments: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[PENDING-SWEEPER] Abandoned %d stale pending enrollments", result.RowsAffected)
	}
}
