package utils

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"readiq/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestBuildOrderID(t *testing.T) {
	orderID := BuildOrderID("zc", 42, 7)

	parts := strings.Split(orderID, "_")
	require.Len(t, parts, 4)
	assert.Equal(t, "zc", parts[0])
	assert.Equal(t, "42", parts[1])
	assert.Equal(t, "7", parts[2])

	// Retried initiations get distinguishable ids.
	time.Sleep(2 * time.Millisecond)
	assert.NotEqual(t, orderID, BuildOrderID("zc", 42, 7))
}

func TestSanitizeRedirectPath(t *testing.T) {
	cases := map[string]string{
		"":                        "/",
		"/courses/7":              "/courses/7",
		"/":                       "/",
		"//evil.example.com":      "/",
		"https://evil.example.com": "/",
		"courses/7":               "/",
	}

	for input, want := range cases {
		assert.Equal(t, want, SanitizeRedirectPath(input), "input %q", input)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	input := struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required,min=2"`
	}{Email: "not-an-email", Name: ""}

	err := Validate.Struct(input)
	require.Error(t, err)

	errors := FormatValidationErrors(err)
	assert.Equal(t, "Invalid email format!", errors["email"])
	assert.Contains(t, errors["name"], "required")
}

func TestSweepPendingEnrollments(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())),
		&gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Enrollment{}))

	stale := models.Enrollment{UserID: 1, CourseID: 1,
		EnrollmentType: models.EnrollmentTypePaid, Status: models.EnrollmentStatusPending}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Model(&stale).
		UpdateColumn("updated_at", time.Now().Add(-PendingEnrollmentTTL-time.Hour)).Error)

	fresh := models.Enrollment{UserID: 1, CourseID: 2,
		EnrollmentType: models.EnrollmentTypePaid, Status: models.EnrollmentStatusPending}
	require.NoError(t, db.Create(&fresh).Error)

	completed := models.Enrollment{UserID: 1, CourseID: 3,
		EnrollmentType: models.EnrollmentTypePaid, Status: models.EnrollmentStatusCompleted}
	require.NoError(t, db.Create(&completed).Error)
	require.NoError(t, db.Model(&completed).
		UpdateColumn("updated_at", time.Now().Add(-PendingEnrollmentTTL-time.Hour)).Error)

	SweepPendingEnrollments(db)

	var got models.Enrollment
	require.NoError(t, db.First(&got, stale.ID).Error)
	assert.Equal(t, models.EnrollmentStatusAbandoned, got.Status)

	got = models.Enrollment{}
	require.NoError(t, db.First(&got, fresh.ID).Error)
	assert.Equal(t, models.EnrollmentStatusPending, got.Status)

	got = models.Enrollment{}
	require.NoError(t, db.First(&got, completed.ID).Error)
	assert.Equal(t, models.EnrollmentStatusCompleted, got.Status)
}
