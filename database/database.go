package database

import (
	"fmt"
	"log"

	"readiq/config"
	"readiq/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the PostgreSQL connection and runs migrations. The returned
// handle is passed explicitly to every controller; there is no package-level
// instance, so tests can substitute an in-memory database.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate performs database migrations for all models.
func Migrate(db *gorm.DB) error {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseFile{},
		&models.Enrollment{},
		&models.Wallet{},
		&models.WalletTransaction{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations completed successfully.")
	return nil
}

// BootstrapAdmin promotes the configured admin email to the ADMIN role once.
// The email is a bootstrap seed, not a standing authorization path: after the
// promotion the role on the user record is the only source of admin authority.
func BootstrapAdmin(db *gorm.DB, adminEmail string) error {
	if adminEmail == "" {
		return nil
	}

	var user models.User
	err := db.Where("email = ? AND is_deleted = false", adminEmail).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("Admin bootstrap: no user with email %s yet, skipping", adminEmail)
			return nil
		}
		return err
	}

	if user.Role == models.RoleAdmin {
		return nil
	}

	if err := db.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
		return err
	}
	log.Printf("Admin bootstrap: promoted %s to ADMIN", adminEmail)
	return nil
}
