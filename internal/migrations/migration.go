package migrations

import (
	"context"
	"errors"
	"log"

	"catering_orders/internal/models"
	"catering_orders/internal/repository"
	"catering_orders/internal/services"

	"gorm.io/gorm"
)

// AdminAccount describes the super admin created on first start.
type AdminAccount struct {
	Username string
	Password string
	Email    string
}

// RunMigrations runs all database migrations and creates default data
func RunMigrations(db *gorm.DB, admin AdminAccount) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	// Create default data
	if err := createDefaultData(db, admin); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData creates the super admin account
func createDefaultData(db *gorm.DB, admin AdminAccount) error {
	ctx := context.Background()
	userService := services.NewUserService(repository.NewUserRepository(db))

	// Check if super admin already exists
	existingUser, err := userService.GetUserByUsername(ctx, admin.Username)
	if err == nil && existingUser != nil {
		log.Println("Super admin user already exists")
		return nil
	}
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		return err
	}

	log.Println("Creating super admin user...")
	superAdmin := &models.User{
		Username: admin.Username,
		Email:    admin.Email,
		Role:     string(models.SuperAdmin),
		IsActive: true,
	}
	if err := userService.CreateUser(ctx, superAdmin, admin.Password); err != nil {
		return err
	}

	log.Printf("Super admin user created successfully (username: %s)", admin.Username)
	return nil
}
