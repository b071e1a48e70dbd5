package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"catering_orders/internal/config"
	"catering_orders/internal/database"
	"catering_orders/internal/migrations"
	"catering_orders/internal/models"
	"catering_orders/internal/repository"
	"catering_orders/internal/services"

	"github.com/shopspring/decimal"
)

// Seeds a demo company with employees, a week of menus and a discount code.
func main() {
	fmt.Println("Initializing database...")
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.LogSQL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	err = migrations.RunMigrations(db, migrations.AdminAccount{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	})
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	txManager := database.NewTxManager(db, cfg.DBLockTimeout)

	userService := services.NewUserService(userRepo)
	companyService := services.NewCompanyService(txManager, companyRepo, walletRepo, nil, 0, nil)
	walletService := services.NewWalletService(txManager, walletRepo, userRepo, nil, nil)

	fmt.Println("Creating demo company...")
	company, err := companyService.CreateCompany(ctx, services.CreateCompanyInput{
		Name:          "Demo Company",
		PaymentModel:  string(models.PaymentOnline),
		ContactPerson: "Office Manager",
		PricingPolicy: models.PricingPolicy{
			CalculationMode: string(models.CalculationFluid),
			DiscountType:    string(models.CompanyDiscountPercentage),
			DiscountValue:   decimal.NewFromInt(10),
			RoundingRule:    string(models.RoundingThousand),
		},
		InitialBalance: decimal.NewFromInt(10_000_000),
	})
	if err != nil {
		log.Fatal("Failed to create demo company:", err)
	}

	companyID := company.ID
	admin := &models.User{Username: "demo_admin", Email: "demo_admin@example.com", Role: string(models.CompanyAdmin), CompanyID: &companyID, IsActive: true}
	if err := userService.CreateUser(ctx, admin, "admin123"); err != nil {
		log.Fatal("Failed to create company admin:", err)
	}
	for i := 1; i <= 3; i++ {
		employee := &models.User{
			Username:  fmt.Sprintf("employee%d", i),
			Email:     fmt.Sprintf("employee%d@example.com", i),
			FirstName: "Employee",
			LastName:  fmt.Sprint(i),
			Role:      string(models.Employee),
			CompanyID: &companyID,
			IsActive:  true,
		}
		if err := userService.CreateUser(ctx, employee, "employee123"); err != nil {
			log.Fatal("Failed to create employee:", err)
		}
		if _, err := walletService.AllocateBudget(ctx, companyID, employee.ID, decimal.NewFromInt(1_000_000)); err != nil {
			log.Fatal("Failed to allocate budget:", err)
		}
	}

	fmt.Println("Creating menu...")
	foods := []*models.FoodItem{
		{Name: "Chicken Kebab", Price: decimal.NewFromInt(185_000), IsAvailable: true},
		{Name: "Vegetable Pasta", Price: decimal.NewFromInt(142_500), IsAvailable: true},
		{Name: "Grilled Salmon", Price: decimal.NewFromInt(320_000), IsAvailable: true},
	}
	for _, food := range foods {
		if err := menuRepo.CreateFoodItem(ctx, food); err != nil {
			log.Fatal("Failed to create food item:", err)
		}
	}
	sides := []*models.SideDish{
		{Name: "Salad", Price: decimal.NewFromInt(35_000), IsAvailable: true},
		{Name: "Yogurt", Price: decimal.NewFromInt(18_000), IsAvailable: true},
	}
	for _, side := range sides {
		if err := menuRepo.CreateSideDish(ctx, side); err != nil {
			log.Fatal("Failed to create side dish:", err)
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	schedule := &models.Schedule{Name: "Default", StartDate: today, EndDate: today.AddDate(0, 0, 14), IsActive: true}
	if err := menuRepo.CreateSchedule(ctx, schedule); err != nil {
		log.Fatal("Failed to create schedule:", err)
	}
	for day := 1; day <= 7; day++ {
		menu := &models.DailyMenu{ScheduleID: schedule.ID, Date: today.AddDate(0, 0, day)}
		for _, food := range foods {
			menu.AvailableFoods = append(menu.AvailableFoods, *food)
		}
		for _, side := range sides {
			menu.AvailableSides = append(menu.AvailableSides, *side)
		}
		if err := menuRepo.CreateDailyMenu(ctx, menu); err != nil {
			log.Fatal("Failed to create daily menu:", err)
		}
	}

	maxUses := 100
	code := &models.DiscountCode{
		Code:              "WELCOME10",
		DiscountType:      string(models.CouponPercentage),
		Value:             decimal.NewFromInt(10),
		MaxUsageCount:     &maxUses,
		MaxUsagePerUser:   1,
		MaxDiscountAmount: decimal.NewNullDecimal(decimal.NewFromInt(50_000)),
		StartDate:         today,
		Scope:             string(models.CouponPublic),
		IsActive:          true,
	}
	if err := discountRepo.Create(ctx, code); err != nil {
		log.Fatal("Failed to create discount code:", err)
	}

	fmt.Println("Database initialized successfully!")
}
