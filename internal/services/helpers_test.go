package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"catering_orders/internal/database"
	"catering_orders/internal/models"
	"catering_orders/internal/pricing"
	"catering_orders/internal/repository"
	"catering_orders/internal/reservation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection: transactions run strictly one after another
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type recordedEvent struct {
	Topic   string
	Message map[string]interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(topic string, message map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Message: message})
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	topics := make([]string, 0, len(p.events))
	for _, e := range p.events {
		topics = append(topics, e.Topic)
	}
	return topics
}

// fixture wires the real services against an in-memory database with a fixed
// clock. The default menu is three days out.
type fixture struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB
	now time.Time

	users     repository.UserRepository
	companies repository.CompanyRepository
	walletsDB repository.WalletRepository
	menus     repository.MenuRepository
	discounts repository.DiscountRepository
	ordersDB  repository.OrderRepository

	tx             *database.TxManager
	guard          *reservation.Guard
	coupons        CouponService
	orders         OrderService
	wallets        WalletService
	companyService CompanyService
	calculator     PriceCalculator
	events         *recordingPublisher

	company  *models.Company
	schedule *models.Schedule
	menu     *models.DailyMenu
	food     *models.FoodItem
	food2    *models.FoodItem
	side     *models.SideDish
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		db:        db,
		now:       now,
		users:     repository.NewUserRepository(db),
		companies: repository.NewCompanyRepository(db),
		walletsDB: repository.NewWalletRepository(db),
		menus:     repository.NewMenuRepository(db),
		discounts: repository.NewDiscountRepository(db),
		ordersDB:  repository.NewOrderRepository(db),
		tx:        database.NewTxManager(db, 0),
		events:    &recordingPublisher{},
	}

	f.guard = reservation.NewGuard(1)
	f.guard.Now = clock

	resolver := pricing.NewResolver(pricing.DefaultConfig())
	f.coupons = NewCouponService(f.discounts, clock)
	f.calculator = NewPriceCalculator(f.ordersDB, f.users, f.menus, resolver, clock)
	f.orders = NewOrderService(OrderServiceDeps{
		Tx:         f.tx,
		Orders:     f.ordersDB,
		Users:      f.users,
		Menus:      f.menus,
		Coupons:    f.coupons,
		Calculator: f.calculator,
		Settlement: NewSettlementService(f.users, f.companies, f.walletsDB, f.ordersDB),
		Guard:      f.guard,
		Events:     f.events,
	})
	f.wallets = NewWalletService(f.tx, f.walletsDB, f.users, f.events, nil)
	f.companyService = NewCompanyService(f.tx, f.companies, f.walletsDB, nil, time.Minute, nil)

	f.company = f.createCompany("Acme", models.PaymentOnline, models.PricingPolicy{})

	f.food = f.createFood("Kebab", "50000")
	f.food2 = f.createFood("Salmon", "80000")
	f.side = &models.SideDish{Name: "Salad", Price: dec("5000"), IsAvailable: true}
	require.NoError(t, f.menus.CreateSideDish(f.ctx, f.side))

	f.schedule = &models.Schedule{Name: "Default", StartDate: now, EndDate: now.AddDate(0, 1, 0), IsActive: true}
	require.NoError(t, f.menus.CreateSchedule(f.ctx, f.schedule))
	f.menu = f.createMenu(3)
	return f
}

func (f *fixture) createCompany(name string, payment models.PaymentModel, policy models.PricingPolicy) *models.Company {
	f.t.Helper()
	company, err := f.companyService.CreateCompany(f.ctx, CreateCompanyInput{
		Name:           name,
		PaymentModel:   string(payment),
		PricingPolicy:  policy,
		InitialBalance: dec("1000000"),
	})
	require.NoError(f.t, err)
	return company
}

func (f *fixture) createFood(name, price string) *models.FoodItem {
	f.t.Helper()
	food := &models.FoodItem{Name: name, Price: dec(price), IsAvailable: true}
	require.NoError(f.t, f.menus.CreateFoodItem(f.ctx, food))
	return food
}

// createMenu adds a menu daysOut days from now offering foods, or the
// fixture foods when none are given, plus the fixture side dish.
func (f *fixture) createMenu(daysOut int, foods ...*models.FoodItem) *models.DailyMenu {
	f.t.Helper()
	if len(foods) == 0 {
		foods = []*models.FoodItem{f.food, f.food2}
	}
	day := time.Date(f.now.Year(), f.now.Month(), f.now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysOut)
	menu := &models.DailyMenu{
		ScheduleID:     f.schedule.ID,
		Date:           day,
		AvailableSides: []models.SideDish{*f.side},
	}
	for _, food := range foods {
		menu.AvailableFoods = append(menu.AvailableFoods, *food)
	}
	require.NoError(f.t, f.menus.CreateDailyMenu(f.ctx, menu))
	return menu
}

func (f *fixture) createEmployee(name, budget string, company *models.Company) *models.User {
	f.t.Helper()
	user := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         string(models.Employee),
		Budget:       dec(budget),
		IsActive:     true,
	}
	if company != nil {
		id := company.ID
		user.CompanyID = &id
	}
	require.NoError(f.t, f.users.Create(f.ctx, user))
	return user
}

func (f *fixture) createCode(code string, mutate func(*models.DiscountCode)) *models.DiscountCode {
	f.t.Helper()
	discount := &models.DiscountCode{
		Code:            code,
		DiscountType:    string(models.CouponPercentage),
		Value:           dec("10"),
		MaxUsagePerUser: 1,
		StartDate:       f.now.AddDate(0, 0, -1),
		Scope:           string(models.CouponPublic),
		IsActive:        true,
	}
	if mutate != nil {
		mutate(discount)
	}
	require.NoError(f.t, f.discounts.Create(f.ctx, discount))
	return discount
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func (f *fixture) budget(userID uint) decimal.Decimal {
	f.t.Helper()
	user, err := f.users.GetByID(f.ctx, userID)
	require.NoError(f.t, err)
	return user.Budget
}

func (f *fixture) orderTransactions(orderID uint) []models.Transaction {
	f.t.Helper()
	txns, err := f.walletsDB.ListTransactionsByOrder(f.ctx, orderID)
	require.NoError(f.t, err)
	return txns
}

func (f *fixture) countRows(model interface{}, query string, args ...interface{}) int64 {
	f.t.Helper()
	var count int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(f.t, q.Count(&count).Error)
	return count
}

func (f *fixture) place(userID uint, menu *models.DailyMenu, food *models.FoodItem, mutate func(*PlaceOrderInput)) (*OrderResult, error) {
	input := PlaceOrderInput{
		UserID:      userID,
		DailyMenuID: menu.ID,
		FoodItemID:  food.ID,
		Quantity:    1,
	}
	if mutate != nil {
		mutate(&input)
	}
	return f.orders.PlaceOrder(f.ctx, input)
}
