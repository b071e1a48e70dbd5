package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"catering_orders/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestDiscountRepository_UsageCap(t *testing.T) {
	db := newTestDB(t)
	repo := NewDiscountRepository(db)
	ctx := context.Background()

	two := 2
	code := &models.DiscountCode{
		Code:            "Spring",
		DiscountType:    string(models.CouponPercentage),
		Value:           decimal.NewFromInt(10),
		MaxUsageCount:   &two,
		MaxUsagePerUser: 1,
		StartDate:       time.Now(),
		IsActive:        true,
	}
	require.NoError(t, repo.Create(ctx, code))

	found, err := repo.FindByCode(ctx, "SPRING")
	require.NoError(t, err)
	assert.Equal(t, code.ID, found.ID)

	for i, want := range []bool{true, true, false} {
		ok, err := repo.IncrementUsage(ctx, code.ID)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "attempt %d", i)
	}

	require.NoError(t, repo.DecrementUsage(ctx, code.ID))
	ok, err := repo.IncrementUsage(ctx, code.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.CreateUsage(ctx, &models.DiscountCodeUsage{DiscountCodeID: code.ID, UserID: 1, OrderID: 10}))
	err = repo.CreateUsage(ctx, &models.DiscountCodeUsage{DiscountCodeID: code.ID, UserID: 1, OrderID: 10})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	count, err := repo.CountUserUsages(ctx, code.ID, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	usage, err := repo.GetUsageByOrder(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, usage.DiscountCode)
	assert.Equal(t, "SPRING", usage.DiscountCode.Code)

	require.NoError(t, repo.DeleteUsage(ctx, usage.ID))
	_, err = repo.GetUsageByOrder(ctx, 10)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDiscountRepository_UnlimitedCap(t *testing.T) {
	db := newTestDB(t)
	repo := NewDiscountRepository(db)
	ctx := context.Background()

	code := &models.DiscountCode{Code: "OPEN", DiscountType: "FIXED_AMOUNT", Value: decimal.NewFromInt(100), MaxUsagePerUser: 1, StartDate: time.Now(), IsActive: true}
	require.NoError(t, repo.Create(ctx, code))
	for i := 0; i < 5; i++ {
		ok, err := repo.IncrementUsage(ctx, code.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	// Decrementing never goes below zero.
	fresh := &models.DiscountCode{Code: "FRESH", DiscountType: "FIXED_AMOUNT", Value: decimal.NewFromInt(100), MaxUsagePerUser: 1, StartDate: time.Now(), IsActive: true}
	require.NoError(t, repo.Create(ctx, fresh))
	require.NoError(t, repo.DecrementUsage(ctx, fresh.ID))
	stored, err := repo.FindByCode(ctx, "fresh")
	require.NoError(t, err)
	assert.Zero(t, stored.UsageCount)
}

func TestDiscountRepository_CodeUniqueIgnoringCase(t *testing.T) {
	db := newTestDB(t)
	repo := NewDiscountRepository(db)
	ctx := context.Background()

	first := &models.DiscountCode{Code: " Save10 ", DiscountType: string(models.CouponPercentage), Value: decimal.NewFromInt(10), MaxUsagePerUser: 1, StartDate: time.Now(), IsActive: true}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, "SAVE10", first.Code)

	shadow := &models.DiscountCode{Code: "save10", DiscountType: string(models.CouponFixedAmount), Value: decimal.NewFromInt(99999), MaxUsagePerUser: 1, StartDate: time.Now(), IsActive: true}
	err := repo.Create(ctx, shadow)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	require.NoError(t, db.Model(&models.DiscountCode{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	found, err := repo.FindByCode(ctx, "sAvE10")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, string(models.CouponPercentage), found.DiscountType)
}
