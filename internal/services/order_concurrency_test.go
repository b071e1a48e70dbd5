package services

import (
	"context"
	"testing"

	"catering_orders/internal/models"
	"catering_orders/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// kitchenFirst lets the kitchen move an order to PREPARING inside the same
// transaction, right before the service writes its own status change.
type kitchenFirst struct {
	repository.OrderRepository
	tx *gorm.DB
}

func (k *kitchenFirst) WithTx(tx *gorm.DB) repository.OrderRepository {
	return &kitchenFirst{OrderRepository: k.OrderRepository.WithTx(tx), tx: tx}
}

func (k *kitchenFirst) TransitionStatus(ctx context.Context, id uint, to models.OrderStatus, from ...models.OrderStatus) (bool, error) {
	if k.tx != nil && to == models.OrderCanceled {
		err := k.tx.Model(&models.Order{}).Where("id = ?", id).Update("status", string(models.OrderPreparing)).Error
		if err != nil {
			return false, err
		}
	}
	return k.OrderRepository.TransitionStatus(ctx, id, to, from...)
}

func TestCancelOrder_LosesToConcurrentPreparation(t *testing.T) {
	f := newFixture(t)
	f.createCode("TENOFF", nil)
	user := f.createEmployee("quinn", "200000", f.company)

	placed, err := f.place(user.ID, f.menu, f.food, func(in *PlaceOrderInput) {
		in.DiscountCode = "TENOFF"
	})
	require.NoError(t, err)
	assertDecimal(t, "155000", f.budget(user.ID))

	orders := NewOrderService(OrderServiceDeps{
		Tx:         f.tx,
		Orders:     &kitchenFirst{OrderRepository: f.ordersDB},
		Users:      f.users,
		Menus:      f.menus,
		Coupons:    f.coupons,
		Calculator: f.calculator,
		Settlement: NewSettlementService(f.users, f.companies, f.walletsDB, f.ordersDB),
		Guard:      f.guard,
		Events:     f.events,
	})

	_, err = orders.CancelOrder(f.ctx, user.ID, placed.Order.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	// The whole cancel rolled back: no refund, coupon still held.
	assertDecimal(t, "155000", f.budget(user.ID))
	assert.Len(t, f.orderTransactions(placed.Order.ID), 1)
	usage, err := f.discounts.GetUsageByOrder(f.ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.Order.ID, usage.OrderID)

	stored, err := f.ordersDB.GetByID(f.ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderPlaced), stored.Status)
}

func TestOrderRepository_TransitionStatus(t *testing.T) {
	f := newFixture(t)
	user := f.createEmployee("rosa", "200000", f.company)
	placed, err := f.place(user.ID, f.menu, f.food, nil)
	require.NoError(t, err)
	id := placed.Order.ID

	moved, err := f.ordersDB.TransitionStatus(f.ctx, id, models.OrderConfirmed, models.OrderPlaced)
	require.NoError(t, err)
	assert.True(t, moved)

	// A stale writer still expecting PLACED does nothing.
	moved, err = f.ordersDB.TransitionStatus(f.ctx, id, models.OrderCanceled, models.OrderPlaced)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = f.ordersDB.TransitionStatus(f.ctx, id, models.OrderCanceled, models.OrderPlaced, models.OrderConfirmed)
	require.NoError(t, err)
	assert.True(t, moved)

	stored, err := f.ordersDB.GetByID(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderCanceled), stored.Status)
}
