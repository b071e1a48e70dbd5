package redis

import (
	"context"
	"testing"
	"time"

	"catering_orders/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Initialize("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestPricingPolicyCache(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	missing, err := client.GetPricingPolicy(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, missing)

	policy := &models.PricingPolicy{
		CalculationMode: string(models.CalculationFluid),
		DiscountType:    string(models.CompanyDiscountPercentage),
		DiscountValue:   decimal.NewFromInt(10),
		AveragePrice:    decimal.Zero,
		RoundingRule:    string(models.RoundingHundred),
	}
	require.NoError(t, client.SetPricingPolicy(ctx, 7, policy, time.Minute))
	assert.True(t, mr.Exists("pricing_policy:7"))

	cached, err := client.GetPricingPolicy(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, policy.DiscountType, cached.DiscountType)
	assert.True(t, policy.DiscountValue.Equal(cached.DiscountValue))

	mr.FastForward(2 * time.Minute)
	expired, err := client.GetPricingPolicy(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestDeletePricingPolicy(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.SetPricingPolicy(ctx, 3, &models.PricingPolicy{}, time.Minute))
	require.NoError(t, client.DeletePricingPolicy(ctx, 3))
	assert.False(t, mr.Exists("pricing_policy:3"))
}

func TestIncrementWindow(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := client.IncrementWindow(ctx, "10.0.0.1", time.Second*30)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.Equal(t, 30*time.Second, mr.TTL("rate_limit:10.0.0.1"))

	mr.FastForward(31 * time.Second)
	n, err := client.IncrementWindow(ctx, "10.0.0.1", time.Second*30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
