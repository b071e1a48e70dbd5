package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RESERVATION_LEAD_DAYS", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, 1, cfg.ReservationLeadDays)
	assert.Equal(t, 1000, cfg.PricingRoundingUnit)
	assert.False(t, cfg.PricingHonorRoundingTier)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RESERVATION_LEAD_DAYS", "2")
	t.Setenv("PRICING_HONOR_ROUNDING_TIER", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("DB_LOCK_TIMEOUT_MS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 2, cfg.ReservationLeadDays)
	assert.True(t, cfg.PricingHonorRoundingTier)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5000, cfg.DBLockTimeout)
}
