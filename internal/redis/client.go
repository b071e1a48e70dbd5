package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catering_orders/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func pricingPolicyKey(companyID uint) string {
	return fmt.Sprintf("pricing_policy:%d", companyID)
}

// Pricing policy cache
func (c *Client) SetPricingPolicy(ctx context.Context, companyID uint, policy *models.PricingPolicy, ttl time.Duration) error {
	jsonData, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("failed to marshal pricing policy: %w", err)
	}
	return c.rdb.Set(ctx, pricingPolicyKey(companyID), jsonData, ttl).Err()
}

// GetPricingPolicy returns (nil, nil) when nothing is cached.
func (c *Client) GetPricingPolicy(ctx context.Context, companyID uint) (*models.PricingPolicy, error) {
	val, err := c.rdb.Get(ctx, pricingPolicyKey(companyID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pricing policy: %w", err)
	}

	var policy models.PricingPolicy
	if err := json.Unmarshal([]byte(val), &policy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pricing policy: %w", err)
	}
	return &policy, nil
}

func (c *Client) DeletePricingPolicy(ctx context.Context, companyID uint) error {
	return c.rdb.Del(ctx, pricingPolicyKey(companyID)).Err()
}

// IncrementWindow counts a hit against key and returns the count within the
// current window. The window starts with the first hit.
func (c *Client) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	key = "rate_limit:" + key
	current, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	if current == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set expiry on %s: %w", key, err)
		}
	}
	return current, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
