package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/redis/go-redis/v9"
)

const doctorsKey = "egov:health:doctors"

// NewRedisClient connects to url and verifies the connection. It returns
// nil without error when url is empty.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

type RedisDoctorCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDoctorCache(client *redis.Client, ttl time.Duration) *RedisDoctorCache {
	return &RedisDoctorCache{client: client, ttl: ttl}
}

func (c *RedisDoctorCache) Doctors(ctx context.Context) ([]*types.HealthDoctor, bool, error) {
	raw, err := c.client.Get(ctx, doctorsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached doctors: %w", err)
	}

	var doctors []*types.HealthDoctor
	if err := json.Unmarshal(raw, &doctors); err != nil {
		// A corrupt entry counts as a miss and gets overwritten.
		return nil, false, nil
	}
	return doctors, true, nil
}

func (c *RedisDoctorCache) SetDoctors(ctx context.Context, doctors []*types.HealthDoctor) error {
	raw, err := json.Marshal(doctors)
	if err != nil {
		return fmt.Errorf("failed to encode doctors: %w", err)
	}
	if err := c.client.Set(ctx, doctorsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache doctors: %w", err)
	}
	return nil
}

func (c *RedisDoctorCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, doctorsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate doctors: %w", err)
	}
	return nil
}
