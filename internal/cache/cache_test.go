package cache

import (
	"context"
	"testing"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/stretchr/testify/require"
)

func TestNoopDoctorCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c DoctorCache = NoopDoctorCache{}

	require.NoError(t, c.SetDoctors(ctx, []*types.HealthDoctor{{ID: "d-1"}}))
	doctors, ok, err := c.Doctors(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, doctors)
	require.NoError(t, c.Invalidate(ctx))
}

func TestNewRedisClientWithoutURL(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, client)
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "http://not-redis")
	require.Error(t, err)
}
