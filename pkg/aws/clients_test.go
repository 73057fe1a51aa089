package aws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretsCacheExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &SecretsClient{
		cache: map[string]cachedSecret{"storefront/JWT_SECRET": {value: "s3cret", fetched: now}},
		now:   func() time.Time { return now },
	}

	v, err := s.GetSecret(context.Background(), "storefront/JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	now = now.Add(secretCacheTTL + time.Second)
	_, ok := s.cached("storefront/JWT_SECRET")
	assert.False(t, ok)
}

func TestEventAttributes(t *testing.T) {
	assert.Nil(t, eventAttributes(""))

	attrs := eventAttributes("product.updated")
	require.Contains(t, attrs, EventTypeAttribute)
	assert.Equal(t, "String", *attrs[EventTypeAttribute].DataType)
	assert.Equal(t, "product.updated", *attrs[EventTypeAttribute].StringValue)
}

func TestDisabledMetricsAreNoop(t *testing.T) {
	var nilClient *MetricsClient
	assert.False(t, nilClient.IsEnabled())
	assert.NoError(t, nilClient.RecordCount(context.Background(), MetricHTTPRequests, nil))

	disabled := &MetricsClient{namespace: "Storefront"}
	assert.False(t, disabled.IsEnabled())
	assert.NoError(t, disabled.RecordLatency(context.Background(), MetricHTTPLatency, time.Second, map[string]string{"Route": "/api/products"}))
}
