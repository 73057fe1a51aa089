package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-service/models"
	awspkg "storefront-service/pkg/aws"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix     = "product:detail:"
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"
	DefaultCacheTTL        = 10 * time.Minute
)

// CacheManager caches product reads in Redis. List entries are keyed by a
// version counter so one INCR invalidates every cached page. A nil
// CacheManager caches nothing.
type CacheManager struct {
	redis   *redis.Client
	ttl     time.Duration
	metrics awspkg.MetricsRecorder
}

func NewCacheManager(client *redis.Client, metrics awspkg.MetricsRecorder) *CacheManager {
	return &CacheManager{redis: client, ttl: DefaultCacheTTL, metrics: metrics}
}

// GetProductList returns a cached listing page.
func (cm *CacheManager) GetProductList(ctx context.Context, category string, page, limit int) (*models.ProductPage, bool) {
	if cm == nil {
		return nil, false
	}
	version, err := cm.cacheVersion(ctx)
	if err != nil {
		return nil, false
	}

	var cached models.ProductPage
	if !cm.get(ctx, listCacheKey(version, category, page, limit), &cached) {
		return nil, false
	}
	return &cached, true
}

// SetProductListAsync caches a listing page in the background.
func (cm *CacheManager) SetProductListAsync(category string, page, limit int, result *models.ProductPage) {
	if cm == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.cacheVersion(ctx)
		if err != nil {
			return
		}
		cm.set(ctx, listCacheKey(version, category, page, limit), result)
	}()
}

func (cm *CacheManager) GetProduct(ctx context.Context, productID string) (*models.ProductDetail, bool) {
	if cm == nil {
		return nil, false
	}
	var cached models.ProductDetail
	if !cm.get(ctx, ProductCachePrefix+productID, &cached) {
		return nil, false
	}
	return &cached, true
}

func (cm *CacheManager) SetProductAsync(productID string, product *models.ProductDetail) {
	if cm == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cm.set(ctx, ProductCachePrefix+productID, product)
	}()
}

// InvalidateProduct bumps the list version and drops the product's detail entry.
func (cm *CacheManager) InvalidateProduct(ctx context.Context, productID string) {
	if cm == nil {
		return
	}
	if err := cm.redis.Incr(ctx, CacheVersionKey).Err(); err != nil {
		zap.L().Error("Failed to invalidate product list cache", zap.Error(err), zap.String("product_id", productID))
	}
	if productID == "" {
		return
	}
	if err := cm.redis.Del(ctx, ProductCachePrefix+productID).Err(); err != nil {
		zap.L().Warn("Failed to delete product cache", zap.Error(err), zap.String("product_id", productID))
	}
}

func (cm *CacheManager) get(ctx context.Context, key string, dst any) bool {
	data, err := cm.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Debug("Product cache unavailable", zap.Error(err))
		}
		cm.record(awspkg.MetricCacheMisses)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		zap.L().Warn("Failed to unmarshal cached value", zap.String("key", key), zap.Error(err))
		cm.record(awspkg.MetricCacheMisses)
		return false
	}
	cm.record(awspkg.MetricCacheHits)
	return true
}

func (cm *CacheManager) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		zap.L().Warn("Failed to marshal value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := cm.redis.Set(ctx, key, data, cm.ttl).Err(); err != nil {
		zap.L().Warn("Failed to write product cache", zap.String("key", key), zap.Error(err))
	}
}

func (cm *CacheManager) record(metric string) {
	if cm.metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cm.metrics.RecordCount(ctx, metric, nil)
	}()
}

// cacheVersion reads the list version, initialising it on first use.
func (cm *CacheManager) cacheVersion(ctx context.Context) (int64, error) {
	ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if !errors.Is(err, redis.Nil) && err != nil {
		return 0, err
	}
	if err := cm.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err != nil {
		return 0, fmt.Errorf("failed to initialise cache version: %w", err)
	}
	return cm.redis.Get(ctx, CacheVersionKey).Int64()
}

func listCacheKey(version int64, category string, page, limit int) string {
	return fmt.Sprintf("%s%d:c:%s:p:%d:l:%d", ProductListCachePrefix, version, category, page, limit)
}
