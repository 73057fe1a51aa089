package services

import (
	"context"
	"encoding/json"
	"time"

	"storefront-service/logger"
	"storefront-service/models"
	awspkg "storefront-service/pkg/aws"

	"go.uber.org/zap"
)

const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
)

// CatalogEvents announces catalog changes to downstream consumers.
type CatalogEvents interface {
	ProductChanged(ctx context.Context, eventType string, product *models.Product)
}

type productEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Images     []string  `json:"images"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SNSCatalogEvents publishes product events to an SNS topic. With no topic
// configured it does nothing.
type SNSCatalogEvents struct {
	publisher awspkg.SNSPublisher
	topicArn  string
}

func NewSNSCatalogEvents(publisher awspkg.SNSPublisher, topicArn string) *SNSCatalogEvents {
	return &SNSCatalogEvents{publisher: publisher, topicArn: topicArn}
}

func (e *SNSCatalogEvents) ProductChanged(ctx context.Context, eventType string, product *models.Product) {
	if e == nil || e.publisher == nil || e.topicArn == "" {
		return
	}

	body, err := json.Marshal(productEvent{
		Type:       eventType,
		ProductID:  product.ID.Hex(),
		Name:       product.Name,
		Price:      product.Price,
		Images:     product.Images,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Error(ctx, "Failed to encode catalog event", err)
		return
	}

	if err := e.publisher.Publish(ctx, e.topicArn, eventType, body); err != nil {
		logger.Warn(ctx, "Failed to publish catalog event",
			zap.String("event", eventType),
			zap.String("product_id", product.ID.Hex()),
			zap.Error(err),
		)
	}
}
