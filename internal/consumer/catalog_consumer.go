package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const reloadTimeout = 30 * time.Second

// Reloader is satisfied by *catalog.Catalog.
type Reloader interface {
	Reload(ctx context.Context) error
}

type CatalogConsumer struct {
	catalog Reloader
	logger  *zap.Logger
}

func NewCatalogConsumer(catalog Reloader, logger *zap.Logger) *CatalogConsumer {
	return &CatalogConsumer{catalog: catalog, logger: logger}
}

// Start listens for catalog.* messages and reloads the catalog on each.
func (cc *CatalogConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			cc.handleMessage(msg)
		}
		cc.logger.Info("catalog consumer channel closed, stopping")
	}()
}

func (cc *CatalogConsumer) handleMessage(msg amqp.Delivery) {
	var event models.CatalogEvent
	if len(msg.Body) > 0 {
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			cc.logger.Warn("failed to unmarshal catalog event", zap.Error(err))
			_ = msg.Nack(false, false)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	if err := cc.catalog.Reload(ctx); err != nil {
		cc.logger.Warn("catalog reload failed", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		_ = msg.Nack(false, !msg.Redelivered) // requeue once
		return
	}

	cc.logger.Info("catalog reloaded", zap.String("routing_key", msg.RoutingKey), zap.String("service_id", event.ServiceID))
	_ = msg.Ack(false)
}
