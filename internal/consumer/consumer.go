// Package consumer listens for order lifecycle events and keeps stock
// consistent after the fact: created orders get their inventory mirrors
// reconciled, cancelled orders get their items restocked. This is the
// eventual-consistency pass behind the back-to-back writes the services do.
package consumer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/abuind/ASIA-Mart-1/internal/catalog"
	"github.com/abuind/ASIA-Mart-1/internal/entity"
)

type Consumer struct {
	catalog *catalog.Service
	reader  *kafka.Reader
}

func New(cat *catalog.Service, reader *kafka.Reader) *Consumer {
	return &Consumer{catalog: cat, reader: reader}
}

// Run reads order events until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("Error reading order event")
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	var order entity.Order
	if err := json.Unmarshal(msg.Value, &order); err != nil {
		log.Error().Err(err).Msg("Error unmarshalling order event")
		return
	}

	// key -> "order-created-<id>" or "order-cancelled-<id>"
	parts := strings.Split(string(msg.Key), "-")
	if len(parts) < 3 {
		log.Error().Msgf("Malformed order event key: %s", msg.Key)
		return
	}

	switch parts[1] {
	case "created":
		for _, item := range order.Items {
			product, err := c.catalog.Product(ctx, item.ProductID)
			if err != nil {
				log.Error().Err(err).Msgf("Error loading product %d for reconciliation", item.ProductID)
				continue
			}
			if err := c.catalog.SyncInventory(ctx, product.ID, product.Stock); err != nil {
				log.Error().Err(err).Msgf("Error reconciling inventory for product %d", product.ID)
			}
		}
	case "cancelled":
		for _, item := range order.Items {
			product, err := c.catalog.Product(ctx, item.ProductID)
			if err != nil {
				log.Error().Err(err).Msgf("Error loading product %d for restock", item.ProductID)
				continue
			}
			if err := c.catalog.SetStock(ctx, product.ID, product.Stock+item.Quantity); err != nil {
				log.Error().Err(err).Msgf("Error restocking product %d", item.ProductID)
			}
		}
	default:
		log.Error().Msgf("Unknown order event: %s", msg.Key)
	}
}
