package consumer

import (
	"encoding/json"

	"github.com/Eursukkul/competition-portal/internal/catalog"
	"github.com/Eursukkul/competition-portal/internal/draft"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// CompetitionConsumer feeds competition.* messages into the catalog.
type CompetitionConsumer struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func NewCompetitionConsumer(cat *catalog.Catalog, logger *zap.Logger) *CompetitionConsumer {
	return &CompetitionConsumer{catalog: cat, logger: logger.With(zap.String("component", "competition_consumer"))}
}

// Start handles messages until msgs is closed.
func (cc *CompetitionConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			cc.handleMessage(msg)
		}
		cc.logger.Info("channel closed, stopping consumer")
	}()
}

func (cc *CompetitionConsumer) handleMessage(msg amqp.Delivery) {
	var comp draft.Competition
	if err := json.Unmarshal(msg.Body, &comp); err != nil {
		cc.logger.Warn("failed to unmarshal", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		msg.Nack(false, false)
		return
	}
	if comp.ID == 0 {
		cc.logger.Warn("message without competition id", zap.String("routing_key", msg.RoutingKey))
		msg.Nack(false, false)
		return
	}

	cc.catalog.Put(&comp)
	cc.logger.Info("synced competition", zap.Uint("id", comp.ID), zap.String("title", comp.Title))
	msg.Ack(false)
}
