package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/redis/go-redis/v9"
)

const topicPrefix = "tixcheckout.events."

// Topic is the stream an event named name is published to.
func Topic(name string) string {
	return topicPrefix + name
}

func NewRedisPublisher(rdb *redis.Client, logger watermill.LoggerAdapter) (message.Publisher, error) {
	const op = "events.NewRedisPublisher"

	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return pub, nil
}

func NewEventBus(pub message.Publisher, logger watermill.LoggerAdapter) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(
		pub,
		cqrs.EventBusConfig{
			GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
				return Topic(params.EventName), nil
			},
			Marshaler: cqrs.JSONMarshaler{
				GenerateName: cqrs.StructName,
			},
			Logger: logger,
		},
	)
}

// Publisher emits booking domain events.
type Publisher struct {
	bus *cqrs.EventBus
}

func NewPublisher(bus *cqrs.EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, b *domain.BookingConfirmation) error {
	const op = "events.Publisher.PublishBookingConfirmed"

	if err := p.bus.Publish(ctx, NewBookingConfirmed(b)); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
