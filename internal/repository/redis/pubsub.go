package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventsPubSub fans out "event listing changed" notices so every instance
// can drop its cached copy.
type EventsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewEventsPubSub(rdb *redis.Client) *EventsPubSub {
	return &EventsPubSub{
		rdb:     rdb,
		channel: ChannelEventsChanged(),
	}
}

// Change reasons.
const (
	ReasonListing   = "listing"
	ReasonInventory = "inventory"
)

type eventChangedMsg struct {
	Type    string `json:"type"`
	EventID int64  `json:"event_id"`
	Reason  string `json:"reason"`
	TsUnix  int64  `json:"ts_unix"`
}

func (p *EventsPubSub) PublishEventChanged(ctx context.Context, eventID int64, reason string) error {
	const op = "redis.EventsPubSub.PublishEventChanged"

	msg := eventChangedMsg{
		Type:    "event_changed",
		EventID: eventID,
		Reason:  reason,
		TsUnix:  time.Now().Unix(),
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return wrap(op, err)
	}

	return nil
}

// Subscribe blocks until ctx is done, calling handler for every notice.
func (p *EventsPubSub) Subscribe(
	ctx context.Context,
	handler func(ctx context.Context, eventID int64, reason string),
) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev eventChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.EventID != 0 {
				handler(ctx, ev.EventID, ev.Reason)
			}
		}
	}
}
