package mq

import (
	"context"
	"encoding/json"
	"log"

	"mywall/rdx"
)

const eventsChannel = "wall-events"

// PostEvent is emitted whenever a post record changes.
type PostEvent struct {
	Event  string `json:"event"` // "post-created" | "post-deleted"
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

// Emit publishes a post event to Redis. Failures are logged, never fatal:
// the wall works without listeners.
func Emit(ctx context.Context, event PostEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[mq] failed to marshal event: %v", err)
		return
	}
	if err := rdx.Conn.Publish(ctx, eventsChannel, data).Err(); err != nil {
		log.Printf("[mq] failed to publish %s: %v", event.Event, err)
	}
}

// Subscribe delivers post events until ctx is cancelled.
func Subscribe(ctx context.Context) <-chan PostEvent {
	out := make(chan PostEvent, 16)
	sub := rdx.Conn.Subscribe(ctx, eventsChannel)
	ch := sub.Channel()

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event PostEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("[mq] failed to parse event: %v", err)
					continue
				}
				out <- event
			}
		}
	}()
	return out
}
