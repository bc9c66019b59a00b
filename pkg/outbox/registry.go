package outbox

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// TopicRegistry routes each event type to the Pub/Sub topic it is published on.
type TopicRegistry struct {
	topics map[enums.OutboxEventType]string
}

func NewTopicRegistry(cfg config.PubSubConfig) (*TopicRegistry, error) {
	if cfg.UsersTopic == "" {
		return nil, fmt.Errorf("users topic is required")
	}
	if cfg.PaymentsTopic == "" {
		return nil, fmt.Errorf("payments topic is required")
	}
	return &TopicRegistry{topics: map[enums.OutboxEventType]string{
		enums.EventUserRegistered:        cfg.UsersTopic,
		enums.EventProfileUpdated:        cfg.UsersTopic,
		enums.EventManualPaymentReceived: cfg.PaymentsTopic,
	}}, nil
}

// TopicFor returns the topic for the event type, or false when it is unrouted.
func (r *TopicRegistry) TopicFor(eventType enums.OutboxEventType) (string, bool) {
	topic, ok := r.topics[eventType]
	return topic, ok
}

// Topics lists every distinct configured topic.
func (r *TopicRegistry) Topics() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, topic := range r.topics {
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	return out
}
