package enums

import "fmt"

// OutboxAggregateType identifies the entity an outbox event is about.
type OutboxAggregateType string

const (
	AggregateUser          OutboxAggregateType = "user"
	AggregateManualPayment OutboxAggregateType = "manual_payment"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateUser,
	AggregateManualPayment,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType names the domain events relayed through the outbox.
type OutboxEventType string

const (
	EventUserRegistered        OutboxEventType = "user_registered"
	EventProfileUpdated        OutboxEventType = "profile_updated"
	EventManualPaymentReceived OutboxEventType = "manual_payment_received"
)

var validEventTypes = []OutboxEventType{
	EventUserRegistered,
	EventProfileUpdated,
	EventManualPaymentReceived,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
