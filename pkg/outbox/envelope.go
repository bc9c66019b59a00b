package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is written on every new envelope. Consumers branch on it.
const EnvelopeVersion = 1

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID        *uuid.UUID `json:"userId,omitempty"`
	CartTokenHash string     `json:"cartTokenHash,omitempty"`
}

// PayloadEnvelope is the JSON stored in outbox_events.payload and published as
// the message body. EventID equals the outbox row id.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored payload column and rejects envelopes that a
// consumer could not route or deduplicate.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, err
	}
	switch {
	case env.Version < 1:
		return PayloadEnvelope{}, fmt.Errorf("envelope version %d is not supported", env.Version)
	case env.EventID == "":
		return PayloadEnvelope{}, errors.New("envelope has no event id")
	case len(env.Data) == 0:
		return PayloadEnvelope{}, errors.New("envelope has no data")
	}
	return env, nil
}
