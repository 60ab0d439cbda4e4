// Package notify delivers best-effort live notifications about orders.
// Callers depend only on Publisher; transports are chosen at startup.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const (
	EventNewOrder           = "newOrderNotification"
	EventOrderStatusChanged = "orderStatusChanged"
)

type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Envelope is the wire form every transport sends.
type Envelope struct {
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

func encode(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Payload: raw, Timestamp: time.Now().UTC()})
}

type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event string, payload any) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
