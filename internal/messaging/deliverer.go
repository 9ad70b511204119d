package messaging

import "context"

// Deliverer adapts a messaging Service to the engine's outbound hook.
type Deliverer struct {
	service Service
}

// NewDeliverer wraps a Service for use as the engine's deliverer.
func NewDeliverer(service Service) *Deliverer {
	return &Deliverer{service: service}
}

// Deliver sends the reply to the lead. The underlying transports do not
// expose provider message ids, so the id is always empty.
func (d *Deliverer) Deliver(ctx context.Context, userID, text string) (string, error) {
	if err := d.service.SendMessage(ctx, userID, text); err != nil {
		return "", err
	}
	return "", nil
}
