package appointment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencare/clinic/internal/platform/ws"
)

// Event type names delivered on the doctor:{id} and patient:{id} topics.
const (
	EventCreated       = "appointment-created"
	EventStatusUpdated = "appointment-status-updated"
	EventCompleted     = "appointment-status-completed"
)

// Notifier fans lifecycle transitions out to the doctor and patient topics.
// Delivery is fire-and-forget: publishing happens on a separate goroutine and
// failures are logged, never surfaced to the operation that transitioned the
// appointment.
type Notifier struct {
	publisher ws.EventPublisher
	logger    zerolog.Logger
}

func NewNotifier(publisher ws.EventPublisher, logger zerolog.Logger) *Notifier {
	return &Notifier{publisher: publisher, logger: logger}
}

// Emit publishes the full appointment snapshot as eventType to both owning
// topics. Snapshots, never diffs, so subscribers need no reconciliation.
func (n *Notifier) Emit(eventType string, a *Appointment) {
	if n == nil || n.publisher == nil {
		return
	}
	data, err := json.Marshal(a)
	if err != nil {
		n.logger.Error().Err(err).Str("appointment_id", a.ID.String()).Msg("notify: marshal snapshot")
		return
	}

	topics := []string{ws.DoctorTopic(a.DoctorID.String()), ws.PatientTopic(a.PatientID.String())}
	go func() {
		ctx := context.Background()
		for _, topic := range topics {
			event := ws.Event{
				Type:      eventType,
				Topic:     topic,
				Timestamp: time.Now().UTC(),
				Data:      data,
			}
			if err := n.publisher.Publish(ctx, event); err != nil {
				n.logger.Warn().Err(err).Str("topic", topic).Str("event", eventType).Msg("notify: publish")
			}
		}
	}()
}
