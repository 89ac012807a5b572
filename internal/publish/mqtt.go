package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/infrastructure/mqtt"
)

// Publisher is the part of the MQTT client used here.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
	PublishRetained(topic string, payload []byte) error
}

// StatePublisher publishes observation states as retained messages.
type StatePublisher struct {
	client Publisher
	topics mqtt.Topics
}

// NewStatePublisher creates a publisher writing under topics.
func NewStatePublisher(client Publisher, topics mqtt.Topics) *StatePublisher {
	return &StatePublisher{client: client, topics: topics}
}

// PublishStates publishes every state. It attempts all of them and returns
// the joined failures.
func (p *StatePublisher) PublishStates(ctx context.Context, states []State) error {
	var errs []error
	for _, s := range states {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.client.PublishJSON(p.topics.ObservationState(s.Identifier), s, true); err != nil {
			errs = append(errs, fmt.Errorf("publishing %s: %w", s.Identifier, err))
		}
	}
	return errors.Join(errs...)
}

// ClearStates removes the retained state of each identifier.
func (p *StatePublisher) ClearStates(ctx context.Context, identifiers []string) error {
	var errs []error
	for _, id := range identifiers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.client.PublishRetained(p.topics.ObservationState(id), nil); err != nil {
			errs = append(errs, fmt.Errorf("clearing %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// FirmwareNotifier announces firmware transitions.
type FirmwareNotifier struct {
	client Publisher
	topics mqtt.Topics
}

// NewFirmwareNotifier creates a notifier publishing under topics.
func NewFirmwareNotifier(client Publisher, topics mqtt.Topics) *FirmwareNotifier {
	return &FirmwareNotifier{client: client, topics: topics}
}

// NotifyFirmware publishes one transition. Events are not retained.
func (n *FirmwareNotifier) NotifyFirmware(_ context.Context, t firmware.Transition) error {
	if err := n.client.PublishJSON(n.topics.FirmwareEvent(), t, false); err != nil {
		return fmt.Errorf("notifying firmware change for %s: %w", t.DeviceID, err)
	}
	return nil
}
