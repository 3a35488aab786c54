package messaging

import (
	"errors"

	"github.com/nats-io/nats.go"
)

const changesStream = "HABIT_CHANGES"

// ChangeSubject returns the subject habit change events for one owner are
// published on. Format: habits.changed.{owner_id}
func ChangeSubject(ownerID string) string {
	return "habits.changed." + ownerID
}

// EnsureStreams creates (or validates) the single stream required locally:
// - habits.changed.>
func EnsureStreams(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(changesStream); err != nil {
		if errors.Is(err, nats.ErrStreamNotFound) {
			if _, addErr := js.AddStream(&nats.StreamConfig{
				Name:      changesStream,
				Subjects:  []string{"habits.changed.>"},
				Retention: nats.LimitsPolicy,
				Storage:   nats.FileStorage,
				Replicas:  1,
			}); addErr != nil {
				return addErr
			}
		} else {
			return err
		}
	}
	return nil
}
