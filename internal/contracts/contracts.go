package contracts

import "time"

// Change types carried by HabitChanged events.
const (
	ChangeSaved   = "habit.saved"
	ChangeDeleted = "habit.deleted"
)

// HabitChanged is published by the remote persistence adapter after every
// committed write and consumed by live subscriptions. It deliberately
// carries no habit payload: subscribers re-query the owner's full
// collection, so a delivery is always a whole-collection replacement.
type HabitChanged struct {
	EventID    string    `json:"event_id"`
	OwnerID    string    `json:"owner_id"`
	HabitID    string    `json:"habit_id"`
	ChangeType string    `json:"change_type"`
	OccurredAt time.Time `json:"occurred_at"`
}
