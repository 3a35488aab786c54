package persist

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/habitflow/project/internal/contracts"
	"github.com/habitflow/project/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(subject string, payload []byte) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func newTestRemote(events *capturePublisher) *Remote {
	return &Remote{
		Events:  events,
		OwnerID: "owner-1",
		Log:     zap.NewNop().Sugar(),
		NewID:   func() string { return "evt-1" },
		Now:     func() time.Time { return time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC) },
		inWrite: map[string]*sync.Mutex{},
	}
}

func TestRemote_PublishChangeEvent(t *testing.T) {
	events := &capturePublisher{}
	r := newTestRemote(events)

	r.publishChange("habit-1", contracts.ChangeSaved)

	require.Len(t, events.payloads, 1)
	assert.Equal(t, messaging.ChangeSubject("owner-1"), events.subjects[0])

	var event contracts.HabitChanged
	require.NoError(t, json.Unmarshal(events.payloads[0], &event))
	assert.Equal(t, "evt-1", event.EventID)
	assert.Equal(t, "owner-1", event.OwnerID)
	assert.Equal(t, "habit-1", event.HabitID)
	assert.Equal(t, contracts.ChangeSaved, event.ChangeType)
}

func TestRemote_PublishFailureIsTolerated(t *testing.T) {
	events := &capturePublisher{err: errors.New("stream unavailable")}
	r := newTestRemote(events)

	// A lost notification only delays the next snapshot; it must not
	// panic or surface.
	r.publishChange("habit-1", contracts.ChangeDeleted)
	assert.Len(t, events.payloads, 1)
}
