package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunsHandlersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventIssueReported, func(context.Context, Event) error {
		calls = append(calls, "first")
		return nil
	})
	d.Subscribe(EventIssueReported, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventFeedbackSubmitted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventIssueReported, "u", "i", nil)))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	ran := false
	d.Subscribe(EventIssueStatusChanged, func(context.Context, Event) error { return boom })
	d.Subscribe(EventIssueStatusChanged, func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := d.Publish(context.Background(), New(EventIssueStatusChanged, "", "i", nil))
	assert.ErrorIs(t, err, boom)
	assert.True(t, ran)
}

func TestPublishWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), New(EventNotificationSent, "", "n", nil)))
}
