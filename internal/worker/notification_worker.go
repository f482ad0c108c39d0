package worker

import (
	"github.com/citycare/issue-service/internal/events"
)

// Subscriber attaches its event handlers to a dispatcher.
type Subscriber interface {
	RegisterHandlers(dispatcher events.Dispatcher)
}

// StartNotificationWorker registers the subscribers that react to domain
// events, in order. Status notifications must be registered before anything
// that only observes them.
func StartNotificationWorker(dispatcher events.Dispatcher, subscribers ...Subscriber) {
	if dispatcher == nil {
		return
	}
	for _, subscriber := range subscribers {
		if subscriber == nil {
			continue
		}
		subscriber.RegisterHandlers(dispatcher)
	}
}
