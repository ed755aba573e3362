package services

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// EventPublisher is the slice of the message broker client the services
// need. A nil publisher disables event publication; delivery failures
// are logged, never surfaced to the caller.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

func publishEvent(pub EventPublisher, routingKey string, payload map[string]interface{}) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logrus.Errorf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := pub.Publish(routingKey, body); err != nil {
		logrus.Warnf("Failed to publish %s event: %v", routingKey, err)
	}
}
