package rabbitmq

import (
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

func TestAuditLogHandlerAcksJSONEvents(t *testing.T) {
	msg := amqp.Delivery{
		RoutingKey: RatingSubmittedKey,
		Body:       []byte(`{"userId":"u1","storeId":"s1","rating":4,"outcome":"created"}`),
	}
	assert.NoError(t, AuditLogHandler(msg))
}

func TestAuditLogHandlerAcksMalformedBody(t *testing.T) {
	// A body that cannot be parsed must still be acked; nacking it would
	// requeue it forever.
	msg := amqp.Delivery{
		RoutingKey: StoreDeletedKey,
		Body:       []byte("not json"),
	}
	assert.NoError(t, AuditLogHandler(msg))
}
