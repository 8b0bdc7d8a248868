package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var at = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func sampleEvent(t *testing.T) BookingEvent {
	t.Helper()
	showtime := &entity.Showtime{Base: entity.Base{ID: "s1"}, PricePerSeat: 50000}
	booking := entity.NewBooking("b1", "u1", showtime, []string{"A1", "A2"}, at)
	confirmed, err := booking.Confirmed(at.Add(time.Minute), "t1")
	require.NoError(t, err)
	return NewBookingEvent(EventBookingConfirmed, confirmed, at.Add(time.Minute))
}

func TestNewBookingEvent(t *testing.T) {
	event := sampleEvent(t)

	assert.Equal(t, EventBookingConfirmed, event.Type)
	assert.Equal(t, "CONFIRMED", event.Status)
	assert.Equal(t, []string{"A1", "A2"}, event.SeatIDs)
	assert.Equal(t, 100000.0, event.TotalPrice)
	require.NotNil(t, event.TicketID)
	assert.Equal(t, "t1", *event.TicketID)
	assert.Nil(t, event.RefundFraction)
}

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, exchange+"/"+key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	pub := newAMQPPublisher(ch, "booking.events", zap.NewNop())

	require.NoError(t, pub.Publish(context.Background(), sampleEvent(t)))
	require.Len(t, ch.published, 1)

	msg := ch.published[0]
	assert.Equal(t, "/booking.events", ch.keys[0])
	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "booking.confirmed", msg.Type)

	var decoded BookingEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "b1", decoded.BookingID)

	require.NoError(t, pub.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	pub := newAMQPPublisher(ch, "booking.events", zap.NewNop())

	err := pub.Publish(context.Background(), sampleEvent(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b1")
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var decoded BookingEvent
		if err := json.Unmarshal(val, &decoded); err != nil {
			return err
		}
		if decoded.BookingID != "b1" || decoded.Type != EventBookingConfirmed {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	pub := newKafkaPublisher(producer, "booking-events", zap.NewNop())
	require.NoError(t, pub.Publish(context.Background(), sampleEvent(t)))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := newKafkaPublisher(producer, "booking-events", zap.NewNop())
	err := pub.Publish(context.Background(), sampleEvent(t))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestNopPublisher(t *testing.T) {
	pub := NewNopPublisher()
	assert.NoError(t, pub.Publish(context.Background(), sampleEvent(t)))
	assert.NoError(t, pub.Close())
}
