package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	callCount := 0
	bus.Subscribe(EventReviewCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	err := bus.PublishJSON(EventReviewCreated, ReviewEventPayload{ReviewID: "r1", Rating: 5, HotelName: "Sea View"})
	require.NoError(t, err)

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventReviewCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded ReviewEventPayload
	require.NoError(t, received.Decode(&decoded))
	assert.Equal(t, "r1", decoded.ReviewID)
	assert.Equal(t, 5, decoded.Rating)
	assert.Equal(t, "Sea View", decoded.HotelName)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })
	bus.Subscribe("other", func(_ *Event) error { t.Fatal("wrong type delivered"); return nil })

	bus.Publish(&Event{Type: "event"})

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestEventBusHandlerErrors(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")

	var reported error
	bus.OnError(func(_ *Event, err error) { reported = err })

	secondCalled := false
	bus.Subscribe("event", func(_ *Event) error { return boom })
	bus.Subscribe("event", func(_ *Event) error { secondCalled = true; return nil })

	bus.Publish(&Event{Type: "event"})

	assert.ErrorIs(t, reported, boom)
	assert.True(t, secondCalled, "a failing handler does not stop the others")
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingPaid, BookingEventPayload{BookingID: "b1"}))
}

func TestPublishJSONMarshalError(t *testing.T) {
	bus := NewEventBus()
	assert.Error(t, bus.PublishJSON("event", make(chan int)))
}
