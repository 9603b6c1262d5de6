package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"staybook/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func samplePayload() events.ReviewEventPayload {
	return events.ReviewEventPayload{
		ReviewID:  "r1",
		HotelName: "Sea View",
		RoomType:  "Double Bed",
		UserName:  "Guest",
		Rating:    4,
		Comment:   "Lovely stay. Would return!",
	}
}

func TestNotifyReview(t *testing.T) {
	sender := new(mockTelegramSender)
	n := NewTelegramNotifier(sender, []int64{10, 20})

	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && (msg.ChatID == 10 || msg.ChatID == 20) && msg.ParseMode == tgbotapi.ModeMarkdownV2
	})).Return(tgbotapi.Message{}, nil).Twice()

	assert.NoError(t, n.NotifyReview(context.Background(), samplePayload()))
	sender.AssertExpectations(t)
}

func TestNotifyReview_PartialFailure(t *testing.T) {
	sender := new(mockTelegramSender)
	n := NewTelegramNotifier(sender, []int64{10, 20})

	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		return c.(tgbotapi.MessageConfig).ChatID == 10
	})).Return(tgbotapi.Message{}, errors.New("blocked")).Once()
	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		return c.(tgbotapi.MessageConfig).ChatID == 20
	})).Return(tgbotapi.Message{}, nil).Once()

	err := n.NotifyReview(context.Background(), samplePayload())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chat 10")
	sender.AssertExpectations(t)
}

func TestNotifyReview_CancelledContext(t *testing.T) {
	sender := new(mockTelegramSender)
	n := NewTelegramNotifier(sender, []int64{10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.NotifyReview(ctx, samplePayload()), context.Canceled)
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestFormatReview(t *testing.T) {
	text := FormatReview(samplePayload())

	assert.True(t, strings.HasPrefix(text, "*New review* ★★★★☆"))
	assert.Contains(t, text, `Lovely stay\. Would return\!`)
	assert.Contains(t, text, "Room: Double Bed")

	long := samplePayload()
	long.Comment = strings.Repeat("a", 500)
	assert.Contains(t, FormatReview(long), strings.Repeat("a", maxCommentRunes)+"…")
	assert.NotContains(t, FormatReview(long), strings.Repeat("a", maxCommentRunes+1))
}

func TestNotifyBooking(t *testing.T) {
	sender := new(mockTelegramSender)
	n := NewTelegramNotifier(sender, []int64{10})

	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg := c.(tgbotapi.MessageConfig)
		return msg.ChatID == 10 && strings.HasPrefix(msg.Text, "*Booking paid*")
	})).Return(tgbotapi.Message{}, nil).Once()

	assert.NoError(t, n.NotifyBooking(context.Background(), events.EventBookingPaid, sampleBooking()))
	sender.AssertExpectations(t)
}

func sampleBooking() events.BookingEventPayload {
	in := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	return events.BookingEventPayload{
		BookingID: "b-1", HotelID: "H1", CheckInDate: in, CheckOutDate: in.AddDate(0, 0, 2), TotalPrice: 241.5,
	}
}

func TestFormatBooking(t *testing.T) {
	text := FormatBooking(events.EventBookingCreated, sampleBooking())

	assert.True(t, strings.HasPrefix(text, "*New booking*"))
	assert.Contains(t, text, `Booking: b\-1`)
	assert.Contains(t, text, `Stay: 2030\-05\-01 to 2030\-05\-03`)
	assert.Contains(t, text, `Total: 241\.50`)
}
