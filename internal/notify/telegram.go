package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"staybook/internal/domain"
	"staybook/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxCommentRunes = 300

// TelegramNotifier posts new reviews to the configured operator chats.
type TelegramNotifier struct {
	sender  domain.TelegramSender
	chatIDs []int64
}

func NewTelegramNotifier(sender domain.TelegramSender, chatIDs []int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatIDs: chatIDs}
}

// NewBot connects to the Bot API with the given token.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

func (n *TelegramNotifier) NotifyReview(ctx context.Context, review events.ReviewEventPayload) error {
	return n.broadcast(ctx, FormatReview(review))
}

func (n *TelegramNotifier) NotifyBooking(ctx context.Context, eventType string, booking events.BookingEventPayload) error {
	return n.broadcast(ctx, FormatBooking(eventType, booking))
}

// broadcast sends to every chat and reports the failures together.
func (n *TelegramNotifier) broadcast(ctx context.Context, text string) error {
	var errs []error
	for _, chatID := range n.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.DisableWebPagePreview = true
		if _, err := n.sender.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// FormatReview renders a review as a MarkdownV2 message.
func FormatReview(r events.ReviewEventPayload) string {
	comment := []rune(r.Comment)
	if len(comment) > maxCommentRunes {
		comment = append(comment[:maxCommentRunes], '…')
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*New review* %s\n", stars(r.Rating))
	fmt.Fprintf(&b, "Hotel: %s\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, r.HotelName))
	if r.RoomType != "" {
		fmt.Fprintf(&b, "Room: %s\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, r.RoomType))
	}
	if r.UserName != "" {
		fmt.Fprintf(&b, "Guest: %s\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, r.UserName))
	}
	fmt.Fprintf(&b, "\n%s", tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, string(comment)))
	return b.String()
}

// FormatBooking renders a booking event as a MarkdownV2 message.
func FormatBooking(eventType string, booking events.BookingEventPayload) string {
	title := "New booking"
	if eventType == events.EventBookingPaid {
		title = "Booking paid"
	}
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s) }

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", esc(title))
	fmt.Fprintf(&b, "Booking: %s\n", esc(booking.BookingID))
	fmt.Fprintf(&b, "Hotel: %s\n", esc(booking.HotelID))
	fmt.Fprintf(&b, "Stay: %s\n", esc(booking.CheckInDate.Format("2006-01-02")+" to "+booking.CheckOutDate.Format("2006-01-02")))
	fmt.Fprintf(&b, "Total: %s", esc(fmt.Sprintf("%.2f", booking.TotalPrice)))
	return b.String()
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
