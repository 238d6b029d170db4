package services

import (
	"context"
	"errors"
	"testing"

	"github.com/meinhoongagan/homeservice/models"
)

func TestConversationMarksOtherPartyRead(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.book(t)

	for _, content := range []string{"Is 2pm fine?", "Please bring a ladder"} {
		if _, err := f.e.messaging.Post(ctx, f.customer.ID, b.ID, content); err != nil {
			t.Fatalf("post: %v", err)
		}
	}
	if _, err := f.e.messaging.Post(ctx, f.owner.ID, b.ID, "Sure"); err != nil {
		t.Fatalf("post reply: %v", err)
	}

	conv, err := f.e.messaging.Conversation(ctx, f.owner.ID, b.ID)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if conv.IsCustomer {
		t.Error("expected provider view")
	}
	if len(conv.Messages) != 3 || conv.Messages[0].Content != "Is 2pm fine?" || conv.Messages[2].Content != "Sure" {
		t.Fatalf("expected messages in posting order, got %+v", conv.Messages)
	}

	var unreadFromCustomer, unreadFromProvider int64
	f.e.db.Model(&models.Message{}).Where("sender_id = ? AND is_read = ?", f.customer.ID, false).Count(&unreadFromCustomer)
	f.e.db.Model(&models.Message{}).Where("sender_id = ? AND is_read = ?", f.owner.ID, false).Count(&unreadFromProvider)
	if unreadFromCustomer != 0 {
		t.Errorf("expected customer messages to be read, %d unread", unreadFromCustomer)
	}
	if unreadFromProvider != 1 {
		t.Errorf("expected the provider's own message to stay unread, got %d", unreadFromProvider)
	}
}

func TestPostMarksOtherPartyRead(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.book(t)

	if _, err := f.e.messaging.Post(ctx, f.customer.ID, b.ID, "Is 2pm fine?"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := f.e.messaging.Post(ctx, f.owner.ID, b.ID, "Sure"); err != nil {
		t.Fatalf("post reply: %v", err)
	}

	inbox, err := f.e.messaging.Inbox(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("provider inbox: %v", err)
	}
	if len(inbox) != 1 || inbox[0].UnreadCount != 0 {
		t.Errorf("expected the reply to clear the provider's unread count, got %+v", inbox)
	}
	inbox, _ = f.e.messaging.Inbox(ctx, f.customer.ID)
	if len(inbox) != 1 || inbox[0].UnreadCount != 1 {
		t.Errorf("expected the reply to stay unread for the customer, got %+v", inbox)
	}
}

func TestPostRequiresContent(t *testing.T) {
	f := newBookingFixture(t)
	b := f.book(t)

	_, err := f.e.messaging.Post(context.Background(), f.customer.ID, b.ID, "   ")
	assertFieldError(t, err, "content")
	if n := f.e.count(t, &models.Message{}); n != 0 {
		t.Errorf("expected no messages, got %d", n)
	}
}

func TestMessagingRejectsOutsiders(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b := f.book(t)
	stranger := f.e.customer(t, "stranger@example.com", "9876543299")

	if _, err := f.e.messaging.Post(ctx, stranger.ID, b.ID, "hello"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden on post, got %v", err)
	}
	if _, err := f.e.messaging.Conversation(ctx, stranger.ID, b.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden on view, got %v", err)
	}
	if _, err := f.e.messaging.Conversation(ctx, f.customer.ID, 9999); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestInbox(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	quiet := f.book(t)
	busy := f.book(t)

	f.e.messaging.Post(ctx, f.customer.ID, busy.ID, "first")
	f.e.messaging.Post(ctx, f.customer.ID, busy.ID, "second")

	providerInbox, err := f.e.messaging.Inbox(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("provider inbox: %v", err)
	}
	if len(providerInbox) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(providerInbox))
	}
	byBooking := map[uint]InboxEntry{}
	for _, entry := range providerInbox {
		byBooking[entry.Booking.ID] = entry
	}
	if e := byBooking[busy.ID]; e.UnreadCount != 2 || e.LastMessage == nil || e.LastMessage.Content != "second" {
		t.Errorf("unexpected busy entry: unread=%d last=%+v", e.UnreadCount, e.LastMessage)
	}
	if e := byBooking[quiet.ID]; e.UnreadCount != 0 || e.LastMessage != nil {
		t.Errorf("unexpected quiet entry: %+v", e)
	}

	customerInbox, _ := f.e.messaging.Inbox(ctx, f.customer.ID)
	for _, entry := range customerInbox {
		if entry.UnreadCount != 0 {
			t.Errorf("expected own messages not to count as unread, got %d", entry.UnreadCount)
		}
	}

	if _, err := f.e.messaging.Conversation(ctx, f.owner.ID, busy.ID); err != nil {
		t.Fatalf("conversation: %v", err)
	}
	providerInbox, _ = f.e.messaging.Inbox(ctx, f.owner.ID)
	for _, entry := range providerInbox {
		if entry.UnreadCount != 0 {
			t.Errorf("expected booking %d to be read after viewing, got %d", entry.Booking.ID, entry.UnreadCount)
		}
	}

	stranger := f.e.customer(t, "stranger@example.com", "9876543299")
	if inbox, _ := f.e.messaging.Inbox(ctx, stranger.ID); len(inbox) != 0 {
		t.Errorf("expected empty inbox for an unrelated user, got %d", len(inbox))
	}
}
