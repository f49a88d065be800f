package notify

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"
)

type mockAPI struct {
	sent    []tgbotapi.MessageConfig
	failFor map[int64]bool
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable type")
	}
	if m.failFor[msg.ChatID] {
		return tgbotapi.Message{}, errors.New("telegram says no")
	}
	m.sent = append(m.sent, msg)
	return tgbotapi.Message{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyAllRecipients(t *testing.T) {
	api := &mockAPI{}
	n := NewWithAPI(api, testLogger())

	offer := sampleOffer()
	n.Notify(offer, map[int64]string{100: "Mr mouse", 200: "Mrs tiger"})

	if len(api.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(api.sent))
	}

	var chatIDs []int64
	for _, msg := range api.sent {
		chatIDs = append(chatIDs, msg.ChatID)
		if diff := cmp.Diff(FormatOffer(offer), msg.Text); diff != "" {
			t.Errorf("message text mismatch (-want +got):\n%s", diff)
		}
	}
	sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })
	if diff := cmp.Diff([]int64{100, 200}, chatIDs); diff != "" {
		t.Errorf("chat IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifyOneRecipientFailing(t *testing.T) {
	api := &mockAPI{failFor: map[int64]bool{100: true}}
	n := NewWithAPI(api, testLogger())

	n.Notify(sampleOffer(), map[int64]string{100: "Mr mouse", 200: "Mrs tiger"})

	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(api.sent))
	}
	if api.sent[0].ChatID != 200 {
		t.Errorf("surviving delivery went to chat %d, want 200", api.sent[0].ChatID)
	}
}
