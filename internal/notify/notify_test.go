package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"

	"github.com/zulandar/waybill/internal/models"
)

// mockNotifier records announcements and optionally fails.
type mockNotifier struct {
	name     string
	messages []string
	err      error
}

func (m *mockNotifier) Name() string { return m.name }
func (m *mockNotifier) Announce(_ context.Context, message string) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, message)
	return nil
}

func TestHub_Broadcast(t *testing.T) {
	a := &mockNotifier{name: "a"}
	b := &mockNotifier{name: "b"}
	hub := NewHub(a, b)

	hub.SessionAdvanced(context.Background(), 5, 2)

	for _, m := range []*mockNotifier{a, b} {
		if len(m.messages) != 1 {
			t.Fatalf("%s got %d messages, want 1", m.name, len(m.messages))
		}
		if m.messages[0] != "Operating session advanced to 5. 2 completed trains cleared." {
			t.Errorf("%s message = %q", m.name, m.messages[0])
		}
	}
}

func TestHub_FailureDoesNotStopOthers(t *testing.T) {
	bad := &mockNotifier{name: "bad", err: errors.New("rate limited")}
	good := &mockNotifier{name: "good"}
	hub := NewHub(bad, good)

	hub.SessionRolledBack(context.Background(), 3)

	if len(good.messages) != 1 {
		t.Fatalf("good got %d messages, want 1", len(good.messages))
	}
	if good.messages[0] != "Rolled back to operating session 3." {
		t.Errorf("message = %q", good.messages[0])
	}
}

func TestHub_TrainCompleted(t *testing.T) {
	m := &mockNotifier{name: "m"}
	hub := NewHub(m)

	hub.TrainCompleted(context.Background(), &models.Train{
		Name:       "Mill Local",
		SwitchList: &models.SwitchList{TotalSetouts: 4},
	})
	hub.TrainCompleted(context.Background(), &models.Train{Name: "Extra West"})

	if len(m.messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(m.messages))
	}
	if m.messages[0] != `Train "Mill Local" completed its run, 4 cars delivered.` {
		t.Errorf("message = %q", m.messages[0])
	}
	if m.messages[1] != `Train "Extra West" completed its run, 0 cars delivered.` {
		t.Errorf("message = %q", m.messages[1])
	}
}

func TestHub_Empty(t *testing.T) {
	// A hub with no notifiers must not panic.
	NewHub().SessionAdvanced(context.Background(), 1, 0)
}

// mockDiscordSession records sends.
type mockDiscordSession struct {
	channelID string
	content   string
	err       error
}

func (m *mockDiscordSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channelID = channelID
	m.content = content
	return &discordgo.Message{}, m.err
}

func TestDiscord_Announce(t *testing.T) {
	sess := &mockDiscordSession{}
	d, err := NewDiscord(DiscordOpts{ChannelID: "chan-1", Session: sess})
	if err != nil {
		t.Fatalf("NewDiscord: %v", err)
	}
	if err := d.Announce(context.Background(), "hello"); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if sess.channelID != "chan-1" || sess.content != "hello" {
		t.Errorf("sent to %q content %q", sess.channelID, sess.content)
	}
}

func TestDiscord_AnnounceError(t *testing.T) {
	sess := &mockDiscordSession{err: errors.New("403")}
	d, err := NewDiscord(DiscordOpts{ChannelID: "chan-1", Session: sess})
	if err != nil {
		t.Fatalf("NewDiscord: %v", err)
	}
	if err := d.Announce(context.Background(), "hello"); err == nil {
		t.Error("expected error")
	}
}

func TestNewDiscord_Validation(t *testing.T) {
	if _, err := NewDiscord(DiscordOpts{ChannelID: "c"}); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewDiscord(DiscordOpts{Session: &mockDiscordSession{}}); err == nil {
		t.Error("expected error for missing channel")
	}
}

// mockSlackClient records posts.
type mockSlackClient struct {
	channelID string
	posts     int
	err       error
}

func (m *mockSlackClient) PostMessageContext(_ context.Context, channelID string, _ ...slackapi.MsgOption) (string, string, error) {
	m.channelID = channelID
	m.posts++
	return channelID, "ts", m.err
}

func TestSlack_Announce(t *testing.T) {
	client := &mockSlackClient{}
	s, err := NewSlack(SlackOpts{ChannelID: "ops", Client: client})
	if err != nil {
		t.Fatalf("NewSlack: %v", err)
	}
	if err := s.Announce(context.Background(), "hello"); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if client.channelID != "ops" || client.posts != 1 {
		t.Errorf("posted %d times to %q", client.posts, client.channelID)
	}
}

func TestNewSlack_Validation(t *testing.T) {
	if _, err := NewSlack(SlackOpts{ChannelID: "ops"}); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewSlack(SlackOpts{Client: &mockSlackClient{}}); err == nil {
		t.Error("expected error for missing channel")
	}
}
