package data

import (
	"testing"
	"time"

	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/irc"
)

func testLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}

func testState() *State {
	ni := irc.NewNetworkInfo()
	ni.ParseISupport(irc.NewEvent("005", "srv", "me",
		"CHANMODES=beI,k,l,imnpst", "PREFIX=(ov)@+", "CHANTYPES=#&"))
	return NewState(ni, testLogger())
}

func TestState_Channels(t *testing.T) {
	t.Parallel()
	s := testState()

	a := s.AddChannel("#Chan")
	if a == nil {
		t.Fatal("Expected a channel.")
	}
	if s.AddChannel("#chan") != a {
		t.Error("Adding an existing channel should return it.")
	}
	s.AddChannel("#other")

	if s.NChannels() != 2 {
		t.Error("Expected two channels, got:", s.NChannels())
	}
	if ch := s.Channel("#CHAN"); ch != a || ch.Name != "#Chan" {
		t.Error("Lookup should be case insensitive and keep the name.")
	}
	if chans := s.Channels(); chans[0] != a || chans[1].Name != "#other" {
		t.Error("Channels should be in join order.")
	}

	if !s.RemoveChannel("#chan") {
		t.Error("Expected the channel to be removed.")
	}
	if s.RemoveChannel("#chan") {
		t.Error("Removing twice should report false.")
	}
	if s.Channel("#chan") != nil {
		t.Error("Channel should be gone.")
	}
}

func TestState_Users(t *testing.T) {
	t.Parallel()
	s := testState()
	s.AddChannel("#a")
	s.AddChannel("#b")

	if u := s.AddUser("#none", "nick"); u != nil {
		t.Error("Adding to an unknown channel should return nil.")
	}

	u := s.AddUser("#a", "nick!user@host")
	if u.Nick != "nick" || u.Username != "user" || u.Hostname != "host" {
		t.Error("Expected a full user, got:", u)
	}
	if again := s.AddUser("#a", "NICK"); again != u {
		t.Error("Adding again should return the same entry.")
	}
	if u.Username != "user" {
		t.Error("A bare nick should not wipe a known host.")
	}
	s.AddUser("#b", "nick")
	s.AddUser("#b", "other")

	if n := len(s.UserChannels("Nick")); n != 2 {
		t.Error("Expected nick on two channels, got:", n)
	}

	if !s.RemoveUser("#b", "other") {
		t.Error("Expected other to be removed.")
	}
	if s.RemoveUser("#b", "other") {
		t.Error("Removing an absent user should be a no-op.")
	}

	removed := s.RemoveUserAll("nick")
	if len(removed) != 2 {
		t.Error("Expected removal from two channels, got:", len(removed))
	}
	if len(s.RemoveUserAll("nick")) != 0 {
		t.Error("Second removal should do nothing.")
	}
}

func TestState_RenameUser(t *testing.T) {
	t.Parallel()
	s := testState()
	s.AddChannel("#a")
	s.AddChannel("#b")
	ua := s.AddUser("#a", "old!u@h")
	ua.AddMode('o')
	ub := s.AddUser("#b", "old")

	if n := s.RenameUser("OLD", "new"); n != 2 {
		t.Error("Expected two renames, got:", n)
	}
	if s.Channel("#a").User("new") != ua || s.Channel("#b").User("new") != ub {
		t.Error("Entries should keep their identity across a rename.")
	}
	if s.Channel("#a").User("old") != nil {
		t.Error("Old nick should be gone.")
	}
	if !ua.HasMode('o') || ua.Hostname != "h" {
		t.Error("Rename should keep modes and host.")
	}
}

func TestState_SetTopic(t *testing.T) {
	t.Parallel()
	s := testState()
	s.AddChannel("#a")
	at := time.Unix(1000, 0)

	if s.SetTopic("#none", "x", "y", at) {
		t.Error("Unknown channel should fail.")
	}
	if !s.SetTopic("#a", "hello", "n!u@h", at) {
		t.Error("Expected the topic to be set.")
	}
	topic, setter, when := s.Channel("#a").TopicInfo()
	if topic != "hello" || setter != "n!u@h" || !when.Equal(at) {
		t.Error("Wrong topic info:", topic, setter, when)
	}
	if !s.Channel("#a").HasTopic {
		t.Error("Expected HasTopic.")
	}
}

func TestState_Clear(t *testing.T) {
	t.Parallel()
	s := testState()
	s.AddChannel("#a")
	s.Clear()
	if s.NChannels() != 0 {
		t.Error("Expected no channels after clear.")
	}
}

func TestChannel_StatusAndBans(t *testing.T) {
	t.Parallel()
	s := testState()
	ch := s.AddChannel("#a")
	s.AddUser("#a", "op").AddMode('o')
	u := s.AddUser("#a", "both")
	u.AddMode('v')
	u.AddMode('o')
	s.AddUser("#a", "voice").AddMode('v')
	s.AddUser("#a", "reg")

	prefixes := s.NetworkInfo().PrefixModes()
	tests := map[string]string{
		"op": "op", "both": "op", "voice": "voice", "reg": "regular",
		"nobody": "",
	}
	for nick, expect := range tests {
		if status := ch.Status(nick, prefixes); status != expect {
			t.Errorf("%s: Expected %q, got: %q", nick, expect, status)
		}
	}

	if _, err := s.ApplyModes("#a", "+b", []string{"*!*@bad.host"}, 0); err != nil {
		t.Fatal(err)
	}
	if !ch.IsBanned("x!y@BAD.host") {
		t.Error("Expected the host to be banned.")
	}
	if ch.IsBanned("x!y@good.host") {
		t.Error("Did not expect the host to be banned.")
	}
}
