/*
Package data keeps the session's view of the network: joined channels, their
rosters, modes and topics, and the access accounts that gate administrative
commands.
*/
package data

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/irc"
)

var (
	// ErrUnknownChannel is returned when a change names a channel we are
	// not on.
	ErrUnknownChannel = errors.New("data: unknown channel")
	// ErrModeOutOfRange is returned when a mode letter falls outside the
	// flag slots. Letters before it in the same modestring stay applied.
	ErrModeOutOfRange = errors.New("data: mode out of range")
	// ErrMissingModeArg is returned when a modestring runs out of
	// arguments.
	ErrMissingModeArg = errors.New("data: missing mode argument")
)

// State is the Channel/User store. It represents our view of the server:
// the channels we're on and who is in them. State belongs to the session's
// event loop and is not safe for concurrent use.
type State struct {
	ni       *irc.NetworkInfo
	log      log15.Logger
	channels []*Channel
}

// NewState creates an empty state. The network info supplies case folding
// and the mode-class table.
func NewState(ni *irc.NetworkInfo, logger log15.Logger) *State {
	return &State{
		ni:  ni,
		log: logger,
	}
}

// NetworkInfo returns the network info the state folds and classifies with.
func (s *State) NetworkInfo() *irc.NetworkInfo {
	return s.ni
}

// Channel returns the channel if we're on it.
func (s *State) Channel(name string) *Channel {
	if i := s.indexOf(name); i >= 0 {
		return s.channels[i]
	}
	return nil
}

// Channels returns the joined channels in join order.
func (s *State) Channels() []*Channel {
	chans := make([]*Channel, len(s.channels))
	copy(chans, s.channels)
	return chans
}

// NChannels returns the number of joined channels.
func (s *State) NChannels() int {
	return len(s.channels)
}

// AddChannel records a joined channel. Adding an existing channel returns
// it unchanged.
func (s *State) AddChannel(name string) *Channel {
	if ch := s.Channel(name); ch != nil {
		return ch
	}
	ch := newChannel(name, s.ni.Fold)
	s.channels = append(s.channels, ch)
	return ch
}

// RemoveChannel forgets a channel and its roster.
func (s *State) RemoveChannel(name string) bool {
	i := s.indexOf(name)
	if i < 0 {
		return false
	}
	copy(s.channels[i:], s.channels[i+1:])
	s.channels[len(s.channels)-1] = nil
	s.channels = s.channels[:len(s.channels)-1]
	return true
}

// AddUser adds a nick or fullhost to a channel's roster. An existing entry
// has its username and host filled in if they were unknown. Returns nil if
// we're not on the channel.
func (s *State) AddUser(channel, nickorhost string) *User {
	ch := s.Channel(channel)
	if ch == nil {
		return nil
	}

	fresh := NewUser(nickorhost)
	u, _ := ch.addUser(fresh.Nick)
	if len(fresh.Username) > 0 {
		u.Username = fresh.Username
		u.Hostname = fresh.Hostname
	}
	return u
}

// RemoveUser removes a nick from one channel. Removing someone who isn't
// there does nothing.
func (s *State) RemoveUser(channel, nick string) bool {
	ch := s.Channel(channel)
	if ch == nil {
		return false
	}
	return ch.removeUser(nick)
}

// RemoveUserAll removes a nick from every channel and returns the channels
// it was removed from.
func (s *State) RemoveUserAll(nick string) []*Channel {
	var removed []*Channel
	for _, ch := range s.channels {
		if ch.removeUser(nick) {
			removed = append(removed, ch)
		}
	}
	return removed
}

// RenameUser changes a nick in every roster. The entries keep their
// identity, modes and host.
func (s *State) RenameUser(oldNick, newNick string) int {
	n := 0
	for _, ch := range s.channels {
		if u := ch.User(oldNick); u != nil {
			u.Nick = newNick
			n++
		}
	}
	return n
}

// UserChannels returns the channels a nick is in.
func (s *State) UserChannels(nick string) []*Channel {
	var chans []*Channel
	for _, ch := range s.channels {
		if ch.User(nick) != nil {
			chans = append(chans, ch)
		}
	}
	return chans
}

// SetTopic sets the topic and its metadata for a channel.
func (s *State) SetTopic(channel, topic, setter string, at time.Time) bool {
	ch := s.Channel(channel)
	if ch == nil {
		return false
	}
	ch.SetTopic(topic)
	ch.TopicSetter = setter
	ch.TopicTime = at
	return true
}

// Clear forgets everything, used when the connection is lost.
func (s *State) Clear() {
	s.channels = nil
}

func (s *State) indexOf(name string) int {
	folded := s.ni.Fold(name)
	for i, ch := range s.channels {
		if s.ni.Fold(ch.Name) == folded {
			return i
		}
	}
	return -1
}
