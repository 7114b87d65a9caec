package data

import (
	"strings"
	"time"

	"github.com/lunairc/luna/irc"
)

// Channel encapsulates all the data associated with a joined channel.
type Channel struct {
	Name    string
	Created time.Time

	Topic       string
	HasTopic    bool
	TopicSetter string
	TopicTime   time.Time

	Modes Modes

	users []*User
	fold  func(string) string
}

func newChannel(name string, fold func(string) string) *Channel {
	return &Channel{Name: name, fold: fold}
}

// User returns the roster entry for a nick or nil.
func (c *Channel) User(nick string) *User {
	i := c.indexOf(nick)
	if i < 0 {
		return nil
	}
	return c.users[i]
}

// Users returns the roster in join order. The slice is a copy but the users
// are shared.
func (c *Channel) Users() []*User {
	users := make([]*User, len(c.users))
	copy(users, c.users)
	return users
}

// NUsers returns the size of the roster.
func (c *Channel) NUsers() int {
	return len(c.users)
}

// SetTopic sets the topic text.
func (c *Channel) SetTopic(topic string) {
	c.Topic = topic
	c.HasTopic = true
}

// TopicInfo returns the topic, who set it and when.
func (c *Channel) TopicInfo() (topic, setter string, at time.Time) {
	return c.Topic, c.TopicSetter, c.TopicTime
}

// Status returns "op", "voice" or "regular" for a nick in this channel, or
// empty string if the nick is not here.
func (c *Channel) Status(nick, prefixModes string) string {
	u := c.User(nick)
	if u == nil {
		return ""
	}
	return u.Status(prefixModes)
}

// IsBanned checks a host against the channel's ban list.
func (c *Channel) IsBanned(host irc.Host) bool {
	for _, mask := range c.Modes.List('b') {
		if irc.Mask(mask).Match(host) {
			return true
		}
	}
	return false
}

// addUser adds or returns the existing entry for the nick. Nothing about an
// existing entry is changed.
func (c *Channel) addUser(nick string) (u *User, added bool) {
	if u = c.User(nick); u != nil {
		return u, false
	}
	u = &User{Nick: nick}
	c.users = append(c.users, u)
	return u, true
}

// removeUser deletes the nick from the roster keeping the order of the
// others. Returns false if the nick was not there.
func (c *Channel) removeUser(nick string) bool {
	i := c.indexOf(nick)
	if i < 0 {
		return false
	}
	copy(c.users[i:], c.users[i+1:])
	c.users[len(c.users)-1] = nil
	c.users = c.users[:len(c.users)-1]
	return true
}

func (c *Channel) indexOf(nick string) int {
	folded := c.fold(nick)
	for i, u := range c.users {
		if c.fold(u.Nick) == folded {
			return i
		}
	}
	return -1
}

// String returns the name and modes of the channel.
func (c *Channel) String() string {
	s := c.Name
	if modes := c.Modes.String(); len(modes) > 0 {
		s += " " + modes
	}
	if c.HasTopic {
		s += " :" + strings.TrimSpace(c.Topic)
	}
	return s
}
