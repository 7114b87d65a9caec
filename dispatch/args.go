package dispatch

import (
	"github.com/lunairc/luna/irc"
)

// ArgKind tells the variants of Arg apart without a type switch.
type ArgKind int

// The argument kinds a signal can carry.
const (
	ArgSource ArgKind = iota + 1
	ArgChannel
	ArgChanUser
	ArgString
	ArgScript
)

// String names the kind.
func (k ArgKind) String() string {
	switch k {
	case ArgSource:
		return "source"
	case ArgChannel:
		return "channel"
	case ArgChanUser:
		return "chanuser"
	case ArgString:
		return "string"
	case ArgScript:
		return "script"
	}
	return "none"
}

// Arg is one typed argument of a signal. It's one of Source, Channel,
// ChanUser, String or Script. The argument list of a signal ends where the
// slice ends, there is no terminator value.
type Arg interface {
	Kind() ArgKind
	String() string
}

// Source identifies who sent an event.
type Source struct {
	Nick     string
	Username string
	Hostname string
}

// NewSource splits a sender into a Source. Servers and bare nicks fill
// only Nick.
func NewSource(sender string) Source {
	h := irc.Host(sender)
	nick, user, host := h.Split()
	if len(nick) == 0 {
		return Source{Nick: h.Nick()}
	}
	return Source{Nick: nick, Username: user, Hostname: host}
}

// Host joins the source back into a fullhost.
func (s Source) Host() irc.Host {
	if len(s.Username) == 0 && len(s.Hostname) == 0 {
		return irc.Host(s.Nick)
	}
	return irc.NewHost(s.Nick, s.Username, s.Hostname)
}

// Kind implements Arg.
func (Source) Kind() ArgKind { return ArgSource }

// String implements Arg.
func (s Source) String() string { return string(s.Host()) }

// Channel is a handle to a joined channel, resolved by name.
type Channel struct {
	Name string
}

// Kind implements Arg.
func (Channel) Kind() ArgKind { return ArgChannel }

// String implements Arg.
func (c Channel) String() string { return c.Name }

// ChanUser is a handle to a user in a channel's roster, resolved by the
// channel name and nick.
type ChanUser struct {
	Channel string
	Nick    string
}

// Kind implements Arg.
func (ChanUser) Kind() ArgKind { return ArgChanUser }

// String implements Arg.
func (c ChanUser) String() string { return c.Nick + "@" + c.Channel }

// String is a plain text argument.
type String string

// Kind implements Arg.
func (String) Kind() ArgKind { return ArgString }

// String implements Arg.
func (s String) String() string { return string(s) }

// Script identifies a loaded extension.
type Script struct {
	Name    string
	Version string
}

// Kind implements Arg.
func (Script) Kind() ArgKind { return ArgScript }

// String implements Arg.
func (s Script) String() string { return s.Name + " v" + s.Version }
