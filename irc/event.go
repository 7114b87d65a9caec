/*
Package irc defines the types shared by the rest of luna: the decoded Event,
hostmasks, the CTCP codec, the negotiated NetworkInfo and a Writer for
producing protocol lines.
*/
package irc

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// Event is an immutable decoded protocol line.
type Event struct {
	// Name of the event. Uppercase verb or zero padded numeric.
	Name string
	// Numeric is the numeric code, or 0 when the event is a named verb.
	Numeric int
	// Sender is the raw prefix, normally a fullhost or a server name.
	Sender string
	// Params are the middle parameters, not including the trailing one.
	Params []string
	// Trailing is the text after the " :" marker.
	Trailing string
	// HasTrailing is set when the line carried a trailing parameter, even an
	// empty one.
	HasTrailing bool
	// Time is the time this event was received.
	Time time.Time
}

// NewEvent constructs an event object that has a timestamp. The last argument
// becomes the trailing parameter if it contains a space or is empty.
func NewEvent(name, sender string, args ...string) *Event {
	ev := &Event{
		Name:   name,
		Sender: sender,
		Time:   time.Now().UTC(),
	}
	if isNumeric(name) {
		ev.Numeric, _ = strconv.Atoi(name)
	}

	if len(args) > 0 {
		last := args[len(args)-1]
		if len(last) == 0 || strings.ContainsRune(last, ' ') ||
			last[0] == ':' {

			ev.Trailing = last
			ev.HasTrailing = true
			args = args[:len(args)-1]
		}
		if len(args) > 0 {
			ev.Params = make([]string, len(args))
			copy(ev.Params, args)
		}
	}
	return ev
}

// Nick returns the nick of the sender. Server senders return the server name.
func (e *Event) Nick() string {
	return Nick(e.Sender)
}

// Username returns the username of the sender. Will be empty string if it was
// not able to parse the sender.
func (e *Event) Username() string {
	return Username(e.Sender)
}

// Hostname returns the host of the sender. Will be empty string if it was
// not able to parse the sender.
func (e *Event) Hostname() string {
	return Hostname(e.Sender)
}

// Host returns the sender as a Host.
func (e *Event) Host() Host {
	return Host(e.Sender)
}

// Args returns the parameters followed by the trailing parameter if there
// was one. This is the view numerics are counted against.
func (e *Event) Args() []string {
	if !e.HasTrailing {
		return e.Params
	}
	args := make([]string, len(e.Params), len(e.Params)+1)
	copy(args, e.Params)
	return append(args, e.Trailing)
}

// Arg returns the i'th element of Args or empty string if it's not there.
func (e *Event) Arg(i int) string {
	if i < len(e.Params) {
		return e.Params[i]
	}
	if e.HasTrailing && i == len(e.Params) {
		return e.Trailing
	}
	return ""
}

// Param returns the i'th middle parameter or empty string.
func (e *Event) Param(i int) string {
	if i >= 0 && i < len(e.Params) {
		return e.Params[i]
	}
	return ""
}

// Target retrieves the channel or user this event was sent to.
func (e *Event) Target() string {
	return e.Param(0)
}

// Message retrieves the free text of the event: the trailing parameter, or
// the last middle parameter when the line had none.
func (e *Event) Message() string {
	if e.HasTrailing {
		return e.Trailing
	}
	if len(e.Params) > 1 {
		return e.Params[len(e.Params)-1]
	}
	return ""
}

// IsNumeric checks if the event is a numeric reply.
func (e *Event) IsNumeric() bool {
	return isNumeric(e.Name)
}

func isNumeric(name string) bool {
	if len(name) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

// String turns this back into an IRC style message.
func (e *Event) String() string {
	b := &bytes.Buffer{}
	if len(e.Sender) > 0 {
		b.WriteByte(':')
		b.WriteString(e.Sender)
		b.WriteByte(' ')
	}
	b.WriteString(e.Name)

	for _, arg := range e.Params {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	if e.HasTrailing {
		b.WriteString(" :")
		b.WriteString(e.Trailing)
	}

	return b.String()
}

// IsCTCP checks if this event is a CTCP event. This means it's delimited
// by the CTCPDelim as well as being PRIVMSG or NOTICE only.
func (e *Event) IsCTCP() bool {
	return (e.Name == PRIVMSG || e.Name == NOTICE) && IsCTCPString(e.Message())
}

// UnpackCTCP can be called to retrieve a tag and data from a CTCP event.
func (e *Event) UnpackCTCP() (tag, data string) {
	return CTCPunpackString(e.Message())
}
