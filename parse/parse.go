/*
Package parse turns protocol lines into irc.Events.
*/
package parse

import (
	"strconv"
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/pkg/errors"

	"github.com/lunairc/luna/irc"
)

const (
	// errMsgParseFailure is given when the line could not be decoded.
	errMsgParseFailure = "parse: unable to parse received irc protocol"
)

// ParseError is returned when a line cannot be decoded. It carries the
// offending line.
type ParseError struct {
	// The message
	Msg string
	// The invalid irc encountered.
	Irc string
	// Err is the decoder's reason.
	Err error
}

// Error satisfies the Error interface for ParseError.
func (p ParseError) Error() string {
	if p.Err != nil {
		return p.Msg + ": " + p.Err.Error()
	}
	return p.Msg
}

// Cause returns the decoder's reason for use with errors.Cause.
func (p ParseError) Cause() error {
	return p.Err
}

// Parse produces an Event from a single protocol line. A trailing \r\n is
// tolerated. Message tags are accepted and discarded.
func Parse(line string) (*irc.Event, error) {
	line = strings.TrimRight(line, "\r\n")

	msg, err := ircmsg.ParseLine(line)
	if err != nil {
		return nil, ParseError{Msg: errMsgParseFailure, Irc: line, Err: err}
	}
	if len(msg.Command) == 0 {
		return nil, ParseError{Msg: errMsgParseFailure, Irc: line,
			Err: errors.New("missing command")}
	}

	ev := &irc.Event{
		Name:   strings.ToUpper(msg.Command),
		Sender: msg.Source,
		Time:   time.Now().UTC(),
	}
	if ev.IsNumeric() {
		ev.Numeric, _ = strconv.Atoi(ev.Name)
	}

	params := msg.Params
	if hasTrailing(line) && len(params) > 0 {
		ev.Trailing = params[len(params)-1]
		ev.HasTrailing = true
		params = params[:len(params)-1]
	}
	if len(params) > 0 {
		ev.Params = make([]string, len(params))
		copy(ev.Params, params)
	}

	return ev, nil
}

// hasTrailing reports whether the line, after its tags, source and command,
// carries a " :" trailing marker.
func hasTrailing(line string) bool {
	rest := line
	if strings.HasPrefix(rest, "@") {
		rest = skipWord(rest)
	}
	if strings.HasPrefix(rest, ":") {
		rest = skipWord(rest)
	}
	return strings.Contains(rest, " :")
}

func skipWord(s string) string {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return ""
	}
	return strings.TrimLeft(s[i:], " ")
}
