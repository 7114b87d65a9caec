package irc

import (
	"fmt"
	"io"
	"strings"
)

const (
	// IRC_MAX_LENGTH is the maximum length for an irc message. Normally it is
	// 510 bytes + crlf but the server has to truncate extra to allow for our
	// fullhost on rebroadcast to clients, so we should send less than
	// this by the maximum allowed fullhost length.
	IRC_MAX_LENGTH = 510 - 62
	// SPLIT_BACKWARD is the maximum number of characters split will search
	// backwards from IRC_MAX_LENGTH for a space when spliting message to long
	// to fit on one line
	SPLIT_BACKWARD = 20

	fmtPrivmsgHeader = PRIVMSG + " %s :"
	fmtNoticeHeader  = NOTICE + " %s :"
	fmtCTCP          = PRIVMSG + " %s :%s"
	fmtCTCPReply     = NOTICE + " %s :%s"
	fmtJoin          = JOIN + " :%s"
	fmtPart          = PART + " %s :%s"
	fmtQuit          = QUIT + " :%s"
)

// Writer provides common write operations in IRC protocol fashion. Every call
// to Write on the underlying writer carries exactly one line without the
// line terminator.
type Writer interface {
	io.Writer
	// Send sends a string with spaces between non-strings.
	Send(...interface{}) error
	// Sendf sends a formatted string.
	Sendf(string, ...interface{}) error

	// Privmsg sends a privmsg with spaces between non-strings.
	Privmsg(string, ...interface{}) error
	// Privmsgf sends a formatted privmsg.
	Privmsgf(string, string, ...interface{}) error
	// Notice sends a notice with spaces between non-strings.
	Notice(string, ...interface{}) error
	// Noticef sends a formatted notice.
	Noticef(string, string, ...interface{}) error

	// CTCP sends a CTCP request.
	CTCP(target, tag, data string) error
	// CTCPReply sends a CTCP reply.
	CTCPReply(target, tag, data string) error

	// Join sends a join message for the given channels.
	Join(...string) error
	// Part sends a part message.
	Part(channel, reason string) error
	// Quit sends a quit message.
	Quit(string) error
}

// Helper fullfills the Writer's many interface requirements.
type Helper struct {
	io.Writer
}

// Send sends a string with spaces between non-strings.
func (h Helper) Send(args ...interface{}) error {
	_, err := io.WriteString(h, fmt.Sprint(args...))
	return err
}

// Sendf sends a formatted string.
func (h Helper) Sendf(format string, args ...interface{}) error {
	_, err := io.WriteString(h, fmt.Sprintf(format, args...))
	return err
}

// Privmsg sends a string with spaces between non-strings.
func (h Helper) Privmsg(target string, args ...interface{}) error {
	header := fmt.Sprintf(fmtPrivmsgHeader, target)
	return h.splitSend(header, fmt.Sprint(args...))
}

// Privmsgf sends a formatted privmsg.
func (h Helper) Privmsgf(target, format string, args ...interface{}) error {
	header := fmt.Sprintf(fmtPrivmsgHeader, target)
	return h.splitSend(header, fmt.Sprintf(format, args...))
}

// Notice sends a string with spaces between non-strings.
func (h Helper) Notice(target string, args ...interface{}) error {
	header := fmt.Sprintf(fmtNoticeHeader, target)
	return h.splitSend(header, fmt.Sprint(args...))
}

// Noticef sends a formatted notice.
func (h Helper) Noticef(target, format string, args ...interface{}) error {
	header := fmt.Sprintf(fmtNoticeHeader, target)
	return h.splitSend(header, fmt.Sprintf(format, args...))
}

// CTCP sends a CTCP request.
func (h Helper) CTCP(target, tag, data string) error {
	return h.Sendf(fmtCTCP, target, CTCPpackString(tag, data))
}

// CTCPReply sends a CTCP reply.
func (h Helper) CTCPReply(target, tag, data string) error {
	return h.Sendf(fmtCTCPReply, target, CTCPpackString(tag, data))
}

// Join sends a join message to the writer.
func (h Helper) Join(targets ...string) error {
	if len(targets) == 0 {
		return nil
	}
	return h.Sendf(fmtJoin, strings.Join(targets, ","))
}

// Part sends a part message to the writer.
func (h Helper) Part(channel, reason string) error {
	return h.Sendf(fmtPart, channel, reason)
}

// Quit sends a quit message to the writer.
func (h Helper) Quit(msg string) error {
	return h.Sendf(fmtQuit, msg)
}

// splitSend breaks a message down into irc-digestable chunks based on
// IRC_MAX_LENGTH, and prepends the header to each line. It looks back up to
// SPLIT_BACKWARD characters for a space to split on, the space is dropped.
func (h Helper) splitSend(header, msg string) error {
	msgMax := IRC_MAX_LENGTH - len(header)
	if len(msg) <= msgMax {
		_, err := io.WriteString(h, header+msg)
		return err
	}

	for len(msg) > 0 {
		size, skip := msgMax, 0
		if len(msg) <= msgMax {
			size = len(msg)
		} else {
			for i := msgMax; i > 0 && i > msgMax-SPLIT_BACKWARD; i-- {
				if msg[i] == ' ' {
					size, skip = i, 1
					break
				}
			}
		}

		if _, err := io.WriteString(h, header+msg[:size]); err != nil {
			return err
		}
		msg = msg[size+skip:]
	}

	return nil
}
