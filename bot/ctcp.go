package bot

import (
	"strings"

	"github.com/lunairc/luna/dispatch"
	"github.com/lunairc/luna/irc"
)

// ctcp emits the signal for a CTCP wrapped PRIVMSG or NOTICE. ACTION is an
// emote and gets its own signal, anything else is a CTCP request when it
// came by PRIVMSG and a response when it came by NOTICE.
func (s *Session) ctcp(ev *irc.Event, priv bool, target string,
	response bool) {

	tag, data := ev.UnpackCTCP()

	if tag == irc.CTCPAction {
		if priv {
			s.emit(dispatch.PrivateAction,
				dispatch.NewSource(ev.Sender),
				dispatch.String(data),
			)
		} else {
			s.emit(dispatch.PublicAction,
				dispatch.ChanUser{Channel: target, Nick: ev.Nick()},
				dispatch.Channel{Name: target},
				dispatch.String(data),
			)
		}
		return
	}

	if priv {
		signal := dispatch.PrivateCTCP
		if response {
			signal = dispatch.PrivateCTCPResponse
		}
		s.emit(signal,
			dispatch.NewSource(ev.Sender),
			dispatch.String(tag),
			dispatch.String(data),
		)
		return
	}

	signal := dispatch.PublicCTCP
	if response {
		signal = dispatch.PublicCTCPResponse
	}
	s.emit(signal,
		dispatch.ChanUser{Channel: target, Nick: ev.Nick()},
		dispatch.Channel{Name: target},
		dispatch.String(tag),
		dispatch.String(data),
	)
}

// splitCommand recognizes a message addressed to us, "nick: command rest".
// The nick is compared with the network's casemapping.
func (s *Session) splitCommand(msg string) (cmd, rest string, ok bool) {
	colon := strings.IndexByte(msg, ':')
	if colon <= 0 || !s.IsMe(msg[:colon]) {
		return "", "", false
	}

	fields := strings.TrimLeft(msg[colon+1:], " ")
	if sp := strings.IndexByte(fields, ' '); sp >= 0 {
		cmd, rest = fields[:sp], strings.TrimLeft(fields[sp+1:], " ")
	} else {
		cmd = fields
	}

	if len(cmd) == 0 {
		return "", "", false
	}
	return cmd, rest, true
}
