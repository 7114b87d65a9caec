package bot

import (
	"strconv"
	"strings"
	"time"

	"github.com/lunairc/luna/dispatch"
	"github.com/lunairc/luna/irc"
)

// numeric handles the numeric replies the session keeps state from.
// Parameters are counted with the trailing parameter included, the first
// one is always our own nick.
func (s *Session) numeric(ev *irc.Event) error {
	args := ev.Args()

	switch ev.Numeric {
	case irc.RPL_WELCOME:
		if len(args) > 0 {
			s.nick = args[0]
		}
		s.registered = true

	case irc.RPL_ISUPPORT:
		s.Network.ParseISupport(ev)

	case irc.ERR_NICKNAMEINUSE, irc.ERR_ERRONEUSNICK, irc.ERR_UNAVAILRESOURCE:
		if s.registered {
			return nil
		}
		s.nick = s.nextNick()
		return s.Writer.Send(irc.NICK + " :" + s.nick)

	case irc.RPL_ENDOFMOTD, irc.ERR_NOMOTD:
		s.emit(dispatch.Connect)
		if len(s.conf.Channels) > 0 {
			return s.Writer.Join(s.conf.Channels...)
		}

	case irc.RPL_ENDOFWHO:
		if len(args) < 2 {
			return ErrNotEnoughParams
		}
		s.endOfWho(args[0], args[1])

	case irc.RPL_WHOREPLY:
		if len(args) < 7 {
			return ErrNotEnoughParams
		}
		s.whoReply(args)

	case irc.RPL_TOPIC:
		if len(args) < 2 {
			return ErrNotEnoughParams
		}
		if ch := s.State.Channel(args[1]); ch != nil {
			ch.SetTopic(ev.Arg(2))
		}

	case irc.RPL_TOPICWHOTIME:
		if len(args) < 4 {
			return ErrNotEnoughParams
		}
		if ch := s.State.Channel(args[1]); ch != nil {
			ch.TopicSetter = args[2]
			ch.TopicTime = parseEpoch(args[3])
		}

	case irc.RPL_CHANNELMODEIS:
		if len(args) < 3 {
			return ErrNotEnoughParams
		}
		s.applyModes(args[1], args[2], args, 3)

	case irc.RPL_CREATIONTIME:
		if len(args) < 3 {
			return ErrNotEnoughParams
		}
		if ch := s.State.Channel(args[1]); ch != nil {
			ch.Created = parseEpoch(args[2])
		}
	}

	return nil
}

// endOfWho announces the queried user as joined once the roster is
// complete. This is how our own joins reach observers.
func (s *Session) endOfWho(nick, channel string) {
	ch := s.State.Channel(channel)
	if ch == nil || ch.User(nick) == nil {
		return
	}

	s.emit(dispatch.ChannelJoin,
		dispatch.ChanUser{Channel: ch.Name, Nick: nick},
		dispatch.Channel{Name: ch.Name},
	)
}

// whoReply adds a user from a WHO reply:
// <me> <channel> <user> <host> <server> <nick> <flags> :<hops> <realname>
// Prefix symbols in the flags become the user's modes, a letter the user
// already holds is not added twice.
func (s *Session) whoReply(args []string) {
	channel, nick, flags := args[1], args[5], args[6]
	host := irc.NewHost(nick, args[2], args[3])

	u := s.State.AddUser(channel, string(host))
	if u == nil {
		return
	}

	for i := 0; i < len(flags); i++ {
		if mode, ok := s.Network.ModeForSymbol(flags[i]); ok {
			u.AddMode(mode)
		}
	}

	if len(args) > 7 {
		if sp := strings.IndexByte(args[7], ' '); sp >= 0 {
			u.Realname = args[7][sp+1:]
		}
	}
}

// parseEpoch reads a unix timestamp, anything unreadable is the zero time.
func parseEpoch(str string) time.Time {
	secs, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
