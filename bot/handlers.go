package bot

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lunairc/luna/dispatch"
	"github.com/lunairc/luna/irc"
)

// HandleEvent runs one event through the session. The raw signal always
// goes out first, then the handler for the event's verb or numeric updates
// state and emits the derived signals. An event with too few parameters
// returns an error whose cause is ErrNotEnoughParams and changes nothing.
func (s *Session) HandleEvent(ev *irc.Event) error {
	s.emit(dispatch.Raw,
		dispatch.NewSource(ev.Sender),
		dispatch.String(ev.Name),
		dispatch.String(strings.Join(ev.Params, " ")),
		dispatch.String(ev.Trailing),
	)

	var err error
	switch ev.Name {
	case irc.PING:
		err = s.ping(ev)
	case irc.PRIVMSG:
		err = s.privmsg(ev)
	case irc.NOTICE:
		err = s.notice(ev)
	case irc.JOIN:
		err = s.join(ev)
	case irc.PART:
		err = s.part(ev)
	case irc.QUIT:
		err = s.quit(ev)
	case irc.NICK:
		err = s.nickChange(ev)
	case irc.MODE:
		err = s.mode(ev)
	case irc.INVITE:
		err = s.invite(ev)
	case irc.TOPIC:
		err = s.topic(ev)
	case irc.KICK:
		err = s.kick(ev)
	default:
		if ev.IsNumeric() {
			err = s.numeric(ev)
		}
	}

	if err != nil {
		return errors.Wrapf(err, "bot: handling %s", ev.Name)
	}
	return nil
}

func (s *Session) ping(ev *irc.Event) error {
	if len(ev.Params) < 1 && !ev.HasTrailing {
		return ErrNotEnoughParams
	}

	pingstr := ev.Trailing
	if len(ev.Params) > 0 {
		pingstr = ev.Params[0]
	}

	err := s.Writer.Send(irc.PONG + " :" + pingstr)
	s.emit(dispatch.Ping)
	return err
}

func (s *Session) privmsg(ev *irc.Event) error {
	if len(ev.Params) < 1 {
		return ErrNotEnoughParams
	}

	target, msg := ev.Params[0], ev.Message()
	priv := s.IsPrivate(target)

	if irc.IsCTCPString(msg) {
		s.ctcp(ev, priv, target, false)
		return nil
	}

	var err error
	if cmd, rest, ok := s.splitCommand(msg); ok {
		var consumed bool
		if consumed, err = s.command(ev, priv, target, cmd, rest); consumed {
			return err
		}
	}

	if priv {
		s.emit(dispatch.PrivateMessage,
			dispatch.NewSource(ev.Sender),
			dispatch.String(msg),
		)
	} else {
		s.emit(dispatch.PublicMessage,
			dispatch.ChanUser{Channel: target, Nick: ev.Nick()},
			dispatch.Channel{Name: target},
			dispatch.String(msg),
		)
	}

	return err
}

func (s *Session) notice(ev *irc.Event) error {
	if len(ev.Params) < 1 {
		return ErrNotEnoughParams
	}

	target, msg := ev.Params[0], ev.Message()
	if irc.IsCTCPString(msg) {
		s.ctcp(ev, s.IsPrivate(target), target, true)
		return nil
	}

	s.emit(dispatch.Notice,
		dispatch.NewSource(ev.Sender),
		dispatch.String(target),
		dispatch.String(msg),
	)
	return nil
}

// join treats our own join differently: the channel is created and queried
// with WHO and MODE, the roster fills in from the replies.
func (s *Session) join(ev *irc.Event) error {
	channel := ev.Param(0)
	if len(channel) == 0 {
		channel = ev.Trailing
	}
	if len(channel) == 0 {
		return ErrNotEnoughParams
	}

	if s.IsMe(ev.Nick()) {
		s.State.AddChannel(channel)
		if err := s.Writer.Send(irc.WHO + " " + channel); err != nil {
			return err
		}
		return s.Writer.Send(irc.MODE + " " + channel)
	}

	s.State.AddUser(channel, ev.Sender)
	s.emit(dispatch.ChannelJoin,
		dispatch.ChanUser{Channel: channel, Nick: ev.Nick()},
		dispatch.Channel{Name: channel},
	)
	return nil
}

// part signals before removing so observers can still look the user up.
func (s *Session) part(ev *irc.Event) error {
	args := ev.Args()
	if len(args) < 1 {
		return ErrNotEnoughParams
	}

	channel, nick := args[0], ev.Nick()
	s.emit(dispatch.ChannelPart,
		dispatch.ChanUser{Channel: channel, Nick: nick},
		dispatch.Channel{Name: channel},
		dispatch.String(ev.Arg(1)),
	)

	if s.IsMe(nick) {
		s.State.RemoveChannel(channel)
	} else {
		s.State.RemoveUser(channel, nick)
	}
	return nil
}

func (s *Session) quit(ev *irc.Event) error {
	nick := ev.Nick()
	s.State.RemoveUserAll(nick)
	if s.Access != nil {
		s.Access.Logout(nick)
	}

	s.emit(dispatch.UserQuit,
		dispatch.NewSource(ev.Sender),
		dispatch.String(ev.Arg(0)),
	)
	return nil
}

func (s *Session) nickChange(ev *irc.Event) error {
	newNick := ev.Trailing
	if !ev.HasTrailing {
		newNick = ev.Param(0)
	}
	if len(newNick) == 0 {
		return ErrNotEnoughParams
	}

	oldNick := ev.Nick()
	if s.IsMe(oldNick) {
		s.nick = newNick
	}
	s.State.RenameUser(oldNick, newNick)
	if s.Access != nil {
		s.Access.Logout(oldNick)
	}

	s.emit(dispatch.NickChange,
		dispatch.NewSource(ev.Sender),
		dispatch.String(newNick),
	)
	return nil
}

// mode hands channel mode changes to the mode engine. The engine logs its
// own problems, none of them are fatal to the event.
func (s *Session) mode(ev *irc.Event) error {
	args := ev.Args()
	if len(args) < 2 {
		return ErrNotEnoughParams
	}

	if s.IsMe(args[0]) {
		return nil
	}

	s.applyModes(args[0], args[1], args, 2)
	return nil
}

// applyModes runs the mode engine and records how far it got.
func (s *Session) applyModes(channel, modestring string, args []string,
	argind int) {

	used, err := s.State.ApplyModes(channel, modestring, args, argind)
	if err != nil {
		s.log.Debug("Mode change stopped early", "channel", channel,
			"modes", modestring, "args_used", used, "err", err)
	}
}

func (s *Session) invite(ev *irc.Event) error {
	channel := ev.Trailing
	if !ev.HasTrailing {
		channel = ev.Param(1)
	}

	s.emit(dispatch.Invite,
		dispatch.NewSource(ev.Sender),
		dispatch.String(channel),
	)
	return nil
}

func (s *Session) topic(ev *irc.Event) error {
	if len(ev.Params) < 1 {
		return ErrNotEnoughParams
	}

	channel, topic := ev.Params[0], ev.Arg(1)
	setter := irc.NewHost(ev.Nick(), ev.Username(), ev.Hostname())
	s.State.SetTopic(channel, topic, string(setter), eventTime(ev))

	s.emit(dispatch.TopicChange,
		dispatch.ChanUser{Channel: channel, Nick: ev.Nick()},
		dispatch.Channel{Name: channel},
		dispatch.String(topic),
	)
	return nil
}

// kick signals before removing so observers can still look both users up.
func (s *Session) kick(ev *irc.Event) error {
	if len(ev.Params) < 2 {
		return ErrNotEnoughParams
	}

	channel, kicked := ev.Params[0], ev.Params[1]
	s.emit(dispatch.UserKicked,
		dispatch.ChanUser{Channel: channel, Nick: ev.Nick()},
		dispatch.Channel{Name: channel},
		dispatch.ChanUser{Channel: channel, Nick: kicked},
		dispatch.String(ev.Arg(2)),
	)

	if s.IsMe(kicked) {
		s.State.RemoveChannel(channel)
	} else {
		s.State.RemoveUser(channel, kicked)
	}
	return nil
}

// eventTime is when the event was received, or now for events built
// without a timestamp.
func eventTime(ev *irc.Event) time.Time {
	if ev.Time.IsZero() {
		return time.Now().UTC()
	}
	return ev.Time
}
