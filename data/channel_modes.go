package data

import (
	"github.com/lunairc/luna/irc"
)

// ApplyModes applies a modestring such as "+ov-b" to a channel. Arguments
// are taken from args starting at argind, one for each letter whose kind
// needs one, left to right. It returns how many arguments were consumed.
//
// Letters are classified by the network info in this order: address list,
// always, whenset (only when setting), nick prefix, otherwise boolean.
//
// An unknown channel, a letter outside the flag slots or running out of
// arguments stops processing; letters already applied stay applied. An
// unknown nick for a prefix mode skips that letter only.
func (s *State) ApplyModes(channel, modestring string, args []string,
	argind int) (int, error) {

	ch := s.Channel(channel)
	if ch == nil {
		s.log.Warn("Unknown channel in mode change", "channel", channel)
		return 0, ErrUnknownChannel
	}

	set := true
	next := argind
	for i := 0; i < len(modestring); i++ {
		mode := modestring[i]
		switch mode {
		case '+':
			set = true
			continue
		case '-':
			set = false
			continue
		}

		slot, ok := flagIndex(mode)
		if !ok {
			s.log.Warn("Mode out of range", "channel", channel,
				"mode", string(mode))
			return next - argind, ErrModeOutOfRange
		}

		kind := s.ni.Classify(mode, set)

		var arg string
		if kind != irc.ModeBoolean {
			if next >= len(args) {
				s.log.Warn("Missing mode argument", "channel", channel,
					"mode", string(mode))
				return next - argind, ErrMissingModeArg
			}
			arg = args[next]
			next++
		}

		switch kind {
		case irc.ModeAddress:
			if set {
				ch.Modes.addAddress(slot, arg)
			} else {
				ch.Modes.removeAddress(slot, arg)
			}
		case irc.ModeAlways, irc.ModeWhenSet:
			if set {
				ch.Modes.set(slot, StringFlag(arg))
			} else {
				ch.Modes.clear(slot)
			}
		case irc.ModeNick:
			u := ch.User(arg)
			if u == nil {
				s.log.Warn("Tried to alter unknown user", "channel", channel,
					"nick", arg, "mode", string(mode))
				continue
			}
			if set {
				u.AddMode(mode)
			} else {
				u.RemoveMode(mode)
			}
		default:
			if set {
				ch.Modes.set(slot, BoolFlag{})
			} else {
				ch.Modes.clear(slot)
			}
		}
	}

	return next - argind, nil
}
