package bot

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lunairc/luna/data"
	"github.com/lunairc/luna/dispatch"
	"github.com/lunairc/luna/irc"
)

const (
	load        = `load`
	reload      = `reload`
	unload      = `unload`
	reloadusers = `reloadusers`
	identify    = `identify`
	logout      = `logout`

	// adminFlag is the access flag the admin commands require.
	adminFlag = 'o'

	loadAlready     = `Script already loaded!`
	loadSuccess     = `Loaded script '%s v%s'`
	loadFailure     = `Failed to load script!`
	reloadLoading   = `Script not loaded! Loading...`
	reloadSuccess   = `Reloaded script '%s v%s'`
	reloadFailure   = `Failed to reload script!`
	unloadMissing   = `Script not loaded!`
	unloadSuccess   = `Unloaded script!`
	unloadFailure   = `Failed to unload script!`
	usersSuccess    = `Reloaded %d users!`
	usersFailure    = `Failed to load users :(`
	identifySuccess = `Identified as %s.`
	identifyFailed  = `Identify failed.`
	logoutSuccess   = `Logged out.`
)

// command handles a message addressed to us. Admin commands run first when
// the sender has access, then the command is signalled like any other. A
// private identify is consumed here so the password goes no further.
func (s *Session) command(ev *irc.Event, priv bool, target, cmd,
	rest string) (consumed bool, err error) {

	lcmd := strings.ToLower(cmd)
	if priv {
		switch lcmd {
		case identify:
			return true, s.identify(ev, rest)
		case logout:
			if s.Access != nil {
				s.Access.Logout(ev.Nick())
			}
			err = s.reply(ev, priv, target, logoutSuccess)
		}
	}

	switch lcmd {
	case load, reload, unload, reloadusers:
		if s.isAdmin(ev) {
			err = s.admin(ev, priv, target, lcmd, firstWord(rest))
		}
	}

	if priv {
		s.emit(dispatch.PrivateCommand,
			dispatch.NewSource(ev.Sender),
			dispatch.String(cmd),
			dispatch.String(rest),
		)
	} else {
		s.emit(dispatch.PublicCommand,
			dispatch.ChanUser{Channel: target, Nick: ev.Nick()},
			dispatch.Channel{Name: target},
			dispatch.String(cmd),
			dispatch.String(rest),
		)
	}

	return false, err
}

// isAdmin checks the sender's account for the admin flag.
func (s *Session) isAdmin(ev *irc.Event) bool {
	if s.Access == nil {
		return false
	}

	a, err := s.Access.Match(ev.Host())
	if err != nil {
		s.log.Error("Access lookup failed", "host", ev.Sender, "err", err)
		return false
	}
	return a != nil && a.HasFlag(adminFlag)
}

func (s *Session) admin(ev *irc.Event, priv bool, target, cmd,
	name string) error {

	reply := func(format string, args ...interface{}) error {
		return s.replyf(ev, priv, target, format, args...)
	}

	switch cmd {
	case load:
		return s.loadScript(reply, name)

	case reload:
		if _, ok := s.scriptLoaded(name); !ok {
			if err := reply(reloadLoading); err != nil {
				return err
			}
			return s.loadScript(reply, name)
		}
		version, err := s.Scripts.Reload(name)
		if err != nil {
			s.log.Error("Failed to reload script", "script", name, "err", err)
			return reply(reloadFailure)
		}
		return reply(reloadSuccess, name, version)

	case unload:
		version, ok := s.scriptLoaded(name)
		if !ok {
			return reply(unloadMissing)
		}
		if err := s.Scripts.Unload(name); err != nil {
			s.log.Error("Failed to unload script", "script", name, "err", err)
			return reply(unloadFailure)
		}
		err := reply(unloadSuccess)
		s.emit(dispatch.ScriptUnload,
			dispatch.Script{Name: name, Version: version})
		return err

	case reloadusers:
		n, err := s.Access.ImportFile(s.conf.UsersFile)
		if err != nil {
			s.log.Error("Failed to load users", "file", s.conf.UsersFile,
				"err", err)
			return reply(usersFailure)
		}
		return reply(usersSuccess, n)
	}

	return nil
}

func (s *Session) loadScript(reply func(string, ...interface{}) error,
	name string) error {

	if _, ok := s.scriptLoaded(name); ok {
		return reply(loadAlready)
	}
	if s.Scripts == nil {
		return reply(loadFailure)
	}

	version, err := s.Scripts.Load(name)
	if err != nil {
		s.log.Error("Failed to load script", "script", name, "err", err)
		return reply(loadFailure)
	}

	err = reply(loadSuccess, name, version)
	s.emit(dispatch.ScriptLoad, dispatch.Script{Name: name, Version: version})
	return err
}

func (s *Session) scriptLoaded(name string) (version string, ok bool) {
	if s.Scripts == nil {
		return "", false
	}
	return s.Scripts.Loaded(name)
}

// identify binds the sender's host to an account:
// identify <account> <password>
func (s *Session) identify(ev *irc.Event, rest string) error {
	args := strings.Fields(rest)
	if s.Access == nil || len(args) != 2 {
		return s.reply(ev, true, "", identifyFailed)
	}

	a, err := s.Access.Identify(ev.Host(), args[0], args[1])
	if err != nil {
		if c := errors.Cause(err); c != data.ErrAccountNotFound &&
			c != data.ErrAccountBadPassword {

			s.log.Error("Identify failed", "host", ev.Sender, "err", err)
		}
		return s.reply(ev, true, "", identifyFailed)
	}

	s.log.Info("Identified", "host", ev.Sender, "account", a.ID)
	return s.replyf(ev, true, "", identifySuccess, a.ID)
}

// reply answers a command in the channel it came from, or privately to the
// sender, addressing the sender by nick.
func (s *Session) reply(ev *irc.Event, priv bool, target, text string) error {
	to := target
	if priv {
		to = ev.Nick()
	}
	return s.Writer.Privmsg(to, ev.Nick()+": "+text)
}

func (s *Session) replyf(ev *irc.Event, priv bool, target, format string,
	args ...interface{}) error {

	to := target
	if priv {
		to = ev.Nick()
	}
	return s.Writer.Privmsgf(to, "%s: "+format,
		append([]interface{}{ev.Nick()}, args...)...)
}

func firstWord(str string) string {
	if fields := strings.Fields(str); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
