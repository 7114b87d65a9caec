/*
Package bot turns decoded protocol events into channel state and named
signals. A Session is the whole context of one connection: our identity, the
negotiated network info, the channel store and the dispatcher signals go
out through. The Bot runs a Session over a connection and reconnects it.
*/
package bot

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/config"
	"github.com/lunairc/luna/data"
	"github.com/lunairc/luna/dispatch"
	"github.com/lunairc/luna/irc"
)

var (
	// ErrNotEnoughParams is returned when an event is missing parameters its
	// verb requires. The event is dropped without touching state.
	ErrNotEnoughParams = errors.New("bot: not enough parameters")
)

// Access looks up the account behind a sender. It gates the administrative
// commands.
type Access interface {
	Match(host irc.Host) (*data.Account, error)
	Identify(host irc.Host, id, password string) (*data.Account, error)
	Logout(nick string)
	ImportFile(path string) (int, error)
}

// ScriptHost loads and unloads named extensions. Loaded, Load and Reload
// return the version of the extension.
type ScriptHost interface {
	Loaded(name string) (version string, ok bool)
	Load(name string) (version string, err error)
	Reload(name string) (version string, err error)
	Unload(name string) error
}

// Session holds everything one connection's event handling needs. Handlers
// receive it explicitly, there is no package level state. It belongs to the
// goroutine reading the connection and is not safe for concurrent use.
type Session struct {
	Network    *irc.NetworkInfo
	State      *data.State
	Dispatcher *dispatch.Dispatcher
	Writer     irc.Writer

	// Access is optional, without it nobody may use admin commands.
	Access Access
	// Scripts is optional, without it every load fails.
	Scripts ScriptHost

	conf *config.Config
	log  log15.Logger

	nick       string
	nickvalue  int
	registered bool
}

// NewSession creates a session that writes to w and signals through d.
func NewSession(conf *config.Config, w irc.Writer, d *dispatch.Dispatcher,
	logger log15.Logger) *Session {

	s := &Session{
		Dispatcher: d,
		conf:       conf,
		log:        logger,
	}
	s.Reset(w)
	return s
}

// Reset prepares the session for a new connection. Channel state and
// negotiated network info are thrown away, the dispatcher's handlers stay.
func (s *Session) Reset(w irc.Writer) {
	s.Writer = w
	s.Network = irc.NewNetworkInfo()
	s.State = data.NewState(s.Network, s.log)
	s.nick = s.conf.Nick
	s.nickvalue = 0
	s.registered = false
}

// Nick is our current nickname.
func (s *Session) Nick() string {
	return s.nick
}

// Config returns the configuration the session was made with.
func (s *Session) Config() *config.Config {
	return s.conf
}

// Logger returns the session's logger.
func (s *Session) Logger() log15.Logger {
	return s.log
}

// Registered is true once the server has welcomed us.
func (s *Session) Registered() bool {
	return s.registered
}

// IsMe checks a nick against ours using the network's casemapping.
func (s *Session) IsMe(nick string) bool {
	return s.Network.Equal(nick, s.nick)
}

// IsPrivate checks if a target is not a channel.
func (s *Session) IsPrivate(target string) bool {
	return !s.Network.IsChannel(target)
}

// Register sends the lines that start registration on a fresh connection.
func (s *Session) Register() error {
	if len(s.conf.Password) > 0 {
		if err := s.Writer.Send(irc.PASS + " :" + s.conf.Password); err != nil {
			return err
		}
	}
	if err := s.Writer.Send(irc.NICK + " :" + s.nick); err != nil {
		return err
	}
	return s.Writer.Sendf("%s %s 0 * :%s", irc.USER, s.conf.Username,
		s.conf.Realname)
}

// nextNick picks the nick to try after the server refused the last one:
// the altnick first, then the nick with underscores appended.
func (s *Session) nextNick() string {
	defer func() { s.nickvalue++ }()

	if s.nickvalue == 0 && len(s.conf.Altnick) > 0 {
		return s.conf.Altnick
	}
	if s.nickvalue == 0 {
		s.nickvalue++
	}

	nick := s.conf.Nick + strings.Repeat("_", s.nickvalue)
	if s.Network.Equal(nick, s.conf.Altnick) {
		s.nickvalue++
		nick += "_"
	}
	return nick
}

// emit is shorthand for dispatching a signal.
func (s *Session) emit(signal string, args ...dispatch.Arg) {
	s.Dispatcher.Dispatch(signal, args...)
}
