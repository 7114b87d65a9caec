package ext

import (
	"time"

	"github.com/lunairc/luna/bot"
	"github.com/lunairc/luna/dispatch"
	"github.com/lunairc/luna/registrar"
)

const (
	ctcpName    = "ctcp"
	ctcpVersion = "1.0"

	ctcpVERSION = "VERSION"
	ctcpPING    = "PING"
	ctcpTIME    = "TIME"

	// defaultVersionReply is used when the config has no version.
	defaultVersionReply = "Luna IRC bot"
)

// ctcp answers the common CTCP queries. Replies always go to the sender,
// also for queries sent to a channel.
type ctcp struct {
	session *bot.Session
	now     func() time.Time
}

// NewCTCP creates the ctcp extension.
func NewCTCP() Extension {
	return &ctcp{now: time.Now}
}

func (c *ctcp) Name() string    { return ctcpName }
func (c *ctcp) Version() string { return ctcpVersion }

func (c *ctcp) Init(s *bot.Session, reg registrar.Interface) error {
	c.session = s

	reg.Register(dispatch.PrivateCTCP, dispatch.HandlerFunc(c.private))
	reg.Register(dispatch.PublicCTCP, dispatch.HandlerFunc(c.public))
	return nil
}

func (c *ctcp) Deinit() error {
	return nil
}

// private: Source, String(verb), String(args)
func (c *ctcp) private(_ string, args []dispatch.Arg) error {
	if len(args) < 3 {
		return errBadArgs
	}
	source, ok := args[0].(dispatch.Source)
	if !ok {
		return errBadArgs
	}
	return c.answer(source.Nick, args[1].String(), args[2].String())
}

// public: ChanUser, Channel, String(verb), String(args)
func (c *ctcp) public(_ string, args []dispatch.Arg) error {
	if len(args) < 4 {
		return errBadArgs
	}
	cu, ok := args[0].(dispatch.ChanUser)
	if !ok {
		return errBadArgs
	}
	return c.answer(cu.Nick, args[2].String(), args[3].String())
}

func (c *ctcp) answer(nick, verb, data string) error {
	w := c.session.Writer

	switch verb {
	case ctcpVERSION:
		version := c.session.Config().Version
		if len(version) == 0 {
			version = defaultVersionReply
		}
		return w.CTCPReply(nick, ctcpVERSION, version)
	case ctcpPING:
		return w.CTCPReply(nick, ctcpPING, data)
	case ctcpTIME:
		return w.CTCPReply(nick, ctcpTIME, c.now().Format(time.RFC1123Z))
	}
	return nil
}
