package ext

import (
	"regexp"

	"github.com/pkg/errors"
	"mvdan.cc/xurls/v2"

	"github.com/lunairc/luna/bot"
	"github.com/lunairc/luna/dispatch"
	"github.com/lunairc/luna/registrar"
)

const (
	// URLSeen is emitted once for every url found in a message with the
	// arguments: Source, String(target), String(url).
	URLSeen = "url_seen"

	urlsName    = "urls"
	urlsVersion = "1.0"
)

var errBadArgs = errors.New("ext: unexpected signal arguments")

// urls watches messages for links.
type urls struct {
	session *bot.Session
	rx      *regexp.Regexp
}

// NewURLs creates the urls extension.
func NewURLs() Extension {
	return &urls{}
}

func (u *urls) Name() string    { return urlsName }
func (u *urls) Version() string { return urlsVersion }

func (u *urls) Init(s *bot.Session, reg registrar.Interface) error {
	u.session = s
	u.rx = xurls.Strict()

	reg.Register(dispatch.PublicMessage, dispatch.HandlerFunc(u.public))
	reg.Register(dispatch.PrivateMessage, dispatch.HandlerFunc(u.private))
	return nil
}

func (u *urls) Deinit() error {
	return nil
}

// public: ChanUser, Channel, String(msg)
func (u *urls) public(_ string, args []dispatch.Arg) error {
	if len(args) < 3 {
		return errBadArgs
	}
	cu, ok1 := args[0].(dispatch.ChanUser)
	msg, ok2 := args[2].(dispatch.String)
	if !ok1 || !ok2 {
		return errBadArgs
	}

	source := dispatch.Source{Nick: cu.Nick}
	if ch := u.session.State.Channel(cu.Channel); ch != nil {
		if user := ch.User(cu.Nick); user != nil {
			source = dispatch.NewSource(string(user.Host()))
		}
	}

	u.emit(source, cu.Channel, string(msg))
	return nil
}

// private: Source, String(msg)
func (u *urls) private(_ string, args []dispatch.Arg) error {
	if len(args) < 2 {
		return errBadArgs
	}
	source, ok1 := args[0].(dispatch.Source)
	msg, ok2 := args[1].(dispatch.String)
	if !ok1 || !ok2 {
		return errBadArgs
	}

	u.emit(source, u.session.Nick(), string(msg))
	return nil
}

func (u *urls) emit(source dispatch.Source, target, msg string) {
	for _, url := range u.rx.FindAllString(msg, -1) {
		u.session.Dispatcher.Dispatch(URLSeen,
			source,
			dispatch.String(target),
			dispatch.String(url),
		)
	}
}
