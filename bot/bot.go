package bot

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/config"
	"github.com/lunairc/luna/dispatch"
	"github.com/lunairc/luna/inet"
	"github.com/lunairc/luna/irc"
)

const (
	// defaultReconnScale is how the config's Reconnect is scaled.
	defaultReconnScale = time.Second
)

var (
	// errInvalidConfig is when New was given an invalid configuration.
	errInvalidConfig = errors.New("bot: Invalid Configuration")
)

// Conn is a connection to a server as the bot needs it: one Write per
// outgoing line and one decoded event per read.
type Conn interface {
	io.WriteCloser
	ReadEvent() (*irc.Event, error)
}

// Dialer opens a connection to the configured server.
type Dialer func(ctx context.Context, conf *config.Config,
	logger log15.Logger) (Conn, error)

// Bot runs a session over a connection, reconnecting when it drops.
type Bot struct {
	conf    *config.Config
	log     log15.Logger
	session *Session
	dial    Dialer

	reconnScale time.Duration
}

// New creates a bot from a valid configuration. The session exists right
// away so extensions can register before Run.
func New(conf *config.Config, logger log15.Logger) (*Bot, error) {
	if !conf.Validate() {
		conf.DisplayErrors(logger)
		return nil, errInvalidConfig
	}

	b := &Bot{
		conf:        conf,
		log:         logger,
		dial:        dialInet,
		reconnScale: defaultReconnScale,
	}
	b.session = NewSession(conf, irc.Helper{Writer: io.Discard},
		dispatch.NewDispatcher(logger.New("component", "dispatch")),
		logger.New("component", "session"))

	return b, nil
}

func dialInet(ctx context.Context, conf *config.Config,
	logger log15.Logger) (Conn, error) {

	client, err := inet.Dial(ctx, conf, logger.New("component", "inet"))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Session returns the bot's session.
func (b *Bot) Session() *Session {
	return b.session
}

// Dispatcher returns the dispatcher signals are sent through.
func (b *Bot) Dispatcher() *dispatch.Dispatcher {
	return b.session.Dispatcher
}

// Run connects and processes events until the context is cancelled. When
// the connection is lost it waits the configured number of seconds and
// reconnects, unless reconnecting is disabled in which case the error that
// ended the connection is returned.
func (b *Bot) Run(ctx context.Context) error {
	for {
		err := b.connect(ctx)

		if ctx.Err() != nil {
			b.log.Info("Shutting down")
			return nil
		}
		if b.conf.Reconnect == 0 {
			return err
		}

		wait := time.Duration(b.conf.Reconnect) * b.reconnScale
		b.log.Info("Disconnected, reconnecting", "err", err, "wait", wait)

		select {
		case <-ctx.Done():
			b.log.Info("Shutting down")
			return nil
		case <-time.After(wait):
		}
	}
}

// connect runs one connection from dial to disconnect.
func (b *Bot) connect(ctx context.Context) error {
	conn, err := b.dial(ctx, b.conf, b.log)
	if err != nil {
		b.log.Error("Failed to connect", "server", b.conf.Server, "err", err)
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()
	defer conn.Close()

	s := b.session
	s.Reset(irc.Helper{Writer: conn})
	if err = s.Register(); err != nil {
		return errors.Wrap(err, "bot: registering")
	}

	for {
		ev, err := conn.ReadEvent()
		if err != nil {
			return errors.Wrap(err, "bot: reading")
		}

		if err = s.HandleEvent(ev); err != nil {
			if errors.Cause(err) == ErrNotEnoughParams {
				b.log.Debug("Dropped malformed event", "event", ev.String(),
					"err", err)
			} else {
				b.log.Error("Event handling failed", "event", ev.Name,
					"err", err)
			}
		}
	}
}
