package inet

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/proxy"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/config"
)

// dialTimeout bounds connecting and the tls handshake.
const dialTimeout = 30 * time.Second

// Dial connects to the configured server, through the proxy if one is
// configured, wraps the connection in tls if asked to and returns a running
// Client.
func Dial(ctx context.Context, conf *config.Config,
	logger log15.Logger) (*Client, error) {

	conn, err := dialConn(ctx, conf)
	if err != nil {
		return nil, err
	}

	if conf.TLS {
		host, _, _ := net.SplitHostPort(conf.Server)
		tlsConn := tls.Client(conn, &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: conf.TLSNoVerify,
		})

		tlsConn.SetDeadline(time.Now().Add(dialTimeout))
		if err = tlsConn.Handshake(); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "inet: tls handshake with %s",
				conf.Server)
		}
		tlsConn.SetDeadline(time.Time{})
		conn = tlsConn
	}

	logger.Info("Connected", "server", conf.Server, "tls", conf.TLS)
	return NewClient(conn, float64(conf.FloodRate), conf.FloodBurst, logger), nil
}

func dialConn(ctx context.Context, conf *config.Config) (net.Conn, error) {
	direct := &net.Dialer{Timeout: dialTimeout}

	if len(conf.Proxy) == 0 {
		conn, err := direct.DialContext(ctx, "tcp", conf.Server)
		return conn, errors.Wrapf(err, "inet: dialing %s", conf.Server)
	}

	u, err := url.Parse(conf.Proxy)
	if err != nil {
		return nil, errors.Wrap(err, "inet: parsing proxy url")
	}
	dialer, err := proxy.FromURL(u, direct)
	if err != nil {
		return nil, errors.Wrapf(err, "inet: proxy %s", u.Redacted())
	}

	conn, err := dialer.Dial("tcp", conf.Server)
	return conn, errors.Wrapf(err, "inet: dialing %s through %s", conf.Server,
		u.Redacted())
}
