/*
Package inet handles connecting to an irc server and reading and writing to
the connection. Reads are done a line at a time on the caller's goroutine,
writes are queued and paced by flood protection on a pump goroutine.
*/
package inet

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ergochat/irc-go/ircreader"
	"golang.org/x/time/rate"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/irc"
	"github.com/lunairc/luna/parse"
)

const (
	// nBufferedWrites is how many writes can succeed before blocking
	nBufferedWrites = 25
	// initialReadBuffer is the starting size of the line reader's buffer.
	initialReadBuffer = 1024
	// maxLineLength bounds one incoming line including message tags.
	maxLineLength = 8191 + 512
)

var (
	// pong allows replies to pings to skip flood protection
	pong = []byte(irc.PONG)
	// crlf terminates every line written
	crlf = []byte("\r\n")
)

// Client represents a connection to an irc server. Writes are throttled by a
// token bucket: burst lines may go out at once, after that rate lines per
// second. It implements io.WriteCloser, one Write being one line.
type Client struct {
	conn net.Conn
	log  log15.Logger

	reader  ircreader.Reader
	limiter *rate.Limiter
	queue   Queue

	pumpchan chan []byte
	killpump chan struct{}
	pumpdone chan struct{}

	closeOnce sync.Once
	protect   sync.RWMutex
	err       error
}

// NewClient wraps a connection and starts its write pump. A rate of 0 or
// less turns flood protection off.
func NewClient(conn net.Conn, rateLimit float64, burst int,
	logger log15.Logger) *Client {

	limit := rate.Limit(rateLimit)
	if rateLimit <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		conn:     conn,
		log:      logger,
		limiter:  rate.NewLimiter(limit, burst),
		pumpchan: make(chan []byte, nBufferedWrites),
		killpump: make(chan struct{}),
		pumpdone: make(chan struct{}),
	}
	c.reader.Initialize(conn, initialReadBuffer, maxLineLength)

	go c.pump()
	return c
}

// ReadLine reads one line without its terminator. The returned string is
// the caller's to keep.
func (c *Client) ReadLine() (string, error) {
	line, err := c.reader.ReadLine()
	if err != nil {
		return "", err
	}
	c.log.Debug("->", "line", string(line))
	return string(line), nil
}

// ReadEvent reads lines until one parses into an event. Unparseable lines
// are logged and skipped.
func (c *Client) ReadEvent() (*irc.Event, error) {
	for {
		line, err := c.ReadLine()
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			continue
		}

		ev, err := parse.Parse(line)
		if err != nil {
			c.log.Warn("Failed to parse line", "line", line, "err", err)
			continue
		}
		return ev, nil
	}
}

// Write queues one line to be written. A trailing line terminator is
// optional. Returns io.EOF if the client has been closed or the connection
// failed, in which case Err has the reason.
func (c *Client) Write(buf []byte) (int, error) {
	line := bytes.TrimRight(buf, "\r\n")
	if len(line) == 0 {
		return 0, nil
	}

	msg := make([]byte, len(line), len(line)+len(crlf))
	copy(msg, line)
	msg = append(msg, crlf...)

	select {
	case c.pumpchan <- msg:
		return len(buf), nil
	case <-c.pumpdone:
		return 0, io.EOF
	}
}

// pump writes queued lines to the connection. Lines starting with PONG are
// written immediately, everything else waits its turn in the queue for a
// token from the limiter.
func (c *Client) pump() {
	defer close(c.pumpdone)

	var sleeper <-chan time.Time
	for {
		select {
		case msg := <-c.pumpchan:
			if bytes.HasPrefix(msg, pong) {
				if c.writeMessage(msg) != nil {
					return
				}
				continue
			}

			c.queue.Enqueue(msg)
			if sleeper == nil {
				sleeper = c.schedule()
			}
		case <-sleeper:
			sleeper = nil
			if c.writeMessage(c.queue.Dequeue()) != nil {
				return
			}
			if c.queue.Len() > 0 {
				sleeper = c.schedule()
			}
		case <-c.killpump:
			return
		}
	}
}

// schedule reserves a token for the line at the front of the queue and
// returns a channel that fires when it may be written.
func (c *Client) schedule() <-chan time.Time {
	return time.After(c.limiter.Reserve().Delay())
}

// writeMessage writes one line to the socket. A failed write closes the
// connection so the reader notices too.
func (c *Client) writeMessage(msg []byte) error {
	wrote := msg[:len(msg)-len(crlf)]

	var n int
	var err error
	for written := 0; written < len(msg); written += n {
		if n, err = c.conn.Write(msg[written:]); err != nil {
			c.log.Error("Write failed", "line", string(wrote), "err", err)
			c.setErr(err)
			c.conn.Close()
			return err
		}
	}

	c.log.Debug("<-", "line", string(wrote))
	return nil
}

func (c *Client) setErr(err error) {
	c.protect.Lock()
	defer c.protect.Unlock()

	if c.err == nil {
		c.err = err
	}
}

// Err returns the error that stopped the write pump, if any.
func (c *Client) Err() error {
	c.protect.RLock()
	defer c.protect.RUnlock()

	return c.err
}

// Close stops the write pump and closes the connection. Lines still waiting
// on flood protection are dropped.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.killpump)
		<-c.pumpdone
		if n := c.queue.Len(); n > 0 {
			c.log.Debug("Discarded queued lines", "lines", n)
		}
		err = c.conn.Close()
	})
	return err
}

// IsClosed returns true if the write pump has stopped.
func (c *Client) IsClosed() bool {
	select {
	case <-c.pumpdone:
		return true
	default:
		return false
	}
}
