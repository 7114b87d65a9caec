package bot

import (
	"context"
	"io"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/config"
	"github.com/lunairc/luna/dispatch"
	"github.com/lunairc/luna/irc"
	"github.com/lunairc/luna/parse"
)

// fakeConn serves a fixed set of lines then blocks until closed, or
// returns EOF straight away if eof is set.
type fakeConn struct {
	lines []string
	eof   bool

	mut     sync.Mutex
	written []string
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn(eof bool, lines ...string) *fakeConn {
	return &fakeConn{lines: lines, eof: eof, closed: make(chan struct{})}
}

func (f *fakeConn) ReadEvent() (*irc.Event, error) {
	if len(f.lines) > 0 {
		line := f.lines[0]
		f.lines = f.lines[1:]
		return parse.Parse(line)
	}
	if f.eof {
		return nil, io.EOF
	}
	<-f.closed
	return nil, errors.New("use of closed connection")
}

func (f *fakeConn) Write(b []byte) (int, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	f.written = append(f.written, string(b))
	return len(b), nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) sent() []string {
	f.mut.Lock()
	defer f.mut.Unlock()
	return append([]string(nil), f.written...)
}

func testBot(t *testing.T, extra string, dial Dialer) *Bot {
	t.Helper()

	b, err := New(config.FromString(testConfig+extra), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	b.dial = dial
	b.reconnScale = time.Millisecond
	return b
}

func TestBot_New(t *testing.T) {
	t.Parallel()

	if _, err := New(config.FromString(`server = "irc.test"`),
		testLogger()); err == nil {

		t.Error("A config without a nick should not make a bot.")
	}

	b, err := New(config.FromString(testConfig), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if b.Session() == nil || b.Dispatcher() != b.Session().Dispatcher {
		t.Error("The session should exist before Run.")
	}
}

func TestBot_Run(t *testing.T) {
	t.Parallel()

	conn := newFakeConn(true,
		":srv 001 luna :Welcome",
		":srv 376 luna :End of /MOTD command.",
		"PING :srv",
	)
	b := testBot(t, "reconnect = 0", func(context.Context, *config.Config,
		log15.Logger) (Conn, error) {
		return conn, nil
	})

	var connected int
	b.Dispatcher().Register(dispatch.Connect, dispatch.HandlerFunc(
		func(string, []dispatch.Arg) error {
			connected++
			return nil
		}))

	err := b.Run(context.Background())
	if errors.Cause(err) != io.EOF {
		t.Error("Without reconnect the read error is returned, got:", err)
	}
	if connected != 1 {
		t.Error("Expected one connect, got:", connected)
	}

	want := []string{
		"NICK :luna",
		"USER luna 0 * :Luna",
		"JOIN :#luna,#dev",
		"PONG :srv",
	}
	if got := conn.sent(); !reflect.DeepEqual(got, want) {
		t.Errorf("want: %q\ngot: %q", want, got)
	}
	if !b.Session().Registered() {
		t.Error("The session should have registered.")
	}
}

func TestBot_RunDialFailure(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("connection refused")
	b := testBot(t, "reconnect = 0", func(context.Context, *config.Config,
		log15.Logger) (Conn, error) {
		return nil, dialErr
	})

	if err := b.Run(context.Background()); err != dialErr {
		t.Error("Expected the dial error, got:", err)
	}
}

func TestBot_RunReconnects(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dials int
	var conns []*fakeConn
	b := testBot(t, "reconnect = 1", func(context.Context, *config.Config,
		log15.Logger) (Conn, error) {

		dials++
		if dials == 3 {
			cancel()
			return nil, errors.New("shutting down")
		}
		conn := newFakeConn(true, ":luna!l@me.host JOIN #chan")
		conns = append(conns, conn)
		return conn, nil
	})

	if err := b.Run(ctx); err != nil {
		t.Error("Cancelling should end Run cleanly, got:", err)
	}
	if dials != 3 {
		t.Error("Expected three dials, got:", dials)
	}
	for i, conn := range conns {
		if got := conn.sent(); len(got) < 2 || got[0] != "NICK :luna" {
			t.Errorf("%d: every connection should register, got: %q", i, got)
		}
	}
	if b.Session().State.NChannels() != 1 {
		t.Error("State should come from the last connection only.")
	}
}

func TestBot_RunCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	conn := newFakeConn(false)
	b := testBot(t, "reconnect = 0", func(context.Context, *config.Config,
		log15.Logger) (Conn, error) {
		return conn, nil
	})

	done := make(chan error)
	go func() {
		done <- b.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Error("Cancelling should end Run cleanly, got:", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	select {
	case <-conn.closed:
	default:
		t.Error("The connection should be closed.")
	}
}
