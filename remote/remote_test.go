package remote

import (
	"context"
	"net"
	"reflect"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/go-redis/redis/v8"
	"github.com/golang/protobuf/jsonpb"
	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/dispatch"
)

func testLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}

var testArgs = []dispatch.Arg{
	dispatch.ChanUser{Channel: "#chan", Nick: "alice"},
	dispatch.Channel{Name: "#chan"},
	dispatch.String("hello"),
}

var testSignal = Signal{
	Name: dispatch.PublicMessage,
	Args: []map[string]string{
		{"kind": "chanuser", "text": "alice@#chan", "channel": "#chan",
			"nick": "alice"},
		{"kind": "channel", "text": "#chan", "name": "#chan"},
		{"kind": "string", "text": "hello"},
	},
}

func TestFrame(t *testing.T) {
	t.Parallel()

	got := DecodeFrame(NewFrame(dispatch.PublicMessage, testArgs))
	if !reflect.DeepEqual(got, testSignal) {
		t.Errorf("want: %#v\ngot:  %#v", testSignal, got)
	}

	got = DecodeFrame(NewFrame(dispatch.ScriptLoad, []dispatch.Arg{
		dispatch.Source{Nick: "n", Username: "u", Hostname: "h"},
		dispatch.Script{Name: "urls", Version: "1.0"},
	}))
	want := []map[string]string{
		{"kind": "source", "text": "n!u@h", "nick": "n", "username": "u",
			"hostname": "h"},
		{"kind": "script", "text": "urls v1.0", "name": "urls",
			"version": "1.0"},
	}
	if !reflect.DeepEqual(got.Args, want) {
		t.Errorf("want: %#v\ngot:  %#v", want, got.Args)
	}

	if got = DecodeFrame(NewFrame(dispatch.Ping, nil)); got.Name != "ping" ||
		len(got.Args) != 0 {

		t.Error("Expected a bare ping, got:", got)
	}
	if got = DecodeFrame(nil); got.Name != "" {
		t.Error("A nil frame decodes to nothing:", got)
	}
}

func TestServer_Subscribe(t *testing.T) {
	t.Parallel()

	lis := bufconn.Listen(1 << 16)
	server := NewServer(testLogger())
	go server.Serve(lis)
	defer server.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := Dial(ctx, "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithInsecure(),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	received := make(chan Signal, 10)
	subErr := make(chan error, 1)
	go func() {
		subErr <- client.Subscribe(ctx, func(sig Signal) error {
			received <- sig
			return nil
		})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for server.Subscribers() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("The subscriber never arrived.")
		}
		time.Sleep(5 * time.Millisecond)
	}

	d := dispatch.NewDispatcher(testLogger())
	d.Register("", server)
	d.Dispatch(dispatch.PublicMessage, testArgs...)
	d.Dispatch(dispatch.Ping)

	for _, want := range []Signal{testSignal, {Name: dispatch.Ping}} {
		select {
		case got := <-received:
			if !reflect.DeepEqual(got, want) {
				t.Errorf("want: %#v\ngot:  %#v", want, got)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Timed out waiting for", want.Name)
		}
	}

	cancel()
	select {
	case <-subErr:
	case <-time.After(5 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}

	deadline = time.Now().Add(5 * time.Second)
	for server.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("The subscriber was never removed.")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_SlowSubscriber(t *testing.T) {
	t.Parallel()

	server := NewServer(testLogger())
	sb := server.subscribe()

	for i := 0; i < subscriberBuffer+10; i++ {
		if err := server.HandleSignal(dispatch.Ping, nil); err != nil {
			t.Fatal(err)
		}
	}

	if len(sb.frames) != subscriberBuffer {
		t.Error("The buffer should be full:", len(sb.frames))
	}
	if sb.dropped != 10 {
		t.Error("Expected ten drops, got:", sb.dropped)
	}

	server.unsubscribe(sb.id)
	if server.Subscribers() != 0 {
		t.Error("Should have no subscribers.")
	}
}

// sink records what would have been published.
type sink struct {
	mut      sync.Mutex
	channels []string
	messages []string
	err      error
	block    chan struct{}
}

func (s *sink) Publish(ctx context.Context, channel string,
	message interface{}) *redis.IntCmd {

	if s.block != nil {
		<-s.block
	}

	s.mut.Lock()
	defer s.mut.Unlock()
	s.channels = append(s.channels, channel)
	s.messages = append(s.messages, message.(string))
	return redis.NewIntResult(1, s.err)
}

func TestCounterAlignment(t *testing.T) {
	t.Parallel()

	// 32-bit platforms only guarantee 64-bit alignment for the first word
	// of an allocated struct.
	if off := unsafe.Offsetof(sub{}.dropped); off != 0 {
		t.Error("sub.dropped should be the first field, offset:", off)
	}
	if off := unsafe.Offsetof(Publisher{}.dropped); off != 0 {
		t.Error("Publisher.dropped should be the first field, offset:", off)
	}
}

func TestPublisher(t *testing.T) {
	t.Parallel()

	sk := &sink{}
	p := NewPublisher(sk, "luna.signals", testLogger())

	d := dispatch.NewDispatcher(testLogger())
	d.Register("", p)
	d.Dispatch(dispatch.PublicMessage, testArgs...)
	d.Dispatch(dispatch.Ping)
	p.Close()

	if len(sk.messages) != 2 {
		t.Fatal("Expected two messages, got:", sk.messages)
	}
	for _, ch := range sk.channels {
		if ch != "luna.signals" {
			t.Error("Wrong channel:", ch)
		}
	}

	frame := new(structpb.Struct)
	if err := jsonpb.UnmarshalString(sk.messages[0], frame); err != nil {
		t.Fatal(err)
	}
	if got := DecodeFrame(frame); !reflect.DeepEqual(got, testSignal) {
		t.Errorf("want: %#v\ngot:  %#v", testSignal, got)
	}

	// After closing nothing more is queued.
	if err := p.HandleSignal(dispatch.Ping, nil); err != nil {
		t.Error(err)
	}
	if len(sk.messages) != 2 {
		t.Error("Closed publishers publish nothing:", sk.messages)
	}
}

func TestPublisher_Failures(t *testing.T) {
	t.Parallel()

	sk := &sink{err: errors.New("connection refused"), block: make(chan struct{})}
	p := NewPublisher(sk, "luna.signals", testLogger())

	// One is taken by the publishing goroutine, so at most one more than
	// the queue holds is accepted.
	for i := 0; i < publishQueue+10; i++ {
		p.HandleSignal(dispatch.Ping, nil)
	}
	if n := p.Dropped(); n < 9 {
		t.Error("Expected drops once the queue filled, got:", n)
	}

	close(sk.block)
	p.Close()

	if n := uint64(len(sk.messages)) + p.Dropped(); n != publishQueue+10 {
		t.Error("Every signal is either published or dropped, got:", n)
	}
}
