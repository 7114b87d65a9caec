package remote

import (
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/golang/protobuf/ptypes/empty"
	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/dispatch"
)

const (
	// subscriberBuffer is how many frames may wait for a slow subscriber
	// before frames are dropped for it.
	subscriberBuffer = 256
)

// SignalsServer is the server API for the luna.Signals service.
type SignalsServer interface {
	Subscribe(*empty.Empty, Signals_SubscribeServer) error
}

// Signals_SubscribeServer is the stream a subscription writes to.
type Signals_SubscribeServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type signalsSubscribeServer struct {
	grpc.ServerStream
}

func (x *signalsSubscribeServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func subscribeHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(empty.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(SignalsServer).Subscribe(m, &signalsSubscribeServer{stream})
}

var signalsServiceDesc = grpc.ServiceDesc{
	ServiceName: "luna.Signals",
	HandlerType: (*SignalsServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "luna/signals.proto",
}

// RegisterSignalsServer registers the service with a grpc server.
func RegisterSignalsServer(s *grpc.Server, srv SignalsServer) {
	s.RegisterService(&signalsServiceDesc, srv)
}

// sub is one subscriber's queue. dropped is first to keep it 64-bit
// aligned for atomic access.
type sub struct {
	dropped uint64
	id      uint64
	frames  chan *structpb.Struct
}

// Server streams every signal to its subscribers. It is a dispatch.Handler
// and should be registered for all signals. Handling a signal never waits
// on a subscriber, a subscriber whose buffer is full misses the frame.
type Server struct {
	log log15.Logger

	mut       sync.RWMutex
	nextSubID uint64
	subs      map[uint64]*sub

	grpcServer *grpc.Server
}

var _ SignalsServer = &Server{}
var _ dispatch.Handler = &Server{}

// NewServer creates a server with no subscribers.
func NewServer(logger log15.Logger) *Server {
	return &Server{
		log:       logger,
		nextSubID: 1,
		subs:      make(map[uint64]*sub),
	}
}

// Listen creates a listener for an address, a path is a unix socket.
func Listen(addr string) (net.Listener, error) {
	proto := "tcp"
	if strings.Contains(addr, "/") {
		proto = "unix"
	}

	lis, err := net.Listen(proto, addr)
	return lis, errors.Wrapf(err, "remote: listening on %s", addr)
}

// Serve accepts subscribers on lis until Stop is called.
func (s *Server) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	grpcServer := grpc.NewServer(opts...)
	RegisterSignalsServer(grpcServer, s)

	s.mut.Lock()
	s.grpcServer = grpcServer
	s.mut.Unlock()

	s.log.Info("Remote server listening", "addr", lis.Addr().String())
	err := grpcServer.Serve(lis)
	if err == grpc.ErrServerStopped {
		return nil
	}
	return err
}

// Stop closes the listener and every subscription.
func (s *Server) Stop() {
	s.mut.RLock()
	grpcServer := s.grpcServer
	s.mut.RUnlock()

	if grpcServer != nil {
		grpcServer.Stop()
	}
}

// Subscribers returns how many subscribers are connected.
func (s *Server) Subscribers() int {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return len(s.subs)
}

// HandleSignal queues the signal for every subscriber.
func (s *Server) HandleSignal(signal string, args []dispatch.Arg) error {
	s.mut.RLock()
	defer s.mut.RUnlock()

	if len(s.subs) == 0 {
		return nil
	}

	frame := NewFrame(signal, args)
	for _, sb := range s.subs {
		select {
		case sb.frames <- frame:
		default:
			if n := atomic.AddUint64(&sb.dropped, 1); n == 1 || n%100 == 0 {
				s.log.Warn("Subscriber too slow, dropping signals",
					"subid", sb.id, "dropped", n)
			}
		}
	}
	return nil
}

// Subscribe streams signals until the subscriber goes away.
func (s *Server) Subscribe(_ *empty.Empty, stream Signals_SubscribeServer) error {
	sb := s.subscribe()
	defer s.unsubscribe(sb.id)

	s.log.Debug("Remote subscriber", "subid", sb.id)
	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Remote subscriber closed", "subid", sb.id,
				"dropped", atomic.LoadUint64(&sb.dropped))
			return nil
		case frame := <-sb.frames:
			if err := stream.Send(frame); err != nil {
				s.log.Error("Remote send failed", "subid", sb.id, "err", err)
				return err
			}
		}
	}
}

func (s *Server) subscribe() *sub {
	s.mut.Lock()
	defer s.mut.Unlock()

	sb := &sub{
		id:     s.nextSubID,
		frames: make(chan *structpb.Struct, subscriberBuffer),
	}
	s.nextSubID++
	s.subs[sb.id] = sb
	return sb
}

func (s *Server) unsubscribe(id uint64) {
	s.mut.Lock()
	defer s.mut.Unlock()
	delete(s.subs, id)
}

// Client receives signals from a Server.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a server.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "remote: dialing %s", addr)
	}
	return &Client{conn: conn}, nil
}

// Subscribe calls fn for every signal until the context is cancelled, the
// stream breaks or fn returns an error.
func (c *Client) Subscribe(ctx context.Context, fn func(Signal) error) error {
	stream, err := c.conn.NewStream(ctx, &signalsServiceDesc.Streams[0],
		"/luna.Signals/Subscribe")
	if err != nil {
		return errors.Wrap(err, "remote: subscribing")
	}
	if err = stream.SendMsg(new(empty.Empty)); err != nil {
		return errors.Wrap(err, "remote: subscribing")
	}
	if err = stream.CloseSend(); err != nil {
		return errors.Wrap(err, "remote: subscribing")
	}

	for {
		frame := new(structpb.Struct)
		if err = stream.RecvMsg(frame); err != nil {
			return err
		}
		if err = fn(DecodeFrame(frame)); err != nil {
			return err
		}
	}
}

// Close the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
