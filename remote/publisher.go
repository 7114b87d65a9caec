package remote

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang/protobuf/jsonpb"
	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/dispatch"
)

const (
	// publishQueue is how many encoded signals may wait for redis.
	publishQueue = 1024
	// publishTimeout bounds a single PUBLISH.
	publishTimeout = 5 * time.Second
)

// Sink is where the publisher sends encoded frames. *redis.Client is one.
type Sink interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher publishes every signal as a JSON frame on a redis channel. It is
// a dispatch.Handler and should be registered for all signals. Frames are
// queued and published by a single goroutine, in order. When the queue is
// full frames are dropped.
type Publisher struct {
	// dropped is first to keep it 64-bit aligned for atomic access.
	dropped uint64

	sink    Sink
	channel string
	log     log15.Logger
	marshal jsonpb.Marshaler

	queue chan string

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

var _ dispatch.Handler = &Publisher{}

// NewRedisClient creates a redis client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewPublisher starts a publisher sending to channel through sink.
func NewPublisher(sink Sink, channel string, logger log15.Logger) *Publisher {
	p := &Publisher{
		sink:    sink,
		channel: channel,
		log:     logger,
		queue:   make(chan string, publishQueue),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go p.run()
	return p
}

// HandleSignal encodes and queues the signal.
func (p *Publisher) HandleSignal(signal string, args []dispatch.Arg) error {
	msg, err := p.marshal.MarshalToString(NewFrame(signal, args))
	if err != nil {
		return errors.Wrap(err, "remote: encoding signal")
	}

	select {
	case <-p.stop:
		return nil
	default:
	}

	select {
	case p.queue <- msg:
	default:
		if n := atomic.AddUint64(&p.dropped, 1); n == 1 || n%100 == 0 {
			p.log.Warn("Publish queue full, dropping signals", "dropped", n)
		}
	}
	return nil
}

// Dropped returns how many signals were dropped because the queue was full.
func (p *Publisher) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// Close stops the publisher once the queued frames are published.
func (p *Publisher) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Publisher) run() {
	defer close(p.done)

	for {
		select {
		case msg := <-p.queue:
			p.publish(msg)
		case <-p.stop:
			for {
				select {
				case msg := <-p.queue:
					p.publish(msg)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) publish(msg string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.sink.Publish(ctx, p.channel, msg).Err(); err != nil {
		p.log.Error("Publish failed", "channel", p.channel, "err", err)
	}
}
