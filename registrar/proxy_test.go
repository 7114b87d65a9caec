package registrar

import (
	"testing"

	"gopkg.in/inconshreveable/log15.v2"

	"github.com/lunairc/luna/dispatch"
)

func TestProxy_New(t *testing.T) {
	t.Parallel()

	m := &mockReg{}
	p := NewProxy(m)

	if p.holders == nil {
		t.Error("holders not initialized")
	}
}

func TestProxy_Get(t *testing.T) {
	t.Parallel()

	m := &mockReg{}
	p := NewProxy(m)

	if ln := len(p.holders); ln != 0 {
		t.Error("should be empty:", ln)
	}

	i := p.Get("test")
	if _, ok := i.(*holder); !ok {
		t.Errorf("wrong type: %T", i)
	}

	if ln := len(p.holders); ln != 1 {
		t.Error("should have one:", ln)
	}

	again := p.Get("test")
	if i != again {
		t.Error("should re-use existing holders")
	}

	if ln := len(p.holders); ln != 1 {
		t.Error("should have one:", ln)
	}
}

func TestProxy_Unregister(t *testing.T) {
	t.Parallel()

	m := &mockReg{}
	p := NewProxy(m)

	p.Get("hello").Register("s", nil)
	p.Get("hello").Register("s", nil)
	p.Get("other").Register("s", nil)

	if n := p.Count("hello"); n != 2 {
		t.Error("should hold two:", n)
	}

	p.Unregister("hello")
	p.Unregister("nobody")

	m.verifyMock(t, 3, 2)
	if n := p.Count("hello"); n != 0 {
		t.Error("should hold nothing:", n)
	}
	if n := p.Count("other"); n != 1 {
		t.Error("others should be untouched:", n)
	}
}

func TestProxy_Dispatcher(t *testing.T) {
	t.Parallel()

	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	d := dispatch.NewDispatcher(logger)
	p := NewProxy(d)

	var calls int
	handler := dispatch.HandlerFunc(func(string, []dispatch.Arg) error {
		calls++
		return nil
	})

	p.Get("ext").Register(dispatch.Ping, handler)
	p.Get("ext").Register("", handler)
	if got := p.Signals("ext"); len(got) != 2 || got[0] != "" ||
		got[1] != dispatch.Ping {

		t.Error("signals were wrong:", got)
	}
	if got := p.Signals("nobody"); got != nil {
		t.Error("unknown names have no signals:", got)
	}

	d.Dispatch(dispatch.Ping)
	if calls != 2 {
		t.Error("both handlers should run, got:", calls)
	}

	p.Unregister("ext")
	if n := d.NHandlers(dispatch.Ping); n != 0 {
		t.Error("handlers should be gone, got:", n)
	}
}
