package game

import (
	"context"
	"strings"
	"sync"
	"time"
)

// fakeNotifier records every outward call in order.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifierCall
	fail  bool
}

type notifierCall struct {
	op     string // "send" or "clear"
	device string
	tag    string
	n      Notification
}

func (f *fakeNotifier) Send(_ context.Context, device string, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errFakeNotifier
	}
	f.calls = append(f.calls, notifierCall{op: "send", device: device, tag: n.Tag, n: n})
	return nil
}

func (f *fakeNotifier) Clear(_ context.Context, device, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errFakeNotifier
	}
	f.calls = append(f.calls, notifierCall{op: "clear", device: device, tag: tag})
	return nil
}

var errFakeNotifier = errNotifier("notifier down")

type errNotifier string

func (e errNotifier) Error() string { return string(e) }

func (f *fakeNotifier) snapshot() []notifierCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notifierCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeNotifier) sends() []notifierCall {
	var out []notifierCall
	for _, c := range f.snapshot() {
		if c.op == "send" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeNotifier) sendsWithTagPrefix(prefix string) []notifierCall {
	var out []notifierCall
	for _, c := range f.sends() {
		if strings.HasPrefix(c.tag, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// noSleep makes every pacing delay instantaneous.
func noSleep(context.Context, time.Duration) {}

// gatedSleep parks every chain in its first delay until released.
type gatedSleep struct {
	release chan struct{}
}

func newGatedSleep() *gatedSleep {
	return &gatedSleep{release: make(chan struct{})}
}

func (g *gatedSleep) sleep(ctx context.Context, _ time.Duration) {
	select {
	case <-g.release:
	case <-ctx.Done():
	}
}

func (g *gatedSleep) open() {
	close(g.release)
}
