package timer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PollInterval is the elapsed-time refresh period while a timer runs.
const PollInterval = time.Second

// Poller periodically queries the authority and hands results to a sink.
// It runs only between Start and Stop; Sync starts or stops it to match a
// phase so it never outlives the Running state.
type Poller struct {
	auth     Authority
	sink     func(Elapsed)
	log      logrus.FieldLogger
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval overrides PollInterval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// NewPoller creates a stopped poller.
func NewPoller(auth Authority, sink func(Elapsed), log logrus.FieldLogger, opts ...PollerOption) *Poller {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	p := &Poller{
		auth:     auth,
		sink:     sink,
		log:      log.WithField("component", "poller"),
		interval: PollInterval,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start begins polling. It is a no-op when already running.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
}

// Stop halts polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Active reports whether the loop is running.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Sync runs the poller only while phase is Running.
func (p *Poller) Sync(ctx context.Context, phase Phase) {
	if phase == Running {
		p.Start(ctx)
		return
	}
	p.Stop()
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	e, ok, err := p.auth.QueryElapsed(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.WithError(err).Debug("query elapsed failed")
		}
		return
	}
	if ok && ctx.Err() == nil {
		p.sink(e)
	}
}
