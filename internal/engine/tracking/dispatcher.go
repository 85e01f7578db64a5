package tracking

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const defaultMaxInFlight = 64

// DispatchObserver is told about submissions the dispatcher drops and
// about the number currently running.
type DispatchObserver interface {
	RecordDrop()
	SetInFlight(n int64)
}

type DispatcherConfig struct {
	Async       bool
	MaxInFlight int64
	Timeout     time.Duration
}

// Dispatcher moves submissions off the page render path. Each one runs in
// its own goroutine with a bounded timeout, and at most MaxInFlight run at
// once; the rest are dropped.
type Dispatcher struct {
	submitter *Submitter
	cfg       DispatcherConfig
	sem       *semaphore.Weighted
	wg        sync.WaitGroup
	inFlight  atomic.Int64
	observer  DispatchObserver
}

func NewDispatcher(submitter *Submitter, cfg DispatcherConfig, observer DispatchObserver) *Dispatcher {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = defaultMaxInFlight
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = submitter.cfg.timeout()
	}
	return &Dispatcher{
		submitter: submitter,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(cfg.MaxInFlight),
		observer:  observer,
	}
}

// Dispatch submits the page view. In async mode it returns immediately
// with ResultSent meaning "accepted", or ResultDropped when the in-flight
// limit is reached.
func (d *Dispatcher) Dispatch(visitor Visitor, pageURL string) Result {
	// Nothing to send; skip the goroutine.
	if visitor.Token == "" {
		return d.submitter.SubmitPageBrowse(context.Background(), visitor, pageURL)
	}

	if !d.cfg.Async {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
		defer cancel()
		return d.submitter.SubmitPageBrowse(ctx, visitor, pageURL)
	}

	if !d.sem.TryAcquire(1) {
		log.Warn().Str("url", pageURL).Msg("page browse submission dropped: too many in flight")
		if d.observer != nil {
			d.observer.RecordDrop()
		}
		return ResultDropped
	}

	d.wg.Add(1)
	d.track(1)
	go d.run(visitor, pageURL)
	return ResultSent
}

func (d *Dispatcher) run(visitor Visitor, pageURL string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("url", pageURL).Msg("recovered from panic in page browse submission")
		}
		d.track(-1)
		d.sem.Release(1)
		d.wg.Done()
	}()

	// Detached from the page request so the render finishing does not cancel it.
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()

	d.submitter.SubmitPageBrowse(ctx, visitor, pageURL)
}

func (d *Dispatcher) track(delta int64) {
	n := d.inFlight.Add(delta)
	if d.observer != nil {
		d.observer.SetInFlight(n)
	}
}

// InFlight returns the number of running submissions.
func (d *Dispatcher) InFlight() int64 {
	return d.inFlight.Load()
}

// Wait blocks until running submissions finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
