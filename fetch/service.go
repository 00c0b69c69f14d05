// Package fetch loads tile imagery off the frame loop.
//
// Requests and cancellations are keyed by the formatted tile URL. Workers run
// in background goroutines, but results reach their targets only from
// Service.Dispatch, which the frame loop calls once per frame.
package fetch

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/eak1mov/go-tilestream/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

var ErrClosed = errors.New("tilestream: fetch service closed")

// Target receives the result of a request. Targets are compared with ==,
// so implementations are usually pointers.
type Target interface {
	Deliver(key string, data []byte, err error)
}

// Source loads the raw image bytes for a request key.
// A missing tile is reported as empty data with no error.
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, key string) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context, key string) ([]byte, error) {
	return f(ctx, key)
}

type Option func(*Service)

// WithWorkers limits the number of concurrent fetches.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout bounds every single fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

type request struct {
	key     string
	targets []Target
	cancel  context.CancelFunc
}

func (r *request) addTarget(target Target) {
	if !slices.Contains(r.targets, target) {
		r.targets = append(r.targets, target)
	}
}

func (r *request) removeTarget(target Target) {
	if i := slices.Index(r.targets, target); i >= 0 {
		r.targets = slices.Delete(r.targets, i, i+1)
	}
}

type result struct {
	req  *request
	data []byte
	err  error
}

// Service fetches images with bounded concurrency.
type Service struct {
	source  Source
	workers int
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer

	sem  *semaphore.Weighted
	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu        sync.Mutex
	inflight  map[string]*request
	completed []result
	closed    bool
}

func NewService(source Source, opts ...Option) *Service {
	s := &Service{
		source:   source,
		workers:  8,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("github.com/eak1mov/go-tilestream/fetch"),
		inflight: make(map[string]*request),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sem = semaphore.NewWeighted(int64(s.workers))
	s.ctx, s.stop = context.WithCancel(context.Background())
	return s
}

// Request starts fetching key for target. It never blocks. If key is already
// in flight, target joins the running fetch and receives its result too.
func (s *Service) Request(key string, target Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req, ok := s.inflight[key]; ok {
		req.addTarget(target)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	req := &request{key: key, targets: []Target{target}, cancel: cancel}
	s.inflight[key] = req
	metrics.FetchInflight.Inc()

	if s.closed {
		s.completed = append(s.completed, result{req: req, err: ErrClosed})
		return
	}

	s.wg.Add(1)
	go s.run(ctx, req)
}

// Cancel withdraws target from the request for key. The fetch itself is
// abandoned once no target is left, and a result that already completed is dropped.
func (s *Service) Cancel(key string, target Target) {
	s.mu.Lock()
	req, ok := s.inflight[key]
	if ok {
		req.removeTarget(target)
		ok = len(req.targets) == 0
	}
	if ok {
		delete(s.inflight, key)
		metrics.FetchInflight.Dec()
	}
	s.mu.Unlock()

	if ok {
		req.cancel()
		s.logger.Debug("tilestream: fetch cancelled", "key", key)
	}
}

// Pending returns the number of requests not yet dispatched.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Dispatch delivers completed results to their targets and returns the number of deliveries.
// It must be called from the goroutine that owns the targets.
func (s *Service) Dispatch() int {
	type delivery struct {
		targets []Target
		result
	}

	s.mu.Lock()
	completed := s.completed
	s.completed = nil
	ready := make([]delivery, 0, len(completed))
	for _, res := range completed {
		if s.inflight[res.req.key] != res.req {
			metrics.FetchResults.WithLabelValues("dropped").Inc()
			continue
		}
		delete(s.inflight, res.req.key)
		metrics.FetchInflight.Dec()
		res.req.cancel()
		ready = append(ready, delivery{targets: res.req.targets, result: res})
	}
	s.mu.Unlock()

	delivered := 0
	for _, d := range ready {
		switch {
		case d.err != nil:
			metrics.FetchResults.WithLabelValues("error").Inc()
			s.logger.Warn("tilestream: fetch failed", "key", d.req.key, "error", d.err)
		case len(d.data) == 0:
			metrics.FetchResults.WithLabelValues("empty").Inc()
		default:
			metrics.FetchResults.WithLabelValues("ok").Inc()
		}
		for _, target := range d.targets {
			target.Deliver(d.req.key, d.data, d.err)
		}
		delivered += len(d.targets)
	}
	return delivered
}

// Close cancels all fetches, waits for the workers to exit and drops their results.
// Requests made after Close fail with ErrClosed on the next Dispatch.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stop()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.FetchInflight.Sub(float64(len(s.inflight)))
	clear(s.inflight)
	s.completed = nil
	return nil
}

func (s *Service) run(ctx context.Context, req *request) {
	defer s.wg.Done()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.finish(req, nil, err)
		return
	}
	defer s.sem.Release(1)

	ctx, span := s.tracer.Start(ctx, "fetch.Fetch", trace.WithAttributes(attribute.String("tile.key", req.key)))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := s.source.Fetch(ctx, req.key)
	metrics.FetchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("tile.size", len(data)))

	s.finish(req, data, err)
}

func (s *Service) finish(req *request, data []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, result{req: req, data: data, err: err})
}
