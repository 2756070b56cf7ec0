// Package live runs a pipeline on behalf of an interactive host: query
// changes are debounced and the last result is memoized so repeated queries
// over the same collection do not re-run the pipeline.
package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-sift/core/query"
	"github.com/asaidimu/go-sift/core/record"
	"go.uber.org/zap"
)

// DefaultDelay is the debounce delay applied to query changes.
const DefaultDelay = 150 * time.Millisecond

// Callback receives the result of a debounced run.
type Callback func(query.Result)

// Option configures a Searcher.
type Option func(*Searcher)

// WithDelay sets the debounce delay. Non-positive values run on the next
// timer tick.
func WithDelay(d time.Duration) Option {
	return func(s *Searcher) {
		s.delay = d
	}
}

// WithLogger sets the searcher logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContext sets the context pipeline runs are bound to.
func WithContext(ctx context.Context) Option {
	return func(s *Searcher) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

type memo struct {
	version uint64
	query   string
	result  query.Result
}

// Searcher holds a collection and a query and delivers pipeline results to a
// callback once the query has been stable for the debounce delay.
type Searcher struct {
	pipeline *query.Pipeline
	callback Callback
	logger   *zap.Logger
	delay    time.Duration
	ctx      context.Context

	mu      sync.Mutex
	data    []record.Document
	version uint64
	query   string
	timer   *time.Timer
	gen     uint64
	last    *memo
	closed  bool
}

// NewSearcher creates a Searcher. callback may be nil when results are only
// read through Flush or Result.
func NewSearcher(p *query.Pipeline, callback Callback, opts ...Option) (*Searcher, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: pipeline is nil", query.ErrInvalidArgument)
	}
	s := &Searcher{
		pipeline: p,
		callback: callback,
		logger:   zap.NewNop(),
		delay:    DefaultDelay,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("pipeline", p.Name()))
	return s, nil
}

// SetData replaces the collection and schedules a run. Replacing the data
// invalidates the memo even when the new slice holds the same records.
func (s *Searcher) SetData(docs []record.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = docs
	s.version++
	s.scheduleLocked()
}

// SetQuery replaces the query and restarts the debounce timer.
func (s *Searcher) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	s.scheduleLocked()
}

// Query returns the current query.
func (s *Searcher) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Flush cancels any pending run and runs the pipeline now. The callback is
// not invoked.
func (s *Searcher) Flush() query.Result {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
	return s.run()
}

// Result returns the memoized result for the current data and query, if any.
func (s *Searcher) Result() (query.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil && s.last.version == s.version && s.last.query == s.query {
		return s.last.result, true
	}
	return query.Result{}, false
}

// Close stops the pending timer. Later changes are accepted but never
// scheduled.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.closed = true
}

func (s *Searcher) scheduleLocked() {
	s.stopLocked()
	if s.closed {
		return
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

func (s *Searcher) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Searcher) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	res := s.run()
	if s.callback != nil {
		s.callback(res)
	}
}

func (s *Searcher) run() query.Result {
	s.mu.Lock()
	data, version, q := s.data, s.version, s.query
	if s.last != nil && s.last.version == version && s.last.query == q {
		res := s.last.result
		s.mu.Unlock()
		s.logger.Debug("Serving memoized result", zap.String("query", q))
		return res
	}
	s.mu.Unlock()

	res := s.pipeline.RunContext(s.ctx, data, q)
	if res.Err != nil {
		s.logger.Warn("Pipeline failed, delivering input unchanged", zap.Error(res.Err))
	}
	s.logger.Debug("Pipeline run", zap.String("query", q), zap.Int("count", len(res.Documents)))

	s.mu.Lock()
	if s.version == version {
		s.last = &memo{version: version, query: q, result: res}
	}
	s.mu.Unlock()
	return res
}
