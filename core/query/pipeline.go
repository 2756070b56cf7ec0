package query

import (
	"context"
	"fmt"
	"sync"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-sift/core/record"
	"go.uber.org/zap"
)

// Result is the outcome of one pipeline run. When Err is set, Documents is
// the collection the run was given.
type Result struct {
	Documents []record.Document `json:"documents"`
	Issues    []Issue           `json:"issues,omitempty"`
	Err       error             `json:"-"`
}

// Warnings returns the warning issues of the run.
func (r Result) Warnings() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			out = append(out, issue)
		}
	}
	return out
}

// Pipeline threads a collection and a query through an ordered list of
// stages. It never fails: a stage error or panic is logged, reported in the
// Result and the original collection is returned instead.
type Pipeline struct {
	name          string
	stages        []Stage
	logger        *zap.Logger
	bus           *events.TypedEventBus[Event]
	subscriptions map[string]*Subscription
	subMu         sync.RWMutex
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger. A nil logger keeps the no-op default.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithName names the pipeline in logs, events and nested issues.
func WithName(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.name = name
		}
	}
}

// NewPipeline creates a pipeline over stages.
func NewPipeline(stages []Stage, opts ...Option) (*Pipeline, error) {
	for i, st := range stages {
		if st == nil {
			return nil, fmt.Errorf("%w: stage %d is nil", ErrInvalidConfiguration, i)
		}
	}

	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	p := &Pipeline{
		name:          "pipeline",
		stages:        append([]Stage(nil), stages...),
		logger:        zap.NewNop(),
		bus:           bus,
		subscriptions: make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("pipeline", p.name))
	return p, nil
}

// Name implements Stage.
func (p *Pipeline) Name() string {
	return p.name
}

// Stages returns the stages in run order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Apply implements Stage. It never returns an error, so a nested pipeline
// falls back to its own input when one of its stages fails.
func (p *Pipeline) Apply(docs []record.Document, query string) ([]record.Document, error) {
	return p.Run(docs, query).Documents, nil
}

// Process implements ReportingStage, forwarding the nested run's issues.
func (p *Pipeline) Process(docs []record.Document, query string, report Reporter) ([]record.Document, error) {
	res := p.Run(docs, query)
	if report != nil {
		for _, issue := range res.Issues {
			report(issue)
		}
	}
	return res.Documents, nil
}

// Run executes every stage in order.
func (p *Pipeline) Run(docs []record.Document, query string) Result {
	return p.RunContext(context.Background(), docs, query)
}

// RunContext is Run with cancellation checked between stages. A canceled run
// returns its input and the context error.
func (p *Pipeline) RunContext(ctx context.Context, docs []record.Document, query string) Result {
	r := newRun(query, len(docs))
	p.emit(r.event(p, EventRunStart))

	var issues []Issue
	report := func(issue Issue) {
		issues = append(issues, issue)
		e := r.event(p, EventStageWarning)
		e.Stage = issue.Stage
		e.Issue = &issue
		p.emit(e)
	}

	if docs == nil {
		p.warn(report, IssueNilCollection, "no collection supplied, treating it as empty")
		docs = []record.Document{}
	}
	if len(p.stages) == 0 {
		p.warn(report, IssueNoStages, "pipeline has no stages, returning input unchanged")
		p.emit(r.finished(p, EventRunSuccess, len(docs), nil))
		return Result{Documents: docs, Issues: issues}
	}

	current := docs
	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return p.fail(r, docs, issues, st.Name(), IssueCanceled, err)
		}

		out, err := p.runStage(st, current, query, report)
		if err != nil {
			return p.fail(r, docs, issues, st.Name(), IssueStageFailed, fmt.Errorf("stage %q: %w", st.Name(), err))
		}
		current = out
	}

	p.logger.Debug("Pipeline run complete",
		zap.String("run", r.id),
		zap.Int("input", len(docs)),
		zap.Int("count", len(current)))
	p.emit(r.finished(p, EventRunSuccess, len(current), nil))
	return Result{Documents: current, Issues: issues}
}

// runStage applies one stage, turning a panic into an error.
func (p *Pipeline) runStage(st Stage, docs []record.Document, query string, report Reporter) (out []record.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	if rs, ok := st.(ReportingStage); ok {
		return rs.Process(docs, query, report)
	}
	return st.Apply(docs, query)
}

func (p *Pipeline) fail(r run, input []record.Document, issues []Issue, stage, code string, err error) Result {
	p.logger.Error("Pipeline stage failed, returning original data",
		zap.String("run", r.id),
		zap.String("stage", stage),
		zap.Error(err))

	issues = append(issues, Issue{
		Stage:    stage,
		Severity: SeverityError,
		Code:     code,
		Message:  err.Error(),
		Err:      err,
	})
	e := r.finished(p, EventRunFailed, len(input), err)
	e.Stage = stage
	p.emit(e)
	return Result{Documents: input, Issues: issues, Err: err}
}

func (p *Pipeline) warn(report Reporter, code, msg string) {
	p.logger.Warn(msg, zap.String("code", code))
	report(Issue{Stage: p.name, Severity: SeverityWarning, Code: code, Message: msg})
}
