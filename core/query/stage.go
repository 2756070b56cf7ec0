package query

import (
	"github.com/asaidimu/go-sift/core/record"
	"go.uber.org/zap"
)

// Stage transforms a collection of records for a query. Implementations hold
// only immutable configuration, never mutate docs and return a new slice
// unless they return the input unchanged.
type Stage interface {
	Name() string
	Apply(docs []record.Document, query string) ([]record.Document, error)
}

// Severity classifies an Issue.
type Severity string

// Issue severities.
const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue describes a problem a stage absorbed instead of failing on.
type Issue struct {
	Stage    string   `json:"stage"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

// Issue codes.
const (
	IssueInvalidCondition = "invalid_condition"
	IssueEmptyConditions  = "empty_conditions"
	IssueInvalidPage      = "invalid_page"
	IssueNoStages         = "no_stages"
	IssueNilCollection    = "nil_collection"
	IssueStageFailed      = "stage_failed"
	IssueCanceled         = "canceled"
)

// Reporter receives the issues a stage absorbs during one call.
type Reporter func(Issue)

// ReportingStage is implemented by stages that can hand absorbed issues to a
// caller. A Pipeline prefers Process over Apply when a stage offers it.
type ReportingStage interface {
	Stage
	Process(docs []record.Document, query string, report Reporter) ([]record.Document, error)
}

// StageOption configures the ambient behavior shared by all stages.
type StageOption func(*stageBase)

// WithStageLogger sets the logger a stage writes diagnostics to.
func WithStageLogger(logger *zap.Logger) StageOption {
	return func(b *stageBase) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithStageName overrides the name a stage reports in issues and logs.
func WithStageName(name string) StageOption {
	return func(b *stageBase) {
		if name != "" {
			b.name = name
		}
	}
}

type stageBase struct {
	name   string
	logger *zap.Logger
}

func newStageBase(name string, opts []StageOption) stageBase {
	b := stageBase{name: name, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = b.logger.With(zap.String("stage", b.name))
	return b
}

// Name returns the stage name.
func (b *stageBase) Name() string {
	return b.name
}

// warn logs a warning and forwards it to report when one is attached.
func (b *stageBase) warn(report Reporter, code, msg string, fields ...zap.Field) {
	b.logger.Warn(msg, append(fields, zap.String("code", code))...)
	if report != nil {
		report(Issue{Stage: b.name, Severity: SeverityWarning, Code: code, Message: msg})
	}
}
