package query

import (
	"fmt"
	"slices"

	"github.com/asaidimu/go-sift/core/record"
	"go.uber.org/zap"
)

// Paginate returns one 1-indexed page of the collection.
type Paginate struct {
	stageBase
	pageSize int
	page     int
}

// NewPaginate builds a Paginate stage. Nil values take the defaults; values
// that are not positive are accepted and make every call return no records.
func NewPaginate(opts PaginateOptions, stageOpts ...StageOption) *Paginate {
	p := &Paginate{
		stageBase: newStageBase("paginate", stageOpts),
		pageSize:  DefaultPageSize,
		page:      DefaultPage,
	}
	if opts.PageSize != nil {
		p.pageSize = *opts.PageSize
	}
	if opts.Page != nil {
		p.page = *opts.Page
	}
	return p
}

// Apply implements Stage.
func (p *Paginate) Apply(docs []record.Document, query string) ([]record.Document, error) {
	return p.Process(docs, query, nil)
}

// Process implements ReportingStage.
func (p *Paginate) Process(docs []record.Document, _ string, report Reporter) ([]record.Document, error) {
	if p.pageSize <= 0 || p.page <= 0 {
		p.warn(report, IssueInvalidPage,
			fmt.Sprintf("page %d with size %d is not valid, returning no records", p.page, p.pageSize),
			zap.Int("page", p.page), zap.Int("pageSize", p.pageSize))
		return []record.Document{}, nil
	}

	start, end, ok := pageBounds(len(docs), p.pageSize, p.page)
	if !ok {
		return []record.Document{}, nil
	}
	return slices.Clone(docs[start:end]), nil
}

// pageBounds returns the [start, end) window of page within n items without
// overflowing for large sizes or page numbers.
func pageBounds(n, size, page int) (int, int, bool) {
	pages := n / size
	if n%size != 0 {
		pages++
	}
	if page > pages {
		return 0, 0, false
	}
	start := (page - 1) * size
	end := n
	if n-start > size {
		end = start + size
	}
	return start, end, true
}
