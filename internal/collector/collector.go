// Package collector defines the contract between data sources and the report
// pipeline, the registry that holds them, and the runner that executes them.
package collector

import (
	"context"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

// Collector gathers one section of the report.
//
// Collect returns a Success or Degraded section on partial success, or an
// error when the data source is unusable. The runner converts errors (and
// panics) into Error sections, so a collector never needs to build one.
type Collector interface {
	Metadata() model.CollectorMetadata
	Collect(ctx context.Context, cc model.CollectionContext) (model.Section, error)
}

// Factory builds a fresh collector instance.
type Factory func() Collector

// Func adapts a plain function to the Collector interface.
type Func struct {
	Meta model.CollectorMetadata
	Fn   func(ctx context.Context, cc model.CollectionContext) (model.Section, error)
}

func (f Func) Metadata() model.CollectorMetadata { return f.Meta }

func (f Func) Collect(ctx context.Context, cc model.CollectionContext) (model.Section, error) {
	return f.Fn(ctx, cc)
}
