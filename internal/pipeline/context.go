package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/symbols"
	"github.com/funvibe/vcgen/internal/typesystem"
	"github.com/funvibe/vcgen/internal/vcgen"
)

// Source is one module file. Data is read from Path when nil. Only
// target modules have their VCs generated; the others are there to be
// used or instantiated.
type Source struct {
	Path   string
	Data   []byte
	Target bool
}

// PipelineContext carries a run from the module files to the stored VCs.
type PipelineContext struct {
	Context context.Context
	Graph   *typesystem.TypeGraph
	Flags   *config.Flags
	Log     *logrus.Logger

	Sources []Source

	Modules []*ast.ModuleDec // Loaded modules in source order
	Targets []*ast.ModuleDec // The subset whose VCs are wanted
	Env     *symbols.Environment
	Results []*vcgen.ModuleResult
	RunIDs  []uuid.UUID // Parallel to Results when a store is attached

	Errors []error
}

// NewPipelineContext prepares a run over sources with default flags.
func NewPipelineContext(ctx context.Context, sources ...Source) *PipelineContext {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &PipelineContext{
		Context: ctx,
		Graph:   typesystem.NewTypeGraph(),
		Flags:   config.DefaultFlags(),
		Log:     log,
		Sources: sources,
	}
}

// Err joins every error collected so far, or returns nil.
func (c *PipelineContext) Err() error {
	return errors.Join(c.Errors...)
}

// Failed counts the procedures that failed over all results.
func (c *PipelineContext) Failed() int {
	n := 0
	for _, r := range c.Results {
		n += r.Failed()
	}
	return n
}
