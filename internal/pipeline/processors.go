package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/loader"
	"github.com/funvibe/vcgen/internal/store"
	"github.com/funvibe/vcgen/internal/symbols"
	"github.com/funvibe/vcgen/internal/vcgen"
)

// LoaderProcessor decodes every source. A source that fails is reported
// and skipped.
type LoaderProcessor struct{}

func (lp *LoaderProcessor) Process(ctx *PipelineContext) *PipelineContext {
	for _, src := range ctx.Sources {
		var (
			m   *ast.ModuleDec
			err error
		)
		if src.Data != nil {
			m, err = loader.Decode(src.Data, src.Path, ctx.Graph)
		} else {
			m, err = loader.Load(src.Path, ctx.Graph)
		}
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			continue
		}
		ctx.Log.WithFields(logrus.Fields{"module": m.Name, "file": src.Path}).Debug("loaded")
		ctx.Modules = append(ctx.Modules, m)
		if src.Target {
			ctx.Targets = append(ctx.Targets, m)
		}
	}
	return ctx
}

// ScopeProcessor indexes the loaded modules.
type ScopeProcessor struct{}

func (sp *ScopeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if len(ctx.Modules) == 0 {
		return ctx
	}
	env, err := symbols.NewEnvironment(ctx.Modules...)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Env = env
	return ctx
}

// GeneratorProcessor produces the VCs of every target module.
type GeneratorProcessor struct {
	Generator *vcgen.Generator
}

func (gp *GeneratorProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Env == nil {
		return ctx
	}
	gen := gp.Generator
	if gen == nil {
		gen = vcgen.NewGenerator(ctx.Graph, ctx.Flags, ctx.Log)
	}
	for _, m := range ctx.Targets {
		scope, err := ctx.Env.Scope(m.Name)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			continue
		}
		result, err := gen.GenerateModule(ctx.Context, m, scope)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			return ctx
		}
		ctx.Results = append(ctx.Results, result)
	}
	return ctx
}

// StoreProcessor saves every result. Without a store it does nothing.
type StoreProcessor struct {
	Store *store.Store
}

func (sp *StoreProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if sp.Store == nil {
		return ctx
	}
	for _, r := range ctx.Results {
		id, err := sp.Store.SaveRun(ctx.Context, r)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			return ctx
		}
		ctx.RunIDs = append(ctx.RunIDs, id)
	}
	return ctx
}

// Default is load, scope, generate and, when st is not nil, store.
func Default(gen *vcgen.Generator, st *store.Store) *Pipeline {
	return New(
		&LoaderProcessor{},
		&ScopeProcessor{},
		&GeneratorProcessor{Generator: gen},
		&StoreProcessor{Store: st},
	)
}
