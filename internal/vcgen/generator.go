// Package vcgen derives verification conditions from annotated
// procedures by applying one proof rule per statement, from the last
// statement backwards.
package vcgen

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// ProcedureResult is the outcome for one procedure. Err is set when a rule
// failed; Blocks is then empty.
type ProcedureResult struct {
	Procedure string
	Location  diagnostics.Location
	Blocks    []*AssertiveCodeBlock
	Err       error
}

// VCCount is the number of VCs over all blocks.
func (r *ProcedureResult) VCCount() int {
	n := 0
	for _, b := range r.Blocks {
		n += len(b.VCs())
	}
	return n
}

// ModuleResult holds the procedures of a module in declaration order.
type ModuleResult struct {
	Module     string
	Procedures []*ProcedureResult
}

// Failed counts the procedures whose generation failed.
func (r *ModuleResult) Failed() int {
	n := 0
	for _, p := range r.Procedures {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// VCCount is the number of VCs over all procedures.
func (r *ModuleResult) VCCount() int {
	n := 0
	for _, p := range r.Procedures {
		n += p.VCCount()
	}
	return n
}

// Generator runs the proof rules. It holds no per-run state and may be
// shared.
type Generator struct {
	graph *typesystem.TypeGraph
	flags *config.Flags
	log   *logrus.Logger
}

// NewGenerator creates a generator. A nil logger discards output.
func NewGenerator(graph *typesystem.TypeGraph, flags *config.Flags, log *logrus.Logger) *Generator {
	if flags == nil {
		flags = config.DefaultFlags()
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Generator{graph: graph, flags: flags, log: log}
}

// GenerateModule processes every procedure of module on a pool of
// flags.Workers goroutines. A failing procedure is recorded in its result
// and does not stop the others. The returned error is only ever the
// context's.
func (g *Generator) GenerateModule(ctx context.Context, module *ast.ModuleDec, scope ModuleScope) (*ModuleResult, error) {
	vctx := &VerificationContext{Module: module.Name, Graph: g.graph, Scope: scope, Flags: g.flags}
	result := &ModuleResult{Module: module.Name, Procedures: make([]*ProcedureResult, len(module.Procedures))}

	eg, ctx := errgroup.WithContext(ctx)
	if g.flags.Workers > 0 {
		eg.SetLimit(g.flags.Workers)
	}
	for i, proc := range module.Procedures {
		eg.Go(func() error {
			blocks, err := g.GenerateProcedure(ctx, vctx, proc)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			result.Procedures[i] = &ProcedureResult{
				Procedure: proc.Name,
				Location:  proc.Location,
				Blocks:    blocks,
				Err:       err,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateProcedure runs the rules over one procedure until every path is
// exhausted and returns the finished blocks, first path first.
func (g *Generator) GenerateProcedure(ctx context.Context, vctx *VerificationContext, proc *ast.ProcedureDec) ([]*AssertiveCodeBlock, error) {
	log := g.log.WithFields(logrus.Fields{"module": vctx.Module, "procedure": proc.Name})
	initial := NewAssertiveCodeBlock(proc.Name, proc.Location, g.initialStatements(vctx, proc))

	var done []*AssertiveCodeBlock
	pending := []*AssertiveCodeBlock{initial}
	for len(pending) > 0 {
		block := pending[0]
		pending = pending[1:]

		var forks []*AssertiveCodeBlock
		for block.HasStatements() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			stmt := block.removeLast()
			created, rule, err := applyRule(vctx, block, stmt)
			if err != nil {
				log.WithField("rule", rule).Warnf("%v", err)
				return nil, err
			}
			block.addStep(rule, stmt)
			for _, f := range created {
				f.addStep(rule, stmt)
			}
			log.WithFields(logrus.Fields{"rule": rule, "block": block.Name}).Debugf("applied to %s", stmt)
			forks = append(forks, created...)
		}
		done = append(done, block)
		// Forks go first so paths come out in the order they branch.
		pending = append(forks, pending...)
	}

	vcs := 0
	for _, b := range done {
		vcs += len(b.VCs())
	}
	log.WithFields(logrus.Fields{"blocks": len(done), "vcs": vcs}).Info("generated")
	return done, nil
}

// initialStatements lays out Assume requires; Assume initial values;
// Remember; body; Confirm ensures.
func (g *Generator) initialStatements(vctx *VerificationContext, proc *ast.ProcedureDec) []ast.Statement {
	op := vctx.Scope.OperationFor(proc)
	var stmts []ast.Statement

	if op.Requires != nil {
		stmts = append(stmts, &ast.AssumeStmt{
			Location: op.Requires.Location,
			Assertion: ast.WithDetail(op.Requires.Assertion,
				detail(op.Requires.Location, proc.Location, config.DetailProcedureRequires+proc.Name)),
		})
	}
	for _, v := range proc.Vars {
		if v.Init == nil {
			continue
		}
		variable := &ast.VarExp{ExpBase: ast.ExpBase{Location: v.Location, Type: v.Type}, Name: v.Name}
		stmts = append(stmts, &ast.AssumeStmt{
			Location: v.Location,
			Assertion: ast.WithDetail(ast.FormEquality(v.Location, variable, v.Init, g.graph.BOOLEAN),
				detail(v.Location, proc.Location, config.DetailInitialization+v.Name)),
		})
	}
	stmts = append(stmts, &ast.MemoryStmt{Location: proc.Location, Kind: ast.Remember})
	stmts = append(stmts, proc.Statements...)
	if op.Ensures != nil {
		stmts = append(stmts, &ast.ConfirmStmt{
			Location: op.Ensures.Location,
			Assertion: ast.WithDetail(op.Ensures.Assertion,
				detail(op.Ensures.Location, proc.Location, config.DetailProcedureEnsures+proc.Name)),
		})
	}
	return stmts
}
