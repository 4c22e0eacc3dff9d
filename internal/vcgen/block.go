package vcgen

import (
	"fmt"
	"strings"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/pexp"
)

// ProofStep records one rule application for step-by-step output.
type ProofStep struct {
	Rule      string
	Statement string
	State     string
}

// AssertiveCodeBlock is the proof state of one control-flow path: the
// statements still to process, the free variables introduced so far and
// the VCs derived so far. Statements are processed from the end.
type AssertiveCodeBlock struct {
	Name     string
	Location diagnostics.Location

	statements []ast.Statement
	freeVars   []*pexp.PSymbol
	vcs        []*VerificationCondition
	steps      []ProofStep
}

// NewAssertiveCodeBlock creates a block over a copy of stmts.
func NewAssertiveCodeBlock(name string, loc diagnostics.Location, stmts []ast.Statement) *AssertiveCodeBlock {
	return &AssertiveCodeBlock{
		Name:       name,
		Location:   loc,
		statements: ast.CloneStatements(stmts),
	}
}

// Statements returns the unprocessed statements. The slice must not be
// modified.
func (b *AssertiveCodeBlock) Statements() []ast.Statement { return b.statements }

// AddStatement appends s. It will be the next statement processed.
func (b *AssertiveCodeBlock) AddStatement(s ast.Statement) {
	b.statements = append(b.statements, s)
}

// AddStatements appends stmts in order; the last is processed first.
func (b *AssertiveCodeBlock) AddStatements(stmts ...ast.Statement) {
	b.statements = append(b.statements, stmts...)
}

// HasStatements reports whether work remains.
func (b *AssertiveCodeBlock) HasStatements() bool { return len(b.statements) > 0 }

func (b *AssertiveCodeBlock) removeLast() ast.Statement {
	last := b.statements[len(b.statements)-1]
	b.statements[len(b.statements)-1] = nil
	b.statements = b.statements[:len(b.statements)-1]
	return last
}

// FreeVars lists the variables introduced by rules. The slice must not be
// modified.
func (b *AssertiveCodeBlock) FreeVars() []*pexp.PSymbol { return b.freeVars }

// AddFreeVar records a variable introduced by a rule.
func (b *AssertiveCodeBlock) AddFreeVar(v *pexp.PSymbol) {
	b.freeVars = append(b.freeVars, v)
}

// VCs returns the current VCs. The slice must not be modified.
func (b *AssertiveCodeBlock) VCs() []*VerificationCondition { return b.vcs }

// SetVCs replaces the VC list wholesale.
func (b *AssertiveCodeBlock) SetVCs(vcs []*VerificationCondition) {
	b.vcs = append([]*VerificationCondition(nil), vcs...)
}

func (b *AssertiveCodeBlock) addVC(vc *VerificationCondition) {
	b.vcs = append(b.vcs, vc)
}

// Steps lists the rules applied to this block, oldest first.
func (b *AssertiveCodeBlock) Steps() []ProofStep { return b.steps }

func (b *AssertiveCodeBlock) addStep(rule string, stmt ast.Statement) {
	b.steps = append(b.steps, ProofStep{Rule: rule, Statement: stmt.String(), State: b.String()})
}

// Copy returns an independent block: the statement log is deep-copied so
// later changes to either block never reach the other.
func (b *AssertiveCodeBlock) Copy(name string) *AssertiveCodeBlock {
	return &AssertiveCodeBlock{
		Name:       name,
		Location:   b.Location,
		statements: ast.CloneStatements(b.statements),
		freeVars:   append([]*pexp.PSymbol(nil), b.freeVars...),
		vcs:        append([]*VerificationCondition(nil), b.vcs...),
		steps:      append([]ProofStep(nil), b.steps...),
	}
}

// usedNames is every name a fresh variable must avoid.
func (b *AssertiveCodeBlock) usedNames() map[string]bool {
	names := map[string]bool{}
	for _, v := range b.freeVars {
		names[v.Name()] = true
	}
	for _, vc := range b.vcs {
		vc.symbolNames(names)
	}
	return names
}

func (b *AssertiveCodeBlock) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", b.Name)
	if len(b.freeVars) > 0 {
		names := make([]string, len(b.freeVars))
		for i, v := range b.freeVars {
			names[i] = fmt.Sprintf("%s: %s", v.Name(), v.MathType())
		}
		fmt.Fprintf(&sb, "Free Variables: %s\n", strings.Join(names, ", "))
	}
	for _, s := range b.statements {
		fmt.Fprintf(&sb, "  %s\n", s)
	}
	for i, vc := range b.vcs {
		fmt.Fprintf(&sb, "  VC %d: %s\n", i+1, vc)
	}
	return sb.String()
}
