package ast

import (
	"fmt"
	"strings"

	"github.com/funvibe/vcgen/internal/diagnostics"
)

// ConfirmStmt asks that Assertion holds at this point.
type ConfirmStmt struct {
	Location  diagnostics.Location
	Assertion Exp
}

func (s *ConfirmStmt) GetLocation() diagnostics.Location { return s.Location }
func (s *ConfirmStmt) String() string                    { return fmt.Sprintf("Confirm %s;", s.Assertion) }
func (s *ConfirmStmt) CloneStatement() Statement {
	return &ConfirmStmt{Location: s.Location, Assertion: s.Assertion.CloneExp()}
}

// AssumeStmt records that Assertion may be taken as given.
type AssumeStmt struct {
	Location  diagnostics.Location
	Assertion Exp
}

func (s *AssumeStmt) GetLocation() diagnostics.Location { return s.Location }
func (s *AssumeStmt) String() string                    { return fmt.Sprintf("Assume %s;", s.Assertion) }
func (s *AssumeStmt) CloneStatement() Statement {
	return &AssumeStmt{Location: s.Location, Assertion: s.Assertion.CloneExp()}
}

// ChangeStmt forgets everything known about the listed variables.
type ChangeStmt struct {
	Location diagnostics.Location
	Changing []Exp
}

func (s *ChangeStmt) GetLocation() diagnostics.Location { return s.Location }
func (s *ChangeStmt) String() string {
	return fmt.Sprintf("Change %s;", joinExps(s.Changing))
}
func (s *ChangeStmt) CloneStatement() Statement {
	return &ChangeStmt{Location: s.Location, Changing: cloneExps(s.Changing)}
}

// MemoryKind distinguishes Remember from Forget.
type MemoryKind int

const (
	Remember MemoryKind = iota
	Forget
)

// MemoryStmt is Remember or Forget.
type MemoryStmt struct {
	Location diagnostics.Location
	Kind     MemoryKind
}

func (s *MemoryStmt) GetLocation() diagnostics.Location { return s.Location }
func (s *MemoryStmt) String() string {
	if s.Kind == Forget {
		return "Forget;"
	}
	return "Remember;"
}
func (s *MemoryStmt) CloneStatement() Statement {
	c := *s
	return &c
}

// FuncAssignStmt is Var := Assign.
type FuncAssignStmt struct {
	Location diagnostics.Location
	Var      Exp
	Assign   Exp
}

func (s *FuncAssignStmt) GetLocation() diagnostics.Location { return s.Location }
func (s *FuncAssignStmt) String() string                    { return fmt.Sprintf("%s := %s;", s.Var, s.Assign) }
func (s *FuncAssignStmt) CloneStatement() Statement {
	return &FuncAssignStmt{Location: s.Location, Var: s.Var.CloneExp(), Assign: s.Assign.CloneExp()}
}

// SwapStmt is Left :=: Right.
type SwapStmt struct {
	Location diagnostics.Location
	Left     Exp
	Right    Exp
}

func (s *SwapStmt) GetLocation() diagnostics.Location { return s.Location }
func (s *SwapStmt) String() string                    { return fmt.Sprintf("%s :=: %s;", s.Left, s.Right) }
func (s *SwapStmt) CloneStatement() Statement {
	return &SwapStmt{Location: s.Location, Left: s.Left.CloneExp(), Right: s.Right.CloneExp()}
}

// CallStmt is a call of a program operation.
type CallStmt struct {
	Location diagnostics.Location
	Call     *CallExp
}

func (s *CallStmt) GetLocation() diagnostics.Location { return s.Location }
func (s *CallStmt) String() string                    { return s.Call.String() + ";" }
func (s *CallStmt) CloneStatement() Statement {
	return &CallStmt{Location: s.Location, Call: s.Call.CloneExp().(*CallExp)}
}

// IfConditionItem is a guard with its statements.
type IfConditionItem struct {
	Location   diagnostics.Location
	Test       Exp
	Statements []Statement
}

func (c *IfConditionItem) clone() *IfConditionItem {
	return &IfConditionItem{Location: c.Location, Test: c.Test.CloneExp(), Statements: CloneStatements(c.Statements)}
}

// IfStmt is If ... ElseIf ... Else ... end.
type IfStmt struct {
	Location diagnostics.Location
	IfClause *IfConditionItem
	ElseIfs  []*IfConditionItem
	Else     []Statement
}

func (s *IfStmt) GetLocation() diagnostics.Location { return s.Location }
func (s *IfStmt) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "If %s then %s", s.IfClause.Test, joinStatements(s.IfClause.Statements))
	for _, ei := range s.ElseIfs {
		fmt.Fprintf(&sb, " else if %s then %s", ei.Test, joinStatements(ei.Statements))
	}
	if len(s.Else) > 0 {
		fmt.Fprintf(&sb, " else %s", joinStatements(s.Else))
	}
	sb.WriteString(" end;")
	return sb.String()
}
func (s *IfStmt) CloneStatement() Statement {
	c := &IfStmt{Location: s.Location, IfClause: s.IfClause.clone(), Else: CloneStatements(s.Else)}
	for _, ei := range s.ElseIfs {
		c.ElseIfs = append(c.ElseIfs, ei.clone())
	}
	return c
}

// AssertionClause is a requires, ensures, maintaining or decreasing clause.
type AssertionClause struct {
	Location  diagnostics.Location
	Assertion Exp
}

func (c *AssertionClause) clone() *AssertionClause {
	if c == nil {
		return nil
	}
	return &AssertionClause{Location: c.Location, Assertion: c.Assertion.CloneExp()}
}

// LoopVerificationItem holds the annotations of a while loop.
type LoopVerificationItem struct {
	Location    diagnostics.Location
	Changing    []Exp
	Maintaining *AssertionClause
	Decreasing  *AssertionClause
}

// WhileStmt is While Test changing ... maintaining ... decreasing ... do ... end.
type WhileStmt struct {
	Location     diagnostics.Location
	Test         Exp
	Verification *LoopVerificationItem
	Body         []Statement
}

func (s *WhileStmt) GetLocation() diagnostics.Location { return s.Location }
func (s *WhileStmt) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "While %s", s.Test)
	if v := s.Verification; v != nil {
		if len(v.Changing) > 0 {
			fmt.Fprintf(&sb, " changing %s", joinExps(v.Changing))
		}
		if v.Maintaining != nil {
			fmt.Fprintf(&sb, " maintaining %s", v.Maintaining.Assertion)
		}
		if v.Decreasing != nil {
			fmt.Fprintf(&sb, " decreasing %s", v.Decreasing.Assertion)
		}
	}
	fmt.Fprintf(&sb, " do %s end;", joinStatements(s.Body))
	return sb.String()
}
func (s *WhileStmt) CloneStatement() Statement {
	c := &WhileStmt{Location: s.Location, Test: s.Test.CloneExp(), Body: CloneStatements(s.Body)}
	if v := s.Verification; v != nil {
		c.Verification = &LoopVerificationItem{
			Location:    v.Location,
			Changing:    cloneExps(v.Changing),
			Maintaining: v.Maintaining.clone(),
			Decreasing:  v.Decreasing.clone(),
		}
	}
	return c
}

// CloneStatements deep-copies a statement list.
func CloneStatements(stmts []Statement) []Statement {
	if stmts == nil {
		return nil
	}
	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		out[i] = s.CloneStatement()
	}
	return out
}

func joinExps(es []Exp) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func joinStatements(stmts []Statement) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
