package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/vcgen/internal/config"
)

// VarExp is a variable or a nullary function, e.g. x or Facility::Max_Depth.
type VarExp struct {
	ExpBase
	Qualifier      string
	Name           string
	Quantification Quantification
}

func (e *VarExp) String() string {
	if e.Qualifier != "" {
		return e.Qualifier + "::" + e.Name
	}
	return e.Name
}

func (e *VarExp) CloneExp() Exp {
	c := *e
	return &c
}

// OldExp is the incoming value of a variable, written #x.
type OldExp struct {
	ExpBase
	Exp Exp
}

func (e *OldExp) String() string { return config.OldPrefix + e.Exp.String() }

func (e *OldExp) CloneExp() Exp {
	c := *e
	c.Exp = e.Exp.CloneExp()
	return &c
}

// IntegerExp is an integer literal.
type IntegerExp struct {
	ExpBase
	Value int64
}

func (e *IntegerExp) String() string { return strconv.FormatInt(e.Value, 10) }

func (e *IntegerExp) CloneExp() Exp {
	c := *e
	return &c
}

// CharExp is a character literal.
type CharExp struct {
	ExpBase
	Value rune
}

func (e *CharExp) String() string { return strconv.QuoteRune(e.Value) }

func (e *CharExp) CloneExp() Exp {
	c := *e
	return &c
}

// FunctionExp is a math function application. Operators (and, =, +, ...)
// are function applications with an infix or prefix style.
type FunctionExp struct {
	ExpBase
	Qualifier string
	Name      string
	Args      []Exp
	Style     DisplayStyle
}

func (e *FunctionExp) String() string {
	name := e.Name
	if e.Qualifier != "" {
		name = e.Qualifier + "::" + e.Name
	}
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	switch {
	case e.Style == Infix && len(args) == 2:
		return fmt.Sprintf("(%s %s %s)", args[0], name, args[1])
	case e.Style == Outfix && len(args) == 1:
		return fmt.Sprintf("%s%s%s", name, args[0], name)
	case e.Style == Postfix && len(args) == 1:
		return fmt.Sprintf("%s%s", args[0], name)
	case e.Style == Prefix && len(args) == 1 && name == config.NotName:
		return fmt.Sprintf("not(%s)", args[0])
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}

func (e *FunctionExp) CloneExp() Exp {
	c := *e
	c.Args = cloneExps(e.Args)
	return &c
}

// LambdaExp is lambda (x: T).(body).
type LambdaExp struct {
	ExpBase
	Params []*VarExp
	Body   Exp
}

func (e *LambdaExp) String() string {
	ps := make([]string, len(e.Params))
	for i, p := range e.Params {
		ps[i] = fmt.Sprintf("%s: %v", p.Name, p.MathType())
	}
	return fmt.Sprintf("lambda(%s).(%s)", strings.Join(ps, ", "), e.Body)
}

func (e *LambdaExp) CloneExp() Exp {
	c := *e
	c.Params = make([]*VarExp, len(e.Params))
	for i, p := range e.Params {
		c.Params[i] = p.CloneExp().(*VarExp)
	}
	c.Body = e.Body.CloneExp()
	return &c
}

// AltItem is one guarded result of an AlternativeExp.
type AltItem struct {
	Condition Exp
	Result    Exp
}

// AlternativeExp is {{ r1 if c1; r2 if c2; r otherwise }}.
type AlternativeExp struct {
	ExpBase
	Alternatives []AltItem
	Otherwise    Exp
}

func (e *AlternativeExp) String() string {
	var sb strings.Builder
	sb.WriteString("{{")
	for _, a := range e.Alternatives {
		fmt.Fprintf(&sb, " %s if %s;", a.Result, a.Condition)
	}
	if e.Otherwise != nil {
		fmt.Fprintf(&sb, " %s otherwise;", e.Otherwise)
	}
	sb.WriteString(" }}")
	return sb.String()
}

func (e *AlternativeExp) CloneExp() Exp {
	c := *e
	c.Alternatives = make([]AltItem, len(e.Alternatives))
	for i, a := range e.Alternatives {
		c.Alternatives[i] = AltItem{Condition: a.Condition.CloneExp(), Result: a.Result.CloneExp()}
	}
	if e.Otherwise != nil {
		c.Otherwise = e.Otherwise.CloneExp()
	}
	return &c
}

// QuantExp is For all / There exists over typed variables.
type QuantExp struct {
	ExpBase
	Quantification Quantification
	Vars           []*VarExp
	Body           Exp
}

func (e *QuantExp) String() string {
	vs := make([]string, len(e.Vars))
	for i, v := range e.Vars {
		vs[i] = fmt.Sprintf("%s: %v", v.Name, v.MathType())
	}
	return fmt.Sprintf("%s %s, %s", e.Quantification, strings.Join(vs, ", "), e.Body)
}

func (e *QuantExp) CloneExp() Exp {
	c := *e
	c.Vars = make([]*VarExp, len(e.Vars))
	for i, v := range e.Vars {
		c.Vars[i] = v.CloneExp().(*VarExp)
	}
	c.Body = e.Body.CloneExp()
	return &c
}

// DotExp is a record access chain such as S.Contents.
type DotExp struct {
	ExpBase
	Segments []Exp
}

func (e *DotExp) String() string {
	segs := make([]string, len(e.Segments))
	for i, s := range e.Segments {
		segs[i] = s.String()
	}
	return strings.Join(segs, ".")
}

func (e *DotExp) CloneExp() Exp {
	c := *e
	c.Segments = cloneExps(e.Segments)
	return &c
}

// CallExp is a call of a program operation, as in x := Max(a, b) or as the
// body of a CallStmt.
type CallExp struct {
	ExpBase
	Qualifier string
	Name      string
	Args      []Exp
}

func (e *CallExp) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	name := e.Name
	if e.Qualifier != "" {
		name = e.Qualifier + "::" + e.Name
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}

func (e *CallExp) CloneExp() Exp {
	c := *e
	c.Args = cloneExps(e.Args)
	return &c
}

func cloneExps(es []Exp) []Exp {
	if es == nil {
		return nil
	}
	out := make([]Exp, len(es))
	for i, e := range es {
		out[i] = e.CloneExp()
	}
	return out
}
