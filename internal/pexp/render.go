package pexp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
)

// Render prints e in the usual mathematical notation.
func Render(e PExp) string {
	var sb strings.Builder
	render(&sb, e)
	return sb.String()
}

func render(sb *strings.Builder, e PExp) {
	switch n := e.(type) {
	case *PSymbol:
		name := n.name
		if n.qualifier != "" {
			name = n.qualifier + "::" + name
		}
		switch {
		case len(n.args) == 0:
			sb.WriteString(name)
		case n.style == ast.Infix && len(n.args) == 2:
			sb.WriteByte('(')
			render(sb, n.args[0])
			fmt.Fprintf(sb, " %s ", name)
			render(sb, n.args[1])
			sb.WriteByte(')')
		case n.style == ast.Outfix && len(n.args) == 1:
			sb.WriteString(name)
			render(sb, n.args[0])
			sb.WriteString(name)
		case n.style == ast.Postfix && len(n.args) == 1:
			render(sb, n.args[0])
			sb.WriteString(name)
		default:
			sb.WriteString(name)
			sb.WriteByte('(')
			for i, a := range n.args {
				if i > 0 {
					sb.WriteString(", ")
				}
				render(sb, a)
			}
			sb.WriteByte(')')
		}
	case *PLiteral:
		if n.isChar {
			sb.WriteString(strconv.QuoteRune(rune(n.value)))
		} else {
			sb.WriteString(strconv.FormatInt(n.value, 10))
		}
	case *PLambda:
		sb.WriteString("lambda(")
		for i, p := range n.params {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s: %s", p.Name, p.Type)
		}
		sb.WriteString(").(")
		render(sb, n.body)
		sb.WriteByte(')')
	case *PAlternatives:
		sb.WriteString("{{")
		for _, a := range n.alts {
			sb.WriteByte(' ')
			render(sb, a.Result)
			sb.WriteString(" if ")
			render(sb, a.Condition)
			sb.WriteByte(';')
		}
		if n.otherwise != nil {
			sb.WriteByte(' ')
			render(sb, n.otherwise)
			sb.WriteString(" otherwise;")
		}
		sb.WriteString(" }}")
	}
}

// DebugString prints e as an indented tree with types, quantification and
// hashes.
func DebugString(e PExp) string {
	var sb strings.Builder
	debug(&sb, e, 0)
	return sb.String()
}

func debug(sb *strings.Builder, e PExp, depth int) {
	indent := strings.Repeat("  ", depth)
	label := TopLevelOperation(e)
	if s, ok := e.(*PSymbol); ok && s.quantification != None {
		label = fmt.Sprintf("%s [%s]", label, s.quantification)
	}
	if s, ok := e.(*PSymbol); ok && strings.HasPrefix(s.name, config.OldPrefix) {
		label += " (old)"
	}
	fmt.Fprintf(sb, "%s%s : %s  structure=%016x value=%016x\n",
		indent, label, e.MathType(), e.StructureHash(), e.ValueHash())
	for _, c := range e.SubExpressions() {
		debug(sb, c, depth+1)
	}
}
