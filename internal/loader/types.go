package loader

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/funvibe/vcgen/internal/typesystem"
)

const powersetName = "Powerset"

// parseType reads a type written as Name, Name(T, ...), (T, ...),
// (T * ...) or T -> T. The empty string is no type. A name that is
// neither a generic, a named type of the module nor a built-in type makes
// the whole type nil; only malformed text is an error.
func (d *decoder) parseType(s string) (typesystem.Type, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	p := &typeParser{src: s, toks: tokenizeType(s), d: d}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("type %q: unexpected %q", s, p.toks[p.pos])
	}
	if p.unknown {
		return nil, nil
	}
	return t, nil
}

func tokenizeType(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case strings.HasPrefix(s[i:], "->"):
			toks = append(toks, "->")
			i += 2
		case c == '(' || c == ')' || c == ',' || c == '*':
			toks = append(toks, string(c))
			i++
		default:
			j := i + 1
			for j < len(s) && !strings.ContainsRune(" \t(),*-", rune(s[j])) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		}
	}
	return toks
}

type typeParser struct {
	src     string
	toks    []string
	pos     int
	d       *decoder
	unknown bool
}

func (p *typeParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *typeParser) expect(tok string) error {
	if p.peek() != tok {
		return fmt.Errorf("type %q: expected %q", p.src, tok)
	}
	p.pos++
	return nil
}

func (p *typeParser) parse() (typesystem.Type, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek() != "->" {
		return left, nil
	}
	p.pos++
	ret, err := p.parse()
	if err != nil {
		return nil, err
	}
	params := []typesystem.Type{left}
	if tup, ok := left.(typesystem.TTuple); ok {
		params = tup.Elements
	}
	return typesystem.TFunc{Params: params, ReturnType: ret}, nil
}

func (p *typeParser) list() ([]typesystem.Type, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var out []typesystem.Type
	for {
		t, err := p.parse()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if sep := p.peek(); sep != "," && sep != "*" {
			break
		}
		p.pos++
	}
	return out, p.expect(")")
}

func (p *typeParser) primary() (typesystem.Type, error) {
	tok := p.peek()
	switch tok {
	case "":
		return nil, fmt.Errorf("type %q: unexpected end", p.src)
	case "(":
		elems, err := p.list()
		if err != nil {
			return nil, err
		}
		if len(elems) == 1 {
			return elems[0], nil
		}
		return typesystem.TTuple{Elements: elems}, nil
	case ")", ",", "*", "->":
		return nil, fmt.Errorf("type %q: unexpected %q", p.src, tok)
	}
	p.pos++

	if p.peek() != "(" {
		return p.named(tok), nil
	}
	args, err := p.list()
	if err != nil {
		return nil, err
	}
	if tok == powersetName {
		if len(args) != 1 {
			return nil, fmt.Errorf("type %q: %s takes one argument", p.src, powersetName)
		}
		return typesystem.TType{Type: args[0]}, nil
	}
	ctor := typesystem.TCon{Name: tok}
	if t, err := p.d.graph.Lookup(tok); err == nil {
		if c, ok := t.(typesystem.TCon); ok {
			ctor = c
		}
	}
	return typesystem.TApp{Constructor: ctor, Args: args}, nil
}

func (p *typeParser) named(name string) typesystem.Type {
	if p.d.generics[name] {
		return typesystem.TVar{Name: name}
	}
	if t, ok := p.d.types[name]; ok && t != nil {
		return t
	}
	if t, err := p.d.graph.Lookup(name); err == nil {
		return t
	}
	p.unknown = true
	return typesystem.TCon{Name: name}
}
