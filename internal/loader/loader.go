// Package loader decodes typed modules from *.vc.yaml files.
//
// A module file lists the module's generics, named types, math
// definitions, facilities, operations and procedures. Expressions are
// written as YAML trees: a sequence is an application with the operator
// first, a string is a variable (#x for an incoming value), an integer is
// a literal, and maps spell out the remaining forms (char, lambda, alt,
// forall, exists, dot, call). Every expression comes out typed; a name
// whose type cannot be determined is left untyped.
package loader

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/typesystem"
)

type position struct {
	line, column int
}

func (p position) at(file string) diagnostics.Location {
	return diagnostics.Location{File: file, Line: p.line, Column: p.column}
}

type moduleFile struct {
	Module      string            `yaml:"module"`
	Kind        string            `yaml:"kind"`
	Uses        []string          `yaml:"uses"`
	Generics    []string          `yaml:"generics"`
	Types       map[string]string `yaml:"types"`
	Definitions []definitionFile  `yaml:"definitions"`
	Facilities  []facilityFile    `yaml:"facilities"`
	Operations  []operationFile   `yaml:"operations"`
	Procedures  []procedureFile   `yaml:"procedures"`
}

type definitionFile struct {
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params"`
	Returns string   `yaml:"returns"`
}

type facilityFile struct {
	Name    string            `yaml:"name"`
	Concept string            `yaml:"concept"`
	Args    map[string]string `yaml:"args"`
	pos     position
}

func (f *facilityFile) UnmarshalYAML(n *yaml.Node) error {
	type plain facilityFile
	if err := n.Decode((*plain)(f)); err != nil {
		return err
	}
	f.pos = position{n.Line, n.Column}
	return nil
}

type paramFile struct {
	Name string `yaml:"name"`
	Mode string `yaml:"mode"`
	Type string `yaml:"type"`
	pos  position
}

func (p *paramFile) UnmarshalYAML(n *yaml.Node) error {
	type plain paramFile
	if err := n.Decode((*plain)(p)); err != nil {
		return err
	}
	p.pos = position{n.Line, n.Column}
	return nil
}

type varFile struct {
	Name string    `yaml:"name"`
	Type string    `yaml:"type"`
	Init yaml.Node `yaml:"init"`
	pos  position
}

func (v *varFile) UnmarshalYAML(n *yaml.Node) error {
	type plain varFile
	if err := n.Decode((*plain)(v)); err != nil {
		return err
	}
	v.pos = position{n.Line, n.Column}
	return nil
}

type operationFile struct {
	Name     string      `yaml:"name"`
	Params   []paramFile `yaml:"params"`
	Returns  string      `yaml:"returns"`
	Requires yaml.Node   `yaml:"requires"`
	Ensures  yaml.Node   `yaml:"ensures"`
	pos      position
}

func (o *operationFile) UnmarshalYAML(n *yaml.Node) error {
	type plain operationFile
	if err := n.Decode((*plain)(o)); err != nil {
		return err
	}
	o.pos = position{n.Line, n.Column}
	return nil
}

type procedureFile struct {
	Name     string      `yaml:"name"`
	Params   []paramFile `yaml:"params"`
	Returns  string      `yaml:"returns"`
	Vars     []varFile   `yaml:"vars"`
	Requires yaml.Node   `yaml:"requires"`
	Ensures  yaml.Node   `yaml:"ensures"`
	Body     []yaml.Node `yaml:"body"`
	pos      position
}

func (p *procedureFile) UnmarshalYAML(n *yaml.Node) error {
	type plain procedureFile
	if err := n.Decode((*plain)(p)); err != nil {
		return err
	}
	p.pos = position{n.Line, n.Column}
	return nil
}

// Load reads and decodes one module file.
func Load(path string, graph *typesystem.TypeGraph) (*ast.ModuleDec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrL001, diagnostics.Location{File: path}, err, "cannot read module")
	}
	return Decode(data, path, graph)
}

// Decode decodes module file content. file is only used in locations.
func Decode(data []byte, file string, graph *typesystem.TypeGraph) (*ast.ModuleDec, error) {
	var mf moduleFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrL001, diagnostics.Location{File: file}, err, "invalid module file")
	}
	if mf.Module == "" {
		return nil, diagnostics.NewError(diagnostics.ErrL001, diagnostics.Location{File: file}, "module name is missing")
	}

	d := &decoder{
		file:     file,
		graph:    graph,
		generics: map[string]bool{},
		types:    map[string]typesystem.Type{},
		defs:     map[string]typesystem.Type{},
		ops:      map[string]typesystem.Type{},
	}
	return d.module(&mf)
}

type decoder struct {
	file     string
	graph    *typesystem.TypeGraph
	generics map[string]bool
	types    map[string]typesystem.Type
	defs     map[string]typesystem.Type
	ops      map[string]typesystem.Type
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...interface{}) error {
	return diagnostics.Errorf(diagnostics.ErrL001, d.loc(n), format, args...)
}

func (d *decoder) loc(n *yaml.Node) diagnostics.Location {
	if n == nil {
		return diagnostics.Location{File: d.file}
	}
	return diagnostics.Location{File: d.file, Line: n.Line, Column: n.Column}
}

func (d *decoder) module(mf *moduleFile) (*ast.ModuleDec, error) {
	m := &ast.ModuleDec{
		Location: diagnostics.Location{File: d.file, Line: 1, Column: 1},
		Name:     mf.Module,
		Kind:     ast.ModuleKind(mf.Kind),
		Uses:     mf.Uses,
		Generics: mf.Generics,
	}
	switch m.Kind {
	case "":
		m.Kind = ast.FacilityModule
	case ast.ConceptModule, ast.RealizationModule, ast.FacilityModule, ast.EnhancementModule:
	default:
		return nil, diagnostics.Errorf(diagnostics.ErrL001, m.Location, "unknown module kind %q", mf.Kind)
	}
	for _, g := range mf.Generics {
		d.generics[g] = true
	}

	// Named types may only mention built-in types and generics, so their
	// order does not matter; sorting keeps errors stable.
	names := make([]string, 0, len(mf.Types))
	for name := range mf.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t, err := d.parseType(mf.Types[name])
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrL001, m.Location, err, "type "+name)
		}
		d.types[name] = t
	}

	for _, def := range mf.Definitions {
		t, err := d.definitionType(def)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrL001, m.Location, err, "definition "+def.Name)
		}
		d.defs[def.Name] = t
		m.Definitions = append(m.Definitions, &ast.MathDefinition{Name: def.Name, Type: t})
	}

	for i := range mf.Facilities {
		f, err := d.facility(&mf.Facilities[i])
		if err != nil {
			return nil, err
		}
		m.Facilities = append(m.Facilities, f)
	}

	// Return types first: procedures may call any operation of the module.
	for _, of := range mf.Operations {
		t, err := d.parseType(of.Returns)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrL001, of.pos.at(d.file), err, "operation "+of.Name)
		}
		d.ops[of.Name] = t
	}
	for i := range mf.Operations {
		op, err := d.operation(&mf.Operations[i])
		if err != nil {
			return nil, err
		}
		m.Operations = append(m.Operations, op)
	}
	for i := range mf.Procedures {
		p, err := d.procedure(&mf.Procedures[i])
		if err != nil {
			return nil, err
		}
		m.Procedures = append(m.Procedures, p)
	}
	return m, nil
}

func (d *decoder) definitionType(def definitionFile) (typesystem.Type, error) {
	ret, err := d.parseType(def.Returns)
	if err != nil {
		return nil, err
	}
	if len(def.Params) == 0 {
		return ret, nil
	}
	params := make([]typesystem.Type, len(def.Params))
	for i, p := range def.Params {
		if params[i], err = d.parseType(p); err != nil {
			return nil, err
		}
	}
	if ret == nil {
		return nil, nil
	}
	for _, p := range params {
		if p == nil {
			return nil, nil
		}
	}
	return typesystem.TFunc{Params: params, ReturnType: ret}, nil
}

func (d *decoder) facility(ff *facilityFile) (*ast.FacilityDec, error) {
	f := &ast.FacilityDec{
		Location:       ff.pos.at(d.file),
		Name:           ff.Name,
		ConceptName:    ff.Concept,
		Instantiations: typesystem.Subst{},
	}
	if f.Name == "" || f.ConceptName == "" {
		return nil, diagnostics.NewError(diagnostics.ErrL001, f.Location, "facility needs a name and a concept")
	}
	for generic, typeName := range ff.Args {
		t, err := d.parseType(typeName)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrL001, f.Location, err, fmt.Sprintf("facility %s argument %s", f.Name, generic))
		}
		if t == nil {
			return nil, diagnostics.Errorf(diagnostics.ErrL001, f.Location, "facility %s: unknown type %q", f.Name, typeName)
		}
		f.Instantiations[generic] = t
	}
	return f, nil
}

func (d *decoder) params(pfs []paramFile) ([]*ast.ParameterVarDec, scope, error) {
	sc := scope{}
	var out []*ast.ParameterVarDec
	for _, pf := range pfs {
		loc := pf.pos.at(d.file)
		mode := ast.ParameterMode(pf.Mode)
		if mode == "" {
			mode = ast.ModeEvaluates
		}
		if !mode.Valid() {
			return nil, nil, diagnostics.Errorf(diagnostics.ErrL001, loc, "parameter %s: unknown mode %q", pf.Name, pf.Mode)
		}
		t, err := d.parseType(pf.Type)
		if err != nil {
			return nil, nil, diagnostics.Wrap(diagnostics.ErrL001, loc, err, "parameter "+pf.Name)
		}
		out = append(out, &ast.ParameterVarDec{Location: loc, Mode: mode, Name: pf.Name, Type: t})
		sc[pf.Name] = t
	}
	return out, sc, nil
}

func (d *decoder) clause(n *yaml.Node, sc scope) (*ast.AssertionClause, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	e, err := d.exp(n, sc)
	if err != nil {
		return nil, err
	}
	return &ast.AssertionClause{Location: d.loc(n), Assertion: e}, nil
}

func (d *decoder) operation(of *operationFile) (*ast.OperationDec, error) {
	params, sc, err := d.params(of.Params)
	if err != nil {
		return nil, err
	}
	op := &ast.OperationDec{Location: of.pos.at(d.file), Name: of.Name, Params: params, ReturnType: d.ops[of.Name]}
	if op.Requires, err = d.clause(&of.Requires, sc); err != nil {
		return nil, err
	}
	if op.ReturnType != nil {
		sc = sc.with(of.Name, op.ReturnType)
	}
	if op.Ensures, err = d.clause(&of.Ensures, sc); err != nil {
		return nil, err
	}
	return op, nil
}

func (d *decoder) procedure(pf *procedureFile) (*ast.ProcedureDec, error) {
	params, sc, err := d.params(pf.Params)
	if err != nil {
		return nil, err
	}
	p := &ast.ProcedureDec{Location: pf.pos.at(d.file), Name: pf.Name, Params: params}
	if p.ReturnType, err = d.parseType(pf.Returns); err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrL001, p.Location, err, "procedure "+pf.Name)
	}
	if p.Requires, err = d.clause(&pf.Requires, sc); err != nil {
		return nil, err
	}
	if p.ReturnType != nil {
		sc = sc.with(pf.Name, p.ReturnType)
	}
	if p.Ensures, err = d.clause(&pf.Ensures, sc); err != nil {
		return nil, err
	}

	for _, vf := range pf.Vars {
		loc := vf.pos.at(d.file)
		t, err := d.parseType(vf.Type)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrL001, loc, err, "variable "+vf.Name)
		}
		v := &ast.VarDec{Location: loc, Name: vf.Name, Type: t}
		if vf.Init.Kind != 0 {
			if v.Init, err = d.exp(&vf.Init, sc); err != nil {
				return nil, err
			}
		}
		sc = sc.with(vf.Name, t)
		p.Vars = append(p.Vars, v)
	}

	if p.Statements, err = d.statements(pf.Body, sc); err != nil {
		return nil, err
	}
	return p, nil
}
