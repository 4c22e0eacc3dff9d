package typesystem

// Names of the built-in math types.
const (
	BooleanName = "B"
	IntegerName = "Z"
	NaturalName = "N"
	RealName    = "R"
	CharName    = "Char"
	StringName  = "Str"
	EntityName  = "Entity"
	SSetName    = "SSet"
)

// TypeGraph supplies the canonical math types. A graph never changes after
// construction, so one instance is shared by every worker of a run.
type TypeGraph struct {
	BOOLEAN TCon
	Z       TCon
	N       TCon
	R       TCon
	CHAR    TCon
	ENTITY  TCon
	SSET    TCon
	STR     TCon

	byName map[string]Type
}

// NewTypeGraph builds the graph with the built-in types:
// N is a subset of Z, Z of R, everything of Entity.
func NewTypeGraph() *TypeGraph {
	r := &TCon{Name: RealName}
	z := &TCon{Name: IntegerName, Super: r}
	n := TCon{Name: NaturalName, Super: z}

	g := &TypeGraph{
		BOOLEAN: TCon{Name: BooleanName},
		Z:       *z,
		N:       n,
		R:       *r,
		CHAR:    TCon{Name: CharName},
		ENTITY:  TCon{Name: EntityName},
		SSET:    TCon{Name: SSetName},
		STR:     TCon{Name: StringName},
	}
	g.byName = map[string]Type{}
	for _, c := range []TCon{g.BOOLEAN, g.Z, g.N, g.R, g.CHAR, g.ENTITY, g.SSET, g.STR} {
		g.byName[c.Name] = c
	}
	return g
}

// With returns a new graph that also knows the given named types.
// The receiver is left untouched.
func (g *TypeGraph) With(types map[string]Type) *TypeGraph {
	ng := *g
	ng.byName = make(map[string]Type, len(g.byName)+len(types))
	for k, v := range g.byName {
		ng.byName[k] = v
	}
	for k, v := range types {
		ng.byName[k] = v
	}
	return &ng
}

// Lookup resolves a type name.
func (g *TypeGraph) Lookup(name string) (Type, error) {
	if t, ok := g.byName[name]; ok {
		return t, nil
	}
	return nil, NewUnknownTypeError(name)
}
