package typesystem

import (
	"errors"
	"fmt"
)

// ErrGenericMismatch is returned when a declared type cannot be instantiated
// to an actual type. It is a hard failure, not an absent binding.
var ErrGenericMismatch = errors.New("generic mismatch")

// BindGenerics walks declared and actual in parallel. Each generic
// placeholder met in declared records its actual counterpart in bindings;
// a placeholder already present must agree with the earlier binding.
// Any other difference is reported as ErrGenericMismatch. bindings may be
// pre-seeded (facility instantiations) and is extended in place.
func BindGenerics(declared, actual Type, bindings Subst) error {
	if declared == nil || actual == nil {
		return errMismatch("missing type", declared, actual)
	}

	switch d := declared.(type) {
	case TVar:
		if prev, ok := bindings[d.Name]; ok {
			if IsSubtype(actual, prev) {
				return nil
			}
			return errMismatch(fmt.Sprintf("placeholder %s already bound to %s", d.Name, prev), declared, actual)
		}
		s, err := Bind(d, actual)
		if err != nil {
			return err
		}
		for k, v := range s {
			bindings[k] = v
		}
		return nil

	case TCon:
		if IsSubtype(actual, d) {
			return nil
		}
		return errMismatch("type constant mismatch", declared, actual)

	case TApp:
		a, ok := actual.(TApp)
		if !ok || a.Constructor.Name != d.Constructor.Name {
			return errMismatch("constructor mismatch", declared, actual)
		}
		if len(a.Args) != len(d.Args) {
			return errMismatch(fmt.Sprintf("type arguments length mismatch: %d vs %d", len(d.Args), len(a.Args)), declared, actual)
		}
		for i := range d.Args {
			if err := BindGenerics(d.Args[i], a.Args[i], bindings); err != nil {
				return errContext(fmt.Sprintf("argument %d of %s", i+1, d.Constructor.Name), err)
			}
		}
		return nil

	case TTuple:
		a, ok := actual.(TTuple)
		if !ok || len(a.Elements) != len(d.Elements) {
			return errMismatch("cannot bind tuple", declared, actual)
		}
		for i := range d.Elements {
			if err := BindGenerics(d.Elements[i], a.Elements[i], bindings); err != nil {
				return errContext("tuple element", err)
			}
		}
		return nil

	case TFunc:
		a, ok := actual.(TFunc)
		if !ok || len(a.Params) != len(d.Params) {
			return errMismatch("cannot bind function type", declared, actual)
		}
		for i := range d.Params {
			if err := BindGenerics(d.Params[i], a.Params[i], bindings); err != nil {
				return errContext("function parameter", err)
			}
		}
		return BindGenerics(d.ReturnType, a.ReturnType, bindings)

	case TType:
		a, ok := actual.(TType)
		if !ok {
			return errMismatch("cannot bind type of types", declared, actual)
		}
		return BindGenerics(d.Type, a.Type, bindings)
	}
	return errMismatch(fmt.Sprintf("unknown type kind: %T", declared), declared, actual)
}

// Bind binds a placeholder to a type, performing the occurs check.
func Bind(tv TVar, t Type) (Subst, error) {
	if tVal, ok := t.(TVar); ok && tVal.Name == tv.Name {
		return Subst{}, nil
	}
	if OccursCheck(tv, t) {
		return nil, errMismatch("infinite type detected", tv, t)
	}
	return Subst{tv.Name: t}, nil
}

// OccursCheck returns true if tv appears free in t.
func OccursCheck(tv TVar, t Type) bool {
	for _, v := range t.FreeTypeVariables() {
		if v.Name == tv.Name {
			return true
		}
	}
	return false
}

func errMismatch(msg string, declared, actual Type) error {
	return fmt.Errorf("%w: %s: %v vs %v", ErrGenericMismatch, msg, declared, actual)
}

func errContext(ctx string, err error) error {
	return fmt.Errorf("in %s: %w", ctx, err)
}
