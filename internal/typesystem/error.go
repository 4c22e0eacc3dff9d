package typesystem

import "fmt"

// UnknownTypeError indicates a type name the graph does not define
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown math type: %s", e.Name)
}

func NewUnknownTypeError(name string) *UnknownTypeError {
	return &UnknownTypeError{Name: name}
}
