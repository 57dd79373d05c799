// SPDX-License-Identifier: MPL-2.0

package codegen

// Shape classifies an API method.
type Shape int

const (
	ShapeSync Shape = iota
	ShapeFluent
	ShapeAsync
	ShapeStream
)

func (s Shape) String() string {
	switch s {
	case ShapeSync:
		return "sync"
	case ShapeFluent:
		return "fluent"
	case ShapeAsync:
		return "async"
	case ShapeStream:
		return "stream"
	default:
		return "unknown"
	}
}

type (
	// API is the scanned surface of a core package.
	API struct {
		// Package is the core package name, used as its import alias.
		Package    string
		ImportPath string
		Interfaces []*Interface
		// Imports maps import path to the name the source uses for it, for
		// every package referenced by the surface.
		Imports map[string]string
	}

	// Interface is an annotated interface.
	Interface struct {
		Name    string
		Doc     string
		Methods []*Method
	}

	// Method is one interface member. Types are rendered with identifiers
	// of the core package already qualified.
	Method struct {
		Name    string
		Doc     string
		Shape   Shape
		Params  []Param
		Results []string
		// Callback is the original type of the trailing callback parameter.
		Callback string
		// Value is the callback's value type; empty for func(error).
		Value string
		// Problem is set when the member cannot be represented in any idiom.
		Problem string

		// ValueRebind names the annotated interface carried by the
		// callback, if any; the facade hands out its wrapper instead.
		ValueRebind string
		// ResultRebind names the annotated interface returned by a sync
		// method whose results are (I) or (I, error).
		ResultRebind string
	}

	// Param is a non-callback parameter.
	Param struct {
		Name     string
		Type     string
		Variadic bool
	}
)

// Member returns "Interface.Method".
func (i *Interface) Member(m *Method) string {
	return i.Name + "." + m.Name
}

// Lookup returns the interface called name.
func (a *API) Lookup(name string) (*Interface, bool) {
	for _, i := range a.Interfaces {
		if i.Name == name {
			return i, true
		}
	}
	return nil, false
}
