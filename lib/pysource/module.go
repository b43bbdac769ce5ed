// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package pysource

import "strings"

// Module is the parsed view of one Python source file.
type Module struct {
	Path      string
	Functions []FunctionDef
	Imports   []Import
}

// FunctionDef is a (possibly async) function or method definition
// together with the decorators written above it.
type FunctionDef struct {
	Name       string
	Line       int
	Async      bool
	Decorators []Decorator
}

// Decorator is one "@name" or "@name(...)" line.
type Decorator struct {
	// Name is the dotted decorator name without the "@", for example
	// "inferex.pipeline".
	Name string
	Line int

	// Called is true when the decorator has an argument list, even an
	// empty one.
	Called bool
	Args   []Argument
}

// Keyword returns the keyword argument with the given name.
func (d Decorator) Keyword(name string) (Argument, bool) {
	for _, argument := range d.Args {
		if argument.Keyword == name {
			return argument, true
		}
	}
	return Argument{}, false
}

// ArgumentKind distinguishes the syntactic forms of a call argument.
type ArgumentKind int

const (
	// Positional is a bare expression: f(x).
	Positional ArgumentKind = iota
	// KeywordArg is name=value: f(x=1).
	KeywordArg
	// StarArgs is an unpacked sequence: f(*xs).
	StarArgs
	// StarKwargs is an unpacked mapping: f(**kw).
	StarKwargs
)

// Argument is one comma-separated call argument.
type Argument struct {
	Kind    ArgumentKind
	Keyword string
	Value   Value
}

// ValueKind classifies a literal argument value.
type ValueKind int

const (
	// Expression is anything that is not a plain literal.
	Expression ValueKind = iota
	String
	Number
	Bool
	None
)

// Value is an argument expression. For String values Str holds the
// decoded literal; Source always holds the expression text with
// surrounding whitespace removed.
type Value struct {
	Kind   ValueKind
	Str    string
	Source string
}

// Import is one imported module. "import a.b, c" yields two imports;
// "from a.b import c" yields one import of "a.b" with From set.
type Import struct {
	Module string
	Line   int
	From   bool
	// Level counts leading dots of a relative import.
	Level int
}

// Root returns the top-level package name: "a" for "a.b.c".
func (i Import) Root() string {
	root, _, _ := strings.Cut(i.Module, ".")
	return root
}
