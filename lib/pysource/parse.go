// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package pysource

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

var pythonLexer = lexers.Get("python")

// SyntaxError reports source the parser could not fold into a Module.
type SyntaxError struct {
	Path    string
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

type token struct {
	chroma.Token
	line int
}

// Parse tokenises Python source and extracts decorated function
// definitions and imports. path is used only in errors.
func Parse(path string, source []byte) (*Module, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, &SyntaxError{Path: path, Message: err.Error()}
	}
	return parseTokens(path, tokens)
}

// tokenize runs the python lexer and numbers each token's line.
func tokenize(source []byte) ([]token, error) {
	raw, err := chroma.Tokenise(pythonLexer, nil, string(source))
	if err != nil {
		return nil, err
	}

	tokens := make([]token, 0, len(raw))
	line := 1
	for _, t := range raw {
		if t.Value == "" {
			continue
		}
		tokens = append(tokens, token{Token: t, line: line})
		line += strings.Count(t.Value, "\n")
	}
	return tokens, nil
}

func parseTokens(path string, tokens []token) (*Module, error) {
	p := &parser{path: path, tokens: tokens, module: &Module{Path: path}}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.module, nil
}

type parser struct {
	path   string
	tokens []token
	pos    int
	module *Module
}

func (p *parser) run() error {
	var pending []Decorator
	async := false

	for p.pos < len(p.tokens) {
		current := p.tokens[p.pos]
		if isTrivia(current) {
			p.pos++
			continue
		}

		switch {
		case current.Type == chroma.NameDecorator:
			decorator, err := p.decorator()
			if err != nil {
				return err
			}
			pending = append(pending, decorator)
			async = false
			continue

		case current.Type == chroma.Keyword && current.Value == "async":
			async = true
			p.pos++
			continue

		case current.Type == chroma.Keyword && current.Value == "def":
			function := FunctionDef{Line: current.line, Async: async, Decorators: pending}
			if next := p.nextSignificant(p.pos + 1); next < len(p.tokens) && p.tokens[next].Type.InCategory(chroma.Name) {
				function.Name = p.tokens[next].Value
				p.pos = next
			}
			p.module.Functions = append(p.module.Functions, function)
			pending = nil

		case current.Type == chroma.Keyword && current.Value == "class":
			pending = nil

		case current.Type == chroma.KeywordNamespace && current.Value == "from":
			p.fromImport()
			async = false
			continue

		case current.Type == chroma.KeywordNamespace && current.Value == "import":
			p.importStatement()
			async = false
			continue
		}

		async = false
		p.pos++
	}
	return nil
}

// decorator consumes an "@name" token and its optional argument list.
func (p *parser) decorator() (Decorator, error) {
	start := p.tokens[p.pos]
	decorator := Decorator{
		Name: strings.Join(strings.Fields(strings.TrimPrefix(start.Value, "@")), ""),
		Line: start.line,
	}
	p.pos++

	open := p.skipInline(p.pos)
	if open >= len(p.tokens) || !isPunctuation(p.tokens[open], "(") {
		return decorator, nil
	}

	decorator.Called = true
	args, end, err := p.callArguments(open)
	if err != nil {
		return Decorator{}, err
	}
	decorator.Args = args
	p.pos = end + 1
	return decorator, nil
}

// callArguments splits the tokens between the "(" at open and its
// matching ")" into arguments. Returns the index of the ")".
func (p *parser) callArguments(open int) ([]Argument, int, error) {
	var arguments []Argument
	var current []token
	depth := 0

	for i := open + 1; i < len(p.tokens); i++ {
		t := p.tokens[i]
		if t.Type == chroma.Punctuation {
			switch t.Value {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					if argument, ok := newArgument(current); ok {
						arguments = append(arguments, argument)
					}
					return arguments, i, nil
				}
				depth--
			case ",":
				if depth == 0 {
					if argument, ok := newArgument(current); ok {
						arguments = append(arguments, argument)
					}
					current = nil
					continue
				}
			}
		}
		current = append(current, t)
	}
	return nil, 0, &SyntaxError{
		Path:    p.path,
		Line:    p.tokens[open].line,
		Message: "unclosed decorator argument list",
	}
}

func newArgument(tokens []token) (Argument, bool) {
	significant := withoutTrivia(tokens)
	if len(significant) == 0 {
		return Argument{}, false
	}

	if isOperator(significant[0], "*") {
		if len(significant) > 1 && isOperator(significant[1], "*") {
			return Argument{Kind: StarKwargs, Value: newValue(significant[2:])}, true
		}
		return Argument{Kind: StarArgs, Value: newValue(significant[1:])}, true
	}
	if len(significant) >= 2 &&
		significant[0].Type.InCategory(chroma.Name) &&
		significant[0].Type != chroma.NameDecorator &&
		isOperator(significant[1], "=") {
		return Argument{Kind: KeywordArg, Keyword: significant[0].Value, Value: newValue(significant[2:])}, true
	}
	return Argument{Kind: Positional, Value: newValue(significant)}, true
}

func newValue(tokens []token) Value {
	var source strings.Builder
	for _, t := range tokens {
		source.WriteString(t.Value)
	}
	value := Value{Kind: Expression, Source: strings.TrimSpace(source.String())}
	if len(tokens) == 0 {
		return value
	}

	allStrings := true
	for _, t := range tokens {
		if !t.Type.InSubCategory(chroma.LiteralString) {
			allStrings = false
			break
		}
	}
	if allStrings {
		if decoded, ok := decodeStrings(value.Source); ok {
			value.Kind = String
			value.Str = decoded
		}
		return value
	}

	if len(tokens) == 1 {
		t := tokens[0]
		switch {
		case t.Type.InSubCategory(chroma.LiteralNumber):
			value.Kind = Number
		case t.Type == chroma.KeywordConstant && t.Value == "None":
			value.Kind = None
		case t.Type == chroma.KeywordConstant:
			value.Kind = Bool
		}
	}
	return value
}

// fromImport consumes "from <module> import". The statement is only
// recorded when the import keyword is reached, so "raise X from err"
// is ignored.
func (p *parser) fromImport() {
	start := p.tokens[p.pos]
	p.pos++

	level := 0
	var module strings.Builder
	for p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		switch {
		case isInlineSpace(t):
		case t.Type == chroma.NameNamespace && t.Value == "." && module.Len() == 0:
			level++
		case t.Type == chroma.NameNamespace:
			module.WriteString(t.Value)
		case t.Type == chroma.KeywordNamespace && t.Value == "import":
			p.module.Imports = append(p.module.Imports, Import{
				Module: module.String(),
				Line:   start.line,
				From:   true,
				Level:  level,
			})
			p.pos++
			return
		default:
			return
		}
		p.pos++
	}
}

// importStatement consumes "import a.b as c, d".
func (p *parser) importStatement() {
	start := p.tokens[p.pos]
	p.pos++

	var module strings.Builder
	alias := false
	flush := func() {
		if module.Len() > 0 {
			p.module.Imports = append(p.module.Imports, Import{Module: module.String(), Line: start.line})
			module.Reset()
		}
	}

	for ; p.pos < len(p.tokens); p.pos++ {
		t := p.tokens[p.pos]
		switch {
		case isInlineSpace(t):
		case t.Type == chroma.Keyword && t.Value == "as":
			alias = true
		case t.Type == chroma.NameNamespace && alias:
			alias = false
		case t.Type == chroma.NameNamespace:
			module.WriteString(t.Value)
		case t.Type == chroma.Operator && t.Value == ",":
			flush()
		default:
			flush()
			return
		}
	}
	flush()
}

func (p *parser) nextSignificant(from int) int {
	for from < len(p.tokens) && isTrivia(p.tokens[from]) {
		from++
	}
	return from
}

// skipInline skips same-line whitespace.
func (p *parser) skipInline(from int) int {
	for from < len(p.tokens) && isInlineSpace(p.tokens[from]) {
		from++
	}
	return from
}

// isInlineSpace reports whether t is whitespace that does not end the
// line. The lexer emits it as either Text or TextWhitespace.
func isInlineSpace(t token) bool {
	if t.Type != chroma.Text && t.Type != chroma.TextWhitespace {
		return false
	}
	return !strings.Contains(t.Value, "\n") && strings.TrimSpace(t.Value) == ""
}

func isTrivia(t token) bool {
	if t.Type.InCategory(chroma.Comment) {
		return true
	}
	return (t.Type == chroma.Text || t.Type == chroma.TextWhitespace) && strings.Trim(t.Value, " \t\r\n\\") == ""
}

func withoutTrivia(tokens []token) []token {
	var significant []token
	for _, t := range tokens {
		if !isTrivia(t) {
			significant = append(significant, t)
		}
	}
	return significant
}

func isPunctuation(t token, value string) bool {
	return t.Type == chroma.Punctuation && t.Value == value
}

func isOperator(t token, value string) bool {
	return t.Type == chroma.Operator && t.Value == value
}
