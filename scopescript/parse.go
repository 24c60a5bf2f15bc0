// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scopescript

// A trace is read line by line. Each non-blank line (after removing a
// '#' comment) is split into tokens: names, which may be dotted, and
// the punctuation ( ) [ ] , : @ and ->. Blocks are delimited by
// indentation with spaces, as in Python.

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ParseFile parses a trace and returns its top-level statements.
//
// If src != nil, ParseFile parses the source from src and the filename
// is only used when recording positions. The type of the argument for
// the src parameter must be string, []byte, or io.Reader.
// If src == nil, ParseFile parses the file specified by filename.
func ParseFile(filename string, src interface{}) ([]Stmt, error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}
	lines, err := scan(filename, data)
	if err != nil {
		return nil, err
	}
	p := &parser{filename: filename, lines: lines}
	stmts := p.block(0)
	if p.err == nil && p.i < len(p.lines) {
		p.errorf(p.lines[p.i].num, "unindent does not match any outer indentation level")
	}
	if p.err != nil {
		return nil, p.err
	}
	return stmts, nil
}

func readSource(filename string, src interface{}) ([]byte, error) {
	switch src := src.(type) {
	case string:
		return []byte(src), nil
	case []byte:
		return src, nil
	case io.Reader:
		data, err := ioutil.ReadAll(src)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", filename)
		}
		return data, nil
	case nil:
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read trace %q", filename)
		}
		return data, nil
	default:
		return nil, errors.Errorf("invalid source: %T", src)
	}
}

// A line is one non-blank source line, split into tokens.
type line struct {
	num    int
	indent int
	toks   []string
}

func scan(filename string, data []byte) ([]line, error) {
	var lines []line
	for i, text := range strings.Split(string(data), "\n") {
		num := i + 1
		if j := strings.IndexByte(text, '#'); j >= 0 {
			text = text[:j]
		}
		text = strings.TrimRight(text, " \t\r")
		if text == "" {
			continue
		}
		indent := 0
		for text[indent] == ' ' {
			indent++
		}
		if text[indent] == '\t' {
			return nil, errors.Errorf("%s:%d: tabs are not allowed in indentation", filename, num)
		}
		toks, err := tokenize(text[indent:])
		if err != nil {
			return nil, errors.Errorf("%s:%d: %v", filename, num, err)
		}
		lines = append(lines, line{num, indent, toks})
	}
	return lines, nil
}

func tokenize(s string) ([]string, error) {
	var toks []string
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && (isIdentStart(s[j]) || isDigit(s[j]) || s[j] == '.') {
				j++
			}
			name := s[i:j]
			if strings.Contains(name, "..") || strings.HasSuffix(name, ".") {
				return nil, fmt.Errorf("malformed name %q", name)
			}
			toks = append(toks, name)
			i = j
		case c == '-' && i+1 < len(s) && s[i+1] == '>':
			toks = append(toks, "->")
			i += 2
		case strings.IndexByte("()[],:@", c) >= 0:
			toks = append(toks, string(c))
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return toks, nil
}

func isIdentStart(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdent(tok string) bool { return tok != "" && isIdentStart(tok[0]) }

type parser struct {
	filename string
	lines    []line
	i        int   // index of next line
	err      error // first error
}

func (p *parser) errorf(num int, format string, args ...interface{}) {
	if p.err == nil {
		p.err = errors.Errorf("%s:%d: %s", p.filename, num, fmt.Sprintf(format, args...))
	}
}

// block parses the statements at exactly the given indentation.
func (p *parser) block(indent int) []Stmt {
	var stmts []Stmt
	var decorators []Decorator
	for p.err == nil && p.i < len(p.lines) {
		ln := p.lines[p.i]
		if ln.indent < indent {
			break
		}
		if ln.indent > indent {
			p.errorf(ln.num, "unexpected indent")
			break
		}
		p.i++
		c := &cursor{p: p, ln: ln}
		if c.peek() == "@" {
			c.next()
			name := c.ident()
			c.end()
			decorators = append(decorators, Decorator{ln.num, name})
			continue
		}
		stmt := p.stmt(c)
		if len(decorators) > 0 {
			switch stmt := stmt.(type) {
			case *DefStmt:
				stmt.Decorators = decorators
			case *ClassStmt:
				stmt.Decorators = decorators
			default:
				p.errorf(ln.num, "decorator must precede def or class")
			}
			decorators = nil
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if len(decorators) > 0 {
		p.errorf(decorators[len(decorators)-1].Line, "decorator must precede def or class")
	}
	return stmts
}

// body parses the indented block that follows a header line.
func (p *parser) body(header line) []Stmt {
	if p.err != nil {
		return nil
	}
	if p.i >= len(p.lines) || p.lines[p.i].indent <= header.indent {
		p.errorf(header.num, "expected an indented block")
		return nil
	}
	return p.block(p.lines[p.i].indent)
}

func (p *parser) stmt(c *cursor) Stmt {
	num := c.ln.num
	kw := c.ident()
	switch kw {
	case "var", "forward", "typevar":
		name := c.simpleIdent()
		c.end()
		return &NameStmt{Line: num, Op: kw, Names: []string{name}}

	case "assign", "global", "nonlocal":
		names := c.simpleNames()
		c.end()
		return &NameStmt{Line: num, Op: kw, Names: names}

	case "use":
		names := c.names()
		c.end()
		return &NameStmt{Line: num, Op: kw, Names: names}

	case "return":
		names := c.optNames("")
		c.end()
		return &NameStmt{Line: num, Op: kw, Names: names}

	case "pass":
		c.end()
		return &NameStmt{Line: num, Op: kw}

	case "import":
		imp := &ImportStmt{Line: num, Module: c.ident()}
		if c.peek() == "as" {
			c.next()
			imp.As = c.simpleIdent()
		}
		c.end()
		return imp

	case "from":
		from := &FromStmt{Line: num, Module: c.ident()}
		c.expect("import")
		from.Names = c.simpleNames()
		c.end()
		return from

	case "def":
		return p.def(c)

	case "class":
		return p.class(c)

	case "if", "elif", "while", "with", "except":
		b := &BlockStmt{Line: num, Keyword: kw, Reads: c.optNames(":")}
		c.expect(":")
		c.end()
		b.Body = p.body(c.ln)
		return b

	case "else", "try", "finally":
		c.expect(":")
		c.end()
		return &BlockStmt{Line: num, Keyword: kw, Body: p.body(c.ln)}

	case "for":
		b := &BlockStmt{Line: num, Keyword: kw, Targets: c.simpleNames()}
		c.expect("in")
		b.Reads = c.names()
		c.expect(":")
		c.end()
		b.Body = p.body(c.ln)
		return b

	case "":
		return nil // error already reported

	default:
		c.fail("unknown statement %q", kw)
		return nil
	}
}

func (p *parser) def(c *cursor) Stmt {
	d := &DefStmt{Line: c.ln.num, Name: c.simpleIdent()}
	c.expect("(")
	for p.err == nil && c.peek() != ")" && c.peek() != "" {
		param := Param{Name: c.simpleIdent()}
		if c.peek() == ":" {
			c.next()
			param.Annotation = c.ident()
		}
		d.Params = append(d.Params, param)
		if c.peek() != "," {
			break
		}
		c.next()
	}
	c.expect(")")
	if c.peek() == "->" {
		c.next()
		d.Result = c.ident()
	}
	c.expect(":")
	c.end()
	d.Body = p.body(c.ln)
	return d
}

func (p *parser) class(c *cursor) Stmt {
	k := &ClassStmt{Line: c.ln.num, Name: c.simpleIdent()}
	if c.peek() == "[" {
		c.next()
		k.TypeVars = c.names()
		c.expect("]")
	}
	if c.peek() == "(" {
		c.next()
		k.Bases = c.optNames(")")
		c.expect(")")
	}
	c.expect(":")
	c.end()
	k.Body = p.body(c.ln)
	return k
}

// A cursor walks the tokens of one line.
type cursor struct {
	p  *parser
	ln line
	i  int
}

func (c *cursor) peek() string {
	if c.i < len(c.ln.toks) {
		return c.ln.toks[c.i]
	}
	return ""
}

func (c *cursor) next() string {
	tok := c.peek()
	if tok != "" {
		c.i++
	}
	return tok
}

func (c *cursor) fail(format string, args ...interface{}) {
	c.p.errorf(c.ln.num, format, args...)
}

func describe(tok string) string {
	if tok == "" {
		return "end of line"
	}
	return fmt.Sprintf("%q", tok)
}

func (c *cursor) ident() string {
	tok := c.next()
	if !isIdent(tok) {
		c.fail("expected name, got %s", describe(tok))
		return ""
	}
	return tok
}

// simpleIdent is like ident but rejects dotted names.
func (c *cursor) simpleIdent() string {
	name := c.ident()
	if strings.Contains(name, ".") {
		c.fail("expected simple name, got %q", name)
	}
	return name
}

func (c *cursor) expect(tok string) {
	if got := c.next(); got != tok {
		c.fail("expected %q, got %s", tok, describe(got))
	}
}

func (c *cursor) end() {
	if tok := c.peek(); tok != "" {
		c.fail("unexpected %q", tok)
	}
}

// names parses one or more comma-separated names.
func (c *cursor) names() []string {
	names := []string{c.ident()}
	for c.peek() == "," {
		c.next()
		names = append(names, c.ident())
	}
	return names
}

// simpleNames is like names but rejects dotted names.
func (c *cursor) simpleNames() []string {
	names := []string{c.simpleIdent()}
	for c.peek() == "," {
		c.next()
		names = append(names, c.simpleIdent())
	}
	return names
}

// optNames is like names but returns nil at stop or end of line.
func (c *cursor) optNames(stop string) []string {
	if tok := c.peek(); tok == "" || tok == stop {
		return nil
	}
	return c.names()
}
