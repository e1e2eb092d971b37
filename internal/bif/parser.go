// Copyright 2026 The Zynqboot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bif

import (
	"fmt"
	"strconv"

	"github.com/zynqtools/zynqboot/internal/arch"
)

// Parse parses BIF source text for the given target architecture. The name
// identifies the source in error messages, it is not opened or read. The
// first syntax error aborts the parse; a successfully parsed config is also
// semantically validated before it is returned.
func Parse(name string, src []byte, a arch.Arch) (*Config, error) {
	p := &parser{name: name, src: src, arch: a, line: 1, col: 1}
	cfg, err := p.parseImage()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(name); err != nil {
		return nil, err
	}
	return cfg, nil
}

const (
	tokEOF = iota
	tokWord
	tokPunct
)

type token struct {
	kind int
	text string // word text or single punctuation character
	line int
	col  int
}

type parser struct {
	name string
	src  []byte
	arch arch.Arch
	pos  int
	line int
	col  int
}

func (p *parser) errAt(line, col int, f string, args ...any) error {
	return &ParseError{p.name, line, col, fmt.Sprintf(f, args...)}
}

func (p *parser) advance() {
	if p.src[p.pos] == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	p.pos++
}

// skipSpace consumes whitespace, // line comments and /* */ block comments.
func (p *parser) skipSpace() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.advance()
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.advance()
			}
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			line, col := p.line, p.col
			p.advance()
			p.advance()
			for {
				if p.pos >= len(p.src) {
					return p.errAt(line, col, "unterminated comment")
				}
				if p.src[p.pos] == '*' && p.pos+1 < len(p.src) &&
					p.src[p.pos+1] == '/' {
					p.advance()
					p.advance()
					break
				}
				p.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func isPunct(c byte) bool {
	switch c {
	case ':', '{', '}', '[', ']', ',', '=':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func (p *parser) next() (token, error) {
	if err := p.skipSpace(); err != nil {
		return token{}, err
	}
	if p.pos >= len(p.src) {
		return token{kind: tokEOF, line: p.line, col: p.col}, nil
	}
	line, col := p.line, p.col
	c := p.src[p.pos]
	if isPunct(c) {
		p.advance()
		return token{tokPunct, string(c), line, col}, nil
	}
	start := p.pos
	for p.pos < len(p.src) {
		c = p.src[p.pos]
		if isSpace(c) || isPunct(c) {
			break
		}
		if c == '/' && p.pos+1 < len(p.src) &&
			(p.src[p.pos+1] == '/' || p.src[p.pos+1] == '*') {
			break
		}
		p.advance()
	}
	return token{tokWord, string(p.src[start:p.pos]), line, col}, nil
}

func (p *parser) expectPunct(c string) (token, error) {
	t, err := p.next()
	if err != nil {
		return t, err
	}
	if t.kind != tokPunct || t.text != c {
		return t, p.errAt(t.line, t.col, "expected '%s', got %s", c, t.describe())
	}
	return t, nil
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of file"
	case tokPunct:
		return "'" + t.text + "'"
	}
	return "'" + t.text + "'"
}

// parseImage parses the whole source: a named top-level block holding the
// ordered node list.
//
//	image  := name ':' '{' entry* '}'
//	entry  := [ '[' attr (',' attr)* ']' ] path
//	attr   := key [ '=' value ]
func (p *parser) parseImage() (*Config, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	if t.kind != tokWord {
		return nil, p.errAt(t.line, t.col, "expected image name, got %s", t.describe())
	}
	cfg := &Config{Arch: p.arch, Name: t.text}
	if _, err = p.expectPunct(":"); err != nil {
		return nil, err
	}
	if _, err = p.expectPunct("{"); err != nil {
		return nil, err
	}
	for {
		t, err = p.next()
		if err != nil {
			return nil, err
		}
		if t.kind == tokPunct && t.text == "}" {
			break
		}
		if t.kind == tokEOF {
			return nil, p.errAt(t.line, t.col, "unexpected end of file, missing '}'")
		}
		node, err := p.parseNode(t)
		if err != nil {
			return nil, err
		}
		cfg.Nodes = append(cfg.Nodes, node)
	}
	t, err = p.next()
	if err != nil {
		return nil, err
	}
	if t.kind != tokEOF {
		return nil, p.errAt(t.line, t.col, "unexpected %s after closing '}'", t.describe())
	}
	return cfg, nil
}

// parseNode parses one entry starting at the already consumed token t:
// an optional bracketed attribute list followed by the file path.
func (p *parser) parseNode(t token) (Node, error) {
	var node Node
	if t.kind == tokPunct && t.text == "[" {
		for {
			a, err := p.parseAttr(&node)
			if err != nil {
				return node, err
			}
			node.Attrs = append(node.Attrs, a)
			sep, err := p.next()
			if err != nil {
				return node, err
			}
			if sep.kind == tokPunct && sep.text == "," {
				continue
			}
			if sep.kind == tokPunct && sep.text == "]" {
				break
			}
			return node, p.errAt(sep.line, sep.col,
				"expected ',' or ']' in attribute list, got %s", sep.describe())
		}
		var err error
		if t, err = p.next(); err != nil {
			return node, err
		}
	}
	if t.kind != tokWord {
		return node, p.errAt(t.line, t.col, "expected file path, got %s", t.describe())
	}
	node.Path = t.text
	return node, nil
}

func (p *parser) parseAttr(node *Node) (Attr, error) {
	t, err := p.next()
	if err != nil {
		return Attr{}, err
	}
	if t.kind != tokWord {
		return Attr{}, p.errAt(t.line, t.col,
			"expected attribute name, got %s", t.describe())
	}
	def, ok := attrDefs[t.text]
	if !ok {
		return Attr{}, p.errAt(t.line, t.col, "unknown attribute: %s", t.text)
	}
	if def.zynqMP && p.arch != arch.ZynqMP {
		return Attr{}, p.errAt(t.line, t.col,
			"attribute %s is only valid for zynqmp", t.text)
	}
	if _, dup := node.Attr(t.text); dup {
		return Attr{}, p.errAt(t.line, t.col, "duplicate attribute: %s", t.text)
	}
	a := Attr{Key: t.text}
	if def.flag {
		return a, nil
	}
	if _, err = p.expectPunct("="); err != nil {
		return Attr{}, err
	}
	v, err := p.next()
	if err != nil {
		return Attr{}, err
	}
	if v.kind != tokWord {
		return Attr{}, p.errAt(v.line, v.col,
			"expected value for attribute %s, got %s", a.Key, v.describe())
	}
	a.Value = v.text
	if def.num {
		u, err := strconv.ParseUint(v.text, 0, 32)
		if err != nil {
			return Attr{}, p.errAt(v.line, v.col,
				"bad value for attribute %s: %s", a.Key, v.text)
		}
		a.Num = uint32(u)
	}
	if def.values != nil {
		ok := false
		for _, allowed := range def.values {
			if v.text == allowed {
				ok = true
				break
			}
		}
		if !ok {
			return Attr{}, p.errAt(v.line, v.col,
				"bad value for attribute %s: %s", a.Key, v.text)
		}
	}
	return a, nil
}
