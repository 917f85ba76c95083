// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl parses gate-level netlists in the structural Verilog subset used
// by the ISCAS benchmarks and in the ISCAS .bench format.
//
// The parsers only check syntax. Gate types are returned verbatim and pin
// declarations are not cross-checked.
//
package hdl

import (
	"io"
	"strings"
)

// Gate is a gate instance.
//
type Gate struct {
	Type string // gate type, as written
	Name string // instance name, may be empty
	Out  string
	In   []string
	Pos  Pos
}

// Module is a parsed netlist.
//
type Module struct {
	Name    string
	Ports   []string // Verilog port list
	Inputs  []string
	Outputs []string
	Wires   []string
	Gates   []Gate
}

// Error is a syntax error.
//
type Error struct {
	Pos Pos
	Msg string
}

func (e *Error) Error() string {
	return "line " + e.Pos.String() + ": " + e.Msg
}

// parser wraps a Lexer with a one token lookahead.
type parser struct {
	l    *Lexer
	i    Item
	peek *Item
}

func (p *parser) next() Item {
	if p.peek != nil {
		p.i, p.peek = *p.peek, nil
	} else {
		p.i = p.l.Lex()
	}
	return p.i
}

func (p *parser) lookahead() Item {
	if p.peek == nil {
		i := p.l.Lex()
		p.peek = &i
	}
	return *p.peek
}

func (p *parser) errorf(i Item, msg string) error {
	if i.Type == Invalid {
		return &Error{Pos: i.Pos, Msg: i.Value}
	}
	return &Error{Pos: i.Pos, Msg: msg + ", got " + i.String()}
}

func (p *parser) expect(t Type) (Item, error) {
	i := p.next()
	if i.Type != t {
		return i, p.errorf(i, "expected "+t.String())
	}
	return i, nil
}

// identList parses "a, b, c" up to and including the terminator token.
func (p *parser) identList(term Type) ([]string, error) {
	var out []string
	if p.lookahead().Type == term {
		p.next()
		return out, nil
	}
	for {
		i, err := p.expect(Ident)
		if err != nil {
			return nil, err
		}
		out = append(out, i.Value)
		switch i = p.next(); i.Type {
		case Comma:
		case term:
			return out, nil
		default:
			return nil, p.errorf(i, "expected ',' or "+term.String())
		}
	}
}

// ParseVerilog parses a single structural Verilog module:
//
//	module c17 (N1, N2, N3, N22);
//	input N1, N2, N3;
//	output N22;
//	wire N10;
//	nand NAND2_1 (N10, N1, N3);
//	...
//	endmodule
//
// Instance names are optional. The first pin of a gate instance is its
// output. Declaration lists may span several lines.
//
func ParseVerilog(r io.Reader) (*Module, error) {
	p := &parser{l: NewLexer(r, SlashComments)}
	m := new(Module)

	i := p.next()
	if i.Type != Ident || i.Value != "module" {
		return nil, p.errorf(i, "expected module")
	}
	i, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	m.Name = i.Value
	switch i = p.next(); i.Type {
	case ParenOpen:
		if m.Ports, err = p.identList(ParenClose); err != nil {
			return nil, err
		}
		if _, err = p.expect(Semicolon); err != nil {
			return nil, err
		}
	case Semicolon:
	default:
		return nil, p.errorf(i, "expected port list or ';'")
	}

	for {
		i = p.next()
		if i.Type != Ident {
			return nil, p.errorf(i, "expected declaration, gate instance or endmodule")
		}
		var dst *[]string
		switch i.Value {
		case "endmodule":
			return m, nil
		case "input":
			dst = &m.Inputs
		case "output":
			dst = &m.Outputs
		case "wire":
			dst = &m.Wires
		}
		if dst != nil {
			l, err := p.identList(Semicolon)
			if err != nil {
				return nil, err
			}
			*dst = append(*dst, l...)
			continue
		}
		g := Gate{Type: i.Value, Pos: i.Pos}
		if p.lookahead().Type == Ident {
			g.Name = p.next().Value
		}
		if _, err = p.expect(ParenOpen); err != nil {
			return nil, err
		}
		pins, err := p.identList(ParenClose)
		if err != nil {
			return nil, err
		}
		if len(pins) == 0 {
			return nil, &Error{Pos: g.Pos, Msg: "gate " + g.Type + " has no output pin"}
		}
		if _, err = p.expect(Semicolon); err != nil {
			return nil, err
		}
		g.Out, g.In = pins[0], pins[1:]
		m.Gates = append(m.Gates, g)
	}
}

// ParseBench parses an ISCAS .bench netlist:
//
//	# c17
//	INPUT(1)
//	OUTPUT(22)
//	10 = NAND(1, 3)
//
// Pins driven by a gate but not declared as outputs are returned as wires.
// The module name is left empty.
//
func ParseBench(r io.Reader) (*Module, error) {
	p := &parser{l: NewLexer(r, HashComments)}
	m := new(Module)
	outs := make(map[string]bool)
	for {
		i := p.next()
		switch i.Type {
		case EOF:
			for _, g := range m.Gates {
				if !outs[g.Out] {
					m.Wires = append(m.Wires, g.Out)
				}
			}
			return m, nil
		case Ident:
		default:
			return nil, p.errorf(i, "expected declaration or gate")
		}
		switch p.lookahead().Type {
		case ParenOpen:
			var dst *[]string
			switch strings.ToUpper(i.Value) {
			case "INPUT":
				dst = &m.Inputs
			case "OUTPUT":
				dst = &m.Outputs
			default:
				return nil, &Error{Pos: i.Pos, Msg: "unknown declaration " + i.Value}
			}
			p.next()
			pin, err := p.expect(Ident)
			if err != nil {
				return nil, err
			}
			if _, err = p.expect(ParenClose); err != nil {
				return nil, err
			}
			*dst = append(*dst, pin.Value)
			if dst == &m.Outputs {
				outs[pin.Value] = true
			}
		case Equal:
			p.next()
			t, err := p.expect(Ident)
			if err != nil {
				return nil, err
			}
			if _, err = p.expect(ParenOpen); err != nil {
				return nil, err
			}
			in, err := p.identList(ParenClose)
			if err != nil {
				return nil, err
			}
			m.Gates = append(m.Gates, Gate{Type: t.Value, Out: i.Value, In: in, Pos: i.Pos})
		default:
			return nil, p.errorf(p.next(), "expected '(' or '='")
		}
	}
}
