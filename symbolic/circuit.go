// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package symbolic provides symbolic representations of netlists: an
// and-inverter graph used to cross-check evaluations and to find input vectors
// that justify a pin value with a SAT solver, and BDDs to count the input
// vectors setting a pin.
//
package symbolic

import (
	"io"
	"strconv"

	"github.com/db47h/ddpath"
	"github.com/db47h/ddpath/vectors"
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Circuit is an and-inverter graph equivalent to a netlist, with one literal
// per pin.
//
type Circuit struct {
	n    *ddpath.Netlist
	c    *logic.C
	lits map[string]z.Lit
}

// Compile builds the and-inverter graph of n. Gates need not be declared in
// topological order, but n must be acyclic: Compile fails with a
// *ddpath.CycleError otherwise.
//
func Compile(n *ddpath.Netlist) (*Circuit, error) {
	tn, err := n.Topological()
	if err != nil {
		return nil, err
	}
	c := &Circuit{
		n:    n,
		c:    logic.NewCCap(2 * n.Size()),
		lits: make(map[string]z.Lit, n.Size()),
	}
	for _, p := range n.Inputs() {
		c.lits[p] = c.c.Lit()
	}
	ins := make([]z.Lit, 0, 4)
	for _, g := range tn.Gates() {
		ins = ins[:0]
		for _, p := range g.In {
			ins = append(ins, c.lits[p])
		}
		c.lits[g.Out] = c.gate(g.Type, ins)
	}
	return c, nil
}

func (c *Circuit) gate(t ddpath.GateType, ins []z.Lit) z.Lit {
	switch t {
	case ddpath.And:
		return c.c.Ands(ins...)
	case ddpath.Nand:
		return c.c.Ands(ins...).Not()
	case ddpath.Or:
		return c.c.Ors(ins...)
	case ddpath.Nor:
		return c.c.Ors(ins...).Not()
	case ddpath.Not:
		return ins[0].Not()
	case ddpath.Buf:
		return ins[0]
	case ddpath.Xor:
		return c.c.Xor(ins[0], ins[1])
	}
	panic("invalid gate type " + t.String())
}

// Len returns the number of nodes in the graph.
//
func (c *Circuit) Len() int { return c.c.Len() }

// Eval computes the value of every pin for the given input values.
//
func (c *Circuit) Eval(in ddpath.Values) (ddpath.Values, error) {
	vs := make([]bool, c.c.Len())
	vs[c.c.T.Var()] = true
	for _, p := range c.n.Inputs() {
		b, ok := in[p]
		if !ok {
			return nil, &ddpath.IncompleteInputError{Missing: []string{p}}
		}
		vs[c.lits[p].Var()] = b
	}
	c.c.Eval(vs)
	out := make(ddpath.Values, len(c.lits))
	for p, m := range c.lits {
		v := vs[m.Var()]
		if !m.IsPos() {
			v = !v
		}
		out[p] = v
	}
	return out, nil
}

// A MismatchError is returned by Check when a pin value differs from the one
// computed by the and-inverter graph.
//
type MismatchError struct {
	Input string
	Pin   string
	Got   bool
	Want  bool
}

func (e *MismatchError) Error() string {
	return "input " + e.Input + ": pin " + e.Pin + " is " + strconv.FormatBool(e.Got) +
		", expected " + strconv.FormatBool(e.Want)
}

// Check verifies that v, as computed by ddpath.Evaluate, agrees with the graph
// on every pin. Pins are checked in pin order and the first mismatch is
// reported as a *MismatchError.
//
func (c *Circuit) Check(v ddpath.Values) error {
	want, err := c.Eval(v)
	if err != nil {
		return err
	}
	pins := make([]string, 0, len(want))
	for p := range want {
		pins = append(pins, p)
	}
	ddpath.SortPins(pins)
	for _, p := range pins {
		got, ok := v[p]
		if !ok {
			return &ddpath.IncompleteInputError{Missing: []string{p}}
		}
		if got != want[p] {
			return &MismatchError{Input: v.InputString(c.n), Pin: p, Got: got, Want: want[p]}
		}
	}
	return nil
}

// Justify searches for input values that drive pin to value, with the input
// pins in fixed held at their given value. It returns false if there is no
// such input vector.
//
func (c *Circuit) Justify(pin string, value bool, fixed ddpath.Values) (ddpath.Values, bool, error) {
	m, ok := c.lits[pin]
	if !ok {
		return nil, false, &ddpath.LookupError{Pin: pin, Msg: "not declared"}
	}
	if !value {
		m = m.Not()
	}
	g := gini.New()
	c.c.ToCnf(g)
	// the constant node has no clause of its own
	g.Add(c.c.T)
	g.Add(0)
	assumptions := []z.Lit{m}
	for p, b := range fixed {
		if !c.n.IsInput(p) {
			return nil, false, errors.Errorf("fixed pin %s is not an input pin", p)
		}
		l := c.lits[p]
		if !b {
			l = l.Not()
		}
		assumptions = append(assumptions, l)
	}
	g.Assume(assumptions...)
	switch g.Solve() {
	case 1:
	case -1:
		return nil, false, nil
	default:
		return nil, false, errors.Errorf("justify %s=%v: solver canceled", pin, value)
	}
	out := make(ddpath.Values, len(c.n.Inputs()))
	for _, p := range c.n.Inputs() {
		out[p] = g.Value(c.lits[p])
	}
	return out, true, nil
}

// Justified returns a source of input vectors that set each of the given pins
// to 0, then to 1. Values that cannot be reached are skipped.
//
func (c *Circuit) Justified(pins []string) vectors.Source {
	i := 0
	return vectors.Func(func() (ddpath.Values, error) {
		for ; i < 2*len(pins); i++ {
			v, ok, err := c.Justify(pins[i/2], i%2 == 1, nil)
			if err != nil {
				i = 2 * len(pins)
				return nil, err
			}
			if ok {
				i++
				return v, nil
			}
		}
		return nil, io.EOF
	})
}
