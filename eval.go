// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath

import (
	"strings"

	"github.com/pkg/errors"
)

// Values maps pin names to their logic value.
//
type Values map[string]bool

// Evaluate computes the value of every pin of n given the values of its input
// pins. in must have a value for every input pin of n and nothing else.
//
// Gates are evaluated in declaration order; a gate using a pin that has not
// been driven yet fails with an *OutOfOrderError.
//
func Evaluate(n *Netlist, in Values) (Values, error) {
	var missing, extra []string
	for _, p := range n.inputs {
		if _, ok := in[p]; !ok {
			missing = append(missing, p)
		}
	}
	for p := range in {
		if !n.IsInput(p) {
			extra = append(extra, p)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		SortPins(extra)
		return nil, &IncompleteInputError{Missing: missing, Extra: extra}
	}

	v := make(Values, n.Size())
	for p, b := range in {
		v[p] = b
	}
	var buf []bool
	for i, g := range n.order {
		buf = buf[:0]
		for _, p := range g.In {
			b, ok := v[p]
			if !ok {
				return nil, &OutOfOrderError{Gate: g.Out, Pin: p, Index: i}
			}
			buf = append(buf, b)
		}
		out, err := g.Type.Eval(buf)
		if err != nil {
			return nil, errors.Wrap(err, "gate "+g.Out)
		}
		v[g.Out] = out
	}
	if len(v) != n.Size() {
		return nil, errors.Errorf("evaluated %d of %d pins", len(v), n.Size())
	}
	return v, nil
}

// InputString returns the values of the input pins of n as a string of '0'
// and '1', in pin order. Pins without a value are written as 'x'.
//
func (v Values) InputString(n *Netlist) string {
	var b strings.Builder
	b.Grow(len(n.inputs))
	for _, p := range n.inputs {
		val, ok := v[p]
		switch {
		case !ok:
			b.WriteByte('x')
		case val:
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParseInputString is the inverse of InputString. s must have exactly one
// '0' or '1' per input pin of n.
//
func ParseInputString(n *Netlist, s string) (Values, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(n.inputs) {
		return nil, errors.Errorf("input string %q: got %d values, want %d", s, len(s), len(n.inputs))
	}
	v := make(Values, len(s))
	for i, p := range n.inputs {
		switch s[i] {
		case '0':
			v[p] = false
		case '1':
			v[p] = true
		default:
			return nil, errors.Errorf("input string %q: invalid character %q at position %d", s, s[i], i+1)
		}
	}
	return v, nil
}
