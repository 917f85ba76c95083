// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath

import (
	"github.com/pkg/errors"
)

// A Gate is a combinational gate, identified by its output pin.
//
// Gates returned by a Netlist are shared and must not be modified.
//
type Gate struct {
	Type GateType
	Out  string
	In   []string
}

// Source is the raw description of a netlist as produced by a loader. Gates
// are listed in declaration order.
//
type Source struct {
	Name    string
	Inputs  []string
	Outputs []string
	Nodes   []string // internal wires
	Gates   []Gate
}

// PinKind identifies the set a pin belongs to.
//
type PinKind int

// Pin kinds.
const (
	Undeclared PinKind = iota
	InputPin
	OutputPin
	NodePin
)

func (k PinKind) String() string {
	switch k {
	case InputPin:
		return "input"
	case OutputPin:
		return "output"
	case NodePin:
		return "wire"
	}
	return "undeclared"
}

// Netlist is an immutable combinational circuit.
//
// A Netlist is safe for concurrent use.
//
type Netlist struct {
	name    string
	kinds   map[string]PinKind
	inputs  []string // sorted
	outputs []string
	nodes   []string
	gates   map[string]*Gate
	order   []*Gate // declaration order
}

// Load builds a Netlist from src. It checks that pin sets are disjoint, that
// every gate drives a declared output or wire pin, that every output and wire
// pin is driven by exactly one gate, that every gate input is declared and
// that gate arities match their type.
//
// Load does not check that gates are declared in topological order: Evaluate
// does, and Topological can reorder them.
//
func Load(src *Source) (*Netlist, error) {
	n := &Netlist{
		name:  src.Name,
		kinds: make(map[string]PinKind, len(src.Inputs)+len(src.Outputs)+len(src.Nodes)),
		gates: make(map[string]*Gate, len(src.Gates)),
		order: make([]*Gate, 0, len(src.Gates)),
	}
	decl := func(pins []string, k PinKind) error {
		for _, p := range pins {
			if p == "" {
				return n.parseError("empty "+k.String()+" pin name", nil)
			}
			if old := n.kinds[p]; old != Undeclared {
				if old == k {
					return n.parseError(k.String()+" pin "+p+" declared twice", nil)
				}
				return n.parseError("pin "+p+" declared as both "+old.String()+" and "+k.String(), nil)
			}
			n.kinds[p] = k
		}
		return nil
	}
	if err := decl(src.Inputs, InputPin); err != nil {
		return nil, err
	}
	if err := decl(src.Outputs, OutputPin); err != nil {
		return nil, err
	}
	if err := decl(src.Nodes, NodePin); err != nil {
		return nil, err
	}

	for i := range src.Gates {
		g := &Gate{
			Type: src.Gates[i].Type,
			Out:  src.Gates[i].Out,
			In:   append([]string(nil), src.Gates[i].In...),
		}
		if err := g.Type.checkArity(len(g.In)); err != nil {
			return nil, n.parseError("gate "+g.Out, err)
		}
		switch n.kinds[g.Out] {
		case Undeclared:
			return nil, n.parseError("gate output", &LookupError{Pin: g.Out, Msg: "not declared"})
		case InputPin:
			return nil, n.parseError("gate "+g.Out, &LookupError{Pin: g.Out, Msg: "input pin used as gate output"})
		}
		if _, ok := n.gates[g.Out]; ok {
			return nil, n.parseError("pin "+g.Out+" driven by more than one gate", nil)
		}
		for _, p := range g.In {
			if n.kinds[p] == Undeclared {
				return nil, n.parseError("gate "+g.Out+" input", &LookupError{Pin: p, Msg: "not declared"})
			}
		}
		n.gates[g.Out] = g
		n.order = append(n.order, g)
	}

	in, out, nodes := make(pinSet), make(pinSet), make(pinSet)
	for p, k := range n.kinds {
		switch k {
		case InputPin:
			in[p] = struct{}{}
			continue
		case OutputPin:
			out[p] = struct{}{}
		case NodePin:
			nodes[p] = struct{}{}
		}
		if _, ok := n.gates[p]; !ok {
			return nil, n.parseError(k.String()+" pin "+p+" not driven by any gate", nil)
		}
	}
	n.inputs, n.outputs, n.nodes = in.sorted(), out.sorted(), nodes.sorted()
	return n, nil
}

func (n *Netlist) parseError(msg string, err error) error {
	return &ParseError{Source: n.name, Msg: msg, Err: err}
}

// Name returns the netlist (module) name.
//
func (n *Netlist) Name() string { return n.name }

// Inputs returns the input pins in pin order. The returned slice must not be
// modified.
//
func (n *Netlist) Inputs() []string { return n.inputs }

// Outputs returns the output pins in pin order. The returned slice must not be
// modified.
//
func (n *Netlist) Outputs() []string { return n.outputs }

// Nodes returns the internal wires in pin order. The returned slice must not
// be modified.
//
func (n *Netlist) Nodes() []string { return n.nodes }

// Size returns the total pin count.
//
func (n *Netlist) Size() int { return len(n.kinds) }

// Gates returns the gates in declaration order.
//
func (n *Netlist) Gates() []*Gate {
	return append([]*Gate(nil), n.order...)
}

// Kind returns the kind of pin p, Undeclared if p is not a pin of n.
//
func (n *Netlist) Kind(p string) PinKind { return n.kinds[p] }

// IsInput reports whether p is an input pin.
//
func (n *Netlist) IsInput(p string) bool { return n.kinds[p] == InputPin }

// GateOf returns the gate driving pin p. It fails with a *LookupError if p is
// undeclared or an input pin.
//
func (n *Netlist) GateOf(p string) (*Gate, error) {
	if g, ok := n.gates[p]; ok {
		return g, nil
	}
	if n.kinds[p] == InputPin {
		return nil, &LookupError{Pin: p, Msg: "input pin has no gate"}
	}
	return nil, &LookupError{Pin: p, Msg: "not declared"}
}

// FanIn returns p and all the pins reachable backward from p, in pin order.
//
func (n *Netlist) FanIn(p string) ([]string, error) {
	if n.kinds[p] == Undeclared {
		return nil, &LookupError{Pin: p, Msg: "not declared"}
	}
	seen := pinSet{p: {}}
	stack := []string{p}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		g := n.gates[q]
		if g == nil {
			continue
		}
		for _, i := range g.In {
			if !seen.has(i) {
				seen[i] = struct{}{}
				stack = append(stack, i)
			}
		}
	}
	return seen.sorted(), nil
}

// PathDelay returns the delay of a path: the sum of the delays of the gates
// driving every pin of the path but the last one.
//
func (n *Netlist) PathDelay(path []string) (int, error) {
	d := 0
	for i := 0; i < len(path)-1; i++ {
		g, err := n.GateOf(path[i])
		if err != nil {
			return 0, errors.Wrapf(err, "path position %d", i)
		}
		d += g.Type.Delay()
	}
	return d, nil
}

// Topological returns a copy of n with gates reordered so that every gate is
// declared after the gates driving its inputs. The order is deterministic for
// a given declaration order. It fails with a *CycleError if n has feedback.
//
func (n *Netlist) Topological() (*Netlist, error) {
	pending := make(map[string]int, len(n.order)) // unresolved inputs per gate
	users := make(map[string][]*Gate)
	var ready []*Gate
	for _, g := range n.order {
		cnt := 0
		seen := make(pinSet, len(g.In))
		for _, p := range g.In {
			if n.gates[p] == nil || seen.has(p) {
				continue
			}
			seen[p] = struct{}{}
			cnt++
			users[p] = append(users[p], g)
		}
		pending[g.Out] = cnt
		if cnt == 0 {
			ready = append(ready, g)
		}
	}
	order := make([]*Gate, 0, len(n.order))
	for len(ready) > 0 {
		g := ready[0]
		ready = ready[1:]
		order = append(order, g)
		for _, u := range users[g.Out] {
			pending[u.Out]--
			if pending[u.Out] == 0 {
				ready = append(ready, u)
			}
		}
	}
	if len(order) != len(n.order) {
		var loop []string
		for out, cnt := range pending {
			if cnt > 0 {
				loop = append(loop, out)
			}
		}
		SortPins(loop)
		return nil, &CycleError{Pins: loop}
	}
	t := *n
	t.order = order
	return &t, nil
}
