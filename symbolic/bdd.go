// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package symbolic

import (
	"math/big"

	"github.com/dalzilio/rudd"
	"github.com/db47h/ddpath"
	"github.com/pkg/errors"
)

// BDD holds the binary decision diagrams of all the pins of a netlist, with
// one variable per input pin in pin order.
//
type BDD struct {
	n     *ddpath.Netlist
	b     *rudd.BDD
	nodes map[string]rudd.Node
}

// NewBDD builds the BDDs of all pins of n. n must be acyclic.
//
func NewBDD(n *ddpath.Netlist) (*BDD, error) {
	tn, err := n.Topological()
	if err != nil {
		return nil, err
	}
	if len(n.Inputs()) == 0 {
		return nil, errors.New("netlist has no input pin")
	}
	b, err := rudd.New(len(n.Inputs()), rudd.Nodesize(1024+16*n.Size()), rudd.Cachesize(1024))
	if err != nil {
		return nil, errors.Wrap(err, "create BDD")
	}
	d := &BDD{n: n, b: b, nodes: make(map[string]rudd.Node, n.Size())}
	for i, p := range n.Inputs() {
		d.nodes[p] = b.Ithvar(i)
	}
	ins := make([]rudd.Node, 0, 4)
	for _, g := range tn.Gates() {
		ins = ins[:0]
		for _, p := range g.In {
			ins = append(ins, d.nodes[p])
		}
		d.nodes[g.Out] = d.gate(g.Type, ins)
		if b.Errored() {
			return nil, errors.Errorf("BDD of %s: %s", g.Out, b.Error())
		}
	}
	return d, nil
}

func (d *BDD) gate(t ddpath.GateType, ins []rudd.Node) rudd.Node {
	switch t {
	case ddpath.And:
		return d.b.And(ins...)
	case ddpath.Nand:
		return d.b.Not(d.b.And(ins...))
	case ddpath.Or:
		return d.b.Or(ins...)
	case ddpath.Nor:
		return d.b.Not(d.b.Or(ins...))
	case ddpath.Not:
		return d.b.Not(ins[0])
	case ddpath.Buf:
		return ins[0]
	case ddpath.Xor:
		return d.b.Apply(ins[0], ins[1], rudd.OPxor)
	}
	panic("invalid gate type " + t.String())
}

// OnSet returns the number of input vectors for which pin is 1.
//
func (d *BDD) OnSet(pin string) (*big.Int, error) {
	nd, ok := d.nodes[pin]
	if !ok {
		return nil, &ddpath.LookupError{Pin: pin, Msg: "not declared"}
	}
	return d.b.Satcount(nd), nil
}

// Probability returns the probability that pin is 1 for uniformly
// distributed input vectors.
//
func (d *BDD) Probability(pin string) (float64, error) {
	on, err := d.OnSet(pin)
	if err != nil {
		return 0, err
	}
	total := new(big.Int).Lsh(big.NewInt(1), uint(len(d.n.Inputs())))
	p, _ := new(big.Rat).SetFrac(on, total).Float64()
	return p, nil
}

// OnSet builds the BDDs of n and returns the on-set size of pin.
//
func OnSet(n *ddpath.Netlist, pin string) (*big.Int, error) {
	d, err := NewBDD(n)
	if err != nil {
		return nil, err
	}
	return d.OnSet(pin)
}
