// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package ddtest provides reference circuits and utility functions for testing
// delay-defining path searches.
//
package ddtest

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/db47h/ddpath"
)

// C17Verilog is the ISCAS-85 c17 benchmark.
//
const C17Verilog = `// ISCAS-85 c17
module c17 (N1, N2, N3, N6, N7, N22, N23);

input N1, N2, N3, N6, N7;

output N22, N23;

wire N10, N11, N16, N19;

nand NAND2_1 (N10, N1, N3);
nand NAND2_2 (N11, N3, N6);
nand NAND2_3 (N16, N2, N11);
nand NAND2_4 (N19, N11, N7);
nand NAND2_5 (N22, N10, N16);
nand NAND2_6 (N23, N16, N19);

endmodule
`

// C17 returns the c17 netlist.
//
func C17() *ddpath.Netlist {
	n, err := ddpath.ParseVerilog(strings.NewReader(C17Verilog))
	if err != nil {
		panic(err)
	}
	return n
}

// NandNot returns the two gate circuit N4 = NOT(NAND(N1, N2)).
//
func NandNot() *ddpath.Netlist {
	return MustLoad(&ddpath.Source{
		Name:    "nandnot",
		Inputs:  []string{"N1", "N2"},
		Outputs: []string{"N4"},
		Nodes:   []string{"N3"},
		Gates: []ddpath.Gate{
			{Type: ddpath.Nand, Out: "N3", In: []string{"N1", "N2"}},
			{Type: ddpath.Not, Out: "N4", In: []string{"N3"}},
		},
	})
}

// MustLoad is like ddpath.Load but panics on error.
//
func MustLoad(src *ddpath.Source) *ddpath.Netlist {
	n, err := ddpath.Load(src)
	if err != nil {
		panic(err)
	}
	return n
}

// Values builds input values for n from a string of '0' and '1' in pin order.
// It panics if s is invalid.
//
func Values(n *ddpath.Netlist, s string) ddpath.Values {
	v, err := ddpath.ParseInputString(n, s)
	if err != nil {
		panic(err)
	}
	return v
}

var randTypes = [...]ddpath.GateType{ddpath.And, ddpath.Nand, ddpath.Or, ddpath.Nor, ddpath.Not, ddpath.Xor, ddpath.Buf}

// RandomSource returns the source of a random acyclic netlist with the given
// number of inputs and gates. Gate inputs are picked among the inputs and the
// outputs of previous gates, so gates are declared in topological order.
// Gates that drive nothing are outputs, the last gate always is.
//
func RandomSource(r *rand.Rand, inputs, gates int) *ddpath.Source {
	src := &ddpath.Source{Name: "random"}
	pins := make([]string, 0, inputs+gates)
	for i := 0; i < inputs; i++ {
		p := "N" + strconv.Itoa(i+1)
		src.Inputs = append(src.Inputs, p)
		pins = append(pins, p)
	}
	used := make(map[string]bool)
	for i := 0; i < gates; i++ {
		t := randTypes[r.Intn(len(randTypes))]
		min, max := t.Arity()
		if max < 0 {
			max = 3
		}
		cnt := min + r.Intn(max-min+1)
		g := ddpath.Gate{Type: t, Out: "N" + strconv.Itoa(inputs+i+1)}
		for j := 0; j < cnt; j++ {
			// favor recent pins to get deeper circuits
			k := len(pins) - 1 - r.Intn(len(pins))/(1+r.Intn(2))
			g.In = append(g.In, pins[k])
			used[pins[k]] = true
		}
		src.Gates = append(src.Gates, g)
		pins = append(pins, g.Out)
	}
	for i, g := range src.Gates {
		if !used[g.Out] || i == len(src.Gates)-1 {
			src.Outputs = append(src.Outputs, g.Out)
		} else {
			src.Nodes = append(src.Nodes, g.Out)
		}
	}
	return src
}

// RandomValues returns random input values for n.
//
func RandomValues(r *rand.Rand, n *ddpath.Netlist) ddpath.Values {
	v := make(ddpath.Values, len(n.Inputs()))
	for _, p := range n.Inputs() {
		v[p] = r.Int63()&(1<<62) != 0
	}
	return v
}
