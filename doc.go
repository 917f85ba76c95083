/*
Package ddpath finds the delay-defining paths of combinational gate netlists.

Given a netlist and the values of its input pins, the delay-defining paths of
an output pin are the paths, back from the output to the input pins, along
which the signal change that last settles the output propagates. At every
gate, only the inputs carrying a delay-defining value are followed: for an AND
gate with output 1, all inputs are 1 and the latest one defines the delay
(Max mode); with output 0, the earliest input at 0 does (Min mode). NOT, BUF
and XOR gates propagate every input (Either mode).

A typical session loads a netlist, evaluates it for an input vector, then
analyzes each output pin:

	n, err := ddpath.LoadFile("c17.v")
	if err != nil {
		// handle error
	}
	in, _ := ddpath.ParseInputString(n, "10110")
	v, err := ddpath.Evaluate(n, in)
	if err != nil {
		// handle error
	}
	for _, out := range n.Outputs() {
		r, err := ddpath.Analyze(ctx, n, v, out, nil)
		...
	}

Gate delays are integer units: NAND, NOR, NOT and XOR gates count for 1,
AND, OR and BUF gates for 2.

Pins are ordered by the number made of the digits in their name (N2 < N10),
which gives a stable ordering for input strings, paths and reports.

Sub-packages provide input vector generators (vectors), a symbolic cross-check
and SAT-based vector justification (symbolic), result storage (store) and a
concurrent batch runner (run). The ddpath command in cmd/ddpath drives them
from the command line.
*/
package ddpath
