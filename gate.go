// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath

import (
	"strconv"
	"strings"
)

// GateType enumerates the supported combinational gates.
//
type GateType int

// Supported gate types.
const (
	And GateType = iota
	Nand
	Or
	Nor
	Not
	Xor
	Buf

	gateTypeCount
)

var gateNames = [...]string{
	And:  "and",
	Nand: "nand",
	Or:   "or",
	Nor:  "nor",
	Not:  "not",
	Xor:  "xor",
	Buf:  "buf",
}

func (t GateType) String() string {
	if t < 0 || t >= gateTypeCount {
		return "GateType(" + strconv.Itoa(int(t)) + ")"
	}
	return gateNames[t]
}

// ParseGateType returns the GateType for the given name. Matching is case
// insensitive and accepts the .bench spelling "buff".
//
func ParseGateType(name string) (GateType, error) {
	n := strings.ToLower(name)
	if n == "buff" {
		return Buf, nil
	}
	for t, s := range gateNames {
		if s == n {
			return GateType(t), nil
		}
	}
	return 0, &UnknownGateError{Name: name}
}

// Arity returns the minimum and maximum input count for gates of type t.
// max is -1 for unbounded gates.
//
func (t GateType) Arity() (min, max int) {
	switch t {
	case Not, Buf:
		return 1, 1
	case Xor:
		return 2, 2
	case And, Nand, Or, Nor:
		return 1, -1
	}
	panic("invalid gate type " + t.String())
}

func (t GateType) checkArity(n int) error {
	if t < 0 || t >= gateTypeCount {
		return &UnknownGateError{Name: t.String()}
	}
	min, max := t.Arity()
	if n < min || max >= 0 && n > max {
		return &ArityError{Type: t, Got: n}
	}
	return nil
}

// Eval returns the output value of a gate of type t given its input values.
//
func (t GateType) Eval(in []bool) (bool, error) {
	if err := t.checkArity(len(in)); err != nil {
		return false, err
	}
	switch t {
	case And, Nand:
		v := true
		for _, b := range in {
			v = v && b
		}
		return v != (t == Nand), nil
	case Or, Nor:
		v := false
		for _, b := range in {
			v = v || b
		}
		return v != (t == Nor), nil
	case Not:
		return !in[0], nil
	case Buf:
		return in[0], nil
	case Xor:
		return in[0] != in[1], nil
	}
	panic("unreachable")
}

// Mode tells how the delays of a gate's sensitized inputs combine into the
// delay of its output.
//
type Mode int

// Sensitization modes.
const (
	// Either: all sensitized inputs are equally delay-defining (NOT, BUF,
	// XOR).
	Either Mode = iota
	// Min: any single input at the controlling value sets the output, the
	// earliest one defines the delay.
	Min
	// Max: the output changes only once all inputs are at the
	// non-controlling value, the latest one defines the delay.
	Max
)

var modeNames = [...]string{Either: "either", Min: "min", Max: "max"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	for i, s := range modeNames {
		if s == string(b) {
			*m = Mode(i)
			return nil
		}
	}
	return &UnknownModeError{string(b)}
}

// An UnknownModeError is returned when decoding an unknown Mode name.
type UnknownModeError struct{ Name string }

func (e *UnknownModeError) Error() string { return "unknown mode " + strconv.Quote(e.Name) }

// ValueSet is a set of boolean values.
//
type ValueSet uint8

// ValueSet members.
const (
	Zero ValueSet = 1 << iota
	One
	Any = Zero | One
)

// Has reports whether v is in s.
func (s ValueSet) Has(v bool) bool {
	if v {
		return s&One != 0
	}
	return s&Zero != 0
}

// controlling returns the controlling input value of an AND/NAND/OR/NOR gate
// and whether the gate output is inverted.
func (t GateType) controlling() (c bool, inv bool) {
	switch t {
	case And:
		return false, false
	case Nand:
		return false, true
	case Or:
		return true, false
	case Nor:
		return true, true
	}
	panic("gate type " + t.String() + " has no controlling value")
}

// controlled reports whether an output value out of a gate of type t means
// that at least one input is at the controlling value.
func (t GateType) controlled(out bool) bool {
	c, inv := t.controlling()
	// with a controlling input, the output is c (xor inv)
	return out == (c != inv)
}

// DelayDefining returns the set of input values that define the delay of a
// gate of type t whose output is out. Only inputs carrying one of these
// values are on delay-defining paths.
//
//	AND  out=1: {1}    out=0: {0}
//	NAND out=0: {1}    out=1: {0}
//	OR   out=0: {0}    out=1: {1}
//	NOR  out=1: {0}    out=0: {1}
//	NOT, BUF, XOR: {0, 1}
//
func (t GateType) DelayDefining(out bool) ValueSet {
	switch t {
	case Not, Buf, Xor:
		return Any
	case And, Nand, Or, Nor:
		c, _ := t.controlling()
		v := c
		if !t.controlled(out) {
			v = !c
		}
		if v {
			return One
		}
		return Zero
	}
	panic("invalid gate type " + t.String())
}

// Mode returns the sensitization mode of a gate of type t whose output is
// out: Min when a controlling input sets the output, Max when all inputs are
// non-controlling, Either for NOT, BUF and XOR.
//
func (t GateType) Mode(out bool) Mode {
	switch t {
	case Not, Buf, Xor:
		return Either
	case And, Nand, Or, Nor:
		if t.controlled(out) {
			return Min
		}
		return Max
	}
	panic("invalid gate type " + t.String())
}

// Delay returns the delay of a gate of type t in transistor delay units.
// Inverting gates take one unit; AND, OR and BUF are built from an inverting
// gate followed by an inverter and take two.
//
func (t GateType) Delay() int {
	switch t {
	case Nand, Nor, Not, Xor:
		return 1
	case And, Or, Buf:
		return 2
	}
	panic("invalid gate type " + t.String())
}

// PathDelay returns the sum of the delays of the given gate types.
//
func PathDelay(types ...GateType) int {
	d := 0
	for _, t := range types {
		d += t.Delay()
	}
	return d
}
