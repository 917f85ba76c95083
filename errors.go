// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath

import (
	"strconv"
	"strings"
)

// A ParseError reports a malformed netlist. Err, if not nil, is the
// underlying structural error (a *LookupError for references to undeclared
// pins, an *ArityError or *UnknownGateError for bad gates).
//
type ParseError struct {
	Source string // file or module name, may be empty
	Line   int    // 1-based, 0 if unknown
	Col    int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteByte(':')
	}
	if e.Line > 0 {
		b.WriteString(strconv.Itoa(e.Line))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(e.Col))
		b.WriteByte(':')
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		if e.Msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// A LookupError reports a reference to a pin that is either undeclared or not
// of the expected kind (e.g. asking for the gate driving an input pin).
//
type LookupError struct {
	Pin string
	Msg string
}

func (e *LookupError) Error() string {
	return "pin " + e.Pin + ": " + e.Msg
}

// An ArityError reports a gate with the wrong number of inputs for its type.
//
type ArityError struct {
	Type GateType
	Got  int
}

func (e *ArityError) Error() string {
	min, max := e.Type.Arity()
	want := strconv.Itoa(min)
	switch {
	case max < 0:
		want = "at least " + want
	case max != min:
		want += " to " + strconv.Itoa(max)
	}
	return e.Type.String() + " gate takes " + want + " input(s), got " + strconv.Itoa(e.Got)
}

// An UnknownGateError reports a gate type outside of the supported set.
//
type UnknownGateError struct {
	Name string
}

func (e *UnknownGateError) Error() string {
	return "unknown gate type " + strconv.Quote(e.Name)
}

// An IncompleteInputError is returned by Evaluate when the input values do not
// cover exactly the netlist's input pins.
//
type IncompleteInputError struct {
	Missing []string // input pins without a value
	Extra   []string // valued pins that are not input pins
}

func (e *IncompleteInputError) Error() string {
	var b strings.Builder
	b.WriteString("incomplete input vector")
	if len(e.Missing) > 0 {
		b.WriteString(": missing ")
		b.WriteString(strings.Join(e.Missing, ","))
	}
	if len(e.Extra) > 0 {
		b.WriteString(": not input pins ")
		b.WriteString(strings.Join(e.Extra, ","))
	}
	return b.String()
}

// An OutOfOrderError is returned by Evaluate when a gate is declared before
// one of its inputs is driven. This happens with netlists that are not in
// topological order, and always with cyclic (non-combinational) ones.
//
type OutOfOrderError struct {
	Gate  string // output pin of the offending gate
	Pin   string // unvalued input pin
	Index int    // declaration index of the gate
}

func (e *OutOfOrderError) Error() string {
	return "gate " + e.Gate + " (#" + strconv.Itoa(e.Index) + ") uses pin " + e.Pin + " before it is driven"
}

// A CycleError is returned by Topological when the netlist has feedback.
// Pins lists the gate outputs that could not be ordered.
//
type CycleError struct {
	Pins []string
}

func (e *CycleError) Error() string {
	return "combinational loop through " + strings.Join(e.Pins, ",")
}

// A SensitizationError reports a gate for which none of the inputs carries
// a delay-defining value. This cannot happen with values computed by
// Evaluate and signals inconsistent node values.
//
type SensitizationError struct {
	Pin   string
	Type  GateType
	Value bool
	Round int
}

func (e *SensitizationError) Error() string {
	return "round " + strconv.Itoa(e.Round) + ": no delay-defining input for " +
		e.Type.String() + " gate " + e.Pin + "=" + bit(e.Value)
}

// A NonTerminationError is returned by Search when a ceiling set in Options
// is exceeded. With the default ceilings this means the fan-in of Output is
// cyclic.
//
type NonTerminationError struct {
	Output string
	Round  int
	Paths  int
}

func (e *NonTerminationError) Error() string {
	return "search from " + e.Output + " did not terminate: round " + strconv.Itoa(e.Round) +
		", " + strconv.Itoa(e.Paths) + " live paths"
}

func bit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
