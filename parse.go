// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/db47h/ddpath/internal/hdl"
	"github.com/pkg/errors"
)

// ParseVerilog reads a structural Verilog netlist (a single module of gate
// primitive instances, as in the ISCAS-85 benchmarks) and loads it.
//
func ParseVerilog(r io.Reader) (*Netlist, error) {
	m, err := hdl.ParseVerilog(r)
	if err != nil {
		return nil, syntaxError(err)
	}
	return loadModule(m)
}

// ParseBench reads an ISCAS .bench netlist and loads it. Pins driven by a gate
// and not declared as outputs become internal wires.
//
func ParseBench(r io.Reader) (*Netlist, error) {
	m, err := hdl.ParseBench(r)
	if err != nil {
		return nil, syntaxError(err)
	}
	return loadModule(m)
}

// LoadFile loads the netlist in the named file. Files with a .bench extension
// are read with ParseBench, anything else with ParseVerilog. The netlist is
// named after the file if the file does not name it.
//
func LoadFile(name string) (*Netlist, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var n *Netlist
	if strings.EqualFold(filepath.Ext(name), ".bench") {
		n, err = ParseBench(f)
	} else {
		n, err = ParseVerilog(f)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = name
		}
		return nil, err
	}
	if n.name == "" {
		n.name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return n, nil
}

func syntaxError(err error) error {
	if e, ok := err.(*hdl.Error); ok {
		return &ParseError{Line: e.Pos.Line, Col: e.Pos.Col, Msg: e.Msg}
	}
	return errors.Wrap(err, "read netlist")
}

func loadModule(m *hdl.Module) (*Netlist, error) {
	src := &Source{
		Name:    m.Name,
		Inputs:  m.Inputs,
		Outputs: m.Outputs,
		Nodes:   m.Wires,
		Gates:   make([]Gate, 0, len(m.Gates)),
	}
	for _, g := range m.Gates {
		t, err := ParseGateType(g.Type)
		if err != nil {
			return nil, &ParseError{Source: m.Name, Line: g.Pos.Line, Col: g.Pos.Col, Msg: "gate " + g.Out, Err: err}
		}
		src.Gates = append(src.Gates, Gate{Type: t, Out: g.Out, In: g.In})
	}
	return Load(src)
}
