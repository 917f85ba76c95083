// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/db47h/ddpath"
	"github.com/db47h/ddpath/ddtest"
	"github.com/pkg/errors"
)

const c17Bench = `# c17
INPUT(1)
INPUT(2)
INPUT(3)
INPUT(6)
INPUT(7)
OUTPUT(22)
OUTPUT(23)
10 = NAND(1, 3)
11 = NAND(3, 6)
16 = NAND(2, 11)
19 = NAND(11, 7)
22 = NAND(10, 16)
23 = NAND(16, 19)
`

func TestParseBench(t *testing.T) {
	n, err := ddpath.ParseBench(strings.NewReader(c17Bench))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"10", "11", "16", "19"}; !reflect.DeepEqual(n.Nodes(), want) {
		t.Errorf("nodes = %v, want %v", n.Nodes(), want)
	}
	// same circuit as the Verilog version, modulo pin names
	ref := ddtest.C17()
	for _, in := range []string{"00000", "10110", "01011", "11111"} {
		v, err := ddpath.Evaluate(n, ddtest.Values(n, in))
		if err != nil {
			t.Fatal(err)
		}
		rv, err := ddpath.Evaluate(ref, ddtest.Values(ref, in))
		if err != nil {
			t.Fatal(err)
		}
		for p, b := range v {
			if rv["N"+p] != b {
				t.Errorf("%s: pin %s = %v, want %v", in, p, b, rv["N"+p])
			}
		}
	}
}

func TestParse_errors(t *testing.T) {
	td := []struct {
		name  string
		bench bool
		in    string
		line  int
		inner interface{}
	}{
		{"syntax", false, "module m;\ninput a\n", 3, nil},
		{"dff", true, "INPUT(a)\nOUTPUT(q)\nq = DFF(a)\n", 3, (*ddpath.UnknownGateError)(nil)},
		{"xnor", false, "module m(a, b, y);\ninput a, b;\noutput y;\nxnor g1 (y, a, b);\nendmodule\n", 4, (*ddpath.UnknownGateError)(nil)},
		{"undeclared", false, "module m(a, y);\ninput a;\noutput y;\nand g1 (y, a, b);\nendmodule\n", 0, (*ddpath.LookupError)(nil)},
		{"arity", true, "INPUT(a)\nINPUT(b)\nOUTPUT(y)\ny = NOT(a, b)\n", 0, (*ddpath.ArityError)(nil)},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			var err error
			if d.bench {
				_, err = ddpath.ParseBench(strings.NewReader(d.in))
			} else {
				_, err = ddpath.ParseVerilog(strings.NewReader(d.in))
			}
			var pe *ddpath.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected a ParseError, got %v", err)
			}
			if pe.Line != d.line {
				t.Errorf("error at line %d, want %d: %v", pe.Line, d.line, err)
			}
			switch d.inner.(type) {
			case *ddpath.UnknownGateError:
				var e *ddpath.UnknownGateError
				if !errors.As(err, &e) {
					t.Errorf("expected an UnknownGateError, got %v", err)
				}
			case *ddpath.LookupError:
				var e *ddpath.LookupError
				if !errors.As(err, &e) || e.Pin != "b" {
					t.Errorf("expected a LookupError on b, got %v", err)
				}
			case *ddpath.ArityError:
				var e *ddpath.ArityError
				if !errors.As(err, &e) {
					t.Errorf("expected an ArityError, got %v", err)
				}
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	n, err := ddpath.LoadFile(write("c17.v", ddtest.C17Verilog))
	if err != nil {
		t.Fatal(err)
	}
	if n.Name() != "c17" || len(n.Gates()) != 6 {
		t.Errorf("got %s with %d gates", n.Name(), len(n.Gates()))
	}

	n, err = ddpath.LoadFile(write("c17x.BENCH", c17Bench))
	if err != nil {
		t.Fatal(err)
	}
	if n.Name() != "c17x" || len(n.Inputs()) != 5 {
		t.Errorf("got %s with inputs %v", n.Name(), n.Inputs())
	}

	bad := write("bad.bench", "INPUT(a)\nOUTPUT(y)\ny = FOO(a)\n")
	_, err = ddpath.LoadFile(bad)
	var pe *ddpath.ParseError
	if !errors.As(err, &pe) || pe.Source != bad || pe.Line != 3 {
		t.Errorf("expected a ParseError at %s:3, got %v", bad, err)
	}

	if _, err = ddpath.LoadFile(filepath.Join(dir, "missing.v")); !os.IsNotExist(err) {
		t.Errorf("expected a not exist error, got %v", err)
	}
}
