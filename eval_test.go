// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath_test

import (
	"reflect"
	"testing"

	"github.com/db47h/ddpath"
	"github.com/db47h/ddpath/ddtest"
	"github.com/pkg/errors"
)

func TestEvaluate(t *testing.T) {
	n := ddtest.C17()
	td := []struct {
		in       string
		n22, n23 bool
	}{
		{"00000", false, false},
		{"11111", true, false},
		{"10100", true, false},
		{"01011", true, true},
		{"00110", false, false},
	}
	for _, d := range td {
		v, err := ddpath.Evaluate(n, ddtest.Values(n, d.in))
		if err != nil {
			t.Fatal(err)
		}
		if len(v) != n.Size() {
			t.Errorf("%s: %d values for %d pins", d.in, len(v), n.Size())
		}
		if v["N22"] != d.n22 || v["N23"] != d.n23 {
			t.Errorf("%s: N22=%v N23=%v, want %v %v", d.in, v["N22"], v["N23"], d.n22, d.n23)
		}
	}
}

func TestEvaluate_incomplete(t *testing.T) {
	n := ddtest.NandNot()
	td := []struct {
		name           string
		in             ddpath.Values
		missing, extra []string
	}{
		{"missing", ddpath.Values{"N2": true}, []string{"N1"}, nil},
		{"extra", ddpath.Values{"N1": true, "N2": false, "N3": true, "X": false}, nil, []string{"X", "N3"}},
		{"empty", nil, []string{"N1", "N2"}, nil},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			_, err := ddpath.Evaluate(n, d.in)
			var ie *ddpath.IncompleteInputError
			if !errors.As(err, &ie) {
				t.Fatalf("expected an IncompleteInputError, got %v", err)
			}
			if !reflect.DeepEqual(ie.Missing, d.missing) || !reflect.DeepEqual(ie.Extra, d.extra) {
				t.Errorf("got missing %v extra %v, want %v %v", ie.Missing, ie.Extra, d.missing, d.extra)
			}
		})
	}
}

func TestInputString(t *testing.T) {
	n := ddtest.C17()
	v := ddpath.Values{"N1": true, "N2": false, "N6": true, "N7": true, "N22": false}
	if s := v.InputString(n); s != "10x11" {
		t.Errorf("got %q", s)
	}
	for _, s := range []string{"00000", "10110", "11111"} {
		v, err := ddpath.ParseInputString(n, s)
		if err != nil {
			t.Fatal(err)
		}
		if got := v.InputString(n); got != s {
			t.Errorf("%s: round trip returned %s", s, got)
		}
	}
	for _, s := range []string{"", "0000", "000000", "0x000", "00 00"} {
		if _, err := ddpath.ParseInputString(n, s); err == nil {
			t.Errorf("%q: expected an error", s)
		}
	}
}
