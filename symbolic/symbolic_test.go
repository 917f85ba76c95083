// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package symbolic_test

import (
	"math/rand"
	"testing"
	"testing/quick"

	"github.com/db47h/ddpath"
	"github.com/db47h/ddpath/ddtest"
	"github.com/db47h/ddpath/symbolic"
	"github.com/db47h/ddpath/vectors"
	"github.com/pkg/errors"
)

func TestCircuit_Check(t *testing.T) {
	n := ddtest.C17()
	c, err := symbolic.Compile(n)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range ddtest.Exhaustive(n) {
		v, err := ddpath.Evaluate(n, in)
		if err != nil {
			t.Fatal(err)
		}
		if err = c.Check(v); err != nil {
			t.Fatal(err)
		}
	}

	v, err := ddpath.Evaluate(n, ddtest.Values(n, "00000"))
	if err != nil {
		t.Fatal(err)
	}
	v["N16"] = !v["N16"]
	v["N23"] = !v["N23"]
	err = c.Check(v)
	var me *symbolic.MismatchError
	if !errors.As(err, &me) {
		t.Fatalf("expected a MismatchError, got %v", err)
	}
	if me.Pin != "N16" || me.Input != "00000" || me.Got == me.Want {
		t.Errorf("got %+v", me)
	}
}

func TestCircuit_random(t *testing.T) {
	f := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		n, err := ddpath.Load(ddtest.RandomSource(r, 1+r.Intn(8), 1+r.Intn(30)))
		if err != nil {
			t.Log(err)
			return false
		}
		c, err := symbolic.Compile(n)
		if err != nil {
			t.Log(err)
			return false
		}
		for i := 0; i < 16; i++ {
			v, err := ddpath.Evaluate(n, ddtest.RandomValues(r, n))
			if err != nil {
				t.Log(err)
				return false
			}
			if err = c.Check(v); err != nil {
				t.Log(err)
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestCompile_cycle(t *testing.T) {
	n := ddtest.MustLoad(&ddpath.Source{
		Name:    "ring",
		Inputs:  []string{"a"},
		Outputs: []string{"y"},
		Nodes:   []string{"w"},
		Gates: []ddpath.Gate{
			{Type: ddpath.Nand, Out: "y", In: []string{"a", "w"}},
			{Type: ddpath.Not, Out: "w", In: []string{"y"}},
		},
	})
	var ce *ddpath.CycleError
	if _, err := symbolic.Compile(n); !errors.As(err, &ce) {
		t.Errorf("Compile: expected a CycleError, got %v", err)
	}
	if _, err := symbolic.NewBDD(n); !errors.As(err, &ce) {
		t.Errorf("NewBDD: expected a CycleError, got %v", err)
	}
}

func TestCircuit_Justify(t *testing.T) {
	n := ddtest.C17()
	c, err := symbolic.Compile(n)
	if err != nil {
		t.Fatal(err)
	}
	for _, out := range n.Outputs() {
		for _, val := range []bool{false, true} {
			in, ok, err := c.Justify(out, val, nil)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatalf("%s=%v: not justified", out, val)
			}
			v, err := ddpath.Evaluate(n, in)
			if err != nil {
				t.Fatal(err)
			}
			if v[out] != val {
				t.Errorf("%s=%v: vector %s gives %v", out, val, in.InputString(n), v[out])
			}
		}
	}

	// N22 = N1.N3 + N2.!(N3.N6): N22=0 requires N2=0 when N1=0 and N3=1
	in, ok, err := c.Justify("N22", false, ddpath.Values{"N1": false, "N2": true, "N3": true, "N6": false})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("unexpected justification %s", in.InputString(n))
	}
	in, ok, err = c.Justify("N22", true, ddpath.Values{"N1": true, "N3": true})
	if err != nil || !ok || !in["N1"] || !in["N3"] {
		t.Errorf("got %v %v %v", in, ok, err)
	}

	if _, _, err = c.Justify("N99", true, nil); err == nil {
		t.Error("expected an error for an undeclared pin")
	}
	if _, _, err = c.Justify("N22", true, ddpath.Values{"N10": true}); err == nil {
		t.Error("expected an error for a fixed internal pin")
	}
}

func TestCircuit_Justified(t *testing.T) {
	// y = AND(a, NOT(a)) is always 0
	n := ddtest.MustLoad(&ddpath.Source{
		Name:    "contradiction",
		Inputs:  []string{"a"},
		Outputs: []string{"y", "z"},
		Nodes:   []string{"na"},
		Gates: []ddpath.Gate{
			{Type: ddpath.Not, Out: "na", In: []string{"a"}},
			{Type: ddpath.And, Out: "y", In: []string{"a", "na"}},
			{Type: ddpath.Buf, Out: "z", In: []string{"a"}},
		},
	})
	c, err := symbolic.Compile(n)
	if err != nil {
		t.Fatal(err)
	}
	vs, err := vectors.Collect(c.Justified(n.Outputs()))
	if err != nil {
		t.Fatal(err)
	}
	// y=0, z=0, z=1
	if len(vs) != 3 {
		t.Fatalf("got %d vectors", len(vs))
	}
	if vs[1]["a"] || !vs[2]["a"] {
		t.Errorf("got %v", vs)
	}
}

func TestOnSet(t *testing.T) {
	n := ddtest.C17()
	d, err := symbolic.NewBDD(n)
	if err != nil {
		t.Fatal(err)
	}
	// brute force count
	counts := make(map[string]int64)
	for _, in := range ddtest.Exhaustive(n) {
		v, err := ddpath.Evaluate(n, in)
		if err != nil {
			t.Fatal(err)
		}
		for p, b := range v {
			if b {
				counts[p]++
			}
		}
	}
	pins := append(append(append([]string(nil), n.Inputs()...), n.Nodes()...), n.Outputs()...)
	for _, p := range pins {
		got, err := d.OnSet(p)
		if err != nil {
			t.Fatal(err)
		}
		if !got.IsInt64() || got.Int64() != counts[p] {
			t.Errorf("on-set of %s = %v, want %d", p, got, counts[p])
		}
		prob, err := d.Probability(p)
		if err != nil {
			t.Fatal(err)
		}
		if want := float64(counts[p]) / 32; prob != want {
			t.Errorf("probability of %s = %v, want %v", p, prob, want)
		}
	}

	on, err := symbolic.OnSet(ddtest.NandNot(), "N4")
	if err != nil {
		t.Fatal(err)
	}
	if on.Int64() != 1 {
		t.Errorf("on-set of N4 = %v, want 1", on)
	}
	var le *ddpath.LookupError
	if _, err = d.OnSet("N5"); !errors.As(err, &le) {
		t.Errorf("expected a LookupError, got %v", err)
	}
}
