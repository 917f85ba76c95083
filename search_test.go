// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath_test

import (
	"context"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"github.com/db47h/ddpath"
	"github.com/db47h/ddpath/ddtest"
	"github.com/pkg/errors"
)

func paths(ps ...[]string) []ddpath.Path {
	out := make([]ddpath.Path, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// minMax returns N11 = OR(BUF(N1), N2): the N1 path is 4 units long, the N2
// path 2.
func minMax() *ddpath.Netlist {
	return ddtest.MustLoad(&ddpath.Source{
		Name:    "minmax",
		Inputs:  []string{"N1", "N2"},
		Outputs: []string{"N11"},
		Nodes:   []string{"N10"},
		Gates: []ddpath.Gate{
			{Type: ddpath.Buf, Out: "N10", In: []string{"N1"}},
			{Type: ddpath.Or, Out: "N11", In: []string{"N10", "N2"}},
		},
	})
}

func evaluate(t *testing.T, n *ddpath.Netlist, in string) ddpath.Values {
	t.Helper()
	v, err := ddpath.Evaluate(n, ddtest.Values(n, in))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSearch(t *testing.T) {
	td := []struct {
		name   string
		n      *ddpath.Netlist
		in     string
		root   string
		paths  []ddpath.Path
		delays []int
		rounds int
	}{
		{"nandnot_10", ddtest.NandNot(), "10", "N4", paths([]string{"N4", "N3", "N2"}), []int{2}, 2},
		{"nandnot_01", ddtest.NandNot(), "01", "N4", paths([]string{"N4", "N3", "N1"}), []int{2}, 2},
		{"nandnot_11", ddtest.NandNot(), "11", "N4",
			paths([]string{"N4", "N3", "N1"}, []string{"N4", "N3", "N2"}), []int{2, 2}, 2},
		{"nandnot_00", ddtest.NandNot(), "00", "N4",
			paths([]string{"N4", "N3", "N1"}, []string{"N4", "N3", "N2"}), []int{2, 2}, 2},
		{"nandnot_inner", ddtest.NandNot(), "11", "N3",
			paths([]string{"N3", "N1"}, []string{"N3", "N2"}), []int{1, 1}, 1},
		{"min", minMax(), "11", "N11", paths([]string{"N11", "N2"}), []int{2}, 2},
		{"max", minMax(), "00", "N11", paths([]string{"N11", "N10", "N1"}), []int{4}, 2},
		{"single", minMax(), "10", "N11", paths([]string{"N11", "N10", "N1"}), []int{4}, 2},
		{"input", ddtest.NandNot(), "10", "N1", paths([]string{"N1"}), []int{0}, 0},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			v := evaluate(t, d.n, d.in)
			ps, err := ddpath.Search(context.Background(), d.n, v, d.root, nil)
			if err != nil {
				t.Fatal(err)
			}
			if ps.Root() != d.root {
				t.Errorf("root = %s", ps.Root())
			}
			if got := ps.Paths(); !reflect.DeepEqual(got, d.paths) {
				t.Errorf("paths = %v, want %v", got, d.paths)
			}
			for i := range d.delays {
				if ps.Delay(i) != d.delays[i] {
					t.Errorf("delay of %v = %d, want %d", ps.Path(i), ps.Delay(i), d.delays[i])
				}
			}
			if ps.Rounds() != d.rounds {
				t.Errorf("rounds = %d, want %d", ps.Rounds(), d.rounds)
			}
		})
	}
}

// Culling is deferred until every path through a branch is complete: here the
// short path through N2 ends in round 1 while the N20 path is still running.
func TestSearch_deferredCull(t *testing.T) {
	n := ddtest.MustLoad(&ddpath.Source{
		Name:    "deferred",
		Inputs:  []string{"N1", "N2"},
		Outputs: []string{"N30"},
		Nodes:   []string{"N10", "N20"},
		Gates: []ddpath.Gate{
			{Type: ddpath.Not, Out: "N10", In: []string{"N1"}},
			{Type: ddpath.Not, Out: "N20", In: []string{"N10"}},
			{Type: ddpath.And, Out: "N30", In: []string{"N20", "N2", "N1"}},
		},
	})
	v := evaluate(t, n, "11")
	ps, err := ddpath.Search(context.Background(), n, v, "N30", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := paths([]string{"N30", "N20", "N10", "N1"})
	if got := ps.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	if ps.Delay(0) != 4 {
		t.Errorf("delay = %d, want 4", ps.Delay(0))
	}
}

// Nested branches are culled deepest first: the inner OR keeps its shortest
// input, then the outer AND its longest.
func TestSearch_nested(t *testing.T) {
	n := ddtest.MustLoad(&ddpath.Source{
		Name:    "nested",
		Inputs:  []string{"N1", "N2", "N3"},
		Outputs: []string{"N30"},
		Nodes:   []string{"N10", "N20"},
		Gates: []ddpath.Gate{
			{Type: ddpath.Buf, Out: "N10", In: []string{"N1"}},
			{Type: ddpath.Or, Out: "N20", In: []string{"N10", "N2"}},
			{Type: ddpath.And, Out: "N30", In: []string{"N20", "N3"}},
		},
	})
	v := evaluate(t, n, "111")
	ps, err := ddpath.Search(context.Background(), n, v, "N30", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := paths([]string{"N30", "N20", "N2"})
	if got := ps.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	if ps.Delay(0) != 4 {
		t.Errorf("delay = %d, want 4", ps.Delay(0))
	}
}

// Duplicate gate inputs are followed once.
func TestSearch_duplicateInputs(t *testing.T) {
	n := ddtest.MustLoad(&ddpath.Source{
		Name:    "dup",
		Inputs:  []string{"N1"},
		Outputs: []string{"N2"},
		Gates: []ddpath.Gate{
			{Type: ddpath.Nand, Out: "N2", In: []string{"N1", "N1"}},
		},
	})
	v := evaluate(t, n, "1")
	ps, err := ddpath.Search(context.Background(), n, v, "N2", nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := paths([]string{"N2", "N1"}); !reflect.DeepEqual(ps.Paths(), want) {
		t.Fatalf("paths = %v, want %v", ps.Paths(), want)
	}
}

func latch() *ddpath.Netlist {
	return ddtest.MustLoad(&ddpath.Source{
		Name:    "latch",
		Inputs:  []string{"s", "r"},
		Outputs: []string{"q"},
		Nodes:   []string{"nq"},
		Gates: []ddpath.Gate{
			{Type: ddpath.Nor, Out: "q", In: []string{"r", "nq"}},
			{Type: ddpath.Nor, Out: "nq", In: []string{"s", "q"}},
		},
	})
}

func TestSearch_errors(t *testing.T) {
	ctx := context.Background()
	nn := ddtest.NandNot()

	t.Run("undeclared", func(t *testing.T) {
		_, err := ddpath.Search(ctx, nn, evaluate(t, nn, "11"), "N5", nil)
		var le *ddpath.LookupError
		if !errors.As(err, &le) || le.Pin != "N5" {
			t.Fatalf("expected a LookupError, got %v", err)
		}
	})
	t.Run("cycle", func(t *testing.T) {
		v := ddpath.Values{"s": false, "r": false, "q": true, "nq": false}
		_, err := ddpath.Search(ctx, latch(), v, "q", nil)
		var ne *ddpath.NonTerminationError
		if !errors.As(err, &ne) {
			t.Fatalf("expected a NonTerminationError, got %v", err)
		}
		if ne.Output != "q" || ne.Round != 4 {
			t.Errorf("got %+v", ne)
		}
	})
	t.Run("max_rounds", func(t *testing.T) {
		_, err := ddpath.Search(ctx, nn, evaluate(t, nn, "11"), "N4", &ddpath.Options{MaxRounds: 1})
		var ne *ddpath.NonTerminationError
		if !errors.As(err, &ne) || ne.Round != 2 {
			t.Fatalf("expected a NonTerminationError in round 2, got %v", err)
		}
	})
	t.Run("max_paths", func(t *testing.T) {
		_, err := ddpath.Search(ctx, nn, evaluate(t, nn, "11"), "N4", &ddpath.Options{MaxPaths: 1})
		var ne *ddpath.NonTerminationError
		if !errors.As(err, &ne) || ne.Paths != 2 {
			t.Fatalf("expected a NonTerminationError with 2 paths, got %v", err)
		}
	})
	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ddpath.Search(cctx, nn, evaluate(t, nn, "11"), "N4", nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
	t.Run("inconsistent", func(t *testing.T) {
		v := ddpath.Values{"N1": true, "N2": true, "N3": true, "N4": false}
		_, err := ddpath.Search(ctx, nn, v, "N4", nil)
		var se *ddpath.SensitizationError
		if !errors.As(err, &se) {
			t.Fatalf("expected a SensitizationError, got %v", err)
		}
		if se.Pin != "N3" || se.Type != ddpath.Nand || !se.Value || se.Round != 2 {
			t.Errorf("got %+v", se)
		}
	})
	t.Run("unvalued", func(t *testing.T) {
		v := ddpath.Values{"N1": true, "N2": true, "N4": false}
		_, err := ddpath.Search(ctx, nn, v, "N4", nil)
		var ie *ddpath.IncompleteInputError
		if !errors.As(err, &ie) || !reflect.DeepEqual(ie.Missing, []string{"N3"}) {
			t.Fatalf("expected an IncompleteInputError on N3, got %v", err)
		}
		if msg := err.Error(); !strings.Contains(msg, "gate N4") || !strings.Contains(msg, "round 1") {
			t.Errorf("error lacks gate and round: %s", msg)
		}
	})
}

func TestSearch_c17(t *testing.T) {
	n := ddtest.C17()
	ddtest.CompareSearch(t, n, ddtest.Exhaustive(n))

	ctx := context.Background()
	for _, in := range ddtest.Exhaustive(n) {
		v, err := ddpath.Evaluate(n, in)
		if err != nil {
			t.Fatal(err)
		}
		for _, out := range n.Outputs() {
			ps, err := ddpath.Search(ctx, n, v, out, nil)
			if err != nil {
				t.Fatal(err)
			}
			again, err := ddpath.Search(ctx, n, v, out, nil)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(ps.Paths(), again.Paths()) {
				t.Fatalf("%s %s: non deterministic search", in.InputString(n), out)
			}
			for i, p := range ps.Paths() {
				if p[0] != out || !n.IsInput(p[len(p)-1]) {
					t.Errorf("%s %s: bad path %v", in.InputString(n), out, p)
				}
				d, err := n.PathDelay(p)
				if err != nil {
					t.Fatal(err)
				}
				if d != ps.Delay(i) {
					t.Errorf("%v: delay %d, want %d", p, ps.Delay(i), d)
				}
				// NAND only: all surviving paths have the same delay
				if d != ps.Delay(0) {
					t.Errorf("%s %s: path delays differ: %v", in.InputString(n), out, ps.Paths())
				}
			}
		}
	}
}

func TestSearch_random(t *testing.T) {
	f := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		n, err := ddpath.Load(ddtest.RandomSource(r, 1+r.Intn(5), 1+r.Intn(10)))
		if err != nil {
			t.Log(err)
			return false
		}
		return ddtest.SearchMatches(t, n, ddtest.Exhaustive(n))
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 100}); err != nil {
		t.Error(err)
	}
}
