// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// DelayResult is the outcome of the analysis of one output pin for one input
// vector.
//
type DelayResult struct {
	Input   string   `json:"input"`  // input vector, see Values.InputString
	Output  string   `json:"output"` // output pin
	Value   bool     `json:"value"`  // value of the output pin
	Mode    Mode     `json:"mode"`   // mode of the topmost branch point
	Branch  string   `json:"branch"` // topmost branch point
	Delay   int      `json:"delay"`
	Rounds  int      `json:"rounds"`
	Paths   []Path   `json:"paths"`
	Covered []string `json:"covered"` // covered pins, in pin order
}

// Analyze runs a Search from output and derives the mode, delay and covered
// pins of the resulting paths.
//
// The mode is that of the topmost step where the paths diverge, or of the
// output's gate if there is a single path. Covered pins are all the pins of
// all paths, except when the mode is Min: the pins shared by all paths before
// the branch point are then masked and not covered.
//
func Analyze(ctx context.Context, n *Netlist, v Values, output string, opts *Options) (*DelayResult, error) {
	ps, err := Search(ctx, n, v, output, opts)
	if err != nil {
		return nil, err
	}
	return newResult(n, v, ps)
}

func newResult(n *Netlist, v Values, ps *PathSet) (*DelayResult, error) {
	if ps.Len() == 0 {
		return nil, errors.Errorf("search from %s returned no path", ps.root)
	}
	r := &DelayResult{
		Input:  v.InputString(n),
		Output: ps.root,
		Value:  v[ps.root],
		Rounds: ps.rounds,
		Paths:  ps.Paths(),
	}

	// topmost branch point
	fan, _ := ps.branches(ps.leaves, 0)
	b := -1
	for i, f := range fan {
		if f < 2 {
			continue
		}
		if b < 0 || ps.steps[i].hops < ps.steps[b].hops ||
			ps.steps[i].hops == ps.steps[b].hops && PinLess(ps.steps[i].pin, ps.steps[b].pin) {
			b = i
		}
	}
	if b < 0 {
		b = 0
	}
	r.Branch = ps.steps[b].pin
	if g := n.gates[r.Branch]; g != nil {
		r.Mode = g.Type.Mode(v[r.Branch])
	} else {
		r.Mode = Either
	}

	from := 0
	if r.Mode == Min {
		from = ps.steps[b].hops
	}
	covered := make(pinSet)
	for i, p := range r.Paths {
		if d := ps.Delay(i); d > r.Delay {
			r.Delay = d
		}
		for _, pin := range p[from:] {
			covered[pin] = struct{}{}
		}
	}
	r.Covered = covered.sorted()
	return r, nil
}

// ResultKey identifies a DelayResult in a Results collection.
//
type ResultKey struct {
	Input  string
	Output string
}

// Results is a collection of DelayResults, deduplicated by input vector and
// output pin.
//
// Results is safe for concurrent use.
//
type Results struct {
	mu sync.Mutex
	m  map[ResultKey]*DelayResult
}

// Add adds r to the collection. It returns false and leaves the collection
// unchanged if a result for the same input vector and output pin is already
// present.
//
func (rs *Results) Add(r *DelayResult) bool {
	k := ResultKey{r.Input, r.Output}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.m == nil {
		rs.m = make(map[ResultKey]*DelayResult)
	}
	if _, ok := rs.m[k]; ok {
		return false
	}
	rs.m[k] = r
	return true
}

// Has reports whether a result for the given input vector and output pin is
// present.
//
func (rs *Results) Has(input, output string) bool {
	_, ok := rs.Get(input, output)
	return ok
}

// Get returns the result for the given input vector and output pin.
//
func (rs *Results) Get(input, output string) (*DelayResult, bool) {
	rs.mu.Lock()
	r, ok := rs.m[ResultKey{input, output}]
	rs.mu.Unlock()
	return r, ok
}

// Len returns the number of results.
//
func (rs *Results) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.m)
}

// All returns all results sorted by input vector, then by output pin.
//
func (rs *Results) All() []*DelayResult {
	rs.mu.Lock()
	out := make([]*DelayResult, 0, len(rs.m))
	for _, r := range rs.m {
		out = append(out, r)
	}
	rs.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Input != out[j].Input {
			return out[i].Input < out[j].Input
		}
		return PinLess(out[i].Output, out[j].Output)
	})
	return out
}
