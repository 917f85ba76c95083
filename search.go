// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddpath

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

// DefaultMaxPaths is the default ceiling on the number of live paths in a
// search.
const DefaultMaxPaths = 1 << 20

// Options sets ceilings on a search. A nil *Options uses the defaults.
//
type Options struct {
	// MaxRounds is the maximum number of expansion rounds. If <= 0, the gate
	// count + 1 is used: no path of an acyclic netlist is longer than that.
	MaxRounds int
	// MaxPaths is the maximum number of live (active or terminal) paths. If
	// <= 0, DefaultMaxPaths is used.
	MaxPaths int
}

func (o *Options) limits(n *Netlist) (rounds, paths int) {
	if o != nil {
		rounds, paths = o.MaxRounds, o.MaxPaths
	}
	if rounds <= 0 {
		rounds = len(n.order) + 1
	}
	if paths <= 0 {
		paths = DefaultMaxPaths
	}
	return rounds, paths
}

// Path is a sequence of pins from an output (or internal) pin back to an
// input pin.
//
type Path []string

// a step is a pin on a path. Paths are chains of steps linked by their
// parent index. Steps sharing a parent are the branches of a gate.
type step struct {
	pin    string
	parent int
	hops   int // distance from the root, in pins
	delay  int // delay of the gates driving the pins from the root to parent
}

// PathSet is the result of a Search: the set of delay-defining paths from a
// root pin.
//
type PathSet struct {
	root   string
	steps  []step
	leaves []int // terminal steps, sorted by path
	rounds int
}

// Root returns the pin the search started from.
//
func (ps *PathSet) Root() string { return ps.root }

// Len returns the number of paths in the set.
//
func (ps *PathSet) Len() int { return len(ps.leaves) }

// Rounds returns the number of expansion rounds the search took.
//
func (ps *PathSet) Rounds() int { return ps.rounds }

// Path returns the i-th path. Paths are sorted by comparing their pins in
// pin order.
//
func (ps *PathSet) Path(i int) Path {
	return ps.path(ps.leaves[i])
}

// Paths returns all the paths in the set.
//
func (ps *PathSet) Paths() []Path {
	out := make([]Path, len(ps.leaves))
	for i, l := range ps.leaves {
		out[i] = ps.path(l)
	}
	return out
}

// Delay returns the delay of the i-th path.
//
func (ps *PathSet) Delay(i int) int { return ps.steps[ps.leaves[i]].delay }

func (ps *PathSet) path(leaf int) Path {
	p := make(Path, ps.steps[leaf].hops+1)
	for i := leaf; i >= 0; i = ps.steps[i].parent {
		p[ps.steps[i].hops] = ps.steps[i].pin
	}
	return p
}

// under reports whether step s is on the path of leaf.
func (ps *PathSet) under(leaf, s int) bool {
	h := ps.steps[s].hops
	for ; leaf >= 0 && ps.steps[leaf].hops > h; leaf = ps.steps[leaf].parent {
	}
	return leaf == s
}

// branches returns the steps where at least two paths of leaves diverge.
// leaves are terminal and active leaves; open is set for steps with an
// active leaf below them. active leaves must come first.
func (ps *PathSet) branches(leaves []int, nActive int) (fan map[int]int, open map[int]bool) {
	fan = make(map[int]int)
	open = make(map[int]bool)
	seen := make(map[int]bool, len(leaves))
	for i, l := range leaves {
		active := i < nActive
		for c := l; ; {
			p := ps.steps[c].parent
			if p < 0 || seen[c] {
				break
			}
			seen[c] = true
			fan[p]++
			if active {
				open[p] = true
			}
			c = p
		}
	}
	return fan, open
}

// sortLeaves sorts leaves by comparing their paths pin by pin.
func (ps *PathSet) sortLeaves() {
	paths := make(map[int]Path, len(ps.leaves))
	for _, l := range ps.leaves {
		paths[l] = ps.path(l)
	}
	sort.Slice(ps.leaves, func(i, j int) bool {
		a, b := paths[ps.leaves[i]], paths[ps.leaves[j]]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return PinLess(a[k], b[k])
			}
		}
		return len(a) < len(b)
	})
}

type search struct {
	PathSet
	n       *Netlist
	v       Values
	done    map[int]bool // branch steps already culled
	maxPath int
}

// Search finds the delay-defining paths from pin root back to the input pins,
// given the node values v computed by Evaluate.
//
// All active paths are extended by one pin per round, keeping only the inputs
// of each gate that carry a delay-defining value (see GateType.DelayDefining).
// Once every path through a branch step (a pin where paths diverge) has
// reached an input pin, the paths through it are culled according to the
// mode of its gate: Max keeps the longest, Min the shortest, Either keeps all.
// Branch steps resolved in the same round are culled deepest first.
//
// The netlist must be acyclic. A cyclic fan-in makes the search exceed
// opts.MaxRounds and fail with a *NonTerminationError. The search also stops
// with ctx.Err() when ctx is done.
//
func Search(ctx context.Context, n *Netlist, v Values, root string, opts *Options) (*PathSet, error) {
	if n.kinds[root] == Undeclared {
		return nil, &LookupError{Pin: root, Msg: "not declared"}
	}
	maxRounds, maxPaths := opts.limits(n)
	s := &search{
		PathSet: PathSet{root: root, steps: []step{{pin: root, parent: -1}}},
		n:       n,
		v:       v,
		done:    make(map[int]bool),
		maxPath: maxPaths,
	}
	if n.IsInput(root) {
		s.leaves = []int{0}
		return &s.PathSet, nil
	}
	active := []int{0}
	for len(active) > 0 {
		s.rounds++
		if s.rounds > maxRounds {
			return nil, &NonTerminationError{Output: root, Round: s.rounds, Paths: len(active) + len(s.leaves)}
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "search from %s, round %d", root, s.rounds)
		}
		var next []int
		for _, a := range active {
			var err error
			if next, err = s.expand(a, next); err != nil {
				return nil, err
			}
		}
		active = next
		if l := len(active) + len(s.leaves); l > s.maxPath {
			return nil, &NonTerminationError{Output: root, Round: s.rounds, Paths: l}
		}
		s.cull(active)
	}
	s.sortLeaves()
	return &s.PathSet, nil
}

// expand extends the path ending at step a by one pin. New active steps are
// appended to next, new terminal ones to s.leaves.
func (s *search) expand(a int, next []int) ([]int, error) {
	st := s.steps[a]
	g := s.n.gates[st.pin]
	if g == nil {
		return nil, &LookupError{Pin: st.pin, Msg: "not driven by any gate"}
	}
	out, ok := s.v[st.pin]
	if !ok {
		return nil, errors.Wrapf(&IncompleteInputError{Missing: []string{st.pin}}, "%s gate %s, round %d", g.Type, st.pin, s.rounds)
	}
	dd := g.Type.DelayDefining(out)
	cnt := 0
	for i, q := range g.In {
		if dup(g.In[:i], q) {
			continue
		}
		val, ok := s.v[q]
		if !ok {
			return nil, errors.Wrapf(&IncompleteInputError{Missing: []string{q}}, "%s gate %s, round %d", g.Type, st.pin, s.rounds)
		}
		if !dd.Has(val) {
			continue
		}
		cnt++
		s.steps = append(s.steps, step{pin: q, parent: a, hops: st.hops + 1, delay: st.delay + g.Type.Delay()})
		c := len(s.steps) - 1
		if s.n.IsInput(q) {
			s.leaves = append(s.leaves, c)
		} else {
			next = append(next, c)
		}
	}
	if cnt == 0 {
		return nil, &SensitizationError{Pin: st.pin, Type: g.Type, Value: out, Round: s.rounds}
	}
	return next, nil
}

func dup(pins []string, p string) bool {
	for _, q := range pins {
		if q == p {
			return true
		}
	}
	return false
}

// cull applies min/max culling at every resolved branch step, deepest first,
// recomputing branches after each cull.
func (s *search) cull(active []int) {
	for {
		all := append(append(make([]int, 0, len(active)+len(s.leaves)), active...), s.leaves...)
		fan, open := s.branches(all, len(active))
		b := -1
		for i, f := range fan {
			if f < 2 || open[i] || s.done[i] {
				continue
			}
			if b < 0 || s.deeper(i, b) {
				b = i
			}
		}
		if b < 0 {
			return
		}
		s.done[b] = true
		s.resolve(b)
	}
}

// deeper reports whether step i should be culled before step j.
func (s *search) deeper(i, j int) bool {
	si, sj := s.steps[i], s.steps[j]
	if si.hops != sj.hops {
		return si.hops > sj.hops
	}
	if si.pin != sj.pin {
		return PinLess(si.pin, sj.pin)
	}
	return i < j
}

// resolve culls the terminal paths through branch step b.
func (s *search) resolve(b int) {
	pin := s.steps[b].pin
	mode := s.n.gates[pin].Type.Mode(s.v[pin])
	if mode == Either {
		return
	}
	var best int
	first := true
	for _, l := range s.leaves {
		if !s.under(l, b) {
			continue
		}
		d := s.steps[l].delay
		if first || mode == Max && d > best || mode == Min && d < best {
			best, first = d, false
		}
	}
	keep := s.leaves[:0]
	for _, l := range s.leaves {
		if s.steps[l].delay == best || !s.under(l, b) {
			keep = append(keep, l)
		}
	}
	s.leaves = keep
}
