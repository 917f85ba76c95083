// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddtest

import (
	"sort"

	"github.com/db47h/ddpath"
	"github.com/pkg/errors"
)

// Reference computes the delay-defining paths from pin root by plain
// recursion over the fan-in of root. It returns the paths in the same order
// as ddpath.PathSet.Paths, and their delays.
//
// It is exponential in the depth of the netlist and loops forever on cyclic
// netlists; it is only meant to check ddpath.Search on small circuits.
//
func Reference(n *ddpath.Netlist, v ddpath.Values, root string) ([]ddpath.Path, []int, error) {
	ps, err := reference(n, v, root)
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(ps, func(i, j int) bool { return pathLess(ps[i].path, ps[j].path) })
	paths := make([]ddpath.Path, len(ps))
	delays := make([]int, len(ps))
	for i := range ps {
		paths[i], delays[i] = ps[i].path, ps[i].delay
	}
	return paths, delays, nil
}

type refPath struct {
	path  ddpath.Path
	delay int
}

func reference(n *ddpath.Netlist, v ddpath.Values, p string) ([]refPath, error) {
	if n.IsInput(p) {
		return []refPath{{path: ddpath.Path{p}}}, nil
	}
	g, err := n.GateOf(p)
	if err != nil {
		return nil, err
	}
	dd := g.Type.DelayDefining(v[p])
	var (
		out  []refPath
		seen = make(map[string]bool)
	)
	for _, q := range g.In {
		if seen[q] || !dd.Has(v[q]) {
			continue
		}
		seen[q] = true
		sub, err := reference(n, v, q)
		if err != nil {
			return nil, err
		}
		for _, s := range sub {
			out = append(out, refPath{
				path:  append(ddpath.Path{p}, s.path...),
				delay: s.delay + g.Type.Delay(),
			})
		}
	}
	if len(seen) == 0 {
		return nil, errors.Errorf("no delay-defining input for gate %s", p)
	}
	mode := g.Type.Mode(v[p])
	if len(seen) < 2 || mode == ddpath.Either {
		return out, nil
	}
	best := out[0].delay
	for _, s := range out[1:] {
		if mode == ddpath.Max && s.delay > best || mode == ddpath.Min && s.delay < best {
			best = s.delay
		}
	}
	keep := out[:0]
	for _, s := range out {
		if s.delay == best {
			keep = append(keep, s)
		}
	}
	return keep, nil
}

func pathLess(a, b ddpath.Path) bool {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			return ddpath.PinLess(a[k], b[k])
		}
	}
	return len(a) < len(b)
}
