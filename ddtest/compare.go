// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ddtest

import (
	"context"
	"reflect"
	"testing"

	"github.com/db47h/ddpath"
	"github.com/db47h/ddpath/vectors"
)

// CompareSearch evaluates n for every input vector in vecs, and checks that
// ddpath.Search returns the same paths and delays as Reference from every
// output and internal pin.
//
func CompareSearch(t testing.TB, n *ddpath.Netlist, vecs []ddpath.Values) {
	t.Helper()
	if err := compareSearch(n, vecs, t.Errorf); err != nil {
		t.Fatal(err)
	}
}

// SearchMatches is like CompareSearch but reports the first mismatch as a
// boolean, for use with testing/quick.
//
func SearchMatches(t testing.TB, n *ddpath.Netlist, vecs []ddpath.Values) bool {
	t.Helper()
	ok := true
	err := compareSearch(n, vecs, func(format string, args ...interface{}) {
		if ok {
			t.Logf(format, args...)
		}
		ok = false
	})
	if err != nil {
		t.Log(err)
		return false
	}
	return ok
}

func compareSearch(n *ddpath.Netlist, vecs []ddpath.Values, errorf func(string, ...interface{})) error {
	pins := append(append([]string(nil), n.Outputs()...), n.Nodes()...)
	ctx := context.Background()
	for _, in := range vecs {
		v, err := ddpath.Evaluate(n, in)
		if err != nil {
			return err
		}
		for _, p := range pins {
			ps, err := ddpath.Search(ctx, n, v, p, nil)
			if err != nil {
				return err
			}
			paths, delays, err := Reference(n, v, p)
			if err != nil {
				return err
			}
			got := ps.Paths()
			gotDelays := make([]int, ps.Len())
			for i := range gotDelays {
				gotDelays[i] = ps.Delay(i)
			}
			if !reflect.DeepEqual(got, paths) || !reflect.DeepEqual(gotDelays, delays) {
				errorf("%s: input %s, pin %s:\n got  %v %v\n want %v %v",
					n.Name(), in.InputString(n), p, got, gotDelays, paths, delays)
			}
		}
	}
	return nil
}

// Exhaustive returns all the input vectors of n, in the order of
// vectors.Exhaustive. It panics if n has too many inputs.
//
func Exhaustive(n *ddpath.Netlist) []ddpath.Values {
	src, err := vectors.Exhaustive(n)
	if err != nil {
		panic(err)
	}
	vs, err := vectors.Collect(src)
	if err != nil {
		panic(err)
	}
	return vs
}
