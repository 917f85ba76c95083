// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vectors provides input vector generators for netlists.
//
package vectors

import (
	"bufio"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/db47h/ddpath"
	"github.com/pkg/errors"
)

// A Source supplies input vectors. Next returns io.EOF once the source is
// exhausted.
//
// Sources are not safe for concurrent use.
//
type Source interface {
	Next() (ddpath.Values, error)
}

// MaxExhaustiveInputs is the largest input count accepted by Exhaustive.
const MaxExhaustiveInputs = 30

// exhaustive enumerates all input vectors.
type exhaustive struct {
	in []string
	t  uint64
}

// Exhaustive returns a source of all 2^k input vectors of a netlist with k
// input pins. For test case t, the i-th input pin in pin order has value
// (t >> i) & 1.
//
func Exhaustive(n *ddpath.Netlist) (Source, error) {
	in := n.Inputs()
	if len(in) > MaxExhaustiveInputs {
		return nil, errors.Errorf("%d inputs: too many for exhaustive enumeration (max %d)", len(in), MaxExhaustiveInputs)
	}
	return &exhaustive{in: in}, nil
}

func (e *exhaustive) Next() (ddpath.Values, error) {
	if e.t >= 1<<uint(len(e.in)) {
		return nil, io.EOF
	}
	v := make(ddpath.Values, len(e.in))
	for i, p := range e.in {
		v[p] = (e.t>>uint(i))&1 != 0
	}
	e.t++
	return v, nil
}

type random struct {
	in    []string
	r     *rand.Rand
	count int
}

// Random returns a source of count pseudo-random input vectors. The generator
// is seeded with seed and the first offset vectors are skipped, so that
// Random(n, s, 0, a+b) yields the vectors of Random(n, s, 0, a) followed by
// those of Random(n, s, a, b). A negative count never ends.
//
func Random(n *ddpath.Netlist, seed int64, offset, count int) Source {
	s := &random{in: n.Inputs(), r: rand.New(rand.NewSource(seed)), count: -1}
	for i := 0; i < offset; i++ {
		s.Next()
	}
	s.count = count
	return s
}

func (s *random) Next() (ddpath.Values, error) {
	if s.count == 0 {
		return nil, io.EOF
	}
	if s.count > 0 {
		s.count--
	}
	v := make(ddpath.Values, len(s.in))
	var bits int64
	for i, p := range s.in {
		if i%62 == 0 {
			bits = s.r.Int63()
		}
		v[p] = bits&1 != 0
		bits >>= 1
	}
	return v, nil
}

type reader struct {
	n    *ddpath.Netlist
	s    *bufio.Scanner
	line int
}

// Reader returns a source reading input strings (see ddpath.InputString) from
// r, one per line. Blank lines and lines starting with '#' are skipped.
//
func Reader(n *ddpath.Netlist, r io.Reader) Source {
	return &reader{n: n, s: bufio.NewScanner(r)}
}

func (r *reader) Next() (ddpath.Values, error) {
	for r.s.Scan() {
		r.line++
		l := strings.TrimSpace(r.s.Text())
		if l == "" || l[0] == '#' {
			continue
		}
		v, err := ddpath.ParseInputString(r.n, l)
		if err != nil {
			return nil, errors.Wrap(err, "line "+strconv.Itoa(r.line))
		}
		return v, nil
	}
	if err := r.s.Err(); err != nil {
		return nil, errors.Wrap(err, "read input vectors")
	}
	return nil, io.EOF
}

type list struct {
	vs []ddpath.Values
}

// List returns a source of the given vectors.
//
func List(vs ...ddpath.Values) Source {
	return &list{vs}
}

func (l *list) Next() (ddpath.Values, error) {
	if len(l.vs) == 0 {
		return nil, io.EOF
	}
	v := l.vs[0]
	l.vs = l.vs[1:]
	return v, nil
}

// Func adapts a function to the Source interface.
//
type Func func() (ddpath.Values, error)

// Next calls f.
func (f Func) Next() (ddpath.Values, error) { return f() }

// Collect reads all the vectors from s.
//
func Collect(s Source) ([]ddpath.Values, error) {
	var out []ddpath.Values
	for {
		v, err := s.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}
