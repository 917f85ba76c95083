// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/db47h/ddpath"
	"github.com/pkg/errors"
)

func delay(rs *ddpath.Results, input, output string) string {
	if r, ok := rs.Get(input, output); ok {
		return strconv.Itoa(r.Delay)
	}
	return "-"
}

// writeDelays writes one line per output pin with the delays of that output
// for each input, in the order of inputs. Missing results are written as '-'.
//
func writeDelays(w io.Writer, outputs, inputs []string, rs *ddpath.Results) error {
	bw := bufio.NewWriter(w)
	for _, o := range outputs {
		bw.WriteString(o)
		bw.WriteByte(':')
		for _, in := range inputs {
			bw.WriteByte(' ')
			bw.WriteString(delay(rs, in, o))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// inputString returns the input string of exhaustive test case t for k inputs.
func inputString(t uint64, k int) string {
	var sb strings.Builder
	for i := 0; i < k; i++ {
		sb.WriteByte(byte('0' + (t>>uint(i))&1))
	}
	return sb.String()
}

// writeTable writes, for each output pin, the delays of an exhaustive run of
// a netlist with k inputs as a table of 2^(k/2) columns: the delay of test
// case t is in row t / cols, column t % cols.
//
func writeTable(w io.Writer, outputs []string, k int, rs *ddpath.Results) error {
	cols := uint64(1) << uint(k/2)
	rows := (uint64(1) << uint(k)) / cols
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	for _, o := range outputs {
		io.WriteString(tw, o+"\n")
		for r := uint64(0); r < rows; r++ {
			for c := uint64(0); c < cols; c++ {
				io.WriteString(tw, delay(rs, inputString(r*cols+c, k), o)+"\t")
			}
			io.WriteString(tw, "\n")
		}
		// one alignment block per output
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON writes all results as JSON, one per line.
func writeJSON(w io.Writer, rs *ddpath.Results) error {
	enc := json.NewEncoder(w)
	for _, r := range rs.All() {
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encode result")
		}
	}
	return nil
}
