// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command ddpath computes the delay-defining paths of the outputs of a
// combinational netlist for a set of input vectors.
//
// Usage:
//
//	ddpath [flags] netlist.v|netlist.bench
//
// By default all input vectors are analyzed and the delays of each output are
// printed as a table.
//
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/db47h/ddpath"
	"github.com/db47h/ddpath/run"
	"github.com/db47h/ddpath/store"
	"github.com/db47h/ddpath/symbolic"
	"github.com/db47h/ddpath/vectors"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type config struct {
	vectors   string
	file      string
	seed      int64
	offset    int
	count     int
	outputs   string
	workers   int
	timeout   time.Duration
	maxRounds int
	maxPaths  int
	verify    bool
	keepGoing bool
	reorder   bool
	prob      bool
	store     string
	metrics   string
	format    string
	verbose   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err == flag.ErrHelp {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "ddpath:", err)
		os.Exit(1)
	}
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cfg config
	fs := flag.NewFlagSet("ddpath", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.vectors, "vectors", "exhaustive", "vector `source`: exhaustive, random, file or justify")
	fs.StringVar(&cfg.file, "file", "-", "input strings `file` for -vectors file")
	fs.Int64Var(&cfg.seed, "seed", 1, "random seed")
	fs.IntVar(&cfg.offset, "offset", 0, "random vectors to skip")
	fs.IntVar(&cfg.count, "count", 1000, "number of random vectors")
	fs.StringVar(&cfg.outputs, "outputs", "", "comma separated output `pins` to analyze (default all)")
	fs.IntVar(&cfg.workers, "workers", 0, "concurrent analyses (default GOMAXPROCS)")
	fs.DurationVar(&cfg.timeout, "timeout", 0, "timeout of a single analysis")
	fs.IntVar(&cfg.maxRounds, "max-rounds", 0, "search round ceiling (default gate count + 1)")
	fs.IntVar(&cfg.maxPaths, "max-paths", 0, "search path ceiling")
	fs.BoolVar(&cfg.verify, "verify", false, "cross-check evaluations against an AIG of the netlist")
	fs.BoolVar(&cfg.keepGoing, "k", false, "keep going after analysis errors")
	fs.BoolVar(&cfg.reorder, "reorder", false, "sort gates topologically before analysis")
	fs.BoolVar(&cfg.prob, "prob", false, "print the signal probability of each output")
	fs.StringVar(&cfg.store, "store", "", "store results in badger `dir`")
	fs.StringVar(&cfg.metrics, "metrics", "", "serve prometheus metrics on `addr`")
	fs.StringVar(&cfg.format, "format", "table", "output `format`: table, list or json")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: ddpath [flags] netlist.v|netlist.bench")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return flag.ErrHelp
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	n, err := ddpath.LoadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if cfg.reorder {
		if n, err = n.Topological(); err != nil {
			return err
		}
	}
	logger.Debug("netlist loaded",
		slog.String("circuit", n.Name()),
		slog.Int("inputs", len(n.Inputs())),
		slog.Int("outputs", len(n.Outputs())),
		slog.Int("gates", len(n.Gates())))

	rcfg := run.Config{
		Workers:   cfg.workers,
		Timeout:   cfg.timeout,
		Options:   ddpath.Options{MaxRounds: cfg.maxRounds, MaxPaths: cfg.maxPaths},
		Verify:    cfg.verify,
		KeepGoing: cfg.keepGoing,
		Logger:    logger,
	}
	if cfg.outputs != "" {
		rcfg.Outputs = strings.Split(cfg.outputs, ",")
	}
	outputs := rcfg.Outputs
	if outputs == nil {
		outputs = n.Outputs()
	}

	if cfg.metrics != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rcfg.Registerer = reg
		srv := &http.Server{Addr: cfg.metrics, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server", slog.Any("error", err))
			}
		}()
		defer srv.Close()
	}

	src, closeSrc, err := source(&cfg, n)
	if err != nil {
		return err
	}
	defer closeSrc()

	var sink run.Sink
	if cfg.store != "" {
		s, err := store.Open(cfg.store, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		sink = s
	}

	r, err := run.New(n, rcfg)
	if err != nil {
		return err
	}
	sum, err := r.Run(ctx, src, sink)
	if err != nil {
		return err
	}
	for _, e := range sum.Errors {
		fmt.Fprintln(stderr, "ddpath:", e)
	}

	switch {
	case cfg.format == "json":
		err = writeJSON(stdout, sum.Results)
	case cfg.format == "table" && cfg.vectors == "exhaustive":
		err = writeTable(stdout, outputs, len(n.Inputs()), sum.Results)
	default:
		err = writeDelays(stdout, outputs, sum.Inputs, sum.Results)
	}
	if err != nil {
		return err
	}

	if cfg.prob {
		d, err := symbolic.NewBDD(n)
		if err != nil {
			return err
		}
		for _, o := range outputs {
			p, err := d.Probability(o)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "P(%s=1) = %g\n", o, p)
		}
	}
	return nil
}

// source returns the vector source selected by cfg.
func source(cfg *config, n *ddpath.Netlist) (vectors.Source, func(), error) {
	nop := func() {}
	switch cfg.vectors {
	case "exhaustive":
		src, err := vectors.Exhaustive(n)
		return src, nop, err
	case "random":
		return vectors.Random(n, cfg.seed, cfg.offset, cfg.count), nop, nil
	case "file":
		if cfg.file == "-" {
			return vectors.Reader(n, os.Stdin), nop, nil
		}
		f, err := os.Open(cfg.file)
		if err != nil {
			return nil, nil, err
		}
		return vectors.Reader(n, f), func() { f.Close() }, nil
	case "justify":
		c, err := symbolic.Compile(n)
		if err != nil {
			return nil, nil, err
		}
		return c.Justified(n.Outputs()), nop, nil
	}
	return nil, nil, errors.Errorf("unknown vector source %q", cfg.vectors)
}
