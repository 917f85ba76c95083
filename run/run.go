// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package run analyzes the outputs of a netlist for a batch of input vectors
// on a pool of workers.
//
// Each vector is evaluated once, then every output pin is analyzed
// concurrently. Results are deduplicated by input string and output pin and
// forwarded to an optional Sink.
//
package run

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/db47h/ddpath"
	"github.com/db47h/ddpath/symbolic"
	"github.com/db47h/ddpath/vectors"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/db47h/ddpath/run"

// A Sink receives new results. Put returns false if the result was already
// known. A *store.Store is a Sink.
//
type Sink interface {
	Put(circuit, runID string, r *ddpath.DelayResult) (bool, error)
}

// Config configures a Runner.
//
type Config struct {
	// Workers is the number of concurrent analyses. If <= 0,
	// runtime.GOMAXPROCS(-1) is used.
	Workers int
	// Timeout bounds each analysis. Zero means no timeout.
	Timeout time.Duration
	// Options sets the search ceilings.
	Options ddpath.Options
	// Outputs restricts the analysis to the given output pins. All outputs
	// are analyzed if empty.
	Outputs []string
	// Verify cross-checks every evaluation against the AIG of the netlist.
	Verify bool
	// KeepGoing continues the batch after a failed evaluation or analysis.
	// Otherwise the first error stops the batch.
	KeepGoing bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Registerer receives the runner metrics. A nil Registerer leaves them
	// unregistered.
	Registerer prometheus.Registerer
}

// Runner runs batches of analyses on a netlist.
//
type Runner struct {
	n       *ddpath.Netlist
	cfg     Config
	outputs []string
	check   *symbolic.Circuit
	log     *slog.Logger
	m       *metrics
}

// New returns a new Runner for netlist n.
//
func New(n *ddpath.Netlist, cfg Config) (*Runner, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(-1)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r := &Runner{
		n:       n,
		cfg:     cfg,
		outputs: n.Outputs(),
		log:     cfg.Logger.With(slog.String("component", "run"), slog.String("circuit", n.Name())),
		m:       newMetrics(cfg.Registerer),
	}
	if len(cfg.Outputs) > 0 {
		for _, o := range cfg.Outputs {
			if n.Kind(o) != ddpath.OutputPin {
				return nil, &ddpath.LookupError{Pin: o, Msg: "not an output pin"}
			}
		}
		r.outputs = cfg.Outputs
	}
	if cfg.Verify {
		c, err := symbolic.Compile(n)
		if err != nil {
			return nil, errors.Wrap(err, "compile netlist for verification")
		}
		r.check = c
	}
	return r, nil
}

// Summary is the outcome of a batch.
//
type Summary struct {
	RunID      string
	Vectors    int      // vectors read from the source
	Inputs     []string // distinct input strings, in source order
	Analyses   int      // successful analyses
	Duplicates int      // analyses skipped as already done
	Stored     int      // results accepted by the sink
	Errors     []error  // failures, if KeepGoing is set
	Results    *ddpath.Results
	Elapsed    time.Duration
}

type job struct {
	v      ddpath.Values
	input  string
	output string
}

// Run reads vectors from src until io.EOF and analyzes every selected output
// for each of them. New results are forwarded to sink if not nil.
//
// Unless KeepGoing is set, Run stops at the first error and returns it along
// with the partial summary.
//
func (r *Runner) Run(ctx context.Context, src vectors.Source, sink Sink) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString(), Results: new(ddpath.Results)}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "run.Run",
		trace.WithAttributes(
			attribute.String("circuit", r.n.Name()),
			attribute.String("run_id", sum.RunID),
			attribute.Int("workers", r.cfg.Workers),
		))
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := r.log.With(slog.String("run_id", sum.RunID))
	log.Info("run started", slog.Int("workers", r.cfg.Workers), slog.Int("outputs", len(r.outputs)))

	var (
		mu  sync.Mutex
		err error
	)
	// fail records e. It returns true if the batch must stop. Errors that
	// follow the one stopping the batch are dropped.
	fail := func(e error) bool {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			return true
		}
		r.m.errors.WithLabelValues(errorKind(e)).Inc()
		log.Warn("analysis failed", slog.Any("error", e))
		if r.cfg.KeepGoing {
			sum.Errors = append(sum.Errors, e)
			return false
		}
		if err == nil {
			err = e
			cancel()
		}
		return true
	}

	jobs := make(chan job, r.cfg.Workers)
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, e := r.analyze(ctx, j)
				if e != nil {
					fail(e)
					continue
				}
				if !sum.Results.Add(res) {
					r.m.duplicates.Inc()
					mu.Lock()
					sum.Duplicates++
					mu.Unlock()
					continue
				}
				stored := false
				if sink != nil {
					if stored, e = sink.Put(r.n.Name(), sum.RunID, res); e != nil {
						fail(errors.Wrap(e, "store result"))
						continue
					}
				}
				mu.Lock()
				sum.Analyses++
				if stored {
					sum.Stored++
				}
				mu.Unlock()
			}
		}()
	}

	dups, rerr := r.feed(ctx, src, jobs, sum, fail)
	close(jobs)
	wg.Wait()
	if dups > 0 {
		r.m.duplicates.Add(float64(dups))
		sum.Duplicates += dups
	}

	sum.Elapsed = time.Since(start)
	if rerr != nil && err == nil && ctx.Err() == nil {
		err = rerr
	}
	if err == nil {
		err = ctx.Err()
	}
	span.SetAttributes(
		attribute.Int("vectors", sum.Vectors),
		attribute.Int("analyses", sum.Analyses),
		attribute.Int("duplicates", sum.Duplicates),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		log.Error("run failed", slog.Any("error", err))
		return sum, err
	}
	log.Info("run done",
		slog.Int("vectors", sum.Vectors),
		slog.Int("analyses", sum.Analyses),
		slog.Int("duplicates", sum.Duplicates),
		slog.Int("errors", len(sum.Errors)),
		slog.Duration("elapsed", sum.Elapsed))
	return sum, nil
}

// feed reads vectors from src, evaluates them and sends one job per output
// to jobs. It returns the number of analyses skipped for repeated vectors.
func (r *Runner) feed(ctx context.Context, src vectors.Source, jobs chan<- job, sum *Summary, fail func(error) bool) (int, error) {
	dups := 0
	seen := make(map[string]bool)
	for {
		in, err := src.Next()
		if err == io.EOF {
			return dups, nil
		}
		if err != nil {
			return dups, errors.Wrap(err, "read vector")
		}
		sum.Vectors++
		v, err := ddpath.Evaluate(r.n, in)
		if err == nil && r.check != nil {
			err = r.check.Check(v)
		}
		if err != nil {
			if fail(errors.Wrapf(err, "vector %d", sum.Vectors)) {
				return dups, nil
			}
			continue
		}
		input := v.InputString(r.n)
		if seen[input] {
			dups += len(r.outputs)
			continue
		}
		seen[input] = true
		sum.Inputs = append(sum.Inputs, input)
		for _, o := range r.outputs {
			select {
			case jobs <- job{v: v, input: input, output: o}:
			case <-ctx.Done():
				return dups, nil
			}
		}
	}
}

func (r *Runner) analyze(ctx context.Context, j job) (*ddpath.DelayResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "run.Analyze",
		trace.WithAttributes(
			attribute.String("circuit", r.n.Name()),
			attribute.String("output", j.output),
			attribute.String("input", j.input),
		))
	defer span.End()
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := ddpath.Analyze(ctx, r.n, j.v, j.output, &r.cfg.Options)
	r.m.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		return nil, errors.Wrapf(err, "analyze %s for %s", j.output, j.input)
	}
	r.m.rounds.Observe(float64(res.Rounds))
	r.m.analyses.WithLabelValues(res.Mode.String()).Inc()
	span.SetAttributes(
		attribute.Int("rounds", res.Rounds),
		attribute.Int("paths", len(res.Paths)),
		attribute.Int("delay", res.Delay),
	)
	r.log.Debug("analyzed",
		slog.String("input", j.input),
		slog.String("output", j.output),
		slog.Int("delay", res.Delay),
		slog.String("mode", res.Mode.String()))
	return res, nil
}
