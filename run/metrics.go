// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package run

import (
	"context"

	"github.com/db47h/ddpath"
	"github.com/db47h/ddpath/symbolic"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	analyses   *prometheus.CounterVec
	errors     *prometheus.CounterVec
	duplicates prometheus.Counter
	rounds     prometheus.Histogram
	duration   prometheus.Histogram
}

// newMetrics creates the runner metrics and registers them with reg. A nil
// reg leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ddpath_analyses_total",
			Help: "Completed delay-defining path analyses, by mode of the topmost branch.",
		}, []string{"mode"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ddpath_analysis_errors_total",
			Help: "Failed evaluations and analyses, by error kind.",
		}, []string{"kind"}),
		duplicates: f.NewCounter(prometheus.CounterOpts{
			Name: "ddpath_duplicates_total",
			Help: "Analyses skipped because the same input vector and output were already analyzed.",
		}),
		rounds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ddpath_search_rounds",
			Help:    "Expansion rounds per search.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ddpath_analysis_duration_seconds",
			Help:    "Duration of a single analysis.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
}

// errorKind returns a short label for err.
func errorKind(err error) string {
	var (
		pe *ddpath.ParseError
		le *ddpath.LookupError
		ie *ddpath.IncompleteInputError
		oe *ddpath.OutOfOrderError
		se *ddpath.SensitizationError
		ne *ddpath.NonTerminationError
		me *symbolic.MismatchError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &le):
		return "lookup"
	case errors.As(err, &ie):
		return "incomplete_input"
	case errors.As(err, &oe):
		return "out_of_order"
	case errors.As(err, &se):
		return "sensitization"
	case errors.As(err, &ne):
		return "non_termination"
	case errors.As(err, &me):
		return "mismatch"
	}
	return "other"
}
