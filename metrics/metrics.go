// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics decorates interpreters with Prometheus instrumentation.
// One Observer owns the collectors and registers them on a caller
// supplied Registerer; any number of interpreters share it through
// Decorate. The delegate's result passes through untouched.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"code.hybscloud.com/eff"
)

// Observer holds the effect collectors. Prometheus collectors are
// internally synchronized, so one Observer may decorate interpreters
// used by concurrent runners.
type Observer struct {
	effects  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewObserver creates the collectors and registers them on reg.
// Registering twice on the same registry panics, as usual for
// Prometheus; create one Observer per registry.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		effects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eff",
				Subsystem: "interpreter",
				Name:      "effects_total",
				Help:      "Total number of interpreted effects",
			},
			[]string{"category", "effect", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "eff",
				Subsystem: "interpreter",
				Name:      "duration_seconds",
				Help:      "Time taken to interpret one effect",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"category"},
		),
	}
	reg.MustRegister(o.effects, o.duration)
	return o
}

// Decorate wraps delegate so every dispatch is counted and timed.
func (o *Observer) Decorate(delegate eff.Interpreter) eff.Interpreter {
	return &instrumented{delegate: delegate, obs: o}
}

type instrumented struct {
	delegate eff.Interpreter
	obs      *Observer
}

func (in *instrumented) Name() string { return in.delegate.Name() }

func (in *instrumented) Interpret(ctx context.Context, e eff.Effect) eff.Result[eff.EffectReturn, eff.InterpreterError] {
	started := time.Now()
	res := in.delegate.Interpret(ctx, e)

	outcome := "ok"
	if res.IsErr() {
		outcome = "err"
	}
	category := e.Category().String()
	in.obs.effects.WithLabelValues(category, e.EffectName(), outcome).Inc()
	in.obs.duration.WithLabelValues(category).Observe(time.Since(started).Seconds())
	return res
}
