/*
Copyright © 2020 the EnsFlow authors.
This file is part of EnsFlow.

EnsFlow is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EnsFlow is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EnsFlow.  If not, see <http://www.gnu.org/licenses/>.
*/

package ensflow

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// StepOperator advances a model state by one time step.
// Rows of the state are independent realizations (ensemble members);
// a deterministic run is a state with a single row. Implementations
// must not retain or modify the state they are given.
type StepOperator interface {
	Step(state *mat.Dense, dt float64) (*mat.Dense, error)
}

// ObservationOperator maps a model state to observations.
// It must be stateless.
type ObservationOperator interface {
	Observe(state *mat.Dense) (*mat.Dense, error)
}

// StepFunc is an adapter to allow the use of ordinary functions
// as step operators.
type StepFunc func(state *mat.Dense, dt float64) (*mat.Dense, error)

// Step calls f(state, dt).
func (f StepFunc) Step(state *mat.Dense, dt float64) (*mat.Dense, error) { return f(state, dt) }

// ObserveFunc is an adapter to allow the use of ordinary functions
// as observation operators.
type ObserveFunc func(state *mat.Dense) (*mat.Dense, error)

// Observe calls f(state).
func (f ObserveFunc) Observe(state *mat.Dense) (*mat.Dense, error) { return f(state) }

// ProgressReporter is notified after each completed time step.
// It is purely observational.
type ProgressReporter interface {
	Report(step, nSteps int)
}

// ProgressFunc is an adapter to allow the use of ordinary functions
// as progress reporters.
type ProgressFunc func(step, nSteps int)

// Report calls f(step, nSteps).
func (f ProgressFunc) Report(step, nSteps int) { f(step, nSteps) }

// Forecast holds the output of Repeat.
type Forecast struct {
	// States holds nSteps+1 states. States[0] is the initial condition.
	States []*mat.Dense

	// Observations holds nSteps observations, where Observations[i]
	// is taken from States[i+1]. It is empty if no observation operator
	// was used.
	Observations []*mat.Dense
}

// Final returns the last state of the forecast.
func (f *Forecast) Final() *mat.Dense { return f.States[len(f.States)-1] }

// RepeatOption configures an optional behavior of Repeat.
type RepeatOption func(*repeatConfig)

type repeatConfig struct {
	observe  ObservationOperator
	progress ProgressReporter
}

// WithObservations specifies that obs should be applied to every state
// after the initial condition.
func WithObservations(obs ObservationOperator) RepeatOption {
	return func(c *repeatConfig) { c.observe = obs }
}

// WithProgress specifies that p should be notified after every step.
func WithProgress(p ProgressReporter) RepeatOption {
	return func(c *repeatConfig) { c.progress = p }
}

// Repeat recursively applies step to x0 nSteps times with time increment dt.
// The returned states include a copy of x0, so that, when an observation
// operator is given, len(States) == len(Observations) + 1.
//
// Any error returned by step or by the observation operator aborts the
// forecast; it is returned wrapped and no partial forecast is returned.
func Repeat(step StepOperator, nSteps int, x0 *mat.Dense, dt float64, opts ...RepeatOption) (*Forecast, error) {
	if nSteps < 0 {
		return nil, fmt.Errorf("ensflow: forecast: negative number of steps (%d)", nSteps)
	}
	if x0 == nil || x0.IsEmpty() {
		return nil, fmt.Errorf("ensflow: forecast: empty initial state")
	}
	cfg := new(repeatConfig)
	for _, o := range opts {
		o(cfg)
	}

	r, c := x0.Dims()
	f := &Forecast{States: make([]*mat.Dense, nSteps+1)}
	f.States[0] = mat.DenseCopyOf(x0)

	for i := 0; i < nSteps; i++ {
		x, err := step.Step(f.States[i], dt)
		if err != nil {
			return nil, fmt.Errorf("ensflow: forecast step %d: %w", i+1, err)
		}
		if x == nil {
			return nil, fmt.Errorf("ensflow: forecast step %d: step returned no state", i+1)
		}
		if xr, xc := x.Dims(); xr != r || xc != c {
			return nil, fmt.Errorf("ensflow: forecast step %d: state shape changed from %dx%d to %dx%d",
				i+1, r, c, xr, xc)
		}
		f.States[i+1] = mat.DenseCopyOf(x)
		if cfg.progress != nil {
			cfg.progress.Report(i+1, nSteps)
		}
	}

	if cfg.observe == nil {
		return f, nil
	}
	f.Observations = make([]*mat.Dense, nSteps)
	for i := 0; i < nSteps; i++ {
		y, err := cfg.observe.Observe(f.States[i+1])
		if err != nil {
			return nil, fmt.Errorf("ensflow: observing step %d: %w", i+1, err)
		}
		if y == nil {
			return nil, fmt.Errorf("ensflow: observing step %d: no observation returned", i+1)
		}
		f.Observations[i] = mat.DenseCopyOf(y)
	}
	return f, nil
}

// LogProgress returns a progress reporter that writes a status message
// to log every `every` steps and after the last step.
func LogProgress(log logrus.FieldLogger, every int) ProgressReporter {
	if every < 1 {
		every = 1
	}
	startTime := time.Now()
	stepTime := time.Now()
	return ProgressFunc(func(step, nSteps int) {
		if step%every != 0 && step != nSteps {
			return
		}
		log.WithFields(logrus.Fields{
			"step":      step,
			"nSteps":    nSteps,
			"walltime":  time.Since(startTime).String(),
			"Δwalltime": time.Since(stepTime).String(),
		}).Info("simulation")
		stepTime = time.Now()
	})
}
