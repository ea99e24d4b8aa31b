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

package ensflowutil

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ensflow"
	"github.com/spatialmodel/ensflow/ensemble"
	"github.com/spatialmodel/ensflow/internal/hash"
	"github.com/spatialmodel/ensflow/science/flow/simpleflow"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Source writes the normalized wells, in coordinate type c, and the
// non-zero entries of the source term built from cfg to w.
func Source(w io.Writer, cfg *ensflow.Config, c ensflow.CoordType) error {
	m, err := ensflow.NewModel(cfg)
	if err != nil {
		return err
	}
	g, s := m.Grid, m.Source
	for _, set := range []struct {
		name  string
		wells ensflow.WellSet
		cells []int
	}{
		{name: "injector", wells: s.Injectors, cells: s.InjectorCells(g)},
		{name: "producer", wells: s.Producers, cells: s.ProducerCells(g)},
	} {
		scaled, err := g.ScaleWellGeometry(set.wells, c)
		if err != nil {
			return err
		}
		for i, well := range scaled {
			fmt.Fprintf(w, "%s %d: (%g, %g) %s, rate %g, cell %d\n",
				set.name, i, well.X, well.Y, c, well.Rate, set.cells[i])
		}
	}
	for i, q := range s.Q {
		if q != 0 {
			fmt.Fprintf(w, "cell %d: %g\n", i, q)
		}
	}
	return nil
}

// RunOptions holds settings for Forecast that are specific to
// the reference flow model.
type RunOptions struct {
	// Inflation multiplies the spread of the initial ensemble.
	Inflation float64

	// Diffusivity is the diffusivity of the flow model.
	Diffusivity float64

	// LogEvery is the number of steps between progress messages.
	LogEvery int
}

// StepRMS is the ensemble error and spread at one time step.
type StepRMS struct {
	Step int
	ensemble.RMS
}

// Summary holds the results of a forecast experiment.
type Summary struct {
	// Key identifies the configuration and options of the experiment.
	Key string

	Grid         ensflow.GridConfig
	NSteps       int
	Dt           float64
	EnsembleSize int

	// State holds the saturation error and spread at each step,
	// including the initial condition.
	State []StepRMS

	// Production holds the error and spread of the production
	// observations at each step after the initial condition.
	Production []StepRMS

	// Final compares the forecast and the initial (persistence)
	// ensembles to the final truth.
	Final map[string]ensemble.RMS

	// Correlation holds, for the prior and forecast ensembles, the
	// correlation of every grid cell with the reference point.
	Correlation map[string]floatsOrNull

	// SingularValues are the singular values of the final
	// ensemble anomalies.
	SingularValues []float64
}

// floatsOrNull encodes NaN values as JSON null.
type floatsOrNull []float64

func (f floatsOrNull) MarshalJSON() ([]byte, error) {
	o := make([]*float64, len(f))
	for i := range f {
		if !math.IsNaN(f[i]) && !math.IsInf(f[i], 0) {
			o[i] = &f[i]
		}
	}
	return json.Marshal(o)
}

// WriteJSON writes s to w in indented JSON format.
func (s *Summary) WriteJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(s)
}

// experiment is the identity of a forecast run.
type experiment struct {
	Config  *ensflow.Config
	Options RunOptions
}

// Forecast samples a truth and an initial ensemble from the prior
// specified by cfg, runs both forward with the reference flow model
// and summarizes the ensemble statistics.
func Forecast(cfg *ensflow.Config, opts RunOptions, log logrus.FieldLogger) (*Summary, error) {
	m, err := ensflow.NewModel(cfg)
	if err != nil {
		return nil, err
	}
	flow := simpleflow.New(m)
	if opts.Diffusivity > 0 {
		flow.Diffusivity = opts.Diffusivity
	}
	if opts.Inflation == 0 {
		opts.Inflation = 1
	}
	fc := cfg.Forecast
	n := fc.EnsembleSize

	log.WithFields(logrus.Fields{
		"cells":   m.Grid.M(),
		"members": n,
		"nSteps":  fc.NSteps,
		"dt":      fc.Dt,
		"maxDt":   flow.MaxTimeStep(),
	}).Info("starting forecast")

	// The prior is centered between the irreducible water saturation and
	// two standard deviations above it, so few samples need clamping.
	mean := make([]float64, m.Grid.M())
	for i := range mean {
		mean[i] = cfg.Fluid.Swc + 2*fc.Sigma
	}
	cov := m.Grid.ExponentialCovariance(fc.Sigma*fc.Sigma, fc.CorrelationLength)
	samples, err := ensemble.Sample(mean, cov, n+1, rand.NewSource(fc.Seed))
	if err != nil {
		return nil, err
	}
	truth := mat.DenseCopyOf(samples.Slice(0, 1, 0, m.Grid.M()))
	prior := mat.DenseCopyOf(samples.Slice(1, n+1, 0, m.Grid.M()))
	if prior, err = ensemble.Inflate(prior, opts.Inflation); err != nil {
		return nil, err
	}
	flow.Clamp(truth)
	flow.Clamp(prior)

	obs := simpleflow.NewProduction(m)
	truthRun, err := ensflow.Repeat(flow, fc.NSteps, truth, fc.Dt, ensflow.WithObservations(obs))
	if err != nil {
		return nil, fmt.Errorf("ensflow: truth run: %w", err)
	}
	ensRun, err := ensflow.Repeat(flow, fc.NSteps, prior, fc.Dt,
		ensflow.WithObservations(obs),
		ensflow.WithProgress(ensflow.LogProgress(log.WithField("run", "ensemble"), opts.LogEvery)))
	if err != nil {
		return nil, fmt.Errorf("ensflow: ensemble run: %w", err)
	}

	s := &Summary{
		Key:          hash.Key(experiment{Config: cfg, Options: opts}),
		Grid:         cfg.Grid,
		NSteps:       fc.NSteps,
		Dt:           fc.Dt,
		EnsembleSize: n,
	}
	for i, x := range ensRun.States {
		r, err := ensemble.NewRMS(truthRun.States[i].RawRowView(0), x)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"step": i, "rmse": r.RMSE, "rmsd": r.RMSD}).Debug("saturation")
		s.State = append(s.State, StepRMS{Step: i, RMS: r})
	}
	for i, y := range ensRun.Observations {
		r, err := ensemble.NewRMS(truthRun.Observations[i].RawRowView(0), y)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"step": i + 1, "rmse": r.RMSE, "rmsd": r.RMSD}).Debug("production")
		s.Production = append(s.Production, StepRMS{Step: i + 1, RMS: r})
	}

	final := ensRun.Final()
	s.Final, err = ensemble.RMSAll(truthRun.Final().RawRowView(0), map[string]mat.Matrix{
		"Forecast":    final,
		"Persistence": ensRun.States[0],
	})
	if err != nil {
		return nil, err
	}
	for label, r := range s.Final {
		log.WithField("ensemble", label).Infof("final state error: %v", r)
	}

	corr, err := m.Grid.CorrelationMaps(map[string]mat.Matrix{
		"Prior":    ensRun.States[0],
		"Forecast": final,
		"Truth":    truthRun.Final(),
	}, fc.ReferenceX, fc.ReferenceY)
	if err != nil {
		return nil, err
	}
	s.Correlation = make(map[string]floatsOrNull, len(corr))
	for label, c := range corr {
		s.Correlation[label] = c
	}

	anomalies, err := ensemble.Mean0(final, ensemble.Members, false)
	if err != nil {
		return nil, err
	}
	_, sv, _, err := ensemble.SVD0(anomalies)
	if err != nil {
		return nil, err
	}
	s.SingularValues = ensemble.Pad0(sv, n)
	return s, nil
}
