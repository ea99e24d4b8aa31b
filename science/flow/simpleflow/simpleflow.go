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

// Package simpleflow contains a simplified saturation transport model
// that can be used to drive ensemble forecasts. Water saturation diffuses
// across the grid and is raised at injection wells; there is no pressure
// solve.
package simpleflow

import (
	"fmt"
	"math"

	"github.com/spatialmodel/ensflow"
	"gonum.org/v1/gonum/mat"
)

// DefaultDiffusivity is the diffusivity used by New.
const DefaultDiffusivity = 0.02

// Model fulfils the github.com/spatialmodel/ensflow.StepOperator
// interface. Rows of the state are ensemble members and columns are
// the water saturations in each grid cell.
type Model struct {
	Base *ensflow.Model

	// Diffusivity scales the rate at which saturation spreads.
	Diffusivity float64
}

// New returns a model with the default diffusivity.
func New(base *ensflow.Model) *Model {
	return &Model{Base: base, Diffusivity: DefaultDiffusivity}
}

// kappa returns the effective saturation diffusivity.
func (m *Model) kappa() float64 {
	return m.Diffusivity * m.Base.Rock.MeanPermeability() / (m.Base.Fluid.Vw + m.Base.Fluid.Vo)
}

// MaxTimeStep returns the largest time step for which Step is stable
// and keeps saturations bounded without clamping.
func (m *Model) MaxTimeStep() float64 {
	g := m.Base.Grid
	hx, hy := g.CellSize()
	var inj float64
	for i, q := range m.Base.Source.Q {
		if q > 0 {
			inj = math.Max(inj, q/(m.Base.Rock.Porosity[i]*g.CellVolume()))
		}
	}
	rate := 2*m.kappa()*(1/(hx*hx)+1/(hy*hy)) + inj
	if rate == 0 {
		return math.Inf(1)
	}
	return 1 / rate
}

// Step advances the saturation state by dt.
func (m *Model) Step(state *mat.Dense, dt float64) (*mat.Dense, error) {
	g := m.Base.Grid
	r, c := state.Dims()
	if c != g.M() {
		return nil, fmt.Errorf("simpleflow: state has %d columns but the grid has %d cells", c, g.M())
	}
	if !(dt >= 0) {
		return nil, fmt.Errorf("simpleflow: invalid time step %g", dt)
	}
	if maxDt := m.MaxTimeStep(); dt > maxDt {
		return nil, fmt.Errorf("simpleflow: time step %g exceeds the stability limit %g", dt, maxDt)
	}

	hx, hy := g.CellSize()
	k := m.kappa()
	q := m.Base.Source.Q
	phi := m.Base.Rock.Porosity
	vol := g.CellVolume()

	o := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		s := state.RawRowView(i)
		so := o.RawRowView(i)
		for ix := 0; ix < g.Nx; ix++ {
			for iy := 0; iy < g.Ny; iy++ {
				j := g.SubToIndex(ix, iy)
				// Neighbors across a closed boundary mirror the cell itself.
				west, east := s[j], s[j]
				south, north := s[j], s[j]
				if ix > 0 {
					west = s[g.SubToIndex(ix-1, iy)]
				}
				if ix < g.Nx-1 {
					east = s[g.SubToIndex(ix+1, iy)]
				}
				if iy > 0 {
					south = s[g.SubToIndex(ix, iy-1)]
				}
				if iy < g.Ny-1 {
					north = s[g.SubToIndex(ix, iy+1)]
				}
				lap := (west-2*s[j]+east)/(hx*hx) + (south-2*s[j]+north)/(hy*hy)
				ds := k * lap
				if q[j] > 0 {
					ds += q[j] * (1 - s[j]) / (phi[j] * vol)
				}
				so[j] = s[j] + dt*ds
			}
		}
	}
	m.Clamp(o)
	return o, nil
}

// Clamp limits the saturations in s to the mobile range
// [Swc, 1-Sor] in place.
func (m *Model) Clamp(s *mat.Dense) {
	lo, hi := m.Base.Fluid.Swc, 1-m.Base.Fluid.Sor
	s.Apply(func(_, _ int, v float64) float64 {
		return math.Min(math.Max(v, lo), hi)
	}, s)
}

// Production fulfils the github.com/spatialmodel/ensflow.ObservationOperator
// interface. It observes the saturation at the producer cells, which is
// what governs the water cut of each producer.
type Production struct {
	Producers []int
}

// NewProduction returns an observation operator for the producers of m.
func NewProduction(m *ensflow.Model) Production {
	return Production{Producers: m.Source.ProducerCells(m.Grid)}
}

// Observe returns one column per producer and one row per row of state.
func (p Production) Observe(state *mat.Dense) (*mat.Dense, error) {
	if len(p.Producers) == 0 {
		return nil, fmt.Errorf("simpleflow: no producers to observe")
	}
	r, c := state.Dims()
	o := mat.NewDense(r, len(p.Producers), nil)
	for j, cell := range p.Producers {
		if cell < 0 || cell >= c {
			return nil, fmt.Errorf("simpleflow: producer cell %d out of range [0, %d)", cell, c)
		}
		for i := 0; i < r; i++ {
			o.Set(i, j, state.At(i, cell))
		}
	}
	return o, nil
}
