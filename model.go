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
	"math"

	"github.com/ctessum/geom"
)

// Fluid holds the properties of the two fluid phases.
type Fluid struct {
	Vw, Vo   float64 // water and oil viscosities
	Swc, Sor float64 // irreducible water and residual oil saturations
}

// Validate returns an error if the fluid properties are not physical.
func (f Fluid) Validate() error {
	if !(f.Vw > 0) || !(f.Vo > 0) {
		return fmt.Errorf("ensflow: viscosities must be positive but are (%g, %g)", f.Vw, f.Vo)
	}
	if f.Swc < 0 || f.Sor < 0 || f.Swc+f.Sor >= 1 {
		return fmt.Errorf("ensflow: invalid saturation endpoints Swc=%g, Sor=%g", f.Swc, f.Sor)
	}
	return nil
}

// GridConfig specifies the grid resolution and extent.
type GridConfig struct {
	Nx, Ny int
	Dx, Dy float64
}

// RockConfig specifies uniform rock properties.
type RockConfig struct {
	Permeability float64
	Porosity     float64
}

// WellConfig specifies the well layout, in relative coordinates.
type WellConfig struct {
	Injectors WellSet
	Producers WellSet
}

// ForecastConfig holds the settings of a forecast experiment.
type ForecastConfig struct {
	// NSteps is the number of time steps and Dt is the time step length.
	NSteps int
	Dt     float64

	// EnsembleSize is the number of members in the forecast ensemble.
	EnsembleSize int

	// Seed seeds the random number generator used to sample
	// the truth and the initial ensemble.
	Seed uint64

	// Sigma and CorrelationLength specify the prior standard
	// deviation and spatial correlation length of the initial state.
	Sigma, CorrelationLength float64

	// ReferenceX and ReferenceY give the physical location of the
	// reference point for correlation maps.
	ReferenceX, ReferenceY float64
}

// Config holds the complete configuration of an experiment.
type Config struct {
	Grid     GridConfig
	Fluid    Fluid
	Rock     RockConfig
	Wells    WellConfig
	Forecast ForecastConfig
}

// DefaultConfig returns the standard configuration: a 32x32 grid
// on the unit square with unit viscosities, zero irreducible
// saturations and unit permeability and porosity. An injector in one
// corner and a producer in the opposite corner complete the setup.
func DefaultConfig() *Config {
	return &Config{
		Grid:  GridConfig{Nx: 32, Ny: 32, Dx: 1, Dy: 1},
		Fluid: Fluid{Vw: 1, Vo: 1, Swc: 0, Sor: 0},
		Rock:  RockConfig{Permeability: 1, Porosity: 1},
		Wells: WellConfig{
			Injectors: WellSet{{Point: geom.Point{X: 0, Y: 0}, Rate: 1}},
			Producers: WellSet{{Point: geom.Point{X: 1, Y: 1}, Rate: 1}},
		},
		Forecast: ForecastConfig{
			NSteps:            250,
			Dt:                0.0008,
			EnsembleSize:      20,
			Seed:              1,
			Sigma:             0.1,
			CorrelationLength: 0.2,
			ReferenceX:        0.5,
			ReferenceY:        0.5,
		},
	}
}

// Rock holds the per-cell rock properties.
type Rock struct {
	// Permeability holds the x and y components of the permeability
	// in each grid cell.
	Permeability [2][]float64

	// Porosity holds the porosity in each grid cell.
	Porosity []float64
}

// MeanPermeability returns the arithmetic mean permeability
// over both components and all cells.
func (r *Rock) MeanPermeability() float64 {
	var sum float64
	var n int
	for _, k := range r.Permeability {
		for _, v := range k {
			sum += v
		}
		n += len(k)
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Model is the static problem definition built from a Config.
// It should not be modified after creation.
type Model struct {
	Grid   *Grid
	Fluid  Fluid
	Rock   Rock
	Source *SourceTerm
}

// NewModel validates cfg and builds the grid, the rock properties
// and the well source term.
func NewModel(cfg *Config) (*Model, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ensflow: nil configuration")
	}
	g, err := NewGrid(cfg.Grid.Nx, cfg.Grid.Ny, cfg.Grid.Dx, cfg.Grid.Dy)
	if err != nil {
		return nil, err
	}
	if err := cfg.Fluid.Validate(); err != nil {
		return nil, err
	}
	if !(cfg.Rock.Permeability > 0) || !(cfg.Rock.Porosity > 0) || cfg.Rock.Porosity > 1 {
		return nil, fmt.Errorf("ensflow: invalid rock properties: permeability=%g, porosity=%g",
			cfg.Rock.Permeability, cfg.Rock.Porosity)
	}
	src, err := g.BuildSourceTerm(cfg.Wells.Injectors, cfg.Wells.Producers)
	if err != nil {
		return nil, err
	}
	return &Model{
		Grid:  g,
		Fluid: cfg.Fluid,
		Rock: Rock{
			Permeability: [2][]float64{
				uniform(g.M(), cfg.Rock.Permeability),
				uniform(g.M(), cfg.Rock.Permeability),
			},
			Porosity: uniform(g.M(), cfg.Rock.Porosity),
		},
		Source: src,
	}, nil
}

func uniform(n int, v float64) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = v
	}
	return o
}
