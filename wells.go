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
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// conservationTolerance is the largest absolute net source
// that is accepted as mass conserving.
const conservationTolerance = 1e-8

var (
	// ErrZeroRate is returned when the rates of a well set
	// do not have a finite, non-zero sum and therefore cannot be normalized.
	ErrZeroRate = errors.New("well rates do not have a finite non-zero sum")

	// ErrNotConservative is returned when the source term built from
	// a pair of well sets does not sum to zero.
	ErrNotConservative = errors.New("source term is not mass conserving")
)

// Well is a point source or sink. Its location is held in the embedded
// Point and Rate is its relative injection or production rate.
type Well struct {
	geom.Point
	Rate float64
}

// WellSet is an ordered set of wells of the same kind.
type WellSet []Well

// Rates returns the rates of the wells in ws.
func (ws WellSet) Rates() []float64 {
	r := make([]float64, len(ws))
	for i, w := range ws {
		r[i] = w.Rate
	}
	return r
}

// Copy returns a deep copy of ws.
func (ws WellSet) Copy() WellSet {
	if ws == nil {
		return nil
	}
	o := make(WellSet, len(ws))
	copy(o, ws)
	return o
}

// NormalizeWellSet converts ws, whose coordinates are given relative
// to the domain extents (i.e., within [0, 1]), to physical coordinates
// and rescales the rates so that they sum to 1. It returns an error
// if the set is empty, if a well lies outside of the domain, or if the
// rates cannot be normalized.
func (g *Grid) NormalizeWellSet(ws WellSet) (WellSet, error) {
	if len(ws) == 0 {
		return nil, fmt.Errorf("ensflow: normalizing well set: the set is empty")
	}
	sum := floats.Sum(ws.Rates())
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("ensflow: normalizing well set: rate sum %g: %w", sum, ErrZeroRate)
	}
	o := make(WellSet, len(ws))
	for i, w := range ws {
		if w.X < 0 || w.X > 1 || w.Y < 0 || w.Y > 1 {
			return nil, fmt.Errorf("ensflow: normalizing well set: well %d at relative "+
				"location (%g, %g) is outside of the domain", i, w.X, w.Y)
		}
		o[i] = Well{
			Point: geom.Point{X: w.X * g.Dx, Y: w.Y * g.Dy},
			Rate:  w.Rate / sum,
		}
	}
	return o, nil
}

// SourceTerm is the net fluid source in each grid cell resulting
// from a set of injectors and a set of producers.
type SourceTerm struct {
	// Injectors and Producers are the normalized well sets,
	// in physical coordinates.
	Injectors, Producers WellSet

	// Q holds the net source in each grid cell. Injection is
	// positive and production is negative.
	Q []float64
}

// BuildSourceTerm normalizes the injector and producer sets independently
// and accumulates their rates at the grid nodes nearest to each well.
// Because both sets are normalized to unit total rate, injection
// balances production; if the resulting field does not sum to zero
// ErrNotConservative is returned and the source term must not be used.
func (g *Grid) BuildSourceTerm(injectors, producers WellSet) (*SourceTerm, error) {
	inj, err := g.NormalizeWellSet(injectors)
	if err != nil {
		return nil, fmt.Errorf("ensflow: injectors: %w", err)
	}
	prod, err := g.NormalizeWellSet(producers)
	if err != nil {
		return nil, fmt.Errorf("ensflow: producers: %w", err)
	}

	q := make([]float64, g.M())
	for _, w := range inj {
		q[g.CoordinateToIndex(w.X, w.Y)] += w.Rate
	}
	for _, w := range prod {
		q[g.CoordinateToIndex(w.X, w.Y)] -= w.Rate
	}

	if sum := floats.Sum(q); !scalar.EqualWithinAbs(sum, 0, conservationTolerance) {
		return nil, fmt.Errorf("ensflow: net source %g: %w", sum, ErrNotConservative)
	}
	return &SourceTerm{Injectors: inj, Producers: prod, Q: q}, nil
}

// InjectorCells returns the grid cell index of each injector.
func (s *SourceTerm) InjectorCells(g *Grid) []int { return wellCells(g, s.Injectors) }

// ProducerCells returns the grid cell index of each producer.
func (s *SourceTerm) ProducerCells(g *Grid) []int { return wellCells(g, s.Producers) }

func wellCells(g *Grid, ws WellSet) []int {
	o := make([]int, len(ws))
	for i, w := range ws {
		o[i] = g.CoordinateToIndex(w.X, w.Y)
	}
	return o
}

// CoordType specifies the units that well locations are expressed in
// when handed to a plotting layer.
type CoordType int

// Coordinate types.
const (
	Relative CoordType = iota // fraction of the domain extent
	Absolute                  // physical units
	Index                     // grid cell units
)

func (c CoordType) String() string {
	switch c {
	case Relative:
		return "relative"
	case Absolute:
		return "absolute"
	case Index:
		return "index"
	default:
		return fmt.Sprintf("CoordType(%d)", int(c))
	}
}

// ScaleWellGeometry converts the physical well locations in ws
// to the given coordinate type. ws is not modified.
func (g *Grid) ScaleWellGeometry(ws WellSet, c CoordType) (WellSet, error) {
	var sx, sy float64
	switch c {
	case Relative:
		sx, sy = 1/g.Dx, 1/g.Dy
	case Absolute:
		sx, sy = 1, 1
	case Index:
		sx, sy = float64(g.Nx)/g.Dx, float64(g.Ny)/g.Dy
	default:
		return nil, fmt.Errorf("ensflow: invalid coordinate type %v", c)
	}
	o := ws.Copy()
	for i := range o {
		o[i].X *= sx
		o[i].Y *= sy
	}
	return o, nil
}
