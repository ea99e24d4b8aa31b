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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Grid is a two-dimensional structured grid with Nx by Ny nodes
// covering the rectangle [0, Dx] × [0, Dy]. x is the first coordinate
// and y the second. A Grid should be created with NewGrid and
// not modified afterwards.
type Grid struct {
	Nx, Ny int     // number of nodes along x and y
	Dx, Dy float64 // physical extents along x and y
}

// NewGrid returns a new grid, or an error if the resolution
// or the extents are invalid.
func NewGrid(nx, ny int, dx, dy float64) (*Grid, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("ensflow: grid resolution must be at least 1x1 but is %dx%d", nx, ny)
	}
	for _, v := range []float64{dx, dy} {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("ensflow: grid extents must be positive and finite but are (%g, %g)", dx, dy)
		}
	}
	return &Grid{Nx: nx, Ny: ny, Dx: dx, Dy: dy}, nil
}

// M returns the number of grid cells.
func (g *Grid) M() int { return g.Nx * g.Ny }

// Shape returns the grid resolution.
func (g *Grid) Shape() (nx, ny int) { return g.Nx, g.Ny }

// CellSize returns the cell edge lengths.
func (g *Grid) CellSize() (hx, hy float64) {
	return g.Dx / float64(g.Nx), g.Dy / float64(g.Ny)
}

// CellVolume returns the cell area (the volume of a unit-thickness cell).
func (g *Grid) CellVolume() float64 {
	hx, hy := g.CellSize()
	return hx * hy
}

// SubToIndex flattens the node subscript (ix, iy) into a linear
// cell index. The layout is row-major with x as the slow axis.
func (g *Grid) SubToIndex(ix, iy int) int {
	return ix*g.Ny + iy
}

// IndexToSub is the inverse of SubToIndex.
func (g *Grid) IndexToSub(i int) (ix, iy int) {
	return i / g.Ny, i % g.Ny
}

// Sub returns the subscript of the grid node nearest to (x, y).
// Subscripts falling outside of the grid are clamped to its edge.
func (g *Grid) Sub(x, y float64) (ix, iy int) {
	ix = clampInt(roundToInt(x/g.Dx*float64(g.Nx-1)), 0, g.Nx-1)
	iy = clampInt(roundToInt(y/g.Dy*float64(g.Ny-1)), 0, g.Ny-1)
	return
}

// CoordinateToIndex returns the index of the grid node nearest
// to the physical coordinate (x, y). Coordinates outside of the
// domain are not an error; they map to the nearest edge node. Use
// Contains to detect them.
func (g *Grid) CoordinateToIndex(x, y float64) int {
	return g.SubToIndex(g.Sub(x, y))
}

// IndexToCoordinate returns the physical coordinate of the node
// with index i. Because CoordinateToIndex rounds, the round trip
// is exact only for node coordinates.
func (g *Grid) IndexToCoordinate(i int) geom.Point {
	ix, iy := g.IndexToSub(i)
	return geom.Point{
		X: nodeCoord(ix, g.Nx, g.Dx),
		Y: nodeCoord(iy, g.Ny, g.Dy),
	}
}

// Contains returns whether (x, y) lies within the grid domain.
func (g *Grid) Contains(x, y float64) bool {
	return x >= 0 && x <= g.Dx && y >= 0 && y <= g.Dy
}

// Bounds returns the spatial extent of the grid.
func (g *Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: 0, Y: 0},
		Max: geom.Point{X: g.Dx, Y: g.Dy},
	}
}

// CellCenters returns the x and y coordinates of the finite-volume
// cell centers, which is where field values are located when
// drawn as contours.
func (g *Grid) CellCenters() (xx, yy []float64) {
	hx, hy := g.CellSize()
	return centers(g.Nx, g.Dx, hx), centers(g.Ny, g.Dy, hy)
}

func centers(n int, d, h float64) []float64 {
	if n == 1 {
		return []float64{h / 2}
	}
	return floats.Span(make([]float64, n), h/2, d-h/2)
}

// CellPolygon returns the outline of finite-volume cell i.
func (g *Grid) CellPolygon(i int) geom.Polygon {
	hx, hy := g.CellSize()
	ix, iy := g.IndexToSub(i)
	x0, y0 := float64(ix)*hx, float64(iy)*hy
	return geom.Polygon{{
		{X: x0, Y: y0},
		{X: x0 + hx, Y: y0},
		{X: x0 + hx, Y: y0 + hy},
		{X: x0, Y: y0 + hy},
		{X: x0, Y: y0},
	}}
}

// ExponentialCovariance returns the covariance matrix between all
// grid nodes for a field with the given point variance and an
// exponential correlation function with the given length scale.
// Such matrices are positive definite and are used as priors when
// sampling initial ensembles. ExponentialCovariance panics if variance
// is negative or length is not positive.
func (g *Grid) ExponentialCovariance(variance, length float64) *mat.SymDense {
	if !(variance >= 0) || !(length > 0) {
		panic(fmt.Sprintf("ensflow: invalid covariance parameters: variance %g, length %g", variance, length))
	}
	m := g.M()
	c := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		pi := g.IndexToCoordinate(i)
		for j := i; j < m; j++ {
			pj := g.IndexToCoordinate(j)
			d := math.Hypot(pi.X-pj.X, pi.Y-pj.Y)
			c.SetSym(i, j, variance*math.Exp(-d/length))
		}
	}
	return c
}

func nodeCoord(i, n int, d float64) float64 {
	if n == 1 {
		return 0
	}
	return float64(i) / float64(n-1) * d
}

// roundToInt rounds half to even.
func roundToInt(v float64) int {
	return int(math.RoundToEven(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
