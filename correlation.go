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

	"github.com/spatialmodel/ensflow/ensemble"
	"gonum.org/v1/gonum/mat"
)

// CorrelationMap returns the correlation, across the members of ensemble e,
// between the value in the reference column ref and the value in every
// column. Rows of e are members and columns are grid cells. Cells with no
// spread have a correlation of NaN.
func CorrelationMap(e mat.Matrix, ref int) ([]float64, error) {
	r, c := e.Dims()
	if ref < 0 || ref >= c {
		return nil, fmt.Errorf("ensflow: correlation map: reference cell %d out of range [0, %d)", ref, c)
	}
	if r < 2 {
		return nil, fmt.Errorf("ensflow: correlation map: %d members: %w", r, ensemble.ErrTooFewMembers)
	}
	b := mat.NewDense(r, 1, mat.Col(nil, ref, e))
	corr, err := ensemble.CrossCorr(e, b)
	if err != nil {
		return nil, fmt.Errorf("ensflow: correlation map: %w", err)
	}
	return mat.Col(nil, 0, corr), nil
}

// CorrelationMapAt is like CorrelationMap, with the reference
// cell being the node nearest to (x, y).
func (g *Grid) CorrelationMapAt(e mat.Matrix, x, y float64) ([]float64, error) {
	if _, c := e.Dims(); c != g.M() {
		return nil, fmt.Errorf("ensflow: correlation map: ensemble has %d variables but the grid has %d cells", c, g.M())
	}
	return CorrelationMap(e, g.CoordinateToIndex(x, y))
}

// CorrelationMaps returns a correlation map relative to (x, y) for each of
// the labelled ensembles. Entries with a single member (e.g., a truth or a
// mean field) carry no correlation information and are skipped.
func (g *Grid) CorrelationMaps(ensembles map[string]mat.Matrix, x, y float64) (map[string][]float64, error) {
	o := make(map[string][]float64)
	for label, e := range ensembles {
		if rows(e) < 2 {
			continue
		}
		m, err := g.CorrelationMapAt(e, x, y)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		o[label] = m
	}
	return o, nil
}

func rows(m mat.Matrix) int {
	r, _ := m.Dims()
	return r
}
