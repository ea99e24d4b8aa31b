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

package ensemble

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CrossCov returns the sample cross-covariance between the variables of
// ensembles a and b, which must have the same number of members (rows).
// Element (i, j) of the result is the covariance between column i of a
// and column j of b.
func CrossCov(a, b mat.Matrix) (*mat.Dense, error) {
	aa, bb, n, err := anomalyPair(a, b)
	if err != nil {
		return nil, fmt.Errorf("ensemble: covariance: %w", err)
	}
	var c mat.Dense
	c.Mul(aa.T(), bb)
	c.Scale(1/float64(n-1), &c)
	return &c, nil
}

// CrossCorr returns the sample cross-correlation between the variables of
// ensembles a and b. It is CrossCov normalized by the sample standard
// deviations of the variables. Variables without spread have a
// correlation of NaN.
func CrossCorr(a, b mat.Matrix) (*mat.Dense, error) {
	aa, bb, n, err := anomalyPair(a, b)
	if err != nil {
		return nil, fmt.Errorf("ensemble: correlation: %w", err)
	}
	var c mat.Dense
	c.Mul(aa.T(), bb)
	c.Scale(1/float64(n-1), &c)

	sa := stdDevs(aa, n)
	sb := stdDevs(bb, n)
	r, _ := c.Dims()
	for i := 0; i < r; i++ {
		row := c.RawRowView(i)
		for j := range row {
			row[j] /= sa[i] * sb[j]
		}
	}
	return &c, nil
}

func anomalyPair(a, b mat.Matrix) (aa, bb *mat.Dense, n int, err error) {
	ra, _ := a.Dims()
	rb, _ := b.Dims()
	if ra != rb {
		return nil, nil, 0, fmt.Errorf("%d != %d: %w", ra, rb, ErrMemberMismatch)
	}
	if aa, _, err = Center(a, Members, false); err != nil {
		return nil, nil, 0, err
	}
	if bb, _, err = Center(b, Members, false); err != nil {
		return nil, nil, 0, err
	}
	return aa, bb, ra, nil
}

// stdDevs returns the sample standard deviation of each column
// of the anomaly matrix a, using n-1 degrees of freedom.
func stdDevs(a *mat.Dense, n int) []float64 {
	_, c := a.Dims()
	o := make([]float64, c)
	col := make([]float64, n)
	for j := range o {
		mat.Col(col, j, a)
		o[j] = math.Sqrt(floats.Dot(col, col) / float64(n-1))
	}
	return o
}
