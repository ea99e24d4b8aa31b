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

// SquareSum returns the sum of the squares of the elements of m.
func SquareSum(m mat.Matrix) float64 {
	r, c := m.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			sum += v * v
		}
	}
	return sum
}

// Norm returns sqrt(mean(x²)). Unlike the Euclidean norm it does not
// grow with the length of x, so values are comparable between state
// vectors of different sizes.
func Norm(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// RMS holds the RMS error and spread of an ensemble.
type RMS struct {
	// RMSE is the RMS deviation of the ensemble mean from the truth.
	RMSE float64

	// RMSD is the RMS deviation of the members from the ensemble mean.
	RMSD float64
}

// NewRMS computes the RMS error and spread of ensemble e with respect
// to truth, which must have one element per column of e. Both use the
// per-element normalization of Norm.
func NewRMS(truth []float64, e mat.Matrix) (RMS, error) {
	r, c := e.Dims()
	if r == 0 {
		return RMS{}, fmt.Errorf("ensemble: RMS: empty ensemble")
	}
	if len(truth) != c {
		return RMS{}, fmt.Errorf("ensemble: RMS: truth has %d variables but the ensemble has %d", len(truth), c)
	}
	mean := Mean(e)
	dev := mat.DenseCopyOf(e)
	for i := 0; i < r; i++ {
		row := dev.RawRowView(i)
		floats.Sub(row, mean)
	}
	bias := make([]float64, c)
	floats.SubTo(bias, truth, mean)
	return RMS{
		RMSE: Norm(bias),
		RMSD: math.Sqrt(SquareSum(dev) / float64(r*c)),
	}, nil
}

func (r RMS) String() string {
	return fmt.Sprintf("%6.4f (rmse),  %6.4f (std)", r.RMSE, r.RMSD)
}

// RMSAll computes the RMS error and spread of each of the labelled
// ensembles with respect to truth.
func RMSAll(truth []float64, ensembles map[string]mat.Matrix) (map[string]RMS, error) {
	o := make(map[string]RMS, len(ensembles))
	for label, e := range ensembles {
		r, err := NewRMS(truth, e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		o[label] = r
	}
	return o, nil
}
