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

// Package ensemble provides statistics for ensembles of model states:
// anomalies, inflation, cross-covariances and correlations, singular value
// and eigenvalue helpers, and RMS error and spread diagnostics.
//
// Ensembles are matrices whose rows are members (realizations) and whose
// columns are variables. Inputs are never modified; all results are
// newly allocated.
package ensemble

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrTooFewMembers is returned when an ensemble has too few members
	// for the variance to be defined.
	ErrTooFewMembers = errors.New("ensemble needs at least two members")

	// ErrMemberMismatch is returned when two ensembles that must
	// share members have different numbers of them.
	ErrMemberMismatch = errors.New("ensembles have different numbers of members")
)

// Axis specifies the matrix dimension that holds the ensemble members.
type Axis int

const (
	// Members specifies that rows are members, which is the
	// convention used throughout this package.
	Members Axis = iota

	// Variables specifies that columns are members.
	Variables
)

// Center returns the anomalies of e, i.e. e minus its mean along axis,
// and the mean itself. If rescale is true, the anomalies are multiplied by
// sqrt(N/(N-1)), where N is the ensemble size, to compensate for the
// reduction in expected variance caused by subtracting the sample mean.
func Center(e mat.Matrix, axis Axis, rescale bool) (anomalies *mat.Dense, mean []float64, err error) {
	r, c := e.Dims()
	var n int
	switch axis {
	case Members:
		n = r
	case Variables:
		n = c
	default:
		return nil, nil, fmt.Errorf("ensemble: invalid axis %d", axis)
	}
	if n <= 1 {
		return nil, nil, fmt.Errorf("ensemble: centering %d members: %w", n, ErrTooFewMembers)
	}

	anomalies = mat.DenseCopyOf(e)
	if axis == Members {
		mean = Mean(e)
		for i := 0; i < r; i++ {
			row := anomalies.RawRowView(i)
			for j := range row {
				row[j] -= mean[j]
			}
		}
	} else {
		mean = make([]float64, r)
		for i := range mean {
			row := anomalies.RawRowView(i)
			mean[i] = stat.Mean(row, nil)
			for j := range row {
				row[j] -= mean[i]
			}
		}
	}

	if rescale {
		anomalies.Scale(math.Sqrt(float64(n)/float64(n-1)), anomalies)
	}
	return anomalies, mean, nil
}

// Mean0 is like Center but only returns the anomalies. Rescaling is
// typically wanted when centering observation perturbations.
func Mean0(e mat.Matrix, axis Axis, rescale bool) (*mat.Dense, error) {
	a, _, err := Center(e, axis, rescale)
	return a, err
}

// Inflate returns e with its anomalies multiplied by factor and
// recombined with the unchanged ensemble mean. It counteracts the
// collapse of ensemble spread over repeated forecast cycles.
// A factor of 1 returns a copy of e.
func Inflate(e mat.Matrix, factor float64) (*mat.Dense, error) {
	if factor == 1 {
		return mat.DenseCopyOf(e), nil
	}
	a, mean, err := Center(e, Members, false)
	if err != nil {
		return nil, fmt.Errorf("ensemble: inflating: %w", err)
	}
	a.Scale(factor, a)
	addRow(a, mean)
	return a, nil
}

// addRow adds v to every row of m in place.
func addRow(m *mat.Dense, v []float64) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := range row {
			row[j] += v[j]
		}
	}
}

// Mean returns the ensemble mean of e.
func Mean(e mat.Matrix) []float64 {
	r, c := e.Dims()
	mean := make([]float64, c)
	col := make([]float64, r)
	for j := range mean {
		mean[j] = stat.Mean(mat.Col(col, j, e), nil)
	}
	return mean
}
