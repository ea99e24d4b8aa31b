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
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Sample draws n members from the multivariate normal distribution with
// the given mean and covariance. It returns an error if cov is not
// positive definite.
func Sample(mean []float64, cov mat.Symmetric, n int, src rand.Source) (*mat.Dense, error) {
	if n < 1 {
		return nil, fmt.Errorf("ensemble: sampling %d members", n)
	}
	if cov.SymmetricDim() != len(mean) {
		return nil, fmt.Errorf("ensemble: sampling: mean has %d variables but covariance has %d",
			len(mean), cov.SymmetricDim())
	}
	dist, ok := distmv.NewNormal(mean, cov, src)
	if !ok {
		return nil, errors.New("ensemble: sampling: covariance matrix is not positive definite")
	}
	o := mat.NewDense(n, len(mean), nil)
	for i := 0; i < n; i++ {
		dist.Rand(o.RawRowView(i))
	}
	return o, nil
}

// PerturbObservations returns n perturbed copies of the observation
// vector y. The perturbations are drawn from N(0, cov) and then centered
// and rescaled, so that they have exactly zero mean without losing
// expected variance.
func PerturbObservations(y []float64, cov mat.Symmetric, n int, src rand.Source) (*mat.Dense, error) {
	d, err := Sample(make([]float64, len(y)), cov, n, src)
	if err != nil {
		return nil, err
	}
	d, err = Mean0(d, Members, true)
	if err != nil {
		return nil, fmt.Errorf("ensemble: perturbing observations: %w", err)
	}
	addRow(d, y)
	return d, nil
}
