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
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestSample(t *testing.T) {
	mean := []float64{1, -1}
	cov := mat.NewSymDense(2, []float64{
		1, 0.5,
		0.5, 2,
	})
	const n = 5000
	e, err := Sample(mean, cov, n, rand.NewSource(1))
	if err != nil {
		t.Fatal(err)
	}
	if r, c := e.Dims(); r != n || c != 2 {
		t.Fatalf("dims: have (%d,%d), want (%d,2)", r, c, n)
	}
	m := Mean(e)
	for i := range mean {
		if different(m[i], mean[i], 0.1) {
			t.Errorf("mean %d: have %g, want %g", i, m[i], mean[i])
		}
	}
	var c mat.SymDense
	stat.CovarianceMatrix(&c, e, nil)
	if !mat.EqualApprox(&c, cov, 0.2) {
		t.Errorf("covariance: have %v, want %v", mat.Formatted(&c), mat.Formatted(cov))
	}
}

func TestSampleErrors(t *testing.T) {
	notPD := mat.NewSymDense(2, []float64{
		1, 2,
		2, 1,
	})
	if _, err := Sample([]float64{0, 0}, notPD, 3, rand.NewSource(1)); err == nil {
		t.Error("non positive definite covariance should be an error")
	}
	eye := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	if _, err := Sample([]float64{0, 0, 0}, eye, 3, rand.NewSource(1)); err == nil {
		t.Error("dimension mismatch should be an error")
	}
	if _, err := Sample([]float64{0, 0}, eye, 0, rand.NewSource(1)); err == nil {
		t.Error("zero members should be an error")
	}
}

func TestPerturbObservations(t *testing.T) {
	y := []float64{0.3, 0.7, 0.1}
	cov := mat.NewSymDense(3, []float64{
		0.01, 0, 0,
		0, 0.01, 0,
		0, 0, 0.01,
	})
	d, err := PerturbObservations(y, cov, 10, rand.NewSource(2))
	if err != nil {
		t.Fatal(err)
	}
	m := Mean(d)
	for i := range y {
		if different(m[i], y[i], testTolerance) {
			t.Errorf("mean %d: have %g, want %g", i, m[i], y[i])
		}
	}
	if mat.Max(d) == mat.Min(d) {
		t.Error("observations were not perturbed")
	}
}
