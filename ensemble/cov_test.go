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
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestCrossCov(t *testing.T) {
	e := testEnsemble()
	c, err := CrossCov(e, e)
	if err != nil {
		t.Fatal(err)
	}

	var want mat.SymDense
	stat.CovarianceMatrix(&want, e, nil)
	if !mat.EqualApprox(c, &want, testTolerance) {
		t.Errorf("have %v, want %v", mat.Formatted(c), mat.Formatted(&want))
	}

	if !mat.EqualApprox(c, c.T(), testTolerance) {
		t.Error("covariance should be symmetric")
	}
	for i := 0; i < 3; i++ {
		if c.At(i, i) < 0 {
			t.Errorf("variance %d is negative: %g", i, c.At(i, i))
		}
	}
}

func TestCrossCovShape(t *testing.T) {
	e := testEnsemble()
	b := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	c, err := CrossCov(e, b)
	if err != nil {
		t.Fatal(err)
	}
	if r, cc := c.Dims(); r != 3 || cc != 1 {
		t.Errorf("dims should be (3,1) but are (%d,%d)", r, cc)
	}
	// Column 0 of e against b: anomalies (-0.8,0.7,-1.3,1.2,0.2)·(-2,-1,0,1,2)/4.
	if want := (1.6 - 0.7 + 0 + 1.2 + 0.4) / 4; different(c.At(0, 0), want, testTolerance) {
		t.Errorf("have %g, want %g", c.At(0, 0), want)
	}
}

func TestCrossCovMismatch(t *testing.T) {
	_, err := CrossCov(testEnsemble(), mat.NewDense(4, 1, []float64{1, 2, 3, 4}))
	if !errors.Is(err, ErrMemberMismatch) {
		t.Errorf("want ErrMemberMismatch, have %v", err)
	}
	_, err = CrossCorr(testEnsemble(), mat.NewDense(4, 1, []float64{1, 2, 3, 4}))
	if !errors.Is(err, ErrMemberMismatch) {
		t.Errorf("want ErrMemberMismatch, have %v", err)
	}
}

func TestCrossCorr(t *testing.T) {
	e := testEnsemble()
	c, err := CrossCorr(e, e)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if different(c.At(i, i), 1, testTolerance) {
			t.Errorf("self correlation %d should be 1 but is %g", i, c.At(i, i))
		}
		for j := 0; j < 3; j++ {
			if v := c.At(i, j); v < -1-testTolerance || v > 1+testTolerance {
				t.Errorf("correlation (%d,%d) = %g is out of range", i, j, v)
			}
		}
	}

	// Perfectly anti-correlated.
	a := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	b := mat.NewDense(4, 1, []float64{8, 6, 4, 2})
	c, err = CrossCorr(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if different(c.At(0, 0), -1, testTolerance) {
		t.Errorf("have %g, want -1", c.At(0, 0))
	}
}

// Element (i, j) must pair column i of a with column j of b, which only
// shows when the two ensembles have different widths.
func TestCrossCorrRectangular(t *testing.T) {
	a := mat.NewDense(5, 2, []float64{
		1.0, 3.0,
		2.0, 1.0,
		4.0, 0.5,
		3.5, 2.0,
		0.5, 4.5,
	})
	b := mat.NewDense(5, 3, []float64{
		10, 0.2, -1,
		12, 0.1, 0,
		9, 0.9, 4,
		15, 0.4, 2,
		11, 0.3, -3,
	})
	c, err := CrossCorr(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if r, cc := c.Dims(); r != 2 || cc != 3 {
		t.Fatalf("dims should be (2,3) but are (%d,%d)", r, cc)
	}
	for i := 0; i < 2; i++ {
		x := mat.Col(nil, i, a)
		for j := 0; j < 3; j++ {
			y := mat.Col(nil, j, b)
			if want := stat.Correlation(x, y, nil); different(c.At(i, j), want, testTolerance) {
				t.Errorf("(%d,%d): have %g, want %g", i, j, c.At(i, j), want)
			}
		}
	}
}

func TestCrossCorrNaN(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{
		1, 2,
		2, 2,
		4, 2,
	})
	c, err := CrossCorr(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if different(c.At(0, 0), 1, testTolerance) {
		t.Errorf("have %g, want 1", c.At(0, 0))
	}
	for _, ij := range [][2]int{{0, 1}, {1, 0}, {1, 1}} {
		if v := c.At(ij[0], ij[1]); !math.IsNaN(v) {
			t.Errorf("correlation %v with a constant variable should be NaN but is %g", ij, v)
		}
	}
}
