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
	"math"

	"gonum.org/v1/gonum/mat"
)

// SVD0 computes the singular value decomposition a = u·diag(s)·vt.
// If a has more rows than columns the full decomposition is computed,
// so u is square; otherwise the reduced decomposition is computed and
// u has min(rows, cols) columns. Rows of a are samples and columns are
// variables. For rank truncation, slice the returned factors.
func SVD0(a mat.Matrix) (u *mat.Dense, s []float64, vt *mat.Dense, err error) {
	r, c := a.Dims()
	kind := mat.SVDThin
	if r > c {
		kind = mat.SVDFull
	}
	var svd mat.SVD
	if ok := svd.Factorize(a, kind); !ok {
		return nil, nil, nil, errors.New("ensemble: singular value decomposition failed")
	}
	u = new(mat.Dense)
	svd.UTo(u)
	var v mat.Dense
	svd.VTo(&v)
	return u, svd.Values(nil), mat.DenseCopyOf(v.T()), nil
}

// Pad0 returns a vector of length n whose leading elements are s and whose
// remaining elements are zero. It is used to compare singular value spectra
// of ensembles of different sizes. Pad0 panics if len(s) > n.
func Pad0(s []float64, n int) []float64 {
	if len(s) > n {
		panic(fmt.Sprintf("ensemble: cannot pad %d values to length %d", len(s), n))
	}
	o := make([]float64, n)
	copy(o, s)
	return o
}

// Pows prepares the computation of powers of the symmetric matrix whose
// eigenvectors are the columns of u and whose eigenvalues are sig. The
// returned function computes u·diag(sig^expo)·uᵀ for any real exponent, so
// square roots, inverses and other fractional powers can be taken without
// repeating the decomposition. Pows panics if the number of columns of u
// does not equal len(sig).
func Pows(u mat.Matrix, sig []float64) func(expo float64) *mat.Dense {
	if _, c := u.Dims(); c != len(sig) {
		panic(fmt.Sprintf("ensemble: %d eigenvectors but %d eigenvalues", c, len(sig)))
	}
	u0 := mat.DenseCopyOf(u)
	sig0 := append([]float64(nil), sig...)
	return func(expo float64) *mat.Dense {
		us := mat.DenseCopyOf(u0)
		r, _ := us.Dims()
		w := make([]float64, len(sig0))
		for j, s := range sig0 {
			w[j] = math.Pow(s, expo)
		}
		for i := 0; i < r; i++ {
			row := us.RawRowView(i)
			for j := range row {
				row[j] *= w[j]
			}
		}
		var o mat.Dense
		o.Mul(us, u0.T())
		return &o
	}
}

// SymPows is like Pows, but it computes the eigendecomposition
// of the symmetric matrix a first.
func SymPows(a mat.Symmetric) (func(expo float64) *mat.Dense, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(a, true); !ok {
		return nil, errors.New("ensemble: symmetric eigendecomposition failed")
	}
	var u mat.Dense
	eig.VectorsTo(&u)
	return Pows(&u, eig.Values(nil)), nil
}
