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

package simpleflow

import (
	"math"
	"testing"

	"github.com/spatialmodel/ensflow"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const tolerance = 1.e-12

func testModel(t *testing.T) *Model {
	base, err := ensflow.NewModel(ensflow.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return New(base)
}

func TestStepInjection(t *testing.T) {
	m := testModel(t)
	cfg := ensflow.DefaultConfig()
	M := m.Base.Grid.M()

	x0 := mat.NewDense(1, M, nil)
	for j := 0; j < M; j++ {
		x0.Set(0, j, 0.5)
	}
	x1, err := m.Step(x0, cfg.Forecast.Dt)
	if err != nil {
		t.Fatal(err)
	}
	inj := m.Base.Source.InjectorCells(m.Base.Grid)[0]
	if inj != 0 {
		t.Fatalf("injector should be in cell 0 but is in %d", inj)
	}
	want := 0.5 + cfg.Forecast.Dt*0.5/m.Base.Grid.CellVolume()
	if different(x1.At(0, inj), want, tolerance) {
		t.Errorf("injector cell: have %g, want %g", x1.At(0, inj), want)
	}
	for j := 1; j < M; j++ {
		if x1.At(0, j) != 0.5 {
			t.Errorf("cell %d should be unchanged but is %g", j, x1.At(0, j))
			break
		}
	}
	if x0.At(0, inj) != 0.5 {
		t.Error("input state was modified")
	}
}

// Diffusion alone must conserve the total saturation.
func TestStepConservesDiffusion(t *testing.T) {
	base, err := ensflow.NewModel(ensflow.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	g := base.Grid
	closed := *base
	closed.Source = &ensflow.SourceTerm{Q: make([]float64, g.M())}
	m := New(&closed)

	x0 := mat.NewDense(1, g.M(), nil)
	x0.Set(0, 0, 1)
	x0.Set(0, g.SubToIndex(10, 20), 1)
	x0.Set(0, g.SubToIndex(31, 5), 0.5)

	before := floats.Sum(x0.RawRowView(0))
	x := x0
	for i := 0; i < 10; i++ {
		x, err = m.Step(x, 0.0008)
		if err != nil {
			t.Fatal(err)
		}
	}
	if after := floats.Sum(x.RawRowView(0)); different(after, before, 1.e-10) {
		t.Errorf("total saturation changed from %g to %g", before, after)
	}
	if x.At(0, 0) == 1 {
		t.Error("saturation did not spread")
	}
}

func TestStepBounds(t *testing.T) {
	m := testModel(t)
	g := m.Base.Grid
	x0 := mat.NewDense(3, g.M(), nil)
	for j := 0; j < g.M(); j++ {
		x0.Set(0, j, 0)
		x0.Set(1, j, float64(j%7)/6)
		x0.Set(2, j, 1)
	}
	f, err := ensflow.Repeat(m, 50, x0, 0.0008, ensflow.WithObservations(NewProduction(m.Base)))
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range f.States {
		if r, _ := s.Dims(); r != 3 {
			t.Fatalf("state %d has %d rows", i, r)
		}
		if mat.Min(s) < 0 || mat.Max(s) > 1 {
			t.Errorf("state %d is out of bounds: [%g, %g]", i, mat.Min(s), mat.Max(s))
		}
	}
	if len(f.Observations) != 50 {
		t.Fatalf("have %d observations, want 50", len(f.Observations))
	}
	if r, c := f.Observations[0].Dims(); r != 3 || c != 1 {
		t.Errorf("observation dims: have (%d,%d), want (3,1)", r, c)
	}
	// The injector raises the saturation of the empty member.
	if f.Final().At(0, 0) <= 0 {
		t.Error("injection had no effect")
	}
}

func TestStepErrors(t *testing.T) {
	m := testModel(t)
	x0 := mat.NewDense(1, m.Base.Grid.M(), nil)
	if _, err := m.Step(x0, 1); err == nil {
		t.Error("unstable time step should be an error")
	}
	if _, err := m.Step(x0, math.NaN()); err == nil {
		t.Error("NaN time step should be an error")
	}
	if _, err := m.Step(mat.NewDense(1, 5, nil), 0.0001); err == nil {
		t.Error("wrong state size should be an error")
	}
}

func TestMaxTimeStep(t *testing.T) {
	m := testModel(t)
	// κ = 0.02·1/(1+1); 2κ(32²+32²) + 1/(1·(1/32)²).
	want := 1 / (2*0.01*2048 + 1024)
	if dt := m.MaxTimeStep(); different(dt, want, tolerance) {
		t.Errorf("have %g, want %g", dt, want)
	}
}

func TestProduction(t *testing.T) {
	m := testModel(t)
	p := NewProduction(m.Base)
	if len(p.Producers) != 1 || p.Producers[0] != m.Base.Grid.M()-1 {
		t.Fatalf("producers: %v", p.Producers)
	}
	x := mat.NewDense(2, m.Base.Grid.M(), nil)
	x.Set(0, m.Base.Grid.M()-1, 0.25)
	x.Set(1, m.Base.Grid.M()-1, 0.75)
	y, err := p.Observe(x)
	if err != nil {
		t.Fatal(err)
	}
	if y.At(0, 0) != 0.25 || y.At(1, 0) != 0.75 {
		t.Errorf("have %v", mat.Formatted(y))
	}

	if _, err := (Production{Producers: []int{5000}}).Observe(x); err == nil {
		t.Error("out of range producer should be an error")
	}
	if _, err := (Production{}).Observe(x); err == nil {
		t.Error("no producers should be an error")
	}
}

func different(a, b, tolerance float64) bool {
	if math.Abs(a-b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}
