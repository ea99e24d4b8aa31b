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

package ensflowutil

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/spatialmodel/ensflow"
)

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "EnsFlow v" + ensflow.Version + "\n"; buf.String() != want {
		t.Errorf("have %q, want %q", buf.String(), want)
	}
}

func TestSourceCmd(t *testing.T) {
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"source", "--coords=index", "--Grid.Nx=5", "--Grid.Ny=5"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	want := `injector 0: (0, 0) index, rate 1, cell 0
producer 0: (5, 5) index, rate 1, cell 24
cell 0: 1
cell 24: -1
`
	if buf.String() != want {
		t.Errorf("have:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestSourceCmdError(t *testing.T) {
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"source", "--coords=polar"})
	if err := Root.Execute(); err == nil {
		t.Error("invalid coordinate type should be an error")
	}
}

func TestForecastCmd(t *testing.T) {
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"forecast", "--Grid.Nx=8", "--Grid.Ny=8",
		"--Forecast.NSteps=5", "--Forecast.EnsembleSize=6", "--Forecast.Dt=0.001"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	var s Summary
	if err := json.Unmarshal(buf.Bytes(), &s); err != nil {
		t.Fatalf("%v:\n%s", err, buf.String())
	}
	if len(s.State) != 6 || len(s.Production) != 5 {
		t.Errorf("have %d state and %d production entries", len(s.State), len(s.Production))
	}
	if len(s.SingularValues) != 6 {
		t.Errorf("have %d singular values, want 6", len(s.SingularValues))
	}
	if _, ok := s.Correlation["Truth"]; ok {
		t.Error("the truth has no correlation map")
	}
	for _, label := range []string{"Prior", "Forecast"} {
		c, ok := s.Correlation[label]
		if !ok || len(c) != 64 {
			t.Errorf("%s: have %d cells, want 64", label, len(c))
			continue
		}
		// The reference point (0.5, 0.5) is node (4, 4).
		if math.Abs(c[36]-1) > 1.e-9 {
			t.Errorf("%s: self correlation is %g", label, c[36])
		}
	}
	for _, label := range []string{"Forecast", "Persistence"} {
		if _, ok := s.Final[label]; !ok {
			t.Errorf("missing final %s error", label)
		}
	}
}

func TestEnvironment(t *testing.T) {
	os.Setenv("ENSFLOW_FLUID_SOR", "0.05")
	defer os.Unsetenv("ENSFLOW_FLUID_SOR")
	if sor := Cfg.GetFloat64("Fluid.Sor"); sor != 0.05 {
		t.Errorf("have %g, want 0.05", sor)
	}
}

func TestConfigFile(t *testing.T) {
	if err := Root.PersistentFlags().Set("config", "testdata/missing.toml"); err != nil {
		t.Fatal(err)
	}
	defer Root.PersistentFlags().Set("config", "")
	if err := setConfig(); err == nil || !strings.Contains(err.Error(), "configuration file") {
		t.Errorf("missing configuration file should be an error, have %v", err)
	}
}
