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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/ensflow"
	"github.com/spf13/cast"
)

// wellSpec is the file representation of a well.
type wellSpec struct {
	X, Y, Rate float64
}

func toWellSet(specs []wellSpec) ensflow.WellSet {
	if len(specs) == 0 {
		return nil
	}
	o := make(ensflow.WellSet, len(specs))
	for i, s := range specs {
		o[i] = ensflow.Well{Point: geom.Point{X: s.X, Y: s.Y}, Rate: s.Rate}
	}
	return o
}

// wellsJSON returns the JSON representation of ws, for use as a
// default flag value.
func wellsJSON(ws ensflow.WellSet) string {
	specs := make([]wellSpec, len(ws))
	for i, w := range ws {
		specs[i] = wellSpec{X: w.X, Y: w.Y, Rate: w.Rate}
	}
	b, err := json.Marshal(specs)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// wellFile is the layout of a well file.
type wellFile struct {
	Injectors, Producers []wellSpec
}

// LoadWellFile reads injector and producer locations from the
// TOML file at path.
func LoadWellFile(path string) (injectors, producers ensflow.WellSet, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ensflow: opening well file: %v", err)
	}
	defer f.Close()
	var w wellFile
	if _, err := toml.DecodeReader(f, &w); err != nil {
		return nil, nil, fmt.Errorf("ensflow: reading well file %s: %v", path, err)
	}
	return toWellSet(w.Injectors), toWellSet(w.Producers), nil
}

// getWellSet returns a WellSet from a viper configuration, accounting
// for the fact that it might be a JSON array if it was set from a
// command line argument or an array of tables if it was set in a
// configuration file.
func getWellSet(varName string, cfg *viper.Viper) (ensflow.WellSet, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return nil, nil
	case ensflow.WellSet:
		return v.Copy(), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var specs []wellSpec
		if err := json.Unmarshal([]byte(v), &specs); err != nil {
			return nil, fmt.Errorf("ensflow: parsing %s: %v", varName, err)
		}
		return toWellSet(specs), nil
	case []map[string]interface{}:
		specs := make([]interface{}, len(v))
		for j, m := range v {
			specs[j] = m
		}
		return wellSetFromTables(varName, specs)
	case []interface{}:
		return wellSetFromTables(varName, v)
	default:
		return nil, fmt.Errorf("ensflow: invalid type for well set variable %s: %#v", varName, i)
	}
}

func wellSetFromTables(varName string, tables []interface{}) (ensflow.WellSet, error) {
	specs := make([]wellSpec, len(tables))
	for j, t := range tables {
		m, err := cast.ToStringMapE(t)
		if err != nil {
			return nil, fmt.Errorf("ensflow: parsing %s[%d]: %v", varName, j, err)
		}
		for k, val := range m {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, fmt.Errorf("ensflow: parsing %s[%d].%s: %v", varName, j, k, err)
			}
			switch strings.ToLower(k) {
			case "x":
				specs[j].X = f
			case "y":
				specs[j].Y = f
			case "rate":
				specs[j].Rate = f
			default:
				return nil, fmt.Errorf("ensflow: parsing %s[%d]: unknown field %q", varName, j, k)
			}
		}
	}
	return toWellSet(specs), nil
}

// ModelConfig unmarshals a viper configuration for an experiment.
func ModelConfig(cfg *viper.Viper) (*ensflow.Config, error) {
	seed, err := cast.ToUint64E(cfg.Get("Forecast.Seed"))
	if err != nil {
		return nil, fmt.Errorf("ensflow: Forecast.Seed: %v", err)
	}
	c := &ensflow.Config{
		Grid: ensflow.GridConfig{
			Nx: cfg.GetInt("Grid.Nx"),
			Ny: cfg.GetInt("Grid.Ny"),
			Dx: cfg.GetFloat64("Grid.Dx"),
			Dy: cfg.GetFloat64("Grid.Dy"),
		},
		Fluid: ensflow.Fluid{
			Vw:  cfg.GetFloat64("Fluid.Vw"),
			Vo:  cfg.GetFloat64("Fluid.Vo"),
			Swc: cfg.GetFloat64("Fluid.Swc"),
			Sor: cfg.GetFloat64("Fluid.Sor"),
		},
		Rock: ensflow.RockConfig{
			Permeability: cfg.GetFloat64("Rock.Permeability"),
			Porosity:     cfg.GetFloat64("Rock.Porosity"),
		},
		Forecast: ensflow.ForecastConfig{
			NSteps:            cfg.GetInt("Forecast.NSteps"),
			Dt:                cfg.GetFloat64("Forecast.Dt"),
			EnsembleSize:      cfg.GetInt("Forecast.EnsembleSize"),
			Seed:              seed,
			Sigma:             cfg.GetFloat64("Forecast.Sigma"),
			CorrelationLength: cfg.GetFloat64("Forecast.CorrelationLength"),
			ReferenceX:        cfg.GetFloat64("Forecast.ReferenceX"),
			ReferenceY:        cfg.GetFloat64("Forecast.ReferenceY"),
		},
	}

	if path := cfg.GetString("Wells.File"); path != "" {
		c.Wells.Injectors, c.Wells.Producers, err = LoadWellFile(os.ExpandEnv(path))
		if err != nil {
			return nil, err
		}
	} else {
		if c.Wells.Injectors, err = getWellSet("Wells.Injectors", cfg); err != nil {
			return nil, err
		}
		if c.Wells.Producers, err = getWellSet("Wells.Producers", cfg); err != nil {
			return nil, err
		}
	}

	if c.Forecast.NSteps < 0 {
		return nil, fmt.Errorf("parsing forecast configuration: Forecast.NSteps=%d but should be >=0", c.Forecast.NSteps)
	}
	vars := []float64{c.Forecast.Dt, c.Forecast.Sigma, c.Forecast.CorrelationLength}
	varNames := []string{"Forecast.Dt", "Forecast.Sigma", "Forecast.CorrelationLength"}
	for i, v := range vars {
		if !(v > 0) {
			return nil, fmt.Errorf("parsing forecast configuration: %s=%g but should be >0", varNames[i], v)
		}
	}
	if c.Forecast.EnsembleSize < 2 {
		return nil, fmt.Errorf("parsing forecast configuration: Forecast.EnsembleSize=%d but should be >=2",
			c.Forecast.EnsembleSize)
	}
	return c, nil
}

// parseCoordType returns the coordinate type with the given name.
func parseCoordType(s string) (ensflow.CoordType, error) {
	for _, c := range []ensflow.CoordType{ensflow.Relative, ensflow.Absolute, ensflow.Index} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("ensflow: invalid coordinate type %q; options are 'relative', 'absolute', and 'index'", s)
}
