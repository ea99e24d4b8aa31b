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

// Package ensflowutil contains the command-line interface and
// configuration handling for EnsFlow.
package ensflowutil

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ensflow"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	def := ensflow.DefaultConfig()

	// Options are the configuration options available to EnsFlow.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose specifies whether to log debugging information,
              including the ensemble error and spread after every step.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Grid.Nx",
			usage: `
              Grid.Nx is the number of grid nodes in the x direction.`,
			defaultVal: def.Grid.Nx,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Grid.Ny",
			usage: `
              Grid.Ny is the number of grid nodes in the y direction.`,
			defaultVal: def.Grid.Ny,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Grid.Dx",
			usage: `
              Grid.Dx is the extent of the domain in the x direction.`,
			defaultVal: def.Grid.Dx,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Grid.Dy",
			usage: `
              Grid.Dy is the extent of the domain in the y direction.`,
			defaultVal: def.Grid.Dy,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Fluid.Vw",
			usage: `
              Fluid.Vw is the viscosity of water.`,
			defaultVal: def.Fluid.Vw,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Fluid.Vo",
			usage: `
              Fluid.Vo is the viscosity of oil.`,
			defaultVal: def.Fluid.Vo,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Fluid.Swc",
			usage: `
              Fluid.Swc is the irreducible (connate) water saturation.`,
			defaultVal: def.Fluid.Swc,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Fluid.Sor",
			usage: `
              Fluid.Sor is the residual oil saturation.`,
			defaultVal: def.Fluid.Sor,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Rock.Permeability",
			usage: `
              Rock.Permeability is the uniform permeability of the reservoir rock.`,
			defaultVal: def.Rock.Permeability,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Rock.Porosity",
			usage: `
              Rock.Porosity is the uniform porosity of the reservoir rock.`,
			defaultVal: def.Rock.Porosity,
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Wells.File",
			usage: `
              Wells.File is the path to a TOML file holding [[Injectors]] and
              [[Producers]] tables with X, Y and Rate fields. If it is specified,
              it takes precedence over Wells.Injectors and Wells.Producers.
              The path can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Wells.Injectors",
			usage: `
              Wells.Injectors lists the injection wells as a JSON array of
              objects with X, Y and Rate fields. X and Y are relative to the
              domain extent and must be within [0, 1].`,
			defaultVal: wellsJSON(def.Wells.Injectors),
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "Wells.Producers",
			usage: `
              Wells.Producers lists the production wells in the same format
              as Wells.Injectors.`,
			defaultVal: wellsJSON(def.Wells.Producers),
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags(), forecastCmd.Flags()},
		},
		{
			name: "coords",
			usage: `
              coords specifies the units to print well locations in. Options
              are 'relative', 'absolute', and 'index'.`,
			defaultVal: ensflow.Absolute.String(),
			flagsets:   []*pflag.FlagSet{sourceCmd.Flags()},
		},
		{
			name: "Forecast.NSteps",
			usage: `
              Forecast.NSteps is the number of time steps to run.`,
			defaultVal: def.Forecast.NSteps,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.Dt",
			usage: `
              Forecast.Dt is the time step length.`,
			defaultVal: def.Forecast.Dt,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.EnsembleSize",
			usage: `
              Forecast.EnsembleSize is the number of ensemble members.`,
			shorthand:  "n",
			defaultVal: def.Forecast.EnsembleSize,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.Seed",
			usage: `
              Forecast.Seed seeds the random number generator.`,
			defaultVal: int(def.Forecast.Seed),
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.Sigma",
			usage: `
              Forecast.Sigma is the standard deviation of the initial
              saturation field.`,
			defaultVal: def.Forecast.Sigma,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.CorrelationLength",
			usage: `
              Forecast.CorrelationLength is the spatial correlation length
              of the initial saturation field.`,
			defaultVal: def.Forecast.CorrelationLength,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.ReferenceX",
			usage: `
              Forecast.ReferenceX is the x coordinate of the point that
              correlation maps are calculated relative to.`,
			defaultVal: def.Forecast.ReferenceX,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.ReferenceY",
			usage: `
              Forecast.ReferenceY is the y coordinate of the point that
              correlation maps are calculated relative to.`,
			defaultVal: def.Forecast.ReferenceY,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.Inflation",
			usage: `
              Forecast.Inflation is the factor that the spread of the initial
              ensemble is multiplied by.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.Diffusivity",
			usage: `
              Forecast.Diffusivity controls how quickly saturation spreads
              in the reference flow model.`,
			defaultVal: 0.02,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
		{
			name: "Forecast.LogEvery",
			usage: `
              Forecast.LogEvery specifies how many time steps pass between
              progress messages.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{forecastCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	// Nested options such as Grid.Nx are read from ENSFLOW_GRID_NX.
	Cfg.SetEnvPrefix("ENSFLOW")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(sourceCmd)
	Root.AddCommand(forecastCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("ensflow: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// newLogger returns a logger configured according to Cfg.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	log.Level = logrus.InfoLevel
	if Cfg.GetBool("verbose") {
		log.Level = logrus.DebugLevel
	}
	return log
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "ensflow",
	Short: "An ensemble forecast engine for reservoir models.",
	Long: `EnsFlow runs ensembles of reservoir flow forecasts and calculates
error, spread and spatial correlation statistics of the results.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ENSFLOW_var' where 'var' is the
name of the variable to be set, with dots replaced by underscores
(for example, ENSFLOW_GRID_NX).
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of EnsFlow.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "EnsFlow v%s\n", ensflow.Version)
	},
	DisableAutoGenTag: true,
}

// sourceCmd prints the well source term.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Print the well source term.",
	Long: `source normalizes the configured injection and production wells,
builds the resulting source term and prints the well locations and the
grid cells with a non-zero net source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ModelConfig(Cfg)
		if err != nil {
			return err
		}
		c, err := parseCoordType(Cfg.GetString("coords"))
		if err != nil {
			return err
		}
		return Source(cmd.OutOrStdout(), cfg, c)
	},
	DisableAutoGenTag: true,
}

// forecastCmd runs an ensemble forecast.
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Run an ensemble forecast.",
	Long: `forecast samples a synthetic truth and an initial ensemble from the
prior, runs both forward with the reference flow model, and prints a JSON
summary of the ensemble error and spread, the production observations,
the correlation map relative to the reference point and the singular
values of the final ensemble anomalies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ModelConfig(Cfg)
		if err != nil {
			return err
		}
		opts := RunOptions{
			Inflation:   Cfg.GetFloat64("Forecast.Inflation"),
			Diffusivity: Cfg.GetFloat64("Forecast.Diffusivity"),
			LogEvery:    Cfg.GetInt("Forecast.LogEvery"),
		}
		s, err := Forecast(cfg, opts, newLogger())
		if err != nil {
			return err
		}
		return s.WriteJSON(cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}
