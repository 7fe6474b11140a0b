package config

import (
	"fmt"
	"sort"
)

// Preset is a named metric with the source it is expected to satisfy.
type Preset struct {
	Description  string     `yaml:"description"`
	Coords       []string   `yaml:"coords"`
	Metric       [][]string `yaml:"metric"`
	Lambda       string     `yaml:"lambda,omitempty"`
	StressEnergy [][]string `yaml:"stress_energy,omitempty"`
	Functions    []string   `yaml:"functions,omitempty"`
}

var sphericalCoords = []string{"t", "r", "theta", "phi"}

var Presets = map[string]*Preset{
	"minkowski": {
		Description: "flat spacetime in Cartesian coordinates",
		Coords:      []string{"t", "x", "y", "z"},
		Metric: [][]string{
			{"-1", "0", "0", "0"},
			{"0", "1", "0", "0"},
			{"0", "0", "1", "0"},
			{"0", "0", "0", "1"},
		},
	},
	"polar_plane": {
		Description: "the flat plane in polar coordinates",
		Coords:      []string{"r", "theta"},
		Metric: [][]string{
			{"1", "0"},
			{"0", "r^2"},
		},
	},
	"sphere": {
		Description: "2-sphere of radius R",
		Coords:      []string{"theta", "phi"},
		Metric: [][]string{
			{"R^2", "0"},
			{"0", "R^2*sin(theta)^2"},
		},
	},
	"schwarzschild": {
		Description: "Schwarzschild vacuum in Schwarzschild coordinates",
		Coords:      sphericalCoords,
		Metric: [][]string{
			{"-(1 - 2*M/r)", "0", "0", "0"},
			{"0", "1/(1 - 2*M/r)", "0", "0"},
			{"0", "0", "r^2", "0"},
			{"0", "0", "0", "r^2*sin(theta)^2"},
		},
	},
	"schwarzschild_flipped": {
		Description: "Schwarzschild with the sign of g_rr flipped; not a vacuum solution",
		Coords:      sphericalCoords,
		Metric: [][]string{
			{"-(1 - 2*M/r)", "0", "0", "0"},
			{"0", "-1/(1 - 2*M/r)", "0", "0"},
			{"0", "0", "r^2", "0"},
			{"0", "0", "0", "r^2*sin(theta)^2"},
		},
	},
	"reissner_nordstrom": {
		Description: "charged black hole with its electromagnetic stress-energy",
		Coords:      sphericalCoords,
		Metric: [][]string{
			{"-(1 - 2*M/r + Q^2/r^2)", "0", "0", "0"},
			{"0", "1/(1 - 2*M/r + Q^2/r^2)", "0", "0"},
			{"0", "0", "r^2", "0"},
			{"0", "0", "0", "r^2*sin(theta)^2"},
		},
		StressEnergy: [][]string{
			{"Q^2*(1 - 2*M/r + Q^2/r^2)/(8*pi*r^4)", "0", "0", "0"},
			{"0", "-Q^2/(8*pi*r^4*(1 - 2*M/r + Q^2/r^2))", "0", "0"},
			{"0", "0", "Q^2/(8*pi*r^2)", "0"},
			{"0", "0", "0", "Q^2*sin(theta)^2/(8*pi*r^2)"},
		},
	},
	"de_sitter": {
		Description: "de Sitter in flat slicing with Λ = 3H²",
		Coords:      sphericalCoords,
		Lambda:      "3*H^2",
		Metric: [][]string{
			{"-1", "0", "0", "0"},
			{"0", "exp(H*t)^2", "0", "0"},
			{"0", "0", "exp(H*t)^2*r^2", "0"},
			{"0", "0", "0", "exp(H*t)^2*r^2*sin(theta)^2"},
		},
	},
	"kerr": {
		Description: "Kerr in Boyer-Lindquist coordinates",
		Coords:      sphericalCoords,
		Metric: [][]string{
			{"-(1 - 2*M*r/(r^2 + a^2*cos(theta)^2))", "0", "0", "-2*M*a*r*sin(theta)^2/(r^2 + a^2*cos(theta)^2)"},
			{"0", "(r^2 + a^2*cos(theta)^2)/(r^2 - 2*M*r + a^2)", "0", "0"},
			{"0", "0", "r^2 + a^2*cos(theta)^2", "0"},
			{"-2*M*a*r*sin(theta)^2/(r^2 + a^2*cos(theta)^2)", "0", "0", "(r^2 + a^2 + 2*M*r*a^2*sin(theta)^2/(r^2 + a^2*cos(theta)^2))*sin(theta)^2"},
		},
	},
	"flrw_flat": {
		Description: "spatially flat FLRW with scale factor a(t) and a perfect fluid",
		Coords:      []string{"t", "x", "y", "z"},
		Functions:   []string{"a"},
		Metric: [][]string{
			{"-1", "0", "0", "0"},
			{"0", "a(t)^2", "0", "0"},
			{"0", "0", "a(t)^2", "0"},
			{"0", "0", "0", "a(t)^2"},
		},
		StressEnergy: [][]string{
			{"3*a'(t)^2/(8*pi*a(t)^2)", "0", "0", "0"},
			{"0", "-(2*a(t)*a''(t) + a'(t)^2)/(8*pi)", "0", "0"},
			{"0", "0", "-(2*a(t)*a''(t) + a'(t)^2)/(8*pi)", "0"},
			{"0", "0", "0", "-(2*a(t)*a''(t) + a'(t)^2)/(8*pi)"},
		},
	},
}

func GetPreset(name string) (*Preset, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return p, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
