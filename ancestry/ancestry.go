// elPloidy: a haplotype-based tool for classifying the origin of
// chromosomal aneuploidies from low-coverage sequencing data.
// Copyright (c) 2021-2022 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elploidy/blob/master/LICENSE.txt>.

// Package ancestry resolves a sample's declared ancestry makeup into a
// weighting over the superpopulation column groups of a reference
// panel. Haplotype frequencies under a mixture are proportion-weighted
// within-group frequencies, so a single-group mixture reduces to the
// plain population frequency.
package ancestry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/exascience/elploidy/panel"
	"github.com/willf/bitset"
)

// InvalidMixtureError reports a malformed ancestry specification. It is
// fatal and surfaces before any window is processed.
type InvalidMixtureError struct {
	Msg string
}

func (e *InvalidMixtureError) Error() string {
	return e.Msg
}

func invalidMixturef(format string, args ...interface{}) *InvalidMixtureError {
	return &InvalidMixtureError{Msg: fmt.Sprintf(format, args...)}
}

const proportionTolerance = 1e-6

type component struct {
	group   string
	weight  float64
	mask    *bitset.BitSet
	columns float64
}

// Mixture is a resolved ancestry specification: a weighting over the
// haplotype columns of a reference panel. Mixtures are immutable and
// safe for concurrent use.
type Mixture struct {
	components []component
	eligible   *bitset.BitSet
}

// Resolve validates an ancestry specification against a reference panel
// and returns the corresponding mixture. A single group receives weight
// 1; multiple groups without explicit proportions receive equal
// weights; explicit proportions must match the groups one to one and
// sum to 1 within a small tolerance.
func Resolve(reference *panel.Panel, groups []string, proportions []float64) (*Mixture, error) {
	if len(groups) == 0 {
		return nil, invalidMixturef("ancestry specification names no superpopulations")
	}
	if proportions == nil {
		weight := 1 / float64(len(groups))
		proportions = make([]float64, len(groups))
		for i := range proportions {
			proportions[i] = weight
		}
	} else if len(proportions) != len(groups) {
		return nil, invalidMixturef("%v superpopulations, but %v proportions", len(groups), len(proportions))
	}
	sum := 0.0
	for _, proportion := range proportions {
		if proportion <= 0 || proportion > 1 {
			return nil, invalidMixturef("proportion %v outside (0,1]", proportion)
		}
		sum += proportion
	}
	if math.Abs(sum-1) > proportionTolerance {
		return nil, invalidMixturef("proportions sum to %v instead of 1", sum)
	}
	seen := make(map[string]bool)
	components := make([]component, 0, len(groups))
	eligible := bitset.New(reference.NHaplotypes())
	for i, group := range groups {
		if seen[group] {
			return nil, invalidMixturef("superpopulation %v named twice", group)
		}
		seen[group] = true
		mask, ok := reference.ColumnMask(group)
		if !ok {
			return nil, invalidMixturef("superpopulation %v not present in the reference panel", group)
		}
		components = append(components, component{
			group:   group,
			weight:  proportions[i],
			mask:    mask,
			columns: float64(mask.Count()),
		})
		eligible.InPlaceUnion(mask)
	}
	return &Mixture{components: components, eligible: eligible}, nil
}

// ResolveSpec is Resolve on comma-separated specification strings, e.g.
// "EAS,EUR" with "0.8,0.2". An empty proportions string selects equal
// weights.
func ResolveSpec(reference *panel.Panel, groupsSpec, proportionsSpec string) (*Mixture, error) {
	groups := strings.Split(groupsSpec, ",")
	for i, group := range groups {
		groups[i] = strings.TrimSpace(group)
		if groups[i] == "" {
			return nil, invalidMixturef("empty superpopulation label in %q", groupsSpec)
		}
	}
	var proportions []float64
	if proportionsSpec != "" {
		for _, field := range strings.Split(proportionsSpec, ",") {
			proportion, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, invalidMixturef("invalid proportion %q", field)
			}
			proportions = append(proportions, proportion)
		}
	}
	return Resolve(reference, groups, proportions)
}

// Frequency returns the mixture-weighted frequency of the haplotype
// columns set in v: the proportion-weighted within-group frequencies
// summed over the mixture's superpopulations.
func (mixture *Mixture) Frequency(v *bitset.BitSet) float64 {
	frequency := 0.0
	for _, component := range mixture.components {
		frequency += component.weight * float64(v.IntersectionCardinality(component.mask)) / component.columns
	}
	return frequency
}

// EligibleColumns returns the union mask of the mixture's haplotype
// columns. The mask is shared storage and must not be modified.
func (mixture *Mixture) EligibleColumns() *bitset.BitSet {
	return mixture.eligible
}

// NEligible returns the number of eligible haplotype columns.
func (mixture *Mixture) NEligible() uint {
	return mixture.eligible.Count()
}

// Groups returns the superpopulation labels of the mixture.
func (mixture *Mixture) Groups() []string {
	groups := make([]string, len(mixture.components))
	for i, component := range mixture.components {
		groups[i] = component.group
	}
	return groups
}

// String formats the mixture as, e.g., "EUR" or "0.8*EAS+0.2*EUR".
func (mixture *Mixture) String() string {
	if len(mixture.components) == 1 {
		return mixture.components[0].group
	}
	var b strings.Builder
	for i, component := range mixture.components {
		if i > 0 {
			b.WriteByte('+')
		}
		fmt.Fprintf(&b, "%g*%s", component.weight, component.group)
	}
	return b.String()
}
