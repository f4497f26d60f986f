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

package llr

import (
	"math"
	"testing"

	"github.com/exascience/elploidy/obs"
	"github.com/exascience/elploidy/panel"
	"github.com/willf/bitset"
)

// makeWidePanel returns a single-superpopulation panel with six SNPs
// whose alternate rows all share haplotype column 0, so that every
// joint frequency over the test reads stays positive.
func makeWidePanel(t *testing.T) *panel.Panel {
	t.Helper()
	reference, err := panel.New(
		[]panel.SNP{
			{ID: "rs1", Pos: 100, Ref: "A", Alt: "G"},
			{ID: "rs2", Pos: 200, Ref: "A", Alt: "G"},
			{ID: "rs3", Pos: 300, Ref: "A", Alt: "G"},
			{ID: "rs4", Pos: 400, Ref: "A", Alt: "G"},
			{ID: "rs5", Pos: 500, Ref: "A", Alt: "G"},
			{ID: "rs6", Pos: 600, Ref: "A", Alt: "G"},
		},
		[]*bitset.BitSet{
			makeRow(8, 0, 1, 2, 3),
			makeRow(8, 0, 2, 3, 4),
			makeRow(8, 0, 3, 4, 5),
			makeRow(8, 0, 4, 5, 6),
			makeRow(8, 0, 5, 6, 7),
			makeRow(8, 0, 1, 6, 7),
		},
		[]panel.Individual{
			{ID: "HG00096", Population: "GBR", Group: "EUR", Sex: 1},
			{ID: "HG00097", Population: "GBR", Group: "EUR", Sex: 2},
			{ID: "HG00099", Population: "GBR", Group: "EUR", Sex: 2},
			{ID: "HG00100", Population: "GBR", Group: "EUR", Sex: 2},
		},
		false,
	)
	if err != nil {
		t.Fatal(err)
	}
	return reference
}

func makeWideTable(reference *panel.Panel) *obs.Table {
	var observations []obs.Observation
	ids := []string{"r1", "r2", "r3", "r4", "r5", "r6"}
	for i, id := range ids {
		observations = append(observations,
			obs.Observation{Pos: 100 * (i + 1), ReadID: id, Base: "G"},
			obs.Observation{Pos: 100 * ((i+1)%6 + 1), ReadID: id, Base: "G"},
		)
	}
	return obs.NewTable(observations, reference, obs.KeepAll, 0)
}

func makeWideModel(t *testing.T) (*Model, Window) {
	t.Helper()
	reference := makeWidePanel(t)
	mixture := makeTestMixture(t, reference, "EUR")
	scorer := NewScorer(reference, mixture, makeWideTable(reference), 0.05, 2)
	if len(scorer.Reads()) != 6 {
		t.Fatal("wide fixture failed")
	}
	window := Window{
		Start: 100,
		End:   601,
		SNPs:  []int{100, 200, 300, 400, 500, 600},
		Reads: []int{0, 1, 2, 3, 4, 5},
	}
	return NewModel(scorer), window
}

func TestEvaluateWindowBelowMinReads(t *testing.T) {
	model, window := makeWideModel(t)
	window.Reads = window.Reads[:2]
	result := EvaluateWindow(model, window, Params{
		MinReads: 3, MaxReads: 4, Subsamples: 10, Numerator: BPH, Denominator: SPH,
	})
	if result.Informative || result.Resampled {
		t.Error("below-minimum window flags failed")
	}
	if result.LLR != 0 || !math.IsNaN(result.SE) {
		t.Error("below-minimum window values failed")
	}
	if result.Reads != 2 || result.SNPs != 6 {
		t.Error("below-minimum window counts failed")
	}
}

func TestEvaluateWindowExact(t *testing.T) {
	model, window := makeWideModel(t)
	params := Params{
		MinReads: 3, MaxReads: MaxModelReads, Subsamples: 10, Numerator: BPH, Denominator: SPH,
	}
	result := EvaluateWindow(model, window, params)
	if !result.Informative || result.Resampled {
		t.Error("exact window flags failed")
	}
	if !math.IsNaN(result.SE) {
		t.Error("exact window must have an undefined standard error")
	}
	expected := LLR(model.Likelihoods(model.WindowSupports(window)), BPH, SPH)
	if result.LLR != expected {
		t.Error("exact window LLR failed")
	}
}

func TestEvaluateWindowResampled(t *testing.T) {
	model, window := makeWideModel(t)
	params := Params{
		MinReads: 3, MaxReads: 4, Subsamples: 50, Seed: 7, Numerator: BPH, Denominator: SPH,
	}
	result := EvaluateWindow(model, window, params)
	if !result.Informative || !result.Resampled {
		t.Error("resampled window flags failed")
	}
	if math.IsNaN(result.SE) || result.SE < 0 {
		t.Error("resampled window standard error failed")
	}
	if math.IsNaN(result.LLR) || math.IsInf(result.LLR, 0) {
		t.Error("resampled window LLR failed")
	}
}

func TestEvaluateWindowDeterminism(t *testing.T) {
	model, window := makeWideModel(t)
	params := Params{
		MinReads: 3, MaxReads: 4, Subsamples: 50, Seed: 7, Numerator: BPH, Denominator: SPH,
	}
	result := EvaluateWindow(model, window, params)
	for i := 0; i < 5; i++ {
		if again := EvaluateWindow(model, window, params); again != result {
			t.Error("repeated evaluation determinism failed")
		}
	}
}
