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
	"fmt"
	"strings"
	"time"
)

// Scenario is one of the competing ploidy hypotheses a window's reads
// are evaluated under. Each scenario is defined by the multiset of
// haplotype copies it assumes.
type Scenario int

// The supported ploidy scenarios. BPH (both parental homologs) is the
// trisomy with three unmatched haplotypes; SPH (single parental
// homolog) is the trisomy with two identical haplotypes and one
// unmatched haplotype.
const (
	Monosomy Scenario = iota
	Disomy
	SPH
	BPH
)

// NScenarios is the number of ploidy scenarios.
const NScenarios = 4

func (scenario Scenario) String() string {
	switch scenario {
	case Monosomy:
		return "MONOSOMY"
	case Disomy:
		return "DISOMY"
	case SPH:
		return "SPH"
	case BPH:
		return "BPH"
	}
	return "unknown"
}

// ParseScenario parses a scenario name, ignoring case.
func ParseScenario(name string) (Scenario, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "MONOSOMY":
		return Monosomy, nil
	case "DISOMY":
		return Disomy, nil
	case "SPH":
		return SPH, nil
	case "BPH":
		return BPH, nil
	}
	return 0, fmt.Errorf("invalid ploidy scenario %v", name)
}

// Likelihoods holds the likelihood of a set of reads under every ploidy
// scenario, indexed by Scenario.
type Likelihoods [NScenarios]float64

// Window is a genomic window: a half-open position interval, the member
// SNP positions with at least one contributing observation, and the
// indices of the distinct eligible reads observed within it.
type Window struct {
	Start, End int
	SNPs       []int
	Reads      []int
}

// Result is the outcome of evaluating one genomic window. SE is NaN
// when no resampling occurred. Non-informative windows are retained
// with a zero LLR so that excluded data remains observable downstream.
type Result struct {
	Start, End  int
	LLR         float64
	SE          float64
	Reads       int
	SNPs        int
	Informative bool
	Resampled   bool
}

// Summary holds the chromosome-level reduction of all window results.
// MeanLLR, SE, and FractionNegative are NaN when no window is
// informative.
type Summary struct {
	MeanLLR            float64
	SE                 float64
	InformativeWindows int
	ExcludedWindows    int
	FractionNegative   float64
	MeanReads          float64
	MeanSNPs           float64
}

// Params are the run parameters of the LLR engine. A WindowSize of zero
// selects adaptive windows that grow until MinReads distinct reads are
// accumulated.
type Params struct {
	WindowSize  int
	Offset      int
	MinReads    int
	MaxReads    int
	Subsamples  int
	MinHF       float64
	MinScore    int
	Seed        int64
	Numerator   Scenario
	Denominator Scenario
}

// DefaultParams returns the canonical parameter set: adaptive windows,
// 6 reads per window, evaluations over at most 4 reads, 100 bootstrap
// draws, haplotype frequencies filtered at 0.05, and BPH versus SPH as
// the scenario pair.
func DefaultParams() Params {
	return Params{
		WindowSize:  0,
		Offset:      0,
		MinReads:    6,
		MaxReads:    4,
		Subsamples:  100,
		MinHF:       0.05,
		MinScore:    2,
		Seed:        0,
		Numerator:   BPH,
		Denominator: SPH,
	}
}

// Validate checks the parameter ranges before any window is processed.
func (params Params) Validate() error {
	if params.WindowSize < 0 {
		return fmt.Errorf("invalid window size %v", params.WindowSize)
	}
	if params.Offset < 0 {
		return fmt.Errorf("invalid window offset %v", params.Offset)
	}
	if params.MinReads < 3 {
		return fmt.Errorf("min-reads is %v, must be at least 3", params.MinReads)
	}
	if params.MaxReads < 2 {
		return fmt.Errorf("max-reads is %v, must be at least 2", params.MaxReads)
	}
	if params.MaxReads > MaxModelReads {
		return fmt.Errorf("max-reads is %v, must be at most %v", params.MaxReads, MaxModelReads)
	}
	if params.Subsamples < 1 {
		return fmt.Errorf("invalid number of subsamples %v", params.Subsamples)
	}
	if params.MinHF <= 0 || params.MinHF >= 0.5 {
		return fmt.Errorf("min-HF is %v, must lie strictly between 0 and 0.5", params.MinHF)
	}
	if params.MinScore < 0 {
		return fmt.Errorf("invalid minimal read score %v", params.MinScore)
	}
	if params.Numerator < 0 || params.Numerator >= NScenarios || params.Denominator < 0 || params.Denominator >= NScenarios {
		return fmt.Errorf("invalid scenario pair %v,%v", params.Numerator, params.Denominator)
	}
	if params.Numerator == params.Denominator {
		return fmt.Errorf("scenario pair compares %v against itself", params.Numerator)
	}
	return nil
}

// Report is the self-describing result artifact of one engine run: run
// metadata, the effective parameters, the ordered per-window results,
// and the chromosome-level summary.
type Report struct {
	RunID           string
	Program         string
	Version         string
	Created         time.Time
	Chromosome      string
	ObsFilename     string
	LegendFilename  string
	HapFilename     string
	SamplesFilename string
	Mixture         string
	CollisionPolicy string
	Params          Params
	MatchedFraction float64
	NSNPs           int
	NHaplotypes     uint
	Windows         []Result
	Summary         Summary
}
