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

	"github.com/exascience/elploidy/internal"
	"github.com/willf/bitset"
	"gonum.org/v1/gonum/stat"
)

// EvaluateWindow produces the variance-controlled LLR estimate for one
// genomic window. Windows below MinReads are marked non-informative and
// retained with a zero LLR. Windows with at most MaxReads reads are
// evaluated exactly, with an undefined (NaN) standard error. Larger
// windows are resampled: Subsamples draws of MaxReads reads without
// replacement, reduced to the mean LLR and the standard error of that
// mean. The per-window generator is seeded from the global seed mixed
// with the window start, so repeated runs reproduce identical results
// regardless of the worker-pool size.
func EvaluateWindow(model *Model, window Window, params Params) Result {
	result := Result{
		Start: window.Start,
		End:   window.End,
		LLR:   0,
		SE:    math.NaN(),
		Reads: len(window.Reads),
		SNPs:  len(window.SNPs),
	}
	if len(window.Reads) < params.MinReads {
		return result
	}
	supports := model.WindowSupports(window)
	if len(supports) < params.MinReads {
		// reads lost their in-window alleles; too few remain
		result.Reads = len(supports)
		return result
	}
	result.Informative = true
	if len(supports) <= params.MaxReads {
		result.LLR = LLR(model.Likelihoods(supports), params.Numerator, params.Denominator)
		return result
	}
	result.Resampled = true
	rand := internal.NewRand(internal.MixHash(params.Seed, uint64(window.Start)))
	n := len(supports)
	indices := make([]int, n)
	subset := make([]*bitset.BitSet, params.MaxReads)
	draws := make([]float64, params.Subsamples)
	for draw := range draws {
		for i := range indices {
			indices[i] = i
		}
		// partial Fisher-Yates: the first MaxReads entries are a
		// uniform draw without replacement
		for i := 0; i < params.MaxReads; i++ {
			j := i + rand.Intn(n-i)
			indices[i], indices[j] = indices[j], indices[i]
			subset[i] = supports[indices[i]]
		}
		draws[draw] = LLR(model.Likelihoods(subset), params.Numerator, params.Denominator)
	}
	result.LLR = stat.Mean(draws, nil)
	result.SE = stat.StdDev(draws, nil) / math.Sqrt(float64(len(draws)))
	return result
}
