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

	"gonum.org/v1/gonum/stat"
)

// Summarize reduces all window results of a chromosome into the
// chromosome-level summary metrics. Only informative windows enter the
// mean; the standard error of the mean is propagated from the defined
// window standard errors as sqrt(sum se^2)/k. The fraction of
// informative windows with a negative LLR is a robustness diagnostic
// independent of the LLR magnitude, and the excluded-window count makes
// discarded data observable.
func Summarize(results []Result) Summary {
	var llrs []float64
	var varianceSum float64
	var negative, sumReads, sumSNPs int
	summary := Summary{}
	for _, result := range results {
		if !result.Informative {
			summary.ExcludedWindows++
			continue
		}
		llrs = append(llrs, result.LLR)
		if !math.IsNaN(result.SE) {
			varianceSum += result.SE * result.SE
		}
		if result.LLR < 0 {
			negative++
		}
		sumReads += result.Reads
		sumSNPs += result.SNPs
	}
	summary.InformativeWindows = len(llrs)
	if len(llrs) == 0 {
		summary.MeanLLR = math.NaN()
		summary.SE = math.NaN()
		summary.FractionNegative = math.NaN()
		return summary
	}
	k := float64(len(llrs))
	summary.MeanLLR = stat.Mean(llrs, nil)
	summary.SE = math.Sqrt(varianceSum) / k
	summary.FractionNegative = float64(negative) / k
	summary.MeanReads = float64(sumReads) / k
	summary.MeanSNPs = float64(sumSNPs) / k
	return summary
}
