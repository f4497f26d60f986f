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
	"math/bits"

	log "github.com/sirupsen/logrus"
	"github.com/willf/bitset"
)

// MaxModelReads is the largest number of reads the likelihood model
// evaluates in one pass. Subset enumeration over the reads bounds both
// time and memory at 2^MaxModelReads.
const MaxModelReads = 16

// ZeroLikelihoodLLR is the bounded stand-in for a log-likelihood ratio
// whose numerator or denominator likelihood is exactly zero.
const ZeroLikelihoodLLR = 1.23456789

// Model evaluates the probability of a set of reads under each ploidy
// scenario. A read's contribution is its support vector: the haplotype
// columns compatible with all its contributing alleles in the window
// under evaluation. The joint frequency of a read subset is the
// mixture-weighted frequency of the intersection of their support
// vectors, and a scenario's likelihood averages products of joint
// frequencies over all assignments of reads to the scenario's haplotype
// copies.
type Model struct {
	scorer *Scorer
}

// NewModel returns a likelihood model over the scorer's reference
// haplotypes and ancestry mixture.
func NewModel(scorer *Scorer) *Model {
	return &Model{scorer: scorer}
}

// WindowSupports computes the support vectors of a window's reads,
// restricted to the window's interval. Reads without a contributing
// allele inside the interval are skipped.
func (model *Model) WindowSupports(window Window) []*bitset.BitSet {
	supports := make([]*bitset.BitSet, 0, len(window.Reads))
	reads := model.scorer.Reads()
	for _, index := range window.Reads {
		if support := model.scorer.Support(reads[index].Alleles, window.Start, window.End); support != nil {
			supports = append(supports, support)
		}
	}
	return supports
}

// Likelihoods computes the likelihood of the reads with the given
// support vectors under every ploidy scenario.
//
// With joint frequencies F over read subsets, the scenario likelihoods
// are exact averages over the assignments of reads to haplotype copies:
//
//	MONOSOMY = F(all)
//	DISOMY   = 2^-n sum_S F(S) F(~S)
//	SPH      = 3^-n sum_S 2^|S| F(S) F(~S)
//	BPH      = 3^-n sum_S F(S) sum_{A subset of ~S} F(A) F(~S\A)
//
// For two, three, and four reads these reduce to the familiar closed
// forms, e.g. BPH = (ab+2ab')/3 for two reads with pair frequency ab
// and product of singles ab'.
func (model *Model) Likelihoods(supports []*bitset.BitSet) Likelihoods {
	n := len(supports)
	if n < 1 || n > MaxModelReads {
		log.Panicf("likelihood model invoked with %v reads", n)
	}
	size := 1 << uint(n)
	full := size - 1
	joint := make([]float64, size)
	vectors := make([]*bitset.BitSet, size)
	joint[0] = 1
	for mask := 1; mask < size; mask++ {
		low := mask & -mask
		if rest := mask ^ low; rest == 0 {
			vectors[mask] = supports[bits.TrailingZeros(uint(mask))]
		} else {
			vectors[mask] = vectors[rest].Intersection(supports[bits.TrailingZeros(uint(low))])
		}
		joint[mask] = model.scorer.mixture.Frequency(vectors[mask])
	}
	// pair[T] = sum over subsets A of T of joint[A]*joint[T\A]
	pair := make([]float64, size)
	for mask := 0; mask < size; mask++ {
		sum := 0.0
		for sub := mask; ; sub = (sub - 1) & mask {
			sum += joint[sub] * joint[mask^sub]
			if sub == 0 {
				break
			}
		}
		pair[mask] = sum
	}
	var disomy, sph, bph float64
	for mask := 0; mask < size; mask++ {
		f := joint[mask]
		complement := joint[full^mask]
		disomy += f * complement
		sph += float64(int(1)<<uint(bits.OnesCount(uint(mask)))) * f * complement
		bph += f * pair[full^mask]
	}
	pow3 := math.Pow(3, float64(n))
	var likelihoods Likelihoods
	likelihoods[Monosomy] = joint[full]
	likelihoods[Disomy] = disomy / float64(size)
	likelihoods[SPH] = sph / pow3
	likelihoods[BPH] = bph / pow3
	return likelihoods
}

// LLR returns the log-likelihood ratio between two scenarios. When
// exactly one of the likelihoods is zero the ratio is the bounded
// sentinel with the appropriate sign, and when both are zero it is
// zero, so that an all-zero likelihood never propagates as a crash or
// an infinity. LLR(a,b) equals -LLR(b,a) exactly.
func LLR(likelihoods Likelihoods, numerator, denominator Scenario) float64 {
	y, x := likelihoods[numerator], likelihoods[denominator]
	switch {
	case x != 0 && y != 0:
		// computed as a difference of logs so that the sign symmetry
		// LLR(a,b) == -LLR(b,a) holds exactly in floating point
		return math.Log(y) - math.Log(x)
	case x != 0:
		return -ZeroLikelihoodLLR
	case y != 0:
		return ZeroLikelihoodLLR
	}
	return 0
}
