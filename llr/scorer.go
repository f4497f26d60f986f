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
	"sort"

	"github.com/exascience/elploidy/ancestry"
	"github.com/exascience/elploidy/obs"
	"github.com/exascience/elploidy/panel"
	"github.com/willf/bitset"
)

// Allele is one observed allele: a chromosome position and the base
// observed there.
type Allele struct {
	Pos  int
	Base string
}

// Read is an eligible sequencing read: its identifier, its score, and
// its contributing alleles in ascending position order. Only alleles at
// SNPs that pass the haplotype-frequency filter contribute; the score
// is the number of distinct contributing positions.
type Read struct {
	ID      string
	Score   int
	Alleles []Allele
}

// Scorer matches observed alleles against the reference haplotypes
// under an ancestry mixture. For every contributing allele it holds a
// bit vector over the eligible haplotype columns, with a bit set where
// the haplotype carries the observed base; all compatibility and
// frequency computations reduce to population counts over these
// vectors. A scorer is immutable once built and safe for concurrent
// use.
type Scorer struct {
	reference    *panel.Panel
	mixture      *ancestry.Mixture
	minHF        float64
	minScore     int
	contributing map[int]bool
	vectors      map[Allele]*bitset.BitSet
	reads        []Read
}

// NewScorer builds a scorer for an observation table. A SNP contributes
// only when its mixture-weighted alternate-allele frequency lies
// strictly between minHF and 1-minHF; near-fixed SNPs carry negligible
// discriminating information. Reads whose score falls below minScore
// are excluded.
func NewScorer(reference *panel.Panel, mixture *ancestry.Mixture, table *obs.Table, minHF float64, minScore int) *Scorer {
	scorer := &Scorer{
		reference:    reference,
		mixture:      mixture,
		minHF:        minHF,
		minScore:     minScore,
		contributing: make(map[int]bool),
		vectors:      make(map[Allele]*bitset.BitSet),
	}
	eligible := mixture.EligibleColumns()
	byRead := make(map[string]*Read)
	var readIDs []string
	for _, pos := range table.Positions() {
		index, ok := reference.Lookup(pos)
		if !ok {
			continue
		}
		snp := reference.SNPAt(index)
		altRow := reference.AltRow(index)
		frequency := mixture.Frequency(altRow)
		if frequency <= minHF || frequency >= 1-minHF {
			continue
		}
		scorer.contributing[pos] = true
		for _, observation := range table.At(pos) {
			allele := Allele{Pos: pos, Base: observation.Base}
			if _, ok := scorer.vectors[allele]; !ok {
				switch observation.Base {
				case snp.Alt:
					scorer.vectors[allele] = altRow.Intersection(eligible)
				case snp.Ref:
					scorer.vectors[allele] = eligible.Difference(altRow)
				default:
					continue
				}
			}
			read := byRead[observation.ReadID]
			if read == nil {
				read = &Read{ID: observation.ReadID}
				byRead[observation.ReadID] = read
				readIDs = append(readIDs, observation.ReadID)
			}
			if n := len(read.Alleles); n == 0 || read.Alleles[n-1].Pos != pos {
				read.Score++
			}
			read.Alleles = append(read.Alleles, allele)
		}
	}
	for _, id := range readIDs {
		if read := byRead[id]; read.Score >= minScore {
			scorer.reads = append(scorer.reads, *read)
		}
	}
	sort.SliceStable(scorer.reads, func(i, j int) bool {
		ri, rj := &scorer.reads[i], &scorer.reads[j]
		if ri.Alleles[0].Pos != rj.Alleles[0].Pos {
			return ri.Alleles[0].Pos < rj.Alleles[0].Pos
		}
		return ri.ID < rj.ID
	})
	return scorer
}

// Reads returns the eligible reads in ascending order of their first
// contributing position.
func (scorer *Scorer) Reads() []Read {
	return scorer.reads
}

// Contributing reports whether the SNP at the given position passes the
// haplotype-frequency filter.
func (scorer *Scorer) Contributing(pos int) bool {
	return scorer.contributing[pos]
}

// NContributing returns the number of observed SNPs that pass the
// haplotype-frequency filter.
func (scorer *Scorer) NContributing() int {
	return len(scorer.contributing)
}

// Vector returns the haplotype bit vector for an observed allele, or
// nil for alleles that do not contribute. The vector is shared storage
// and must not be modified.
func (scorer *Scorer) Vector(allele Allele) *bitset.BitSet {
	return scorer.vectors[allele]
}

// Support returns the haplotype columns compatible with every one of
// the given alleles that falls inside the half-open interval
// [start,end), or nil when no allele falls inside it.
func (scorer *Scorer) Support(alleles []Allele, start, end int) *bitset.BitSet {
	var support *bitset.BitSet
	for _, allele := range alleles {
		if allele.Pos < start || allele.Pos >= end {
			continue
		}
		vector := scorer.vectors[allele]
		if vector == nil {
			continue
		}
		if support == nil {
			support = vector.Clone()
		} else {
			support.InPlaceIntersection(vector)
		}
	}
	return support
}

// Agreement returns the number of the given alleles whose observed base
// matches the haplotype in the given column: the per-read,
// per-haplotype compatibility score.
func (scorer *Scorer) Agreement(alleles []Allele, column uint) (agreement int) {
	for _, allele := range alleles {
		if vector := scorer.vectors[allele]; vector != nil && vector.Test(column) {
			agreement++
		}
	}
	return agreement
}
