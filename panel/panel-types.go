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

package panel

import (
	"fmt"
	"sort"

	"github.com/willf/bitset"
)

// SNP is one row of the reference-panel legend: a biallelic marker at a
// unique chromosome position.
type SNP struct {
	ID  string
	Pos int
	Ref string
	Alt string
}

// Individual is one row of the reference-panel samples table. Group is
// the superpopulation label used for ancestry subsetting; every
// individual contributes two haplotype columns to the panel.
type Individual struct {
	ID         string
	Population string
	Group      string
	Sex        int
}

// SchemaError reports malformed or mutually inconsistent reference-panel
// inputs. It is fatal and surfaces before any window is processed.
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string {
	return e.Msg
}

func schemaErrorf(format string, args ...interface{}) *SchemaError {
	return &SchemaError{Msg: fmt.Sprintf(format, args...)}
}

// Panel is an immutable in-memory reference panel: the legend, the
// bit-packed haplotype matrix, and the samples table. One bit row per
// SNP, one column per haplotype, bit set when the haplotype carries the
// alternate allele. Panels are loaded once and shared read-only between
// workers; ancestry-restricted views are expressed as column masks over
// the shared storage, never as copies.
type Panel struct {
	snps        []SNP
	rows        []*bitset.BitSet
	individuals []Individual
	nHaplotypes uint
	groups      map[string]*bitset.BitSet
	groupNames  []string
}

// New builds a panel from a legend, a haplotype matrix, and a samples
// table, validating their mutual consistency. The haplotype rows are
// retained without copying. If allowUnsorted is set, legend rows may
// arrive in any order and duplicated positions keep their first
// occurrence; otherwise non-ascending positions are a SchemaError.
func New(snps []SNP, rows []*bitset.BitSet, individuals []Individual, allowUnsorted bool) (*Panel, error) {
	if len(snps) == 0 {
		return nil, schemaErrorf("reference panel has an empty legend")
	}
	if len(snps) != len(rows) {
		return nil, schemaErrorf("legend has %v rows, but the haplotype matrix has %v rows", len(snps), len(rows))
	}
	if len(individuals) == 0 {
		return nil, schemaErrorf("reference panel has an empty samples table")
	}
	nHaplotypes := uint(2 * len(individuals))
	for i, row := range rows {
		if row.Len() != nHaplotypes {
			return nil, schemaErrorf("haplotype row %v has %v columns; the samples table implies %v", i, row.Len(), nHaplotypes)
		}
	}
	if !sort.SliceIsSorted(snps, func(i, j int) bool { return snps[i].Pos < snps[j].Pos }) {
		if !allowUnsorted {
			return nil, schemaErrorf("legend positions are not in ascending order")
		}
		indices := make([]int, len(snps))
		for i := range indices {
			indices[i] = i
		}
		sort.SliceStable(indices, func(i, j int) bool { return snps[indices[i]].Pos < snps[indices[j]].Pos })
		sortedSNPs := make([]SNP, len(snps))
		sortedRows := make([]*bitset.BitSet, len(rows))
		for i, index := range indices {
			sortedSNPs[i] = snps[index]
			sortedRows[i] = rows[index]
		}
		snps, rows = sortedSNPs, sortedRows
	}
	for i := 1; i < len(snps); i++ {
		if snps[i].Pos == snps[i-1].Pos {
			if !allowUnsorted {
				return nil, schemaErrorf("duplicated legend position %v", snps[i].Pos)
			}
			snps = append(snps[:i], snps[i+1:]...)
			rows = append(rows[:i], rows[i+1:]...)
			i--
		}
	}
	groups := make(map[string]*bitset.BitSet)
	var groupNames []string
	for i, individual := range individuals {
		if individual.Group == "" {
			return nil, schemaErrorf("individual %v has no superpopulation label", individual.ID)
		}
		mask := groups[individual.Group]
		if mask == nil {
			mask = bitset.New(nHaplotypes)
			groups[individual.Group] = mask
			groupNames = append(groupNames, individual.Group)
		}
		mask.Set(uint(2 * i)).Set(uint(2*i + 1))
	}
	sort.Strings(groupNames)
	return &Panel{
		snps:        snps,
		rows:        rows,
		individuals: individuals,
		nHaplotypes: nHaplotypes,
		groups:      groups,
		groupNames:  groupNames,
	}, nil
}

// NSNPs returns the number of SNPs in the panel.
func (panel *Panel) NSNPs() int {
	return len(panel.snps)
}

// NHaplotypes returns the number of haplotype columns in the panel.
func (panel *Panel) NHaplotypes() uint {
	return panel.nHaplotypes
}

// SNPAt returns the SNP record at the given legend index.
func (panel *Panel) SNPAt(index int) SNP {
	return panel.snps[index]
}

// Lookup returns the legend index for a chromosome position.
func (panel *Panel) Lookup(pos int) (int, bool) {
	index := sort.Search(len(panel.snps), func(i int) bool {
		return panel.snps[i].Pos >= pos
	})
	if index < len(panel.snps) && panel.snps[index].Pos == pos {
		return index, true
	}
	return -1, false
}

// AltRow returns the haplotype bit row for the given legend index: bit
// set where the haplotype carries the alternate allele. The returned
// bit set is shared storage and must not be modified.
func (panel *Panel) AltRow(index int) *bitset.BitSet {
	return panel.rows[index]
}

// Individuals returns the samples table.
func (panel *Panel) Individuals() []Individual {
	return panel.individuals
}

// Superpopulations returns the sorted superpopulation labels that occur
// in the samples table.
func (panel *Panel) Superpopulations() []string {
	return panel.groupNames
}

// ColumnMask returns the haplotype-column mask for a superpopulation
// label. The mask is shared storage and must not be modified.
func (panel *Panel) ColumnMask(group string) (*bitset.BitSet, bool) {
	mask, ok := panel.groups[group]
	return mask, ok
}
