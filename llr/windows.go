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
)

type positionEntry struct {
	pos   int
	reads []int
}

// positionIndex inverts the per-read allele lists into an ascending
// sequence of positions, each with the indices of the reads observing
// it.
func positionIndex(reads []Read) []positionEntry {
	byPos := make(map[int][]int)
	for index, read := range reads {
		for _, allele := range read.Alleles {
			indices := byPos[allele.Pos]
			if n := len(indices); n == 0 || indices[n-1] != index {
				byPos[allele.Pos] = append(indices, index)
			}
		}
	}
	entries := make([]positionEntry, 0, len(byPos))
	for pos, indices := range byPos {
		entries = append(entries, positionEntry{pos: pos, reads: indices})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].pos < entries[j].pos
	})
	return entries
}

// Partition divides the chromosome into an ordered, non-overlapping
// sequence of genomic windows covering all positions observed by the
// given reads. A positive size selects fixed-width windows with
// boundaries at offset+k*size; windows without any observed SNP are not
// emitted, and windows with too few reads are emitted all the same and
// flagged non-informative downstream. A size of zero selects adaptive
// windows that grow from each starting SNP until minReads distinct
// reads are accumulated, trading spatial resolution for a stable
// per-window sample size; only the final adaptive window may fall
// short.
func Partition(reads []Read, size, offset, minReads int) []Window {
	entries := positionIndex(reads)
	if len(entries) == 0 {
		return nil
	}
	if size > 0 {
		return partitionFixed(entries, size, offset)
	}
	return partitionAdaptive(entries, minReads)
}

func partitionFixed(entries []positionEntry, size, offset int) []Window {
	var windows []Window
	var current *Window
	var members map[int]bool
	for _, entry := range entries {
		start := offset + floorDiv(entry.pos-offset, size)*size
		if current == nil || start != current.Start {
			if current != nil {
				windows = append(windows, *current)
			}
			current = &Window{Start: start, End: start + size}
			members = make(map[int]bool)
		}
		current.SNPs = append(current.SNPs, entry.pos)
		for _, index := range entry.reads {
			if !members[index] {
				members[index] = true
				current.Reads = append(current.Reads, index)
			}
		}
	}
	return append(windows, *current)
}

func partitionAdaptive(entries []positionEntry, minReads int) []Window {
	var windows []Window
	var current *Window
	var members map[int]bool
	for _, entry := range entries {
		if current == nil {
			current = &Window{Start: entry.pos}
			members = make(map[int]bool)
		}
		current.SNPs = append(current.SNPs, entry.pos)
		for _, index := range entry.reads {
			if !members[index] {
				members[index] = true
				current.Reads = append(current.Reads, index)
			}
		}
		if len(current.Reads) >= minReads {
			current.End = entry.pos + 1
			windows = append(windows, *current)
			current = nil
		}
	}
	if current != nil {
		current.End = current.SNPs[len(current.SNPs)-1] + 1
		windows = append(windows, *current)
	}
	return windows
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
