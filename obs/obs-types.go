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

package obs

import (
	"fmt"
	"sort"

	"github.com/exascience/elploidy/internal"
	"github.com/exascience/elploidy/panel"
)

// Observation is one quality-filtered base call: the chromosome
// position it covers, the identifier of the source read, and the
// observed base.
type Observation struct {
	Pos    int
	ReadID string
	Base   string
}

// Policy determines how multiple observations at the same chromosome
// position are handled.
type Policy int

// The supported collision policies.
const (
	KeepAll Policy = iota
	KeepFirst
	KeepRandom
	Drop
)

// ParsePolicy parses a collision policy name.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "all":
		return KeepAll, nil
	case "first":
		return KeepFirst, nil
	case "random":
		return KeepRandom, nil
	case "drop":
		return Drop, nil
	}
	return 0, fmt.Errorf("invalid collision policy %v", s)
}

func (policy Policy) String() string {
	switch policy {
	case KeepAll:
		return "all"
	case KeepFirst:
		return "first"
	case KeepRandom:
		return "random"
	case Drop:
		return "drop"
	}
	return "unknown"
}

// Table is an immutable per-chromosome observation table: a mapping
// from SNP position to the observations at that position, restricted to
// positions present in the reference panel's legend.
type Table struct {
	positions  []int
	entries    map[int][]Observation
	matched    int
	mismatched int
}

// NewTable builds an observation table from raw observations.
// Observations at positions absent from the panel are ignored;
// observations whose base matches neither the reference nor the
// alternate allele are counted as mismatches and skipped. The collision
// policy is applied per position; for KeepRandom the choice is drawn
// from a generator seeded with the global seed mixed with the position,
// so it is stable across runs and worker counts.
func NewTable(observations []Observation, reference *panel.Panel, policy Policy, seed int64) *Table {
	entries := make(map[int][]Observation)
	table := &Table{entries: entries}
	for _, observation := range observations {
		index, ok := reference.Lookup(observation.Pos)
		if !ok {
			continue
		}
		snp := reference.SNPAt(index)
		if observation.Base != snp.Ref && observation.Base != snp.Alt {
			table.mismatched++
			continue
		}
		table.matched++
		entries[observation.Pos] = append(entries[observation.Pos], observation)
	}
	for pos, collisions := range entries {
		if len(collisions) < 2 {
			continue
		}
		switch policy {
		case KeepFirst:
			entries[pos] = collisions[:1]
		case KeepRandom:
			rand := internal.NewRand(internal.MixHash(seed, uint64(pos)))
			pick := collisions[rand.Intn(len(collisions))]
			entries[pos] = []Observation{pick}
		case Drop:
			delete(entries, pos)
		}
	}
	table.positions = make([]int, 0, len(entries))
	for pos := range entries {
		table.positions = append(table.positions, pos)
	}
	sort.Ints(table.positions)
	return table
}

// Positions returns the sorted positions with at least one retained
// observation.
func (table *Table) Positions() []int {
	return table.positions
}

// At returns the observations retained at the given position.
func (table *Table) At(pos int) []Observation {
	return table.entries[pos]
}

// NObservations returns the total number of retained observations.
func (table *Table) NObservations() (n int) {
	for _, observations := range table.entries {
		n += len(observations)
	}
	return n
}

// MatchedFraction returns the fraction of panel-position observations
// whose base matched a legend allele.
func (table *Table) MatchedFraction() float64 {
	if table.matched+table.mismatched == 0 {
		return 0
	}
	return float64(table.matched) / float64(table.matched+table.mismatched)
}

// Mismatched returns the number of observations whose base matched
// neither legend allele.
func (table *Table) Mismatched() int {
	return table.mismatched
}
