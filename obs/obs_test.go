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
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/exascience/elploidy/panel"
	"github.com/willf/bitset"
)

func makeTestPanel(t *testing.T) *panel.Panel {
	t.Helper()
	row := func(columns ...uint) *bitset.BitSet {
		row := bitset.New(4)
		for _, column := range columns {
			row.Set(column)
		}
		return row
	}
	reference, err := panel.New(
		[]panel.SNP{
			{ID: "rs1", Pos: 100, Ref: "A", Alt: "G"},
			{ID: "rs2", Pos: 200, Ref: "C", Alt: "T"},
			{ID: "rs3", Pos: 300, Ref: "G", Alt: "A"},
		},
		[]*bitset.BitSet{row(0, 1), row(2, 3), row(0)},
		[]panel.Individual{
			{ID: "HG00096", Population: "GBR", Group: "EUR", Sex: 1},
			{ID: "HG00097", Population: "GBR", Group: "EUR", Sex: 2},
		},
		false,
	)
	if err != nil {
		t.Fatal(err)
	}
	return reference
}

func TestParsePolicy(t *testing.T) {
	for _, policy := range []Policy{KeepAll, KeepFirst, KeepRandom, Drop} {
		parsed, err := ParsePolicy(policy.String())
		if err != nil || parsed != policy {
			t.Error("ParsePolicy roundtrip failed")
		}
	}
	if _, err := ParsePolicy("keep"); err == nil {
		t.Error("ParsePolicy invalid name failed")
	}
}

func TestNewTable(t *testing.T) {
	reference := makeTestPanel(t)
	table := NewTable([]Observation{
		{Pos: 100, ReadID: "r1", Base: "G"},
		{Pos: 200, ReadID: "r1", Base: "C"},
		{Pos: 300, ReadID: "r2", Base: "A"},
		{Pos: 150, ReadID: "r2", Base: "T"}, // not a panel position
		{Pos: 100, ReadID: "r3", Base: "T"}, // matches neither allele
	}, reference, KeepAll, 0)
	positions := table.Positions()
	if len(positions) != 3 || positions[0] != 100 || positions[1] != 200 || positions[2] != 300 {
		t.Error("Positions failed")
	}
	if table.NObservations() != 3 {
		t.Error("NObservations failed")
	}
	if table.Mismatched() != 1 {
		t.Error("Mismatched failed")
	}
	if table.MatchedFraction() != 0.75 {
		t.Error("MatchedFraction failed")
	}
	if observations := table.At(100); len(observations) != 1 || observations[0].ReadID != "r1" {
		t.Error("At failed")
	}
}

func TestCollisionPolicies(t *testing.T) {
	reference := makeTestPanel(t)
	observations := []Observation{
		{Pos: 100, ReadID: "r1", Base: "G"},
		{Pos: 100, ReadID: "r2", Base: "A"},
		{Pos: 100, ReadID: "r3", Base: "G"},
		{Pos: 200, ReadID: "r1", Base: "C"},
	}

	table := NewTable(observations, reference, KeepAll, 0)
	if len(table.At(100)) != 3 {
		t.Error("KeepAll failed")
	}

	table = NewTable(observations, reference, KeepFirst, 0)
	if collisions := table.At(100); len(collisions) != 1 || collisions[0].ReadID != "r1" {
		t.Error("KeepFirst failed")
	}
	if len(table.At(200)) != 1 {
		t.Error("KeepFirst must not touch collision-free positions")
	}

	table = NewTable(observations, reference, Drop, 0)
	if len(table.At(100)) != 0 {
		t.Error("Drop failed")
	}
	if positions := table.Positions(); len(positions) != 1 || positions[0] != 200 {
		t.Error("Drop positions failed")
	}

	table = NewTable(observations, reference, KeepRandom, 42)
	collisions := table.At(100)
	if len(collisions) != 1 {
		t.Error("KeepRandom failed")
	}
	for i := 0; i < 10; i++ {
		again := NewTable(observations, reference, KeepRandom, 42)
		if again.At(100)[0].ReadID != collisions[0].ReadID {
			t.Error("KeepRandom determinism failed")
		}
	}
}

func TestLoad(t *testing.T) {
	reference := makeTestPanel(t)
	dir := t.TempDir()
	filename := filepath.Join(dir, "sample"+ObsExt)
	contents := ObsHeader +
		"100\tr1\tG\n" +
		"200\tr1\tC\n" +
		"300\tr2\tA\n"
	if err := ioutil.WriteFile(filename, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}
	table, err := Load(filename, reference, KeepAll, 0)
	if err != nil {
		t.Fatal(err)
	}
	if table.NObservations() != 3 {
		t.Error("Load failed")
	}
	if observations := table.At(200); len(observations) != 1 || observations[0].Base != "C" {
		t.Error("Load contents failed")
	}
}

func TestLoadSchemaErrors(t *testing.T) {
	reference := makeTestPanel(t)
	dir := t.TempDir()
	check := func(name, contents string) {
		filename := filepath.Join(dir, name+ObsExt)
		if err := ioutil.WriteFile(filename, []byte(contents), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(filename, reference, KeepAll, 0); err == nil {
			t.Error(name, "failed")
		} else if _, ok := err.(*panel.SchemaError); !ok {
			t.Error(name, "error type failed")
		}
	}
	check("header", "100\tr1\tG\n")
	check("fields", ObsHeader+"100\tr1\n")
	check("position", ObsHeader+"x\tr1\tG\n")
}
