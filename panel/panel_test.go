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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/willf/bitset"
)

func makeRow(nColumns uint, columns ...uint) *bitset.BitSet {
	row := bitset.New(nColumns)
	for _, column := range columns {
		row.Set(column)
	}
	return row
}

func makeIndividuals() []Individual {
	return []Individual{
		{ID: "HG00096", Population: "GBR", Group: "EUR", Sex: 1},
		{ID: "HG00097", Population: "GBR", Group: "EUR", Sex: 2},
		{ID: "NA18486", Population: "YRI", Group: "AFR", Sex: 1},
		{ID: "NA18488", Population: "YRI", Group: "AFR", Sex: 2},
	}
}

func makeSNPs() []SNP {
	return []SNP{
		{ID: "rs1", Pos: 100, Ref: "A", Alt: "G"},
		{ID: "rs2", Pos: 200, Ref: "C", Alt: "T"},
		{ID: "rs3", Pos: 300, Ref: "G", Alt: "A"},
	}
}

func makeRows() []*bitset.BitSet {
	return []*bitset.BitSet{
		makeRow(8, 0, 1, 4),
		makeRow(8, 2, 3, 5, 6),
		makeRow(8, 0, 7),
	}
}

func TestNew(t *testing.T) {
	reference, err := New(makeSNPs(), makeRows(), makeIndividuals(), false)
	if err != nil {
		t.Fatal(err)
	}
	if reference.NSNPs() != 3 {
		t.Error("NSNPs failed")
	}
	if reference.NHaplotypes() != 8 {
		t.Error("NHaplotypes failed")
	}
	if snp := reference.SNPAt(1); snp.ID != "rs2" || snp.Pos != 200 || snp.Ref != "C" || snp.Alt != "T" {
		t.Error("SNPAt failed")
	}
	if reference.AltRow(0).Count() != 3 {
		t.Error("AltRow failed")
	}
	if len(reference.Individuals()) != 4 {
		t.Error("Individuals failed")
	}
}

func TestNewSchemaErrors(t *testing.T) {
	check := func(name string, snps []SNP, rows []*bitset.BitSet, individuals []Individual) {
		if _, err := New(snps, rows, individuals, false); err == nil {
			t.Error(name, "failed")
		} else if _, ok := err.(*SchemaError); !ok {
			t.Error(name, "error type failed")
		}
	}
	check("empty legend", nil, nil, makeIndividuals())
	check("row count mismatch", makeSNPs(), makeRows()[:2], makeIndividuals())
	check("empty samples table", makeSNPs(), makeRows(), nil)
	check("column count mismatch", makeSNPs(), makeRows(), makeIndividuals()[:3])
	check("missing group", makeSNPs(), makeRows(), []Individual{
		{ID: "HG00096", Population: "GBR", Sex: 1},
		{ID: "HG00097", Population: "GBR", Group: "EUR", Sex: 2},
		{ID: "NA18486", Population: "YRI", Group: "AFR", Sex: 1},
		{ID: "NA18488", Population: "YRI", Group: "AFR", Sex: 2},
	})

	unsorted := makeSNPs()
	unsorted[0], unsorted[1] = unsorted[1], unsorted[0]
	check("unsorted legend", unsorted, makeRows(), makeIndividuals())

	duplicated := makeSNPs()
	duplicated[1].Pos = 100
	check("duplicated position", duplicated, makeRows(), makeIndividuals())
}

func TestNewAllowUnsorted(t *testing.T) {
	snps := makeSNPs()
	rows := makeRows()
	snps[0], snps[2] = snps[2], snps[0]
	rows[0], rows[2] = rows[2], rows[0]
	reference, err := New(snps, rows, makeIndividuals(), true)
	if err != nil {
		t.Fatal(err)
	}
	if reference.SNPAt(0).Pos != 100 || reference.SNPAt(2).Pos != 300 {
		t.Error("sorting unsorted legend failed")
	}
	if reference.AltRow(0).Count() != 3 || reference.AltRow(2).Count() != 2 {
		t.Error("sorting haplotype rows failed")
	}

	snps = makeSNPs()
	snps[1] = SNP{ID: "rs2b", Pos: 100, Ref: "C", Alt: "T"}
	reference, err = New(snps, makeRows(), makeIndividuals(), true)
	if err != nil {
		t.Fatal(err)
	}
	if reference.NSNPs() != 2 {
		t.Error("deduplicating legend positions failed")
	}
	if reference.SNPAt(0).ID != "rs1" {
		t.Error("deduplication must keep the first occurrence")
	}
}

func TestLookup(t *testing.T) {
	reference, err := New(makeSNPs(), makeRows(), makeIndividuals(), false)
	if err != nil {
		t.Fatal(err)
	}
	if index, ok := reference.Lookup(200); !ok || index != 1 {
		t.Error("Lookup present position failed")
	}
	if _, ok := reference.Lookup(150); ok {
		t.Error("Lookup absent position failed")
	}
	if _, ok := reference.Lookup(400); ok {
		t.Error("Lookup past last position failed")
	}
}

func TestColumnMasks(t *testing.T) {
	reference, err := New(makeSNPs(), makeRows(), makeIndividuals(), false)
	if err != nil {
		t.Fatal(err)
	}
	groups := reference.Superpopulations()
	if len(groups) != 2 || groups[0] != "AFR" || groups[1] != "EUR" {
		t.Error("Superpopulations failed")
	}
	eur, ok := reference.ColumnMask("EUR")
	if !ok || eur.Count() != 4 {
		t.Error("EUR column mask failed")
	}
	for column := uint(0); column < 4; column++ {
		if !eur.Test(column) {
			t.Error("EUR column mask columns failed")
		}
	}
	afr, ok := reference.ColumnMask("AFR")
	if !ok || afr.Count() != 4 || afr.IntersectionCardinality(eur) != 0 {
		t.Error("AFR column mask failed")
	}
	if _, ok := reference.ColumnMask("EAS"); ok {
		t.Error("absent column mask failed")
	}
}

const (
	testLegend = "id position ref alt\n" +
		"rs1 100 A G\n" +
		"rs2 200 C T\n" +
		"rs3 300 G A\n"
	testHap = "1 1 0 0 1 0 0 0\n" +
		"0 0 1 1 0 1 1 0\n" +
		"1 0 0 0 0 0 0 1\n"
	testSamples = "sample population group sex\n" +
		"HG00096 GBR EUR 1\n" +
		"HG00097 GBR EUR 2\n" +
		"NA18486 YRI AFR 1\n" +
		"NA18488 YRI AFR 2\n"
)

func writeTestFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	filename := filepath.Join(dir, name)
	if err := ioutil.WriteFile(filename, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}
	return filename
}

func writeTestFileGz(t *testing.T, dir, name, contents string) string {
	t.Helper()
	filename := filepath.Join(dir, name)
	file, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	out := gzip.NewWriter(file)
	if _, err := out.Write([]byte(contents)); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	if err := file.Close(); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	legend := writeTestFile(t, dir, "chr21"+LegendExt, testLegend)
	hap := writeTestFileGz(t, dir, "chr21"+HapExt+".gz", testHap)
	samples := writeTestFile(t, dir, "chr21"+SamplesExt, testSamples)

	reference, err := Load(legend, hap, samples, false)
	if err != nil {
		t.Fatal(err)
	}
	if reference.NSNPs() != 3 || reference.NHaplotypes() != 8 {
		t.Error("Load dimensions failed")
	}
	if !reference.AltRow(1).Equal(makeRow(8, 2, 3, 5, 6)) {
		t.Error("Load haplotype row failed")
	}
	if individual := reference.Individuals()[2]; individual.ID != "NA18486" || individual.Group != "AFR" {
		t.Error("Load samples failed")
	}
}

func TestLoadSchemaErrors(t *testing.T) {
	dir := t.TempDir()
	legend := writeTestFile(t, dir, "ok"+LegendExt, testLegend)
	hap := writeTestFile(t, dir, "ok"+HapExt, testHap)
	samples := writeTestFile(t, dir, "ok"+SamplesExt, testSamples)

	check := func(name, legend, hap, samples string) {
		if _, err := Load(legend, hap, samples, false); err == nil {
			t.Error(name, "failed")
		} else if _, ok := err.(*SchemaError); !ok {
			t.Error(name, "error type failed")
		}
	}
	check("legend header",
		writeTestFile(t, dir, "bad1"+LegendExt, "chrom pos\nrs1 100 A G\n"), hap, samples)
	check("legend position",
		writeTestFile(t, dir, "bad2"+LegendExt, "id position ref alt\nrs1 x A G\n"), hap, samples)
	check("haplotype value",
		legend, writeTestFile(t, dir, "bad3"+HapExt, "1 1 0 0 1 0 0 2\n0 0 1 1 0 1 1 0\n1 0 0 0 0 0 0 1\n"), samples)
	check("samples header",
		legend, hap, writeTestFile(t, dir, "bad4"+SamplesExt, "id pop group sex\nHG00096 GBR EUR 1\n"))
	check("row count",
		writeTestFile(t, dir, "bad5"+LegendExt, "id position ref alt\nrs1 100 A G\n"), hap, samples)
}
