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
	"bufio"
	"strconv"
	"strings"

	"github.com/exascience/elploidy/internal"
	"github.com/exascience/pargo/pipeline"
	"github.com/willf/bitset"
)

// File extensions for the reference-panel artifacts. Each may
// additionally carry a .gz suffix for gzip-compressed contents.
const (
	LegendExt  = ".legend"
	HapExt     = ".hap"
	SamplesExt = ".samples"
)

// Load reads a reference panel from an IMPUTE2-style legend file, a
// haplotype matrix file, and a samples file, each optionally
// gzip-compressed. It returns a SchemaError when the three artifacts are
// malformed or mutually inconsistent. If allowUnsorted is set,
// out-of-order legend positions are sorted and duplicated positions keep
// their first occurrence instead of failing the load.
func Load(legendFilename, hapFilename, samplesFilename string, allowUnsorted bool) (*Panel, error) {
	snps, err := readLegend(legendFilename)
	if err != nil {
		return nil, err
	}
	rows, err := readHaplotypes(hapFilename)
	if err != nil {
		return nil, err
	}
	individuals, err := readSamples(samplesFilename)
	if err != nil {
		return nil, err
	}
	return New(snps, rows, individuals, allowUnsorted)
}

func readLegend(filename string) (snps []SNP, err error) {
	in, err := internal.OpenCompressed(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := in.Close(); nerr != nil {
			if err == nil {
				snps = nil
				err = nerr
			}
		}
	}()
	input := bufio.NewReader(in)
	header, err := input.ReadString('\n')
	if err != nil {
		return nil, schemaErrorf("%v is not a legend file: %v", filename, err)
	}
	if fields := strings.Fields(header); len(fields) != 4 || fields[0] != "id" {
		return nil, schemaErrorf("%v is not a legend file - invalid header %q", filename, strings.TrimSuffix(header, "\n"))
	}
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(input))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		parsed := make([]SNP, 0, len(lines))
		for _, line := range lines {
			fields := strings.Fields(line)
			if len(fields) != 4 {
				p.SetErr(schemaErrorf("invalid legend line %q in %v", line, filename))
				return parsed
			}
			pos, err := strconv.Atoi(fields[1])
			if err != nil || pos <= 0 {
				p.SetErr(schemaErrorf("invalid legend position %q in %v", fields[1], filename))
				return parsed
			}
			parsed = append(parsed, SNP{ID: fields[0], Pos: pos, Ref: fields[2], Alt: fields[3]})
		}
		return parsed
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		snps = append(snps, data.([]SNP)...)
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, err
	}
	return snps, nil
}

func readHaplotypes(filename string) (rows []*bitset.BitSet, err error) {
	in, err := internal.OpenCompressed(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := in.Close(); nerr != nil {
			if err == nil {
				rows = nil
				err = nerr
			}
		}
	}()
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(bufio.NewReader(in)))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		parsed := make([]*bitset.BitSet, 0, len(lines))
		for _, line := range lines {
			fields := strings.Fields(line)
			if len(fields) == 0 {
				p.SetErr(schemaErrorf("empty haplotype row in %v", filename))
				return parsed
			}
			row := bitset.New(uint(len(fields)))
			for column, field := range fields {
				switch field {
				case "1":
					row.Set(uint(column))
				case "0":
				default:
					p.SetErr(schemaErrorf("invalid haplotype value %q in %v", field, filename))
					return parsed
				}
			}
			parsed = append(parsed, row)
		}
		return parsed
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		rows = append(rows, data.([]*bitset.BitSet)...)
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func readSamples(filename string) (individuals []Individual, err error) {
	in, err := internal.OpenCompressed(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := in.Close(); nerr != nil {
			if err == nil {
				individuals = nil
				err = nerr
			}
		}
	}()
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return nil, schemaErrorf("%v is not a samples file: missing header", filename)
	}
	if fields := strings.Fields(scanner.Text()); len(fields) != 4 || fields[0] != "sample" {
		return nil, schemaErrorf("%v is not a samples file - invalid header %q", filename, scanner.Text())
	}
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, schemaErrorf("invalid samples line %q in %v", line, filename)
		}
		sex, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, schemaErrorf("invalid sex value %q in %v", fields[3], filename)
		}
		individuals = append(individuals, Individual{
			ID:         fields[0],
			Population: fields[1],
			Group:      fields[2],
			Sex:        sex,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return individuals, nil
}
