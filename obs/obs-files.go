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
	"bufio"
	"strconv"
	"strings"

	"github.com/exascience/elploidy/internal"
	"github.com/exascience/elploidy/panel"
	"github.com/exascience/pargo/pipeline"
)

// ObsHeader is the header line that every .obs file starts with.
const ObsHeader = "# elobs format version 1.0\n"

// ObsExt is the filename extension for observation tables.
const ObsExt = ".obs"

// Load reads an observation table from an .obs file, optionally
// gzip-compressed: the elobs header line followed by tab-separated
// position, read identifier, and base columns. Observations are
// restricted to the reference panel's legend positions and the
// collision policy is applied as in NewTable.
func Load(filename string, reference *panel.Panel, policy Policy, seed int64) (table *Table, err error) {
	in, err := internal.OpenCompressed(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := in.Close(); nerr != nil {
			if err == nil {
				table = nil
				err = nerr
			}
		}
	}()
	input := bufio.NewReader(in)
	header, err := input.ReadString('\n')
	if err != nil {
		return nil, &panel.SchemaError{Msg: filename + " is not an .obs file: " + err.Error()}
	}
	if header != ObsHeader {
		return nil, &panel.SchemaError{Msg: filename + " is not an .obs file - invalid header"}
	}
	var observations []Observation
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(input))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		parsed := make([]Observation, 0, len(lines))
		for _, line := range lines {
			fields := strings.Split(line, "\t")
			if len(fields) != 3 {
				p.SetErr(&panel.SchemaError{Msg: "invalid observation line " + strconv.Quote(line) + " in " + filename})
				return parsed
			}
			pos, err := strconv.Atoi(fields[0])
			if err != nil || pos <= 0 {
				p.SetErr(&panel.SchemaError{Msg: "invalid observation position " + strconv.Quote(fields[0]) + " in " + filename})
				return parsed
			}
			parsed = append(parsed, Observation{Pos: pos, ReadID: fields[1], Base: fields[2]})
		}
		return parsed
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		observations = append(observations, data.([]Observation)...)
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, err
	}
	return NewTable(observations, reference, policy, seed), nil
}
