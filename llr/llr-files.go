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
	"encoding/gob"

	"github.com/exascience/elploidy/internal"
)

// LLRExt is the filename extension for result files, optionally
// followed by .gz or .zst for compressed contents.
const LLRExt = ".llr"

// Save stores the report in a gob-encoded result file. The contents are
// compressed when the filename ends in .gz or .zst; compression is a
// presentation concern, the encoded structure is the same either way.
func (report *Report) Save(filename string) (err error) {
	out, err := internal.CreateCompressed(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := out.Close(); nerr != nil {
			if err == nil {
				err = nerr
			}
		}
	}()
	return gob.NewEncoder(out).Encode(report)
}

// LoadReport reads a report back from a result file written by Save.
func LoadReport(filename string) (report *Report, err error) {
	in, err := internal.OpenCompressed(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := in.Close(); nerr != nil {
			if err == nil {
				report = nil
				err = nerr
			}
		}
	}()
	report = new(Report)
	if err := gob.NewDecoder(in).Decode(report); err != nil {
		return nil, err
	}
	return report, nil
}
