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

// hg38 chromosome lengths, from
// https://www.ncbi.nlm.nih.gov/grc/human/data?asm=GRCh38
var chromosomeLengths = map[string]int{
	"chr1": 248956422, "chr2": 242193529, "chr3": 198295559,
	"chr4": 190214555, "chr5": 181538259, "chr6": 170805979,
	"chr7": 159345973, "chr8": 145138636, "chr9": 138394717,
	"chr10": 133797422, "chr11": 135086622, "chr12": 133275309,
	"chr13": 114364328, "chr14": 107043718, "chr15": 101991189,
	"chr16": 90338345, "chr17": 83257441, "chr18": 80373285,
	"chr19": 58617616, "chr20": 64444167, "chr21": 46709983,
	"chr22": 50818468, "chrX": 156040895, "chrY": 57227415,
}

// ChromosomeLength returns the hg38 length of the given chromosome, or
// 0 when the chromosome is unknown.
func ChromosomeLength(chromosome string) int {
	return chromosomeLengths[chromosome]
}

// Coverage returns the fraction of the report's chromosome covered by
// its genomic windows, or 0 when the chromosome is unknown.
func (report *Report) Coverage() float64 {
	length := ChromosomeLength(report.Chromosome)
	if length == 0 {
		return 0
	}
	covered := 0
	for _, window := range report.Windows {
		covered += window.End - window.Start
	}
	return float64(covered) / float64(length)
}
