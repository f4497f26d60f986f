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

package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/exascience/elploidy/panel"
)

// PanelStatsHelp is the help string for the elploidy panel-stats
// command.
const PanelStatsHelp = "\npanel-stats parameters:\n" +
	"elploidy panel-stats legend-file hap-file samples-file\n" +
	"[--allow-unsorted-panel]\n"

// PanelStats implements the elploidy panel-stats command. It loads and
// validates a reference panel and prints its dimensions.
func PanelStats() error {
	var allowUnsortedPanel bool

	var flags flag.FlagSet

	flags.BoolVar(&allowUnsortedPanel, "allow-unsorted-panel", false, "sort unsorted legend positions instead of failing")

	parseFlags(flags, 5, PanelStatsHelp)

	legendFilename := getFilename(os.Args[2], PanelStatsHelp)
	hapFilename := getFilename(os.Args[3], PanelStatsHelp)
	samplesFilename := getFilename(os.Args[4], PanelStatsHelp)

	var sanityChecksFailed bool

	if !checkExist("", legendFilename) {
		sanityChecksFailed = true
	}
	if !checkExist("", hapFilename) {
		sanityChecksFailed = true
	}
	if !checkExist("", samplesFilename) {
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, PanelStatsHelp)
		os.Exit(1)
	}

	reference, err := panel.Load(legendFilename, hapFilename, samplesFilename, allowUnsortedPanel)
	if err != nil {
		return err
	}

	first := reference.SNPAt(0)
	last := reference.SNPAt(reference.NSNPs() - 1)
	fmt.Println("snps:", reference.NSNPs())
	fmt.Println("positions:", first.Pos, "-", last.Pos)
	fmt.Println("individuals:", len(reference.Individuals()))
	fmt.Println("haplotypes:", reference.NHaplotypes())
	for _, group := range reference.Superpopulations() {
		mask, _ := reference.ColumnMask(group)
		fmt.Println("superpopulation "+group+":", mask.Count(), "haplotypes")
	}
	return nil
}
