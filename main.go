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

// elPloidy computes haplotype-based log-likelihood ratios that
// distinguish the origin of chromosomal aneuploidies (meiotic or
// mitotic, and the ploidy type) from low-coverage sequencing data, by
// comparing observed alleles at known SNPs against a population
// haplotype reference panel.
//
// Please see https://github.com/exascience/elploidy for a
// documentation of the tool.
package main

import (
	"fmt"
	"os"

	"github.com/exascience/elploidy/cmd"
	log "github.com/sirupsen/logrus"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: score, view, panel-stats")
	fmt.Fprint(os.Stderr, "\n", cmd.ScoreHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.ViewHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.PanelStatsHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage, "\n")
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "score":
		err = cmd.Score()
	case "view":
		err = cmd.View()
	case "panel-stats":
		err = cmd.PanelStats()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Printf("Unknown command %v.\n", os.Args[1])
		fmt.Fprint(os.Stderr, cmd.HelpMessage, "\n")
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
