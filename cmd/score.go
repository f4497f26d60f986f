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
	"bytes"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/exascience/elploidy/ancestry"
	"github.com/exascience/elploidy/internal"
	"github.com/exascience/elploidy/llr"
	"github.com/exascience/elploidy/obs"
	"github.com/exascience/elploidy/panel"
	log "github.com/sirupsen/logrus"
)

// ScoreHelp is the help string for the elploidy score command.
const ScoreHelp = "\nscore parameters:\n" +
	"elploidy score obs-file llr-file\n" +
	"--legend file\n" +
	"--hap file\n" +
	"--samples file\n" +
	"[--ancestry labels]\n" +
	"[--proportions list]\n" +
	"[--chromosome name]\n" +
	"[--window-size nr]\n" +
	"[--offset nr]\n" +
	"[--min-reads nr]\n" +
	"[--max-reads nr]\n" +
	"[--subsamples nr]\n" +
	"[--min-hf nr]\n" +
	"[--min-score nr]\n" +
	"[--seed nr]\n" +
	"[--pair scenarios]\n" +
	"[--collisions [all | first | random | drop]]\n" +
	"[--allow-unsorted-panel]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--profile path]\n" +
	"[--log-path path]\n"

// Score implements the elploidy score command.
func Score() error {
	var (
		legendFilename, hapFilename, samplesFilename string
		ancestrySpec, proportionsSpec, chromosome    string
		pairSpec, collisionsSpec                     string
		allowUnsortedPanel, timed                    bool
		nrOfThreads                                  int
		profile, logPath                             string
	)

	params := llr.DefaultParams()

	var flags flag.FlagSet

	flags.StringVar(&legendFilename, "legend", "", "legend file of the reference panel")
	flags.StringVar(&hapFilename, "hap", "", "haplotype matrix file of the reference panel")
	flags.StringVar(&samplesFilename, "samples", "", "samples file of the reference panel")
	flags.StringVar(&ancestrySpec, "ancestry", "", "comma-separated superpopulation labels")
	flags.StringVar(&proportionsSpec, "proportions", "", "comma-separated ancestry proportions summing to 1")
	flags.StringVar(&chromosome, "chromosome", "", "chromosome the observations belong to")
	flags.IntVar(&params.WindowSize, "window-size", params.WindowSize, "window width in base pairs, or 0 for adaptive windows")
	flags.IntVar(&params.Offset, "offset", params.Offset, "offset of the fixed window boundaries")
	flags.IntVar(&params.MinReads, "min-reads", params.MinReads, "minimal number of reads per informative window")
	flags.IntVar(&params.MaxReads, "max-reads", params.MaxReads, "maximal number of reads per likelihood evaluation")
	flags.IntVar(&params.Subsamples, "subsamples", params.Subsamples, "number of bootstrap draws per window")
	flags.Float64Var(&params.MinHF, "min-hf", params.MinHF, "minimal haplotype frequency of contributing SNPs")
	flags.IntVar(&params.MinScore, "min-score", params.MinScore, "minimal score of eligible reads")
	flags.Int64Var(&params.Seed, "seed", params.Seed, "global seed for all random draws")
	flags.StringVar(&pairSpec, "pair", "BPH,SPH", "scenario pair the LLR compares")
	flags.StringVar(&collisionsSpec, "collisions", "all", "policy for multiple observations at one position")
	flags.BoolVar(&allowUnsortedPanel, "allow-unsorted-panel", false, "sort unsorted legend positions instead of failing")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 4, ScoreHelp)

	obsFilename := getFilename(os.Args[2], ScoreHelp)
	llrFilename := getFilename(os.Args[3], ScoreHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", obsFilename) {
		sanityChecksFailed = true
	}
	if !checkExist("--legend", legendFilename) {
		sanityChecksFailed = true
	}
	if !checkExist("--hap", hapFilename) {
		sanityChecksFailed = true
	}
	if !checkExist("--samples", samplesFilename) {
		sanityChecksFailed = true
	}
	if !checkCreate("", llrFilename) {
		sanityChecksFailed = true
	}

	policy, err := obs.ParsePolicy(collisionsSpec)
	if err != nil {
		log.Println("Error: ", err)
		sanityChecksFailed = true
	}

	pair := strings.Split(pairSpec, ",")
	if len(pair) != 2 {
		log.Printf("Error: Invalid scenario pair %v.\n", pairSpec)
		sanityChecksFailed = true
	} else {
		if params.Numerator, err = llr.ParseScenario(pair[0]); err != nil {
			log.Println("Error: ", err)
			sanityChecksFailed = true
		}
		if params.Denominator, err = llr.ParseScenario(pair[1]); err != nil {
			log.Println("Error: ", err)
			sanityChecksFailed = true
		}
	}

	if err := params.Validate(); err != nil {
		log.Println("Error: ", err)
		sanityChecksFailed = true
	}

	if nrOfThreads < 0 {
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, ScoreHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " score ", obsFilename, " ", llrFilename)
	fmt.Fprint(&command, " --legend ", legendFilename)
	fmt.Fprint(&command, " --hap ", hapFilename)
	fmt.Fprint(&command, " --samples ", samplesFilename)
	if ancestrySpec != "" {
		fmt.Fprint(&command, " --ancestry ", ancestrySpec)
	}
	if proportionsSpec != "" {
		fmt.Fprint(&command, " --proportions ", proportionsSpec)
	}
	if chromosome != "" {
		fmt.Fprint(&command, " --chromosome ", chromosome)
	}
	fmt.Fprint(&command, " --window-size ", params.WindowSize)
	fmt.Fprint(&command, " --offset ", params.Offset)
	fmt.Fprint(&command, " --min-reads ", params.MinReads)
	fmt.Fprint(&command, " --max-reads ", params.MaxReads)
	fmt.Fprint(&command, " --subsamples ", params.Subsamples)
	fmt.Fprint(&command, " --min-hf ", params.MinHF)
	fmt.Fprint(&command, " --min-score ", params.MinScore)
	fmt.Fprint(&command, " --seed ", params.Seed)
	fmt.Fprint(&command, " --pair ", params.Numerator, ",", params.Denominator)
	fmt.Fprint(&command, " --collisions ", policy)
	if allowUnsortedPanel {
		fmt.Fprint(&command, " --allow-unsorted-panel")
	}
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
		fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profile != "" {
		fmt.Fprint(&command, " --profile ", profile)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	fullObsFilename, err := internal.FullPathname(obsFilename)
	if err != nil {
		return err
	}
	fullLLRFilename, err := internal.FullPathname(llrFilename)
	if err != nil {
		return err
	}

	var reference *panel.Panel
	timedRun(timed, profile, "Loading the reference panel.", 1, func() {
		reference, err = panel.Load(legendFilename, hapFilename, samplesFilename, allowUnsortedPanel)
	})
	if err != nil {
		return err
	}
	log.Printf("Loaded a reference panel of %v SNPs and %v haplotypes (%v).\n",
		reference.NSNPs(), reference.NHaplotypes(), strings.Join(reference.Superpopulations(), " "))

	if ancestrySpec == "" {
		if groups := reference.Superpopulations(); len(groups) == 1 {
			ancestrySpec = groups[0]
		} else {
			return fmt.Errorf("the reference panel contains multiple superpopulations; --ancestry is required")
		}
	}
	mixture, err := ancestry.ResolveSpec(reference, ancestrySpec, proportionsSpec)
	if err != nil {
		return err
	}
	log.Printf("Resolved ancestry mixture %v over %v eligible haplotypes.\n", mixture, mixture.NEligible())

	var table *obs.Table
	timedRun(timed, profile, "Loading the observation table.", 2, func() {
		table, err = obs.Load(fullObsFilename, reference, policy, params.Seed)
	})
	if err != nil {
		return err
	}
	log.Printf("%.2f%% of the observations matched known alleles.\n", 100*table.MatchedFraction())

	var report *llr.Report
	timedRun(timed, profile, "Scoring genomic windows.", 3, func() {
		report, err = llr.NewEngine(reference, table, mixture, params).Run()
	})
	if err != nil {
		return err
	}
	report.Chromosome = chromosome
	report.ObsFilename = fullObsFilename
	report.LegendFilename = legendFilename
	report.HapFilename = hapFilename
	report.SamplesFilename = samplesFilename
	report.CollisionPolicy = policy.String()

	if err := report.Save(fullLLRFilename); err != nil {
		return err
	}

	summary := report.Summary
	log.Printf("Scored %v windows (%v informative, %v excluded).\n",
		len(report.Windows), summary.InformativeWindows, summary.ExcludedWindows)
	log.Printf("Mean %v/%v LLR %v with standard error %v; fraction of negative windows %v.\n",
		params.Numerator, params.Denominator, summary.MeanLLR, summary.SE, summary.FractionNegative)
	log.Println("Saved the result file at", fullLLRFilename)

	return nil
}
