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
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/exascience/elploidy/llr"
	log "github.com/sirupsen/logrus"
)

// ViewHelp is the help string for the elploidy view command.
const ViewHelp = "\nview parameters:\n" +
	"elploidy view llr-file\n" +
	"[--output file]\n" +
	"[--format [tsv | json]]\n"

// jsonFloat renders NaN and infinities as null, which encoding/json
// refuses for plain float64 values.
type jsonFloat float64

// MarshalJSON implements the json.Marshaler interface.
func (value jsonFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(value)) || math.IsInf(float64(value), 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(value), 'g', -1, 64)), nil
}

type jsonWindow struct {
	Start       int       `json:"start"`
	End         int       `json:"end"`
	LLR         jsonFloat `json:"llr"`
	SE          jsonFloat `json:"se"`
	Reads       int       `json:"reads"`
	SNPs        int       `json:"snps"`
	Informative bool      `json:"informative"`
	Resampled   bool      `json:"resampled"`
}

type jsonSummary struct {
	MeanLLR            jsonFloat `json:"mean_llr"`
	SE                 jsonFloat `json:"se"`
	InformativeWindows int       `json:"informative_windows"`
	ExcludedWindows    int       `json:"excluded_windows"`
	FractionNegative   jsonFloat `json:"fraction_negative"`
	MeanReads          jsonFloat `json:"mean_reads"`
	MeanSNPs           jsonFloat `json:"mean_snps"`
}

type jsonReport struct {
	RunID           string       `json:"run_id"`
	Program         string       `json:"program"`
	Version         string       `json:"version"`
	Created         string       `json:"created"`
	Chromosome      string       `json:"chromosome,omitempty"`
	Coverage        jsonFloat    `json:"coverage"`
	Obs             string       `json:"obs"`
	Legend          string       `json:"legend"`
	Hap             string       `json:"hap"`
	Samples         string       `json:"samples"`
	Mixture         string       `json:"mixture"`
	CollisionPolicy string       `json:"collisions"`
	Pair            string       `json:"pair"`
	MatchedFraction jsonFloat    `json:"matched_fraction"`
	NSNPs           int          `json:"panel_snps"`
	NHaplotypes     uint         `json:"panel_haplotypes"`
	Windows         []jsonWindow `json:"windows"`
	Summary         jsonSummary  `json:"summary"`
}

// View implements the elploidy view command. It decodes a result file
// into tab-separated values or JSON for downstream plotting and
// reporting tools.
func View() error {
	var (
		output, format string
	)

	var flags flag.FlagSet

	flags.StringVar(&output, "output", "", "output file, or standard output if empty")
	flags.StringVar(&format, "format", "tsv", "output format")

	parseFlags(flags, 3, ViewHelp)

	llrFilename := getFilename(os.Args[2], ViewHelp)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", llrFilename) {
		sanityChecksFailed = true
	}
	if output != "" && !checkCreate("--output", output) {
		sanityChecksFailed = true
	}
	switch format {
	case "tsv", "json":
	default:
		log.Printf("Error: Invalid output format %v.\n", format)
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, ViewHelp)
		os.Exit(1)
	}

	report, err := llr.LoadReport(llrFilename)
	if err != nil {
		return err
	}

	out := os.Stdout
	if output != "" {
		if out, err = os.Create(output); err != nil {
			return err
		}
		defer func() {
			if nerr := out.Close(); nerr != nil {
				if err == nil {
					err = nerr
				}
			}
		}()
	}

	if format == "json" {
		return writeJSON(out, report)
	}
	return writeTSV(out, report)
}

func writeTSV(out *os.File, report *llr.Report) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "# %v %v run %v created %v\n", report.Program, report.Version, report.RunID, report.Created.Format("2006-01-02 15:04:05"))
	if report.Chromosome != "" {
		fmt.Fprintf(w, "# chromosome %v coverage %.4f\n", report.Chromosome, report.Coverage())
	}
	fmt.Fprintf(w, "# mixture %v pair %v,%v\n", report.Mixture, report.Params.Numerator, report.Params.Denominator)
	fmt.Fprintf(w, "# mean_llr %v se %v informative %v excluded %v fraction_negative %v\n",
		report.Summary.MeanLLR, report.Summary.SE,
		report.Summary.InformativeWindows, report.Summary.ExcludedWindows,
		report.Summary.FractionNegative)
	fmt.Fprintln(w, "start\tend\tllr\tse\treads\tsnps\tinformative\tresampled")
	for _, window := range report.Windows {
		se := "NA"
		if !math.IsNaN(window.SE) {
			se = strconv.FormatFloat(window.SE, 'g', -1, 64)
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
			window.Start, window.End,
			strconv.FormatFloat(window.LLR, 'g', -1, 64), se,
			window.Reads, window.SNPs, window.Informative, window.Resampled)
	}
	return w.Flush()
}

func writeJSON(out *os.File, report *llr.Report) error {
	windows := make([]jsonWindow, len(report.Windows))
	for i, window := range report.Windows {
		windows[i] = jsonWindow{
			Start:       window.Start,
			End:         window.End,
			LLR:         jsonFloat(window.LLR),
			SE:          jsonFloat(window.SE),
			Reads:       window.Reads,
			SNPs:        window.SNPs,
			Informative: window.Informative,
			Resampled:   window.Resampled,
		}
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "\t")
	return encoder.Encode(&jsonReport{
		RunID:           report.RunID,
		Program:         report.Program,
		Version:         report.Version,
		Created:         report.Created.Format("2006-01-02 15:04:05"),
		Chromosome:      report.Chromosome,
		Coverage:        jsonFloat(report.Coverage()),
		Obs:             report.ObsFilename,
		Legend:          report.LegendFilename,
		Hap:             report.HapFilename,
		Samples:         report.SamplesFilename,
		Mixture:         report.Mixture,
		CollisionPolicy: report.CollisionPolicy,
		Pair:            fmt.Sprint(report.Params.Numerator, ",", report.Params.Denominator),
		MatchedFraction: jsonFloat(report.MatchedFraction),
		NSNPs:           report.NSNPs,
		NHaplotypes:     report.NHaplotypes,
		Windows:         windows,
		Summary: jsonSummary{
			MeanLLR:            jsonFloat(report.Summary.MeanLLR),
			SE:                 jsonFloat(report.Summary.SE),
			InformativeWindows: report.Summary.InformativeWindows,
			ExcludedWindows:    report.Summary.ExcludedWindows,
			FractionNegative:   jsonFloat(report.Summary.FractionNegative),
			MeanReads:          jsonFloat(report.Summary.MeanReads),
			MeanSNPs:           jsonFloat(report.Summary.MeanSNPs),
		},
	})
}
